package preflight

import (
	"context"

	"mashup/internal/config"
)

// Result is one check outcome. Detail explains a failure or names what
// was verified.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll checks the scratch and output directories, the SMTP relay when
// mail delivery is on, and every required binary.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	results := make([]Result, 0, 6)
	results = append(results,
		CheckDirectoryAccess("Scratch directory", cfg.Paths.ScratchDir),
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
	)
	if cfg.MailConfigured() {
		results = append(results, CheckSMTP(ctx, cfg.Mail.SMTPHost, cfg.Mail.SMTPPort))
	}
	for _, dep := range CheckSystemDeps(ctx, cfg) {
		if dep.Optional {
			continue
		}
		detail := dep.Detail
		if dep.Available {
			detail = dep.Command
		}
		results = append(results, Result{Name: dep.Name, Passed: dep.Available, Detail: detail})
	}
	return results
}

// Failed filters results down to the checks that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
