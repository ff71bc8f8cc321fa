package deps

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"
)

const versionTimeout = 5 * time.Second

// Requirement names an external binary. VersionArgs, when set, are run to
// capture a version string for display.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	VersionArgs []string
}

type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Version     string
	Detail      string
}

// Check resolves req on PATH and, when found, reads its version.
func (req Requirement) Check(ctx context.Context) Status {
	status := Status{
		Name:        req.Name,
		Command:     strings.TrimSpace(req.Command),
		Description: strings.TrimSpace(req.Description),
		Optional:    req.Optional,
	}
	if status.Command == "" {
		status.Detail = "command not configured"
		return status
	}
	resolved, err := exec.LookPath(status.Command)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", status.Command)
		return status
	}
	status.Available = true
	if len(req.VersionArgs) > 0 {
		status.Version = firstLine(ctx, resolved, req.VersionArgs)
	}
	return status
}

// CheckBinaries checks every requirement in parallel; results keep the
// input order.
func CheckBinaries(ctx context.Context, requirements []Requirement) []Status {
	if ctx == nil {
		ctx = context.Background()
	}
	results := make([]Status, len(requirements))
	var wg sync.WaitGroup
	for i, req := range requirements {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = req.Check(ctx)
		}()
	}
	wg.Wait()
	return results
}

// Missing filters statuses down to unavailable required binaries.
func Missing(statuses []Status) []Status {
	var out []Status
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			out = append(out, s)
		}
	}
	return out
}

// firstLine runs binary with args and returns its first non-blank output
// line. Failures and timeouts yield "".
func firstLine(ctx context.Context, binary string, args []string) string {
	ctx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, binary, args...).Output()
	if err != nil {
		return ""
	}
	lines := bufio.NewScanner(bytes.NewReader(out))
	for lines.Scan() {
		if text := strings.TrimSpace(lines.Text()); text != "" {
			return text
		}
	}
	return ""
}
