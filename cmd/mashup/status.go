package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"mashup/internal/api"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status [job-id]",
		Short: "Show daemon status, or the progress of one job",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			client := api.NewClient(cfg.Paths.APIBind, cfg.Paths.APIToken)
			out := cmd.OutOrStdout()
			colorize := isTerminal(out)

			if len(args) == 1 {
				job, err := client.Job(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("query daemon: %w", err)
				}
				fmt.Fprintln(out, renderJobStatus(job, colorize))
				return nil
			}

			status, err := client.Status(cmd.Context())
			if err != nil {
				return fmt.Errorf("query daemon at %s: %w (start it with `mashup serve`)", cfg.Paths.APIBind, err)
			}
			fmt.Fprintln(out, renderDaemonStatus(status, colorize))
			return nil
		},
	}
}

func renderDaemonStatus(status api.DaemonStatus, colorize bool) string {
	lines := renderSectionHeader("Daemon", colorize)
	running := statusLine{label: "Running", kind: statusError, message: "no"}
	if status.Running {
		running = statusLine{label: "Running", kind: statusOK, message: fmt.Sprintf("yes (pid %d)", status.PID)}
	}
	delivery := statusLine{label: "Email delivery", kind: statusInfo, message: "disabled"}
	if status.DeliveryEnabled {
		delivery = statusLine{label: "Email delivery", kind: statusOK, message: "enabled"}
	}
	for _, line := range []statusLine{
		running,
		{label: "Active jobs", kind: statusInfo, message: fmt.Sprintf("%d", status.ActiveJobs)},
		{label: "Scratch workspaces", kind: statusInfo, message: fmt.Sprintf("%d", status.Workspaces)},
		delivery,
		{label: "Job database", kind: statusInfo, message: status.JobsDBPath},
	} {
		lines = append(lines, line.render(colorize))
	}

	lines = append(lines, "")
	lines = append(lines, renderSectionHeader("Jobs", colorize)...)
	keys := make([]string, 0, len(status.JobCounts))
	for key := range status.JobCounts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		lines = append(lines, statusLine{label: key, kind: statusInfo, message: fmt.Sprintf("%d", status.JobCounts[key])}.render(colorize))
	}

	lines = append(lines, "")
	lines = append(lines, renderSectionHeader("Dependencies", colorize)...)
	for _, dep := range status.Dependencies {
		line := statusLine{label: dep.Name, kind: statusOK, message: dep.Version}
		if !dep.Available {
			line.kind = statusError
			if dep.Optional {
				line.kind = statusWarn
			}
			line.message = dep.Detail
		}
		lines = append(lines, line.render(colorize))
	}
	return strings.Join(lines, "\n")
}

func renderJobStatus(job api.Job, colorize bool) string {
	lines := renderSectionHeader("Job "+job.ID, colorize)
	state := statusLine{label: "State", kind: statusInfo, message: job.State}
	switch {
	case job.Done && job.Error != "":
		state.kind = statusError
	case job.Done:
		state.kind = statusOK
	}
	lines = append(lines,
		state.render(colorize),
		statusLine{label: "Progress", kind: statusInfo, message: fmt.Sprintf("%d%% %s", job.Percent, job.Message)}.render(colorize),
	)
	if job.Error != "" {
		lines = append(lines, statusLine{label: "Error", kind: statusError, message: job.Error}.render(colorize))
	}
	return strings.Join(lines, "\n")
}
