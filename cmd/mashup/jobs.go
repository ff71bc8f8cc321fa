package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mashup/internal/queue"
	"mashup/internal/textutil"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	var statusFlags []string
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List mashup jobs recorded by the daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var statuses []queue.Status
			for _, value := range statusFlags {
				status, ok := queue.ParseStatus(strings.ToLower(strings.TrimSpace(value)))
				if !ok {
					return fmt.Errorf("unknown status %q (valid: pending, running, succeeded, failed)", value)
				}
				statuses = append(statuses, status)
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := queue.Open(cfg)
			if err != nil {
				return fmt.Errorf("open job store: %w", err)
			}
			defer store.Close()

			list, err := store.List(cmd.Context(), statuses...)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(out, "No jobs found")
				return nil
			}
			fmt.Fprintln(out, renderJobs(list))
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&statusFlags, "status", "s", nil, "Filter by status (repeatable)")
	return cmd
}

func renderJobs(list []*queue.Job) string {
	rows := make([][]string, 0, len(list))
	for _, job := range list {
		message := job.ProgressMessage
		if job.Status == queue.StatusFailed && job.ErrorMessage != "" {
			message = job.ErrorMessage
		}
		rows = append(rows, []string{
			job.ID,
			textutil.DisplayName(job.SearchTerm),
			strconv.Itoa(job.Count),
			strconv.Itoa(job.ClipSeconds),
			string(job.Status),
			fmt.Sprintf("%d%%", job.ProgressPercent),
			yesNo(job.Emailed),
			job.CreatedAt.Local().Format(time.DateTime),
			truncate(message, 48),
		})
	}
	return renderTable([]column{
		{title: "ID"},
		{title: "Search"},
		{title: "Count", right: true},
		{title: "Clip", right: true},
		{title: "Status"},
		{title: "Progress", right: true},
		{title: "Emailed"},
		{title: "Created"},
		{title: "Message"},
	}, rows)
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit-1]) + "…"
}
