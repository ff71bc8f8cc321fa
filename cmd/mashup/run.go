package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"mashup/internal/workflow"
)

// cliError is an error whose text is printed verbatim, optionally followed
// by the usage line.
type cliError struct {
	msg   string
	usage bool
}

func (e *cliError) Error() string { return e.msg }

func formatError(err error) string {
	var ce *cliError
	if errors.As(err, &ce) {
		if ce.usage {
			return ce.msg + "\n" + usageLine
		}
		return ce.msg
	}
	return "Error: " + err.Error()
}

// parseArgs applies the positional argument rules in the order the user
// sees them: count, then integer parsing, then bounds.
func parseArgs(args []string) (workflow.Request, error) {
	if len(args) != 4 {
		return workflow.Request{}, &cliError{msg: "Error: Incorrect number of parameters.", usage: true}
	}
	count, countErr := strconv.Atoi(strings.TrimSpace(args[1]))
	clip, clipErr := strconv.Atoi(strings.TrimSpace(args[2]))
	if countErr != nil || clipErr != nil {
		return workflow.Request{}, &cliError{msg: "Error: <Count> and <ClipSeconds> must be integers."}
	}
	if count <= workflow.MinCount {
		return workflow.Request{}, &cliError{msg: fmt.Sprintf("Error: <Count> must be greater than %d.", workflow.MinCount)}
	}
	if clip <= workflow.MinClipSeconds {
		return workflow.Request{}, &cliError{msg: fmt.Sprintf("Error: <ClipSeconds> must be greater than %d.", workflow.MinClipSeconds)}
	}
	return workflow.Request{
		SearchTerm:  args[0],
		Count:       count,
		ClipSeconds: clip,
		OutputPath:  args[3],
	}, nil
}

func runMashup(cmd *cobra.Command, ctx *commandContext, args []string) error {
	req, err := parseArgs(args)
	if err != nil {
		return err
	}
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.cliLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Creating mashup, please wait...")

	progress := newProgressRenderer(out)
	output, err := newRunner(cfg, logger).Run(cmd.Context(), req, progress.observe)
	progress.finish()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Mashup created successfully: %s\n", output)
	return nil
}
