package main

import (
	"context"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

const usageLine = "Usage: mashup <SearchTerm> <Count> <ClipSeconds> <OutputFile>"

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "mashup <SearchTerm> <Count> <ClipSeconds> <OutputFile>",
		Short:         "Build an audio mashup from the top search results for an artist",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// The positional run validates its arguments before loading config.
			if cmd == cmd.Root() || shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMashup(cmd, ctx, args)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&ctx.configPath, "config", "c", "", "Configuration file path")
	flags.BoolVarP(&ctx.verbose, "verbose", "v", false, "Show pipeline logs")
	// Flags end at the search term so "-5" reaches the count check.
	rootCmd.Flags().SetInterspersed(false)

	rootCmd.AddCommand(
		newServeCommand(ctx),
		newJobsCommand(ctx),
		newStatusCommand(ctx),
		newDepsCommand(ctx),
		newConfigCommand(ctx),
	)

	return rootCmd
}

// execute runs root with args after escapeSearchTerm.
func execute(ctx context.Context, root *cobra.Command, args []string) error {
	root.SetArgs(escapeSearchTerm(root, args))
	return root.ExecuteContext(ctx)
}

// escapeSearchTerm inserts "--" before a search term that names a
// subcommand ("mashup deps 15 25 out.mp3"), so the four-argument form
// still reaches the mashup run. The shape must match: four positionals
// with an integer count.
func escapeSearchTerm(root *cobra.Command, args []string) []string {
	i := 0
	for i < len(args) {
		arg := args[i]
		switch {
		case arg == "--":
			return args
		case arg == "--config" || arg == "-c":
			i += 2
			continue
		case strings.HasPrefix(arg, "-"):
			i++
			continue
		}
		break
	}
	rest := args[i:]
	if len(rest) != 4 || !namesSubcommand(root, rest[0]) {
		return args
	}
	if _, err := strconv.Atoi(strings.TrimSpace(rest[1])); err != nil {
		return args
	}
	escaped := make([]string, 0, len(args)+1)
	escaped = append(escaped, args[:i]...)
	escaped = append(escaped, "--")
	return append(escaped, rest...)
}

func namesSubcommand(root *cobra.Command, name string) bool {
	if name == "help" || name == "completion" {
		return true
	}
	for _, sub := range root.Commands() {
		if sub.Name() == name || sub.HasAlias(name) {
			return true
		}
	}
	return false
}
