package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"mashup/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Inspect or scaffold the configuration file"}
	cmd.AddCommand(newConfigInitCommand(), newConfigValidateCommand(ctx))
	return cmd
}

func newConfigInitCommand() *cobra.Command {
	var (
		dest      string
		overwrite bool
	)
	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a commented sample config",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfigAnnotation: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			target, err := config.DefaultConfigPath()
			if dest = strings.TrimSpace(dest); dest != "" {
				target, err = config.ExpandPath(dest)
			}
			if err != nil {
				return fmt.Errorf("resolve config path: %w", err)
			}
			if _, statErr := os.Stat(target); statErr == nil && !overwrite {
				return fmt.Errorf("%s already exists; pass --overwrite to replace it", target)
			} else if statErr != nil && !errors.Is(statErr, fs.ErrNotExist) {
				return fmt.Errorf("check config path: %w", statErr)
			}
			if err := config.CreateSample(target); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample configuration to %s\n"+
				"Fill in [mail] (or export MASHUP_SMTP_USERNAME and MASHUP_SMTP_PASSWORD) to email finished mashups.\n", target)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dest, "path", "p", "", "Where to write the file (default ~/.config/mashup/config.toml)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Load the config and report the effective settings",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfigAnnotation: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, path, exists, err := config.Load(strings.TrimSpace(ctx.configPath))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			source := path
			if !exists {
				source += " (not found, using defaults)"
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Config path:\t%s\n", source)
			fmt.Fprintf(w, "Scratch directory:\t%s\n", cfg.Paths.ScratchDir)
			fmt.Fprintf(w, "Output directory:\t%s\n", cfg.Paths.OutputDir)
			fmt.Fprintf(w, "API bind:\t%s\n", cfg.Paths.APIBind)
			fmt.Fprintf(w, "Email delivery:\t%s\n", yesNo(cfg.MailConfigured()))
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Configuration valid")
			return nil
		},
	}
}
