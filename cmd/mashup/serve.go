package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mashup/internal/daemon"
	"mashup/internal/delivery"
	"mashup/internal/jobs"
	"mashup/internal/logging"
	"mashup/internal/notifications"
	"mashup/internal/queue"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the mashup web server and job daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemonProcess(cmd.Context(), ctx, bind)
		},
	}
	cmd.Flags().StringVar(&bind, "bind", "", "Override the configured api_bind address")
	return cmd
}

func runDaemonProcess(cmdCtx context.Context, ctx *commandContext, bind string) error {
	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if bind != "" {
		cfg.Paths.APIBind = bind
	}

	logger, logPath, err := logging.NewDaemonLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	store, err := queue.Open(cfg)
	if err != nil {
		logger.Error("open job store", logging.Error(err))
		return err
	}

	mgr := jobs.NewManager(jobs.Options{
		Runner:        newRunner(cfg, logger),
		Delivery:      delivery.NewService(delivery.NewMailer(cfg, logger), logger),
		Notifier:      notifications.NewService(cfg),
		Store:         store,
		OutputDir:     cfg.Paths.OutputDir,
		MaxConcurrent: cfg.Jobs.MaxConcurrent,
		Logger:        logger,
	})

	d, err := daemon.New(cfg, store, logger, mgr, logPath)
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}

	<-signalCtx.Done()
	logger.Info("mashup daemon shutting down")
	return nil
}
