package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/1broseidon/cardwm/internal/daemon"
)

func newDaemonCmd(opts *globalOptions) *cobra.Command {
	var noX11 bool
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run the card manager daemon",
		Long: `Run the card manager in the foreground.

With daemon.x11 enabled the daemon turns X11 client windows into cards and
grabs the navigation hotkeys. Without it, cards are driven over IPC only.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDaemon(cmd.Context(), opts, noX11)
		},
	}
	cmd.Flags().BoolVar(&noX11, "no-x11", false, "do not connect to the X server")
	return cmd
}

func runDaemon(ctx context.Context, opts *globalOptions, noX11 bool) error {
	cfg, path, err := opts.load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := opts.logger(cfg.Logging)
	defer func() { _ = logger.Sync() }()
	logger.Info("configuration loaded", zap.String("path", path),
		zap.Int("screen_width", cfg.Screen.Width), zap.Int("screen_height", cfg.Screen.Height))

	dopts := daemon.Options{
		Config:     cfg,
		ConfigPath: path,
		SocketPath: opts.socketPath,
		Logger:     logger,
	}
	if cfg.Daemon.X11 && !noX11 {
		closeX, err := daemon.AttachX11(&dopts)
		if err != nil {
			return fmt.Errorf("failed to connect to display: %w", err)
		}
		defer closeX()
	}

	d, err := daemon.New(dopts)
	if err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := d.Run(ctx); err != nil {
		return err
	}
	logger.Info("daemon stopped")
	return nil
}
