package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/outguard/internal/config"
	httpserver "github.com/fyrsmithlabs/outguard/internal/http"
	"github.com/fyrsmithlabs/outguard/internal/scan"
	"github.com/fyrsmithlabs/outguard/internal/secrets"
	"github.com/fyrsmithlabs/outguard/internal/telemetry"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the hook daemon",
		Long: `Run the outguard daemon. The host delivers message:sent events to
POST /api/v1/hooks; the response carries any alert lines to show the user.

Examples:
  # Start with defaults
  outguard serve

  # Override the port and incident log
  OUTGUARD_SERVER_HTTP_PORT=9300 OUTGUARD_INCIDENT_LOG_PATH=/var/lib/clawd/action-log.md outguard serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadWithFile(opts.configPath)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}
}

// runServe starts the daemon and blocks until ctx is cancelled.
//
//  1. Initializes telemetry and the logger
//  2. Loads secret sources and wires the detection pipeline
//  3. Starts the secret-source watcher when enabled
//  4. Serves HTTP until shutdown
func runServe(ctx context.Context, cfg *config.Config) error {
	tel, err := telemetry.New(ctx, telemetry.FromConfig(cfg.Telemetry, version))
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		_ = tel.Shutdown(context.Background())
	}()

	logger, err := newLogger(cfg, tel.LoggerProvider(), nil)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	a, err := newApp(ctx, cfg, logger, scan.WithTracer(tel.Tracer("outguard.scan")))
	if err != nil {
		return err
	}

	logger.Info(ctx, "starting outguard",
		zap.String("version", version),
		zap.Int("known_secrets", a.holder.Current().Len()),
		zap.String("incident_log", cfg.Incident.LogPath),
		zap.Bool("gitleaks", cfg.Scanner.Gitleaks),
		zap.Bool("telemetry", tel.IsEnabled()))

	if cfg.Secrets.Watch {
		watcher, err := secrets.NewWatcher(a.holder, logger, cfg.Secrets.WatchDebounce.Duration())
		if err != nil {
			return fmt.Errorf("failed to create secret watcher: %w", err)
		}
		if err := watcher.Start(ctx); err != nil {
			logger.Warn(ctx, "secret watcher disabled", zap.Error(err))
		} else {
			defer watcher.Stop()
		}
	}

	srv, err := httpserver.NewServer(a.scanner, a.hooks, logger, &httpserver.Config{
		Host:      cfg.Server.Host,
		Port:      cfg.Server.Port,
		AuthToken: cfg.Server.AuthToken.Value(),
	},
		httpserver.WithSecrets(a.holder),
		httpserver.WithTelemetry(tel),
		httpserver.WithVersion(version),
	)
	if err != nil {
		return fmt.Errorf("failed to create http server: %w", err)
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Start()
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info(context.Background(), "shutting down",
		zap.Duration("timeout", cfg.Server.ShutdownTimeout.Duration()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
