package main

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel/log"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/outguard/internal/config"
	"github.com/fyrsmithlabs/outguard/internal/hooks"
	"github.com/fyrsmithlabs/outguard/internal/incident"
	"github.com/fyrsmithlabs/outguard/internal/logging"
	"github.com/fyrsmithlabs/outguard/internal/scan"
	"github.com/fyrsmithlabs/outguard/internal/secrets"
	"github.com/fyrsmithlabs/outguard/internal/signatures"
)

// app holds the assembled detection pipeline.
type app struct {
	cfg      *config.Config
	logger   *logging.Logger
	holder   *secrets.Holder
	scanner  *scan.Scanner
	reporter *incident.Reporter
	hooks    *hooks.Manager
}

// secretSources returns the configured known-secret sources.
func secretSources(cfg *config.Config) []secrets.Source {
	keys := cfg.Secrets.ConfigKeys
	if len(keys) == 0 {
		keys = secrets.DefaultConfigKeys
	}
	return []secrets.Source{
		secrets.EnvFileSource{Path: cfg.Secrets.EnvFile},
		secrets.ConfigFileSource{Path: cfg.Secrets.ConfigFile, Keys: keys},
	}
}

// newLogger builds the diagnostic logger from the logging section.
// w overrides the output stream when non-nil.
func newLogger(cfg *config.Config, lp log.LoggerProvider, w io.Writer) (*logging.Logger, error) {
	logCfg := logging.NewDefaultConfig()
	level, err := logging.LevelFromString(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	logCfg.Level = level
	logCfg.Format = cfg.Logging.Format
	logCfg.Output.OTEL = lp != nil
	logCfg.Fields = map[string]string{"version": version}

	if w != nil {
		return logging.NewLoggerTo(logCfg, w)
	}
	return logging.NewLogger(logCfg, lp)
}

// newApp loads secrets and wires the scanner, reporter and hook bus.
func newApp(ctx context.Context, cfg *config.Config, logger *logging.Logger, scanOpts ...scan.Option) (*app, error) {
	holder := secrets.NewHolder(secretSources(cfg)...)
	for _, r := range holder.Results() {
		fields := []zap.Field{
			zap.String("source", r.Source),
			zap.String("status", r.Status.String()),
			zap.Int("values", len(r.Values)),
		}
		if r.Err != nil {
			fields = append(fields, zap.Error(r.Err))
		}
		logger.Debug(ctx, "secret source loaded", fields...)
	}

	allowlist, err := scan.LoadAllowlist(cfg.Scanner.AllowlistFile)
	if err != nil {
		return nil, fmt.Errorf("loading allowlist: %w", err)
	}

	opts := []scan.Option{scan.WithAllowlist(allowlist), scan.WithLogger(logger)}
	if cfg.Scanner.Gitleaks {
		detector, err := signatures.NewGitleaksDetector()
		if err != nil {
			return nil, fmt.Errorf("initializing gitleaks rules: %w", err)
		}
		opts = append(opts, scan.WithExtended(detector))
	}
	opts = append(opts, scanOpts...)

	scanner := scan.New(holder, opts...)
	reporter := incident.NewReporter(incident.NewLog(cfg.Incident.LogPath), logger)

	manager := hooks.NewManager(logger)
	hooks.NewDLPHandler(scanner, reporter, logger).Register(manager)

	return &app{
		cfg:      cfg,
		logger:   logger,
		holder:   holder,
		scanner:  scanner,
		reporter: reporter,
		hooks:    manager,
	}, nil
}
