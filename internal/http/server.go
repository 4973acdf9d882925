// Package http provides the outguard HTTP API.
package http

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/outguard/internal/finding"
	"github.com/fyrsmithlabs/outguard/internal/hooks"
	"github.com/fyrsmithlabs/outguard/internal/incident"
	"github.com/fyrsmithlabs/outguard/internal/logging"
	"github.com/fyrsmithlabs/outguard/internal/scan"
	"github.com/fyrsmithlabs/outguard/internal/secrets"
	"github.com/fyrsmithlabs/outguard/internal/telemetry"
)

// MaxBodySize limits request bodies.
const MaxBodySize = "1M"

// Scanner finds suspected secrets in text.
type Scanner interface {
	ScanContext(ctx context.Context, text string) []finding.Finding
}

// Server provides HTTP endpoints for outguard.
type Server struct {
	echo    *echo.Echo
	scanner Scanner
	hooks   *hooks.Manager
	logger  *logging.Logger
	config  *Config

	secrets   *secrets.Holder
	telemetry *telemetry.Telemetry
	version   string
}

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int

	// AuthToken, when non-empty, is required as a bearer token on /api/v1.
	AuthToken string
}

// Option configures a Server.
type Option func(*Server)

// WithSecrets reports the secret sources on /health.
func WithSecrets(h *secrets.Holder) Option {
	return func(s *Server) {
		s.secrets = h
	}
}

// WithTelemetry reports telemetry health on /health and records request
// metrics through its meter.
func WithTelemetry(t *telemetry.Telemetry) Option {
	return func(s *Server) {
		s.telemetry = t
	}
}

// WithVersion sets the version reported on /health.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// NewServer creates a new HTTP server.
func NewServer(scanner Scanner, manager *hooks.Manager, logger *logging.Logger, cfg *Config, opts ...Option) (*Server, error) {
	if scanner == nil {
		return nil, fmt.Errorf("scanner cannot be nil")
	}
	if manager == nil {
		return nil, fmt.Errorf("hook manager cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{
			Host: "127.0.0.1",
			Port: 9190,
		}
	}

	s := &Server{
		scanner: scanner,
		hooks:   manager,
		logger:  logger.Named("http"),
		config:  cfg,
	}
	for _, opt := range opts {
		opt(s)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	meter := otel.GetMeterProvider().Meter(httpInstrumentationName)
	if s.telemetry != nil {
		meter = s.telemetry.Meter(httpInstrumentationName)
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(s.requestLogger())
	e.Use(NewHTTPMetrics(meter, s.logger).Middleware())
	e.Use(middleware.BodyLimit(MaxBodySize))

	s.echo = e
	s.registerRoutes()

	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := s.echo.Group("/api/v1")
	if s.config.AuthToken != "" {
		v1.Use(s.bearerAuth())
	}
	v1.POST("/scan", s.handleScan)
	v1.POST("/hooks", s.handleHook)
}

// requestLogger logs each request once it completes.
func (s *Server) requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			requestID := c.Response().Header().Get(echo.HeaderXRequestID)

			req := c.Request()
			ctx := logging.WithRequestID(req.Context(), requestID)
			c.SetRequest(req.WithContext(ctx))

			err := next(c)

			s.logger.Info(ctx, "http request",
				zap.String("method", req.Method),
				zap.String("route", c.Path()),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
			)
			return err
		}
	}
}

func (s *Server) bearerAuth() echo.MiddlewareFunc {
	want := []byte(s.config.AuthToken)
	return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		KeyLookup:  "header:" + echo.HeaderAuthorization,
		AuthScheme: "Bearer",
		Validator: func(key string, c echo.Context) (bool, error) {
			return subtle.ConstantTimeCompare([]byte(key), want) == 1, nil
		},
	})
}

// handleHealth reports service, secret source and telemetry status.
func (s *Server) handleHealth(c echo.Context) error {
	resp := HealthResponse{Status: "ok", Version: s.version}

	if s.secrets != nil {
		resp.KnownSecrets = s.secrets.Current().Len()
		for _, r := range s.secrets.Results() {
			resp.Sources = append(resp.Sources, SourceStatus{
				Name:   r.Source,
				Status: r.Status.String(),
				Values: len(r.Values),
			})
		}
	}
	if s.telemetry != nil {
		h := s.telemetry.Health()
		resp.Telemetry = &h
		if h.Degraded {
			resp.Status = "degraded"
		}
	}

	return c.JSON(http.StatusOK, resp)
}

// handleScan scans text without reporting. The incident log is never written.
func (s *Server) handleScan(c echo.Context) error {
	var req ScanRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn(c.Request().Context(), "invalid scan request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Text == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "text field is required")
	}

	ctx := c.Request().Context()
	findings := s.scanner.ScanContext(ctx, req.Text)
	if findings == nil {
		findings = []finding.Finding{}
	}

	resp := ScanResponse{
		Findings:    findings,
		MaxSeverity: finding.MaxSeverity(findings),
		Suppressed:  scan.Suppress(findings, scan.TextLength(req.Text)),
	}
	if !resp.Suppressed {
		resp.Alert, _ = incident.AlertMessage(findings)
	}

	s.logger.Debug(ctx, "dry-run scan",
		zap.Int("findings", len(findings)),
		zap.Bool("suppressed", resp.Suppressed))

	return c.JSON(http.StatusOK, resp)
}

// handleHook dispatches a host event and returns its outbox.
func (s *Server) handleHook(c echo.Context) error {
	var event hooks.Event
	if err := c.Bind(&event); err != nil {
		s.logger.Warn(c.Request().Context(), "invalid hook event", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if event.Type == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "type field is required")
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	s.hooks.Dispatch(c.Request().Context(), &event)

	messages := event.Messages
	if messages == nil {
		messages = []string{}
	}
	return c.JSON(http.StatusOK, HookResponse{Messages: messages})
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}

// Start starts the HTTP server and blocks until it stops.
// A clean shutdown returns nil.
func (s *Server) Start() error {
	s.logger.Info(context.Background(), "starting http server", zap.String("addr", s.Addr()))
	if err := s.echo.Start(s.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "shutting down http server")
	return s.echo.Shutdown(ctx)
}
