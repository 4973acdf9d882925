package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/outguard/internal/finding"
	"github.com/fyrsmithlabs/outguard/internal/hooks"
	"github.com/fyrsmithlabs/outguard/internal/incident"
	"github.com/fyrsmithlabs/outguard/internal/logging"
	"github.com/fyrsmithlabs/outguard/internal/scan"
	"github.com/fyrsmithlabs/outguard/internal/secrets"
	"github.com/fyrsmithlabs/outguard/internal/telemetry"
)

const anthropicKey = "sk-ant-REDACTED"

type testServer struct {
	*Server
	logPath string
}

func setupTestServer(t *testing.T, cfg *Config, opts ...Option) *testServer {
	t.Helper()
	logger := logging.NewTestLogger().Logger
	logPath := filepath.Join(t.TempDir(), "action-log.md")

	scanner := scan.New(nil)
	manager := hooks.NewManager(logger)
	hooks.NewDLPHandler(scanner, incident.NewReporter(incident.NewLog(logPath), logger), logger).Register(manager)

	server, err := NewServer(scanner, manager, logger, cfg, opts...)
	require.NoError(t, err)
	return &testServer{Server: server, logPath: logPath}
}

func (s *testServer) do(t *testing.T, method, path string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var r *bytes.Reader
	switch b := body.(type) {
	case nil:
		r = bytes.NewReader(nil)
	case string:
		r = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func TestNewServer(t *testing.T) {
	logger := logging.NewNop()
	manager := hooks.NewManager(logger)
	scanner := scan.New(nil)

	t.Run("uses defaults when config is nil", func(t *testing.T) {
		server, err := NewServer(scanner, manager, logger, nil)
		require.NoError(t, err)
		assert.Equal(t, "127.0.0.1:9190", server.Addr())
	})

	t.Run("returns error when scanner is nil", func(t *testing.T) {
		_, err := NewServer(nil, manager, logger, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "scanner cannot be nil")
	})

	t.Run("returns error when hook manager is nil", func(t *testing.T) {
		_, err := NewServer(scanner, nil, logger, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "hook manager cannot be nil")
	})

	t.Run("returns error when logger is nil", func(t *testing.T) {
		_, err := NewServer(scanner, manager, nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "logger is required")
	})
}

func TestHandleHealth(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("BOT_TOKEN=telegram-bot-secret-value-1234567\n"), 0o600))
	holder := secrets.NewHolder(
		secrets.EnvFileSource{Path: envPath},
		secrets.EnvFileSource{Path: filepath.Join(dir, "missing.env")},
	)

	server := setupTestServer(t, nil,
		WithSecrets(holder),
		WithTelemetry(telemetry.NewTestTelemetry().Telemetry),
		WithVersion("1.0.0"))

	rec := server.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "telegram-bot-secret-value-1234567")

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "1.0.0", resp.Version)
	assert.Equal(t, 1, resp.KnownSecrets)
	require.Len(t, resp.Sources, 2)
	assert.Equal(t, SourceStatus{Name: envPath, Status: "loaded", Values: 1}, resp.Sources[0])
	assert.Equal(t, "unavailable", resp.Sources[1].Status)
	require.NotNil(t, resp.Telemetry)
	assert.True(t, resp.Telemetry.Healthy)
}

func TestHandleScan(t *testing.T) {
	t.Run("reports findings without writing the log", func(t *testing.T) {
		server := setupTestServer(t, nil)

		rec := server.do(t, http.MethodPost, "/api/v1/scan", ScanRequest{
			Text: "here is my key " + anthropicKey,
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, rec.Body.String(), anthropicKey)

		var resp ScanResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Findings, 1)
		assert.Equal(t, finding.Finding{Rule: "anthropic_api_key", Severity: finding.SeverityCritical, Preview: "sk-ant-a...7890"}, resp.Findings[0])
		assert.Equal(t, finding.SeverityCritical, resp.MaxSeverity)
		assert.False(t, resp.Suppressed)
		assert.Contains(t, resp.Alert, "[DLP ALERT — CRITICAL]")

		_, err := os.Stat(server.logPath)
		assert.True(t, os.IsNotExist(err), "dry-run scan must not write the incident log")
	})

	t.Run("clean text", func(t *testing.T) {
		server := setupTestServer(t, nil)

		rec := server.do(t, http.MethodPost, "/api/v1/scan", ScanRequest{Text: "nothing to see here at all"})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"findings":[],"max_severity":"none","suppressed":true}`, rec.Body.String())
	})

	t.Run("suppression counts characters", func(t *testing.T) {
		server := setupTestServer(t, nil)
		text := "вот токен Xk9mP2vR7tL4wQ8nB5cJ1hF6gD3sA0zYeUiOoTrQ" + strings.Repeat("п", 93)

		rec := server.do(t, http.MethodPost, "/api/v1/scan", ScanRequest{Text: text})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp ScanResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Findings, 1)
		assert.True(t, resp.Suppressed)
		assert.Empty(t, resp.Alert)
	})

	t.Run("short medium-only text is suppressed", func(t *testing.T) {
		server := setupTestServer(t, nil)

		rec := server.do(t, http.MethodPost, "/api/v1/scan", ScanRequest{Text: "token Xk9mP2vR7tL4wQ8nB5cJ1hF6gD3sA0zYeUiOoTrQ"})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp ScanResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Findings, 1)
		assert.Equal(t, finding.SeverityMedium, resp.MaxSeverity)
		assert.True(t, resp.Suppressed)
		assert.Empty(t, resp.Alert)
	})

	t.Run("empty text", func(t *testing.T) {
		server := setupTestServer(t, nil)
		rec := server.do(t, http.MethodPost, "/api/v1/scan", ScanRequest{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "text field is required")
	})

	t.Run("invalid json", func(t *testing.T) {
		server := setupTestServer(t, nil)
		rec := server.do(t, http.MethodPost, "/api/v1/scan", "invalid json")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("oversized body", func(t *testing.T) {
		server := setupTestServer(t, nil)
		big := `{"text":"` + strings.Repeat("a", 2<<20) + `"}`
		rec := server.do(t, http.MethodPost, "/api/v1/scan", big)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})
}

func TestHandleHook(t *testing.T) {
	t.Run("message sent with secret", func(t *testing.T) {
		server := setupTestServer(t, nil)

		rec := server.do(t, http.MethodPost, "/api/v1/hooks", map[string]any{
			"type":       "message",
			"action":     "sent",
			"sessionKey": "agent:main:telegram",
			"context":    map[string]any{"text": "here is my key " + anthropicKey, "channel": "telegram", "target": 12345},
			"timestamp":  "2026-03-14T09:26:53.589Z",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp HookResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Messages, 1)
		assert.Contains(t, resp.Messages[0], "rules: anthropic_api_key.")

		data, err := os.ReadFile(server.logPath)
		require.NoError(t, err)
		assert.Contains(t, string(data), "**target:** 12345\n")
		assert.Contains(t, string(data), "**session:** agent:main:telegram\n")
	})

	t.Run("unrelated event", func(t *testing.T) {
		server := setupTestServer(t, nil)

		rec := server.do(t, http.MethodPost, "/api/v1/hooks", map[string]any{
			"type":    "message",
			"action":  "received",
			"context": map[string]any{"text": "here is my key " + anthropicKey},
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"messages":[]}`, rec.Body.String())
	})

	t.Run("missing type", func(t *testing.T) {
		server := setupTestServer(t, nil)
		rec := server.do(t, http.MethodPost, "/api/v1/hooks", map[string]any{"action": "sent"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestBearerAuth(t *testing.T) {
	server := setupTestServer(t, &Config{Host: "127.0.0.1", Port: 0, AuthToken: "s3cret-token"})
	body := ScanRequest{Text: "nothing to see here at all"}

	rec := server.do(t, http.MethodPost, "/api/v1/scan", body)
	assert.NotEqual(t, http.StatusOK, rec.Code, "missing key")

	rec = server.do(t, http.MethodPost, "/api/v1/scan", body, echo.HeaderAuthorization, "Bearer wrong")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = server.do(t, http.MethodPost, "/api/v1/scan", body, echo.HeaderAuthorization, "Bearer s3cret-token")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = server.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code, "health is unauthenticated")
}

func TestMetricsEndpoint(t *testing.T) {
	server := setupTestServer(t, nil)

	server.do(t, http.MethodPost, "/api/v1/hooks", map[string]any{
		"type":    "message",
		"action":  "sent",
		"context": map[string]any{"text": "all done, the deploy finished without errors"},
	})

	rec := server.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "outguard_scans_total")
}

func TestServer_StartShutdown(t *testing.T) {
	server := setupTestServer(t, &Config{Host: "127.0.0.1", Port: 0})

	errc := make(chan error, 1)
	go func() { errc <- server.Start() }()

	require.Eventually(t, func() bool { return server.echo.ListenerAddr() != nil },
		5*time.Second, 10*time.Millisecond)
	require.NoError(t, server.Shutdown(context.Background()))
	assert.NoError(t, <-errc)
}
