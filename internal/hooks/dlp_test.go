package hooks

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/outguard/internal/incident"
	"github.com/fyrsmithlabs/outguard/internal/logging"
	"github.com/fyrsmithlabs/outguard/internal/scan"
	"github.com/fyrsmithlabs/outguard/internal/secrets"
)

const (
	anthropicKey = "sk-ant-REDACTED"
	mixedToken   = "Xk9mP2vR7tL4wQ8nB5cJ1hF6gD3sA0zYeUiOoTrQ"
	knownSecret  = "telegram-bot-secret-value-1234567"
)

type pipeline struct {
	manager *Manager
	logPath string
	logger  *logging.TestLogger
}

func newPipeline(t *testing.T, store scan.StoreProvider) *pipeline {
	t.Helper()
	logger := logging.NewTestLogger()
	logPath := filepath.Join(t.TempDir(), "clawd", "action-log.md")

	m := NewManager(logger.Logger)
	NewDLPHandler(
		scan.New(store, scan.WithLogger(logger.Logger)),
		incident.NewReporter(incident.NewLog(logPath), logger.Logger),
		logger.Logger,
	).Register(m)

	return &pipeline{manager: m, logPath: logPath, logger: logger}
}

func (p *pipeline) logContents(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(p.logPath)
	if os.IsNotExist(err) {
		return ""
	}
	require.NoError(t, err)
	return string(data)
}

func TestDLPHandler_EndToEnd(t *testing.T) {
	p := newPipeline(t, nil)
	event := sentEvent("here is my key " + anthropicKey)

	p.manager.Dispatch(context.Background(), event)

	require.Len(t, event.Messages, 1)
	assert.True(t, strings.HasPrefix(event.Messages[0], "⚠️ [DLP ALERT — CRITICAL]"))
	assert.Contains(t, event.Messages[0], "rules: anthropic_api_key.")

	log := p.logContents(t)
	assert.Equal(t, 1, strings.Count(log, "## [DLP-ALERT]"))
	assert.Contains(t, log, "— CRITICAL\n")
	assert.Contains(t, log, "- `anthropic_api_key` [critical]: sk-ant-a...7890\n")
	assert.Contains(t, log, "**session:** agent:main:telegram\n")
	assert.Contains(t, log, "**channel:** telegram\n")
	assert.Contains(t, log, "**target:** unknown\n")
	assert.NotContains(t, log, anthropicKey)

	p.logger.AssertNeverContains(t, anthropicKey)
}

func TestDLPHandler_KnownSecret(t *testing.T) {
	p := newPipeline(t, secrets.NewStore(knownSecret))
	event := sentEvent("the bot token is " + knownSecret)

	p.manager.Dispatch(context.Background(), event)

	require.Len(t, event.Messages, 1)
	assert.Contains(t, event.Messages[0], "known_secret_exact")
	assert.Contains(t, p.logContents(t), "[critical]: telegr...4567 (len=33)")
	assert.NotContains(t, p.logContents(t), knownSecret)
}

func TestDLPHandler_ShortMediumSuppressed(t *testing.T) {
	p := newPipeline(t, nil)
	text := "config: " + mixedToken + strings.Repeat(".", 150-8-len(mixedToken))
	event := sentEvent(text)

	suppressed := NewMetrics().ScansTotal.WithLabelValues(OutcomeSuppressed)
	before := testutil.ToFloat64(suppressed)

	p.manager.Dispatch(context.Background(), event)

	assert.Empty(t, event.Messages)
	assert.Empty(t, p.logContents(t))
	assert.Equal(t, before+1, testutil.ToFloat64(suppressed))
}

func TestDLPHandler_LongMediumLoggedNotAlerted(t *testing.T) {
	p := newPipeline(t, nil)
	text := "config: " + mixedToken + strings.Repeat(".", 250-8-len(mixedToken))
	event := sentEvent(text)

	p.manager.Dispatch(context.Background(), event)

	assert.Empty(t, event.Messages)
	log := p.logContents(t)
	assert.Contains(t, log, "— MEDIUM\n")
	assert.Contains(t, log, "**message length:** 250\n")
}

func TestDLPHandler_CyrillicMessageLength(t *testing.T) {
	t.Run("143 characters suppressed", func(t *testing.T) {
		p := newPipeline(t, nil)
		event := sentEvent("вот токен " + mixedToken + strings.Repeat("п", 93))

		p.manager.Dispatch(context.Background(), event)

		assert.Empty(t, event.Messages)
		assert.Empty(t, p.logContents(t))
	})

	t.Run("210 characters logged", func(t *testing.T) {
		p := newPipeline(t, nil)
		event := sentEvent("вот токен " + mixedToken + strings.Repeat("п", 160))

		p.manager.Dispatch(context.Background(), event)

		assert.Empty(t, event.Messages)
		log := p.logContents(t)
		assert.Contains(t, log, "— MEDIUM\n")
		assert.Contains(t, log, "**message length:** 210\n")
	})
}

func TestDLPHandler_MediumAndCritical(t *testing.T) {
	p := newPipeline(t, nil)
	event := sentEvent("key " + anthropicKey + " and " + mixedToken)

	p.manager.Dispatch(context.Background(), event)

	require.Len(t, event.Messages, 1)
	assert.Contains(t, event.Messages[0], "CRITICAL")
	assert.Contains(t, event.Messages[0], "rules: anthropic_api_key, high_entropy_string.")
}

func TestDLPHandler_IgnoresOtherEvents(t *testing.T) {
	p := newPipeline(t, nil)
	h := NewDLPHandler(scan.New(nil), incident.NewReporter(incident.NewLog(p.logPath), nil), nil)

	received := sentEvent("here is my key " + anthropicKey)
	received.Action = "received"
	require.NoError(t, h.Handle(context.Background(), received))

	empty := sentEvent("")
	require.NoError(t, h.Handle(context.Background(), empty))

	assert.Empty(t, received.Messages)
	assert.Empty(t, empty.Messages)
	assert.Empty(t, p.logContents(t))
}

func TestDLPHandler_CleanMessage(t *testing.T) {
	p := newPipeline(t, nil)
	event := sentEvent("all done, the deploy finished without errors")

	clean := NewMetrics().ScansTotal.WithLabelValues(OutcomeClean)
	before := testutil.ToFloat64(clean)

	p.manager.Dispatch(context.Background(), event)

	assert.Empty(t, event.Messages)
	assert.Empty(t, p.logContents(t))
	assert.Equal(t, before+1, testutil.ToFloat64(clean))
}
