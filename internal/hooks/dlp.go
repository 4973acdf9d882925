package hooks

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/outguard/internal/finding"
	"github.com/fyrsmithlabs/outguard/internal/incident"
	"github.com/fyrsmithlabs/outguard/internal/logging"
	"github.com/fyrsmithlabs/outguard/internal/scan"
)

// Scanner finds suspected secrets in text.
type Scanner interface {
	ScanContext(ctx context.Context, text string) []finding.Finding
}

// Reporter records an incident and raises its alert.
type Reporter interface {
	Report(ctx context.Context, findings []finding.Finding, input scan.Input, outbox incident.Outbox) incident.Record
}

// DLPHandler scans delivered messages and reports unsuppressed findings.
type DLPHandler struct {
	scanner  Scanner
	reporter Reporter
	metrics  *Metrics
	logger   *logging.Logger
}

// NewDLPHandler creates the message:sent handler.
func NewDLPHandler(scanner Scanner, reporter Reporter, logger *logging.Logger) *DLPHandler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &DLPHandler{
		scanner:  scanner,
		reporter: reporter,
		metrics:  NewMetrics(),
		logger:   logger.Named("dlp"),
	}
}

// Register adds the handler to m under "message:sent".
func (h *DLPHandler) Register(m *Manager) {
	m.Register(KeyMessageSent, h.Handle)
}

// Handle scans a message:sent event. Other events and empty text are
// ignored. It never returns an error.
func (h *DLPHandler) Handle(ctx context.Context, event *Event) error {
	if event.Type != TypeMessage || event.Action != ActionSent {
		return nil
	}
	input := event.Input()
	if input.Text == "" {
		return nil
	}

	start := time.Now()
	findings := h.scanner.ScanContext(ctx, input.Text)
	h.metrics.ScanDuration.Observe(time.Since(start).Seconds())

	for _, f := range findings {
		h.metrics.FindingsTotal.WithLabelValues(f.Severity.String()).Inc()
	}

	switch {
	case len(findings) == 0:
		h.metrics.ScansTotal.WithLabelValues(OutcomeClean).Inc()
		return nil
	case scan.Suppress(findings, scan.TextLength(input.Text)):
		h.metrics.ScansTotal.WithLabelValues(OutcomeSuppressed).Inc()
		h.logger.Debug(ctx, "findings suppressed for short message",
			zap.Int("findings", len(findings)),
			zap.Int("message_length", scan.TextLength(input.Text)))
		return nil
	}

	h.metrics.ScansTotal.WithLabelValues(OutcomeIncident).Inc()
	h.reporter.Report(ctx, findings, input, event)
	return nil
}
