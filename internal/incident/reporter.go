package incident

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fyrsmithlabs/outguard/internal/finding"
	"github.com/fyrsmithlabs/outguard/internal/logging"
	"github.com/fyrsmithlabs/outguard/internal/scan"
)

// Reporter writes incidents to the log and raises alerts.
type Reporter struct {
	log     *Log
	logger  *logging.Logger
	metrics *Metrics
	tracer  trace.Tracer

	// failureLimiter throttles diagnostics when the log is unwritable, so a
	// broken workspace does not flood stderr with one error per message.
	failureLimiter *rate.Limiter

	now   func() time.Time
	newID func() string
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Reporter) {
		r.now = now
	}
}

// WithIDGenerator overrides incident ID generation.
func WithIDGenerator(fn func() string) Option {
	return func(r *Reporter) {
		r.newID = fn
	}
}

// WithTracer sets the tracer for report spans.
func WithTracer(t trace.Tracer) Option {
	return func(r *Reporter) {
		r.tracer = t
	}
}

// WithFailureLogRate sets how often log write failures are reported at
// error level. Failures are always counted.
func WithFailureLogRate(every time.Duration, burst int) Option {
	return func(r *Reporter) {
		r.failureLimiter = rate.NewLimiter(rate.Every(every), burst)
	}
}

// NewReporter creates a reporter appending to log.
func NewReporter(log *Log, logger *logging.Logger, opts ...Option) *Reporter {
	if logger == nil {
		logger = logging.NewNop()
	}
	r := &Reporter{
		log:            log,
		logger:         logger.Named("incident"),
		metrics:        NewMetrics(),
		tracer:         otel.Tracer("outguard.incident"),
		failureLimiter: rate.NewLimiter(rate.Every(time.Minute), 3),
		now:            time.Now,
		newID:          uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Report records an incident for findings and, for Critical or High
// findings, pushes an alert to outbox. A nil outbox skips the alert.
// Report never fails: log write errors are logged and counted.
func (r *Reporter) Report(ctx context.Context, findings []finding.Finding, input scan.Input, outbox Outbox) Record {
	rec := NewRecord(r.newID(), r.now(), findings, input)

	ctx = logging.WithIncidentID(ctx, rec.ID)
	ctx, span := r.tracer.Start(ctx, "outguard.incident.report", trace.WithAttributes(
		attribute.String("incident.id", rec.ID),
		attribute.String("severity.max", rec.MaxSeverity.String()),
		attribute.Int("findings", len(findings)),
	))
	defer span.End()

	sev := rec.MaxSeverity.String()
	r.metrics.IncidentsTotal.WithLabelValues(sev).Inc()
	for _, f := range findings {
		r.metrics.FindingsTotal.WithLabelValues(f.Rule).Inc()
	}

	if r.log != nil {
		if err := r.log.Append(rec); err != nil {
			r.metrics.LogWriteFailuresTotal.Inc()
			span.RecordError(err)
			if r.failureLimiter.Allow() {
				r.logger.Error(ctx, "failed to write incident log",
					zap.String("path", r.log.Path()),
					zap.Error(err))
			}
		}
	}

	if msg, ok := AlertMessage(findings); ok {
		rec.Alert = msg
		if outbox != nil {
			outbox.Push(msg)
			r.metrics.AlertsTotal.WithLabelValues(sev).Inc()
		}
	}
	span.SetAttributes(attribute.Bool("alerted", rec.Alert != ""))

	r.logger.Warn(ctx, "dlp incident",
		zap.String("severity", sev),
		zap.Strings("rules", finding.RuleNames(findings)),
		zap.Int("message_length", rec.MessageLength),
		zap.Bool("alerted", rec.Alert != ""))

	return rec
}
