package logging

import (
	"context"
	"regexp"
	"unicode/utf8"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ContextFields extracts correlation data from context.
func ContextFields(ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0, 8)

	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		sc := span.SpanContext()
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
		if sc.IsSampled() {
			fields = append(fields, zap.Bool("trace_sampled", true))
		}
	}

	if v := SessionIDFromContext(ctx); v != "" {
		fields = append(fields, zap.String("session.id", v))
	}
	if v := ChannelFromContext(ctx); v != "" {
		fields = append(fields, zap.String("channel", v))
	}
	if v := IncidentIDFromContext(ctx); v != "" {
		fields = append(fields, zap.String("incident.id", v))
	}
	if v := RequestIDFromContext(ctx); v != "" {
		fields = append(fields, zap.String("request.id", v))
	}

	return fields
}

type (
	sessionCtxKey  struct{}
	channelCtxKey  struct{}
	incidentCtxKey struct{}
	requestCtxKey  struct{}
	loggerCtxKey   struct{}
)

const maxIDLen = 128

// idPattern covers session keys such as "agent:main:telegram:12345".
var idPattern = regexp.MustCompile(`^[a-zA-Z0-9_.:@/-]+$`)

func validID(id string) bool {
	return id != "" && len(id) <= maxIDLen && utf8.ValidString(id) && idPattern.MatchString(id)
}

// withID stores id under key. Identifiers arrive from hook payloads, so an
// invalid one is dropped rather than failing the caller.
func withID(ctx context.Context, key any, id string) context.Context {
	if !validID(id) {
		return ctx
	}
	return context.WithValue(ctx, key, id)
}

func idFromContext(ctx context.Context, key any) string {
	if s, ok := ctx.Value(key).(string); ok {
		return s
	}
	return ""
}

// WithSessionID adds the conversation session key to context.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return withID(ctx, sessionCtxKey{}, sessionID)
}

// SessionIDFromContext extracts the session key from context.
func SessionIDFromContext(ctx context.Context) string {
	return idFromContext(ctx, sessionCtxKey{})
}

// WithChannel adds the delivery channel (telegram, slack, ...) to context.
func WithChannel(ctx context.Context, channel string) context.Context {
	return withID(ctx, channelCtxKey{}, channel)
}

// ChannelFromContext extracts the channel from context.
func ChannelFromContext(ctx context.Context) string {
	return idFromContext(ctx, channelCtxKey{})
}

// WithIncidentID adds an incident id to context.
func WithIncidentID(ctx context.Context, incidentID string) context.Context {
	return withID(ctx, incidentCtxKey{}, incidentID)
}

// IncidentIDFromContext extracts the incident id from context.
func IncidentIDFromContext(ctx context.Context) string {
	return idFromContext(ctx, incidentCtxKey{})
}

// WithRequestID adds an HTTP request id to context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return withID(ctx, requestCtxKey{}, requestID)
}

// RequestIDFromContext extracts the request id from context.
func RequestIDFromContext(ctx context.Context) string {
	return idFromContext(ctx, requestCtxKey{})
}

// WithLogger stores logger in context.
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey{}, logger)
}

// FromContext retrieves logger from context, or a nop logger if none is set.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(loggerCtxKey{}).(*Logger); ok {
		return l
	}
	return NewNop()
}
