// Package logging provides structured diagnostic logging for outguard.
//
// Logger wraps Zap with context-aware methods. Correlation data stored in the
// context (trace ids, session key, channel, incident id, request id) is added
// to every entry automatically:
//
//	ctx = logging.WithSessionID(ctx, "agent:main:telegram:42")
//	ctx = logging.WithIncidentID(ctx, id)
//	logger.Info(ctx, "incident recorded", zap.String("severity", "critical"))
//
// Diagnostic logs must never carry secret material. The encoder redacts
// sensitive field names (token, secret, text, ...) and values matching
// credential patterns before they reach stdout; callers log previews, never
// raw message text.
//
// Sampling is level-aware: errors are never sampled.
//
// Use TestLogger in tests to assert on emitted entries.
package logging
