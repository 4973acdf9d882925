// Package secrets loads the set of currently valid secret values that
// outgoing messages are matched against.
//
// Sources are best-effort: a missing, unreadable or malformed source is a
// normal outcome (access may be deliberately blocked by sandboxing) and is
// reported as a SourceResult status rather than an error. A Store is
// immutable once built; Holder swaps in a rebuilt Store on Refresh, which is
// the only way the working set changes.
package secrets
