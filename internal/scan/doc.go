// Package scan runs every detector over an outgoing message and merges the
// results into one ordered finding list.
//
// Findings are produced in three groups: known-secret matches first, then
// signature matches (the built-in table followed by any extended detector),
// then high-entropy strings. An entropy hit that overlaps an earlier
// finding is dropped by OverlapRule. A Scanner holds no per-call state and
// is safe for concurrent use.
//
// Whether a result is worth reporting is decided by the caller with
// Suppress.
package scan
