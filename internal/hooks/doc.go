// Package hooks delivers host lifecycle events to registered handlers.
//
// The host emits an Event for each lifecycle step (for example "message:sent"
// after a bot reply is delivered). Handlers are registered by event type
// ("message") or by type and action ("message:sent"). Dispatch never fails:
// handler errors and panics are logged, so a broken handler cannot block
// message delivery.
//
// DLPHandler is the "message:sent" handler that scans outgoing text and
// reports incidents.
package hooks
