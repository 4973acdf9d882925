// Package incident records unsuppressed scan results.
//
// Every incident is appended as a markdown block to the incident log
// (action-log.md in the agent workspace) and, when a Critical or High
// finding is present, an alert line is pushed to the outbox of the message
// event so the human sees it in the same conversation. Log write failures
// never propagate: the message has already been delivered and detection
// must not break the host.
package incident
