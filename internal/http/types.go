package http

import (
	"github.com/fyrsmithlabs/outguard/internal/finding"
	"github.com/fyrsmithlabs/outguard/internal/scan"
	"github.com/fyrsmithlabs/outguard/internal/telemetry"
)

// ScanRequest is the request body for POST /api/v1/scan.
type ScanRequest struct {
	Text     string        `json:"text"`
	Metadata scan.Metadata `json:"metadata"`
}

// ScanResponse is the response body for POST /api/v1/scan.
type ScanResponse struct {
	Findings    []finding.Finding `json:"findings"`
	MaxSeverity finding.Severity  `json:"max_severity"`

	// Suppressed is true when the findings would not be reported.
	Suppressed bool `json:"suppressed"`

	// Alert is the in-band alert a live scan would send, if any.
	Alert string `json:"alert,omitempty"`
}

// HookResponse is the response body for POST /api/v1/hooks.
type HookResponse struct {
	Messages []string `json:"messages"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status       string                  `json:"status"`
	Version      string                  `json:"version,omitempty"`
	KnownSecrets int                     `json:"known_secrets"`
	Sources      []SourceStatus          `json:"sources,omitempty"`
	Telemetry    *telemetry.HealthStatus `json:"telemetry,omitempty"`
}

// SourceStatus reports one secret source. Values are never included.
type SourceStatus struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Values int    `json:"values"`
}
