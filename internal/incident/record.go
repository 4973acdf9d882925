package incident

import (
	"strconv"
	"strings"
	"time"

	"github.com/fyrsmithlabs/outguard/internal/finding"
	"github.com/fyrsmithlabs/outguard/internal/scan"
)

// TimestampFormat is RFC 3339 with millisecond precision, always UTC.
const TimestampFormat = "2006-01-02T15:04:05.000Z07:00"

const unknown = "unknown"

// Record is one reported incident.
type Record struct {
	ID            string            `json:"id"`
	Timestamp     time.Time         `json:"timestamp"`
	SessionID     string            `json:"session_id"`
	Channel       string            `json:"channel"`
	Target        string            `json:"target"`
	MessageLength int               `json:"message_length"`
	Findings      []finding.Finding `json:"findings"`
	MaxSeverity   finding.Severity  `json:"max_severity"`

	// Alert is the in-band alert text; empty for Medium-only incidents.
	Alert string `json:"alert,omitempty"`
}

// NewRecord builds a record for findings in input. Missing metadata is
// recorded as "unknown".
func NewRecord(id string, at time.Time, findings []finding.Finding, input scan.Input) Record {
	return Record{
		ID:            id,
		Timestamp:     at.UTC(),
		SessionID:     orUnknown(input.Metadata.SessionID),
		Channel:       orUnknown(input.Metadata.Channel),
		Target:        orUnknown(input.Metadata.Target),
		MessageLength: scan.TextLength(input.Text),
		Findings:      findings,
		MaxSeverity:   finding.MaxSeverity(findings),
	}
}

// Markdown renders the record as an incident log block. The block starts
// and ends with a blank line so consecutive blocks stay separated.
func (r Record) Markdown() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("## [DLP-ALERT] " + r.Timestamp.UTC().Format(TimestampFormat) + " — " + r.MaxSeverity.Label() + "\n")
	b.WriteString("\n")
	b.WriteString("**incident:** " + r.ID + "\n")
	b.WriteString("**session:** " + r.SessionID + "\n")
	b.WriteString("**channel:** " + r.Channel + "\n")
	b.WriteString("**target:** " + r.Target + "\n")
	b.WriteString("**message length:** " + strconv.Itoa(r.MessageLength) + "\n")
	b.WriteString("\n")
	b.WriteString("**findings:**\n")
	for _, f := range r.Findings {
		b.WriteString("- " + f.String() + "\n")
	}
	b.WriteString("\n")
	b.WriteString("---\n")
	b.WriteString("\n")
	return b.String()
}

func orUnknown(s string) string {
	if s == "" {
		return unknown
	}
	return s
}
