package incident

import (
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/outguard/internal/finding"
)

// Outbox receives alert messages for the conversation the scanned message
// was sent in.
type Outbox interface {
	Push(message string)
}

// OutboxFunc adapts a function to Outbox.
type OutboxFunc func(message string)

// Push calls f.
func (f OutboxFunc) Push(message string) {
	f(message)
}

// AlertMessage returns the in-band alert for findings. Only Critical and
// High incidents are alerted; ok is false otherwise.
func AlertMessage(findings []finding.Finding) (msg string, ok bool) {
	sev := finding.MaxSeverity(findings)
	if !sev.AtLeast(finding.SeverityHigh) {
		return "", false
	}
	rules := strings.Join(finding.RuleNames(findings), ", ")
	return fmt.Sprintf("⚠️ [DLP ALERT — %s] potential secret detected in previous message. "+
		"rules: %s. check action-log.md. consider revoking exposed credentials.",
		sev.Label(), rules), true
}
