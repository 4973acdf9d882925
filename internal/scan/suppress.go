package scan

import (
	"github.com/fyrsmithlabs/outguard/internal/finding"
)

// ShortMessageThreshold is the message length below which findings of
// Medium severity alone are not reported.
const ShortMessageThreshold = 200

// Suppress reports whether a scan result should be dropped without logging
// or alerting: it has no High or Critical finding and the message is shorter
// than ShortMessageThreshold. Short code snippets often trip the entropy
// detector alone. An empty result is always suppressed.
func Suppress(findings []finding.Finding, textLen int) bool {
	if len(findings) == 0 {
		return true
	}
	if finding.HasAtLeast(findings, finding.SeverityHigh) {
		return false
	}
	return textLen < ShortMessageThreshold
}
