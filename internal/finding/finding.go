// Package finding defines the detection results shared by every outguard
// detector: severities, findings, and the redacted previews they carry.
package finding

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Severity ranks how urgently a finding needs human attention.
// Values are ordered so that a larger value is more severe.
type Severity int

const (
	// SeverityNone is the aggregate of an empty finding set.
	SeverityNone Severity = iota

	// SeverityMedium marks statistical or low-confidence matches.
	SeverityMedium

	// SeverityHigh marks strong but not conclusive matches.
	SeverityHigh

	// SeverityCritical marks known secrets and self-identifying credentials.
	SeverityCritical
)

// String returns the lower-case name used in log lines and JSON.
func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityHigh:
		return "high"
	case SeverityMedium:
		return "medium"
	default:
		return "none"
	}
}

// Label returns the upper-case name used in incident headers and alerts.
func (s Severity) Label() string {
	return strings.ToUpper(s.String())
}

// AtLeast reports whether s is as severe as other.
func (s Severity) AtLeast(other Severity) bool {
	return s >= other
}

// ParseSeverity parses a case-insensitive severity name.
func ParseSeverity(name string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "critical":
		return SeverityCritical, nil
	case "high":
		return SeverityHigh, nil
	case "medium":
		return SeverityMedium, nil
	default:
		return SeverityNone, fmt.Errorf("unknown severity %q", name)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Finding is one suspected secret detected in a message.
// Preview is always redacted; the matched value itself is never stored.
type Finding struct {
	Rule     string   `json:"rule"`
	Severity Severity `json:"severity"`
	Preview  string   `json:"preview"`
}

// String renders the finding as it appears in the incident log.
func (f Finding) String() string {
	return fmt.Sprintf("`%s` [%s]: %s", f.Rule, f.Severity, f.Preview)
}

// MaxSeverity returns the highest severity in findings, or SeverityNone.
func MaxSeverity(findings []Finding) Severity {
	highest := SeverityNone
	for _, f := range findings {
		if f.Severity > highest {
			highest = f.Severity
		}
	}
	return highest
}

// HasAtLeast reports whether any finding is at least min severe.
func HasAtLeast(findings []Finding, min Severity) bool {
	return MaxSeverity(findings).AtLeast(min)
}

// RuleNames returns the rule names of findings in order, duplicates kept.
func RuleNames(findings []Finding) []string {
	names := make([]string, 0, len(findings))
	for _, f := range findings {
		names = append(names, f.Rule)
	}
	return names
}

// JSON returns findings as a compact JSON array.
func JSON(findings []Finding) string {
	data, err := json.Marshal(findings)
	if err != nil {
		return "[]"
	}
	return string(data)
}
