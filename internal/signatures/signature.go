package signatures

import (
	"fmt"
	"regexp"

	"github.com/fyrsmithlabs/outguard/internal/finding"
)

// Signature is a named pattern for a known secret format.
type Signature struct {
	// Name identifies the signature in findings (e.g. "github_token").
	Name string

	// Description explains what the signature detects.
	Description string

	// Severity is assigned to every finding this signature produces.
	Severity finding.Severity

	pattern *regexp.Regexp
}

// New compiles a signature.
func New(name, description, pattern string, severity finding.Severity) (Signature, error) {
	if name == "" {
		return Signature{}, fmt.Errorf("signature name is required")
	}
	if pattern == "" {
		return Signature{}, fmt.Errorf("signature %s: pattern is required", name)
	}
	if severity == finding.SeverityNone {
		return Signature{}, fmt.Errorf("signature %s: severity is required", name)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Signature{}, fmt.Errorf("signature %s: invalid pattern: %w", name, err)
	}
	return Signature{
		Name:        name,
		Description: description,
		Severity:    severity,
		pattern:     re,
	}, nil
}

// MustNew is like New but panics on error.
func MustNew(name, description, pattern string, severity finding.Severity) Signature {
	s, err := New(name, description, pattern, severity)
	if err != nil {
		panic(err)
	}
	return s
}

// FirstMatch returns the leftmost match of the signature in text.
func (s Signature) FirstMatch(text string) (string, bool) {
	if s.pattern == nil {
		return "", false
	}
	loc := s.pattern.FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	return text[loc[0]:loc[1]], true
}

// Pattern returns the source of the signature's pattern.
func (s Signature) Pattern() string {
	if s.pattern == nil {
		return ""
	}
	return s.pattern.String()
}

// Match is a signature hit: the rule that fired and the matched value.
type Match struct {
	Name     string
	Severity finding.Severity
	Value    string
}

// Finding converts the match into a finding with a redacted preview.
func (m Match) Finding() finding.Finding {
	return finding.Finding{
		Rule:     m.Name,
		Severity: m.Severity,
		Preview:  finding.MatchPreview(m.Value),
	}
}

// MatchAll evaluates each signature once against text, in table order.
func MatchAll(sigs []Signature, text string) []Match {
	var matches []Match
	for _, s := range sigs {
		if value, ok := s.FirstMatch(text); ok {
			matches = append(matches, Match{Name: s.Name, Severity: s.Severity, Value: value})
		}
	}
	return matches
}
