package signatures

import (
	"fmt"
	"sort"

	gitleaksConfig "github.com/zricethezav/gitleaks/v8/config"
	"github.com/zricethezav/gitleaks/v8/detect"

	"github.com/fyrsmithlabs/outguard/internal/finding"
)

// GitleaksPrefix is prepended to gitleaks rule IDs in finding names.
const GitleaksPrefix = "gitleaks:"

// coveredGitleaksRules are gitleaks rules whose formats the built-in table
// already reports; they are skipped to avoid duplicate findings.
var coveredGitleaksRules = map[string]struct{}{
	"anthropic-api-key":       {},
	"anthropic-admin-api-key": {},
	"openai-api-key":          {},
	"gcp-api-key":             {},
	"github-pat":              {},
	"github-fine-grained-pat": {},
	"github-app-token":        {},
	"telegram-bot-api-token":  {},
	"jwt":                     {},
	"private-key":             {},
}

// GitleaksDetector reports matches from the gitleaks default ruleset that
// the built-in table does not cover. Each gitleaks rule contributes at most
// one match per text, reported with High severity.
type GitleaksDetector struct {
	config gitleaksConfig.Config
}

// NewGitleaksDetector loads the gitleaks default configuration once.
func NewGitleaksDetector() (*GitleaksDetector, error) {
	d, err := detect.NewDetectorDefaultConfig()
	if err != nil {
		return nil, fmt.Errorf("loading gitleaks default config: %w", err)
	}
	return &GitleaksDetector{config: d.Config}, nil
}

// Detect scans text with a fresh detector so no findings accumulate
// between calls.
func (g *GitleaksDetector) Detect(text string) []Match {
	detector := detect.NewDetector(g.config)
	results := detector.DetectString(text)

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].StartLine != results[j].StartLine {
			return results[i].StartLine < results[j].StartLine
		}
		return results[i].StartColumn < results[j].StartColumn
	})

	seen := make(map[string]struct{})
	var matches []Match
	for _, r := range results {
		if _, covered := coveredGitleaksRules[r.RuleID]; covered {
			continue
		}
		if _, dup := seen[r.RuleID]; dup {
			continue
		}
		seen[r.RuleID] = struct{}{}

		value := r.Secret
		if value == "" {
			value = r.Match
		}
		matches = append(matches, Match{
			Name:     GitleaksPrefix + r.RuleID,
			Severity: finding.SeverityHigh,
			Value:    value,
		})
	}
	return matches
}
