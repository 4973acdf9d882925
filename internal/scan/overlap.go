package scan

import (
	"strings"

	"github.com/fyrsmithlabs/outguard/internal/finding"
)

// OverlapRule decides whether an entropy hit is already covered by an
// earlier finding and should not be reported again.
type OverlapRule interface {
	Overlaps(hit string, prior []finding.Finding) bool
}

// OverlapFunc adapts a function to OverlapRule.
type OverlapFunc func(hit string, prior []finding.Finding) bool

// Overlaps calls f.
func (f OverlapFunc) Overlaps(hit string, prior []finding.Finding) bool {
	return f(hit, prior)
}

// PreviewPrefixOverlap reports an overlap when the hit contains the visible
// head of any prior preview: the text before its first ellipsis, or the
// whole preview when it has none.
var PreviewPrefixOverlap OverlapRule = OverlapFunc(func(hit string, prior []finding.Finding) bool {
	for _, f := range prior {
		if prefix := PreviewPrefix(f.Preview); prefix != "" && strings.Contains(hit, prefix) {
			return true
		}
	}
	return false
})

// PreviewPrefix returns the part of a preview before the first ellipsis.
func PreviewPrefix(preview string) string {
	head, _, _ := strings.Cut(preview, finding.Ellipsis)
	return head
}
