package finding

import (
	"fmt"
	"unicode/utf8"
)

// Ellipsis separates the visible head and tail of a redacted preview.
const Ellipsis = "..."

// maxVerbatimPreview is the longest match shown without truncation.
const maxVerbatimPreview = 16

// MatchPreview redacts a pattern match: values up to 16 characters are
// shown as-is, longer ones as first 8 + "..." + last 4.
func MatchPreview(match string) string {
	if utf8.RuneCountInString(match) <= maxVerbatimPreview {
		return match
	}
	return headTail(match, 8, 4)
}

// SecretPreview redacts a known secret as first 6 + "..." + last 4 and its
// length. Secrets of 10 characters or fewer are not shown at all.
func SecretPreview(secret string) string {
	n := utf8.RuneCountInString(secret)
	if n <= 10 {
		return fmt.Sprintf("[REDACTED] (len=%d)", n)
	}
	return fmt.Sprintf("%s (len=%d)", headTail(secret, 6, 4), n)
}

// PartialPreview describes a partial known-secret match without any of its content.
func PartialPreview(secretLen int) string {
	return fmt.Sprintf("partial match (len=%d)", secretLen)
}

// EntropyPreview redacts a high-entropy token and annotates it with its
// length and entropy rounded to one decimal.
func EntropyPreview(token string, entropy float64) string {
	n := utf8.RuneCountInString(token)
	if n < 12 {
		return fmt.Sprintf("[REDACTED] (len=%d, entropy=%.1f)", n, entropy)
	}
	return fmt.Sprintf("%s (len=%d, entropy=%.1f)", headTail(token, 8, 4), n, entropy)
}

// headTail keeps the first head and last tail characters of s around an
// Ellipsis. Cuts fall on rune boundaries; callers ensure s is longer than
// head+tail characters.
func headTail(s string, head, tail int) string {
	r := []rune(s)
	return string(r[:head]) + Ellipsis + string(r[len(r)-tail:])
}
