// Package entropy flags long token-like strings whose character distribution
// looks random enough to be an unknown secret.
package entropy

import (
	"math"
	"regexp"
)

const (
	// MinCandidateLength is the shortest token run considered.
	MinCandidateLength = 32

	// Threshold is the Shannon entropy (bits/char) a candidate must exceed.
	Threshold = 4.0

	// MinCharClasses is how many of {upper, lower, digit} a candidate must mix.
	MinCharClasses = 2
)

// candidatePattern matches maximal runs of the token alphabet.
var candidatePattern = regexp.MustCompile(`[A-Za-z0-9_/+=-]{32,}`)

// Hit is a flagged candidate and its measured entropy.
type Hit struct {
	Value   string
	Entropy float64
}

// Shannon returns the Shannon entropy of s in bits per character,
// computed over its byte frequency distribution.
func Shannon(s string) float64 {
	if s == "" {
		return 0
	}
	var freq [256]int
	for i := 0; i < len(s); i++ {
		freq[s[i]]++
	}
	n := float64(len(s))
	var h float64
	for _, count := range freq {
		if count == 0 {
			continue
		}
		p := float64(count) / n
		h -= p * math.Log2(p)
	}
	return h
}

// CharClasses counts how many of upper-case, lower-case and digit
// characters appear in s.
func CharClasses(s string) int {
	var upper, lower, digit bool
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= 'A' && c <= 'Z':
			upper = true
		case c >= 'a' && c <= 'z':
			lower = true
		case c >= '0' && c <= '9':
			digit = true
		}
	}
	classes := 0
	for _, present := range []bool{upper, lower, digit} {
		if present {
			classes++
		}
	}
	return classes
}

// Candidates returns every maximal token run of MinCandidateLength or more
// characters, in order of appearance.
func Candidates(text string) []string {
	return candidatePattern.FindAllString(text, -1)
}

// IsSuspicious applies the two-part gate: entropy above Threshold and at
// least MinCharClasses character classes.
func IsSuspicious(candidate string) (float64, bool) {
	h := Shannon(candidate)
	if h <= Threshold {
		return h, false
	}
	return h, CharClasses(candidate) >= MinCharClasses
}

// Detect returns the candidates in text that pass the gate, preserving
// discovery order.
func Detect(text string) []Hit {
	var hits []Hit
	for _, candidate := range Candidates(text) {
		if h, ok := IsSuspicious(candidate); ok {
			hits = append(hits, Hit{Value: candidate, Entropy: h})
		}
	}
	return hits
}
