package scan

import "unicode/utf8"

// Metadata describes where a scanned message was sent.
// Empty fields are reported as unknown.
type Metadata struct {
	SessionID string `json:"session_id,omitempty"`
	Channel   string `json:"channel,omitempty"`
	Target    string `json:"target,omitempty"`
}

// Input is a message submitted for scanning.
type Input struct {
	Text     string   `json:"text"`
	Metadata Metadata `json:"metadata"`
}

// TextLength returns the length of text in characters. Every length
// threshold and recorded message length uses it rather than byte counts.
func TextLength(text string) int {
	return utf8.RuneCountInString(text)
}
