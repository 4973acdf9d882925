package secrets

import (
	"bufio"
	"bytes"
	"os"
	"regexp"
)

// envLine matches KEY=value where the key is upper-case letters and underscores.
var envLine = regexp.MustCompile(`^[A-Z_]+=(.+)`)

// minEnvValueLength is the raw value length an env entry must exceed to be collected.
const minEnvValueLength = 8

// EnvFileSource reads values from a KEY=value environment file.
type EnvFileSource struct {
	Path string
}

// Name returns the file path.
func (s EnvFileSource) Name() string {
	return s.Path
}

// Load collects every value longer than 8 characters, with one pair of
// surrounding quotes stripped.
func (s EnvFileSource) Load() SourceResult {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return unavailable(s.Path, err)
	}

	result := SourceResult{Source: s.Path, Status: StatusLoaded}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		m := envLine.FindStringSubmatch(scanner.Text())
		if m == nil || len(m[1]) <= minEnvValueLength {
			continue
		}
		result.Values = append(result.Values, stripQuotes(m[1]))
	}
	if err := scanner.Err(); err != nil {
		return malformed(s.Path, err)
	}
	return result
}

// stripQuotes removes one leading and one trailing quote character, independently.
func stripQuotes(v string) string {
	if len(v) > 0 && (v[0] == '"' || v[0] == '\'') {
		v = v[1:]
	}
	if len(v) > 0 && (v[len(v)-1] == '"' || v[len(v)-1] == '\'') {
		v = v[:len(v)-1]
	}
	return v
}
