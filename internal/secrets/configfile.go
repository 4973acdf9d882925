package secrets

import (
	"os"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigKeys are the credential fields read from the host's JSON config.
var DefaultConfigKeys = []string{
	"channels.telegram.botToken",
	"gateway.auth.token",
}

// ConfigFileSource reads credential fields from a JSON configuration document.
type ConfigFileSource struct {
	Path string

	// Keys are dotted paths to string fields. Nil means DefaultConfigKeys.
	Keys []string
}

// Name returns the file path.
func (s ConfigFileSource) Name() string {
	return s.Path
}

// scalarString renders a decoded JSON scalar. Numbers keep their integer
// form so numeric tokens match the text they leak into.
func scalarString(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// Load reads every configured key that holds a non-empty string or number.
func (s ConfigFileSource) Load() SourceResult {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return unavailable(s.Path, err)
	}

	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(data), json.Parser()); err != nil {
		return malformed(s.Path, err)
	}

	keys := s.Keys
	if keys == nil {
		keys = DefaultConfigKeys
	}

	result := SourceResult{Source: s.Path, Status: StatusLoaded}
	for _, key := range keys {
		if v := strings.TrimSpace(scalarString(k.Get(key))); v != "" {
			result.Values = append(result.Values, v)
		}
	}
	return result
}
