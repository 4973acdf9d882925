package secrets

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceUnavailable indicates a source could not be read (missing or no permission).
	ErrSourceUnavailable = errors.New("secret source unavailable")

	// ErrSourceMalformed indicates a source was readable but could not be parsed.
	ErrSourceMalformed = errors.New("secret source malformed")
)

// Status is the outcome of loading one source.
type Status int

const (
	// StatusLoaded means the source was read and parsed (possibly yielding no values).
	StatusLoaded Status = iota

	// StatusUnavailable means the source does not exist or cannot be read.
	StatusUnavailable

	// StatusMalformed means the source was read but could not be parsed.
	StatusMalformed
)

func (s Status) String() string {
	switch s {
	case StatusLoaded:
		return "loaded"
	case StatusUnavailable:
		return "unavailable"
	case StatusMalformed:
		return "malformed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// SourceResult describes what a single source contributed.
type SourceResult struct {
	// Source is the source name (usually its path).
	Source string

	// Status is the load outcome.
	Status Status

	// Values are the candidate secrets read, before length filtering and dedupe.
	Values []string

	// Err wraps ErrSourceUnavailable or ErrSourceMalformed for non-loaded outcomes.
	Err error
}

// Loaded reports whether the source was read successfully.
func (r SourceResult) Loaded() bool {
	return r.Status == StatusLoaded
}

// Source yields candidate secret values.
type Source interface {
	// Name identifies the source in results and logs.
	Name() string

	// Load reads the source. It never fails; problems are reported in the result.
	Load() SourceResult
}

func unavailable(name string, err error) SourceResult {
	return SourceResult{
		Source: name,
		Status: StatusUnavailable,
		Err:    fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, name, err),
	}
}

func malformed(name string, err error) SourceResult {
	return SourceResult{
		Source: name,
		Status: StatusMalformed,
		Err:    fmt.Errorf("%w: %s: %v", ErrSourceMalformed, name, err),
	}
}
