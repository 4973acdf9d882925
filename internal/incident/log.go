package incident

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Log appends incident blocks to a markdown file.
//
// Each block is written with a single Write on a file opened with O_APPEND,
// and writers within the process are serialized, so concurrent incidents
// never interleave.
type Log struct {
	path string
	mu   sync.Mutex
}

// NewLog returns a log writing to path. The file and its parent
// directories are created on first append.
func NewLog(path string) *Log {
	return &Log{path: path}
}

// Path returns the log file path.
func (l *Log) Path() string {
	return l.path
}

// Append writes one record.
func (l *Log) Append(r Record) error {
	block := []byte(r.Markdown())

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("creating incident log directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("opening incident log: %w", err)
	}

	if _, err := f.Write(block); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing incident log: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing incident log: %w", err)
	}
	return nil
}
