package secrets

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/outguard/internal/logging"
)

// ErrWatcherFailed indicates the filesystem watcher failed to initialize.
var ErrWatcherFailed = errors.New("failed to initialize filesystem watcher")

// DefaultDebounce is how long the watcher waits for writes to settle.
const DefaultDebounce = 250 * time.Millisecond

// Watcher refreshes a Holder when one of its source files changes.
// Parent directories are watched so that files created, replaced or
// removed after startup are noticed.
type Watcher struct {
	holder   *Holder
	logger   *logging.Logger
	debounce time.Duration
	watcher  *fsnotify.Watcher
	paths    map[string]struct{}

	refreshed chan []SourceResult

	mu    sync.Mutex
	timer *time.Timer
	stop  chan struct{}
	once  sync.Once
}

// NewWatcher creates a watcher for the holder's sources.
// A zero debounce uses DefaultDebounce.
func NewWatcher(holder *Holder, logger *logging.Logger, debounce time.Duration) (*Watcher, error) {
	if holder == nil {
		return nil, fmt.Errorf("holder cannot be nil")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWatcherFailed, err)
	}

	paths := make(map[string]struct{})
	for _, src := range holder.Sources() {
		abs, err := filepath.Abs(src.Name())
		if err != nil {
			continue
		}
		paths[abs] = struct{}{}
	}

	return &Watcher{
		holder:    holder,
		logger:    logger.Named("secrets.watch"),
		debounce:  debounce,
		watcher:   fw,
		paths:     paths,
		refreshed: make(chan []SourceResult, 1),
		stop:      make(chan struct{}),
	}, nil
}

// Start begins watching. Directories that do not exist are skipped.
// Processing runs in a background goroutine until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	dirs := make(map[string]struct{})
	for p := range w.paths {
		dirs[filepath.Dir(p)] = struct{}{}
	}

	watched := 0
	for dir := range dirs {
		if err := w.watcher.Add(dir); err != nil {
			w.logger.Debug(ctx, "secret source directory not watchable",
				zap.String("dir", dir), zap.Error(err))
			continue
		}
		watched++
	}
	if watched == 0 {
		return fmt.Errorf("no secret source directories could be watched")
	}

	go w.processEvents(ctx)
	return nil
}

// Refreshed delivers source results after each watcher-triggered refresh.
// Results are dropped if the previous value was not consumed.
func (w *Watcher) Refreshed() <-chan []SourceResult {
	return w.refreshed
}

// Stop stops the watcher and releases its resources.
func (w *Watcher) Stop() {
	w.once.Do(func() {
		close(w.stop)
		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
		_ = w.watcher.Close() // best-effort cleanup
	})
}

func (w *Watcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.stop:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if w.relevant(event) {
				w.schedule(ctx)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn(ctx, "secret source watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	_, ok := w.paths[abs]
	return ok
}

func (w *Watcher) schedule(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case <-w.stop:
			return
		default:
		}
		results := w.holder.Refresh()
		w.logger.Info(ctx, "known secrets refreshed",
			zap.Int("count", w.holder.Current().Len()),
			zap.Int("sources_loaded", countLoaded(results)))

		select {
		case w.refreshed <- results:
		default:
		}
	})
}

func countLoaded(results []SourceResult) int {
	n := 0
	for _, r := range results {
		if r.Loaded() {
			n++
		}
	}
	return n
}
