package secrets

import (
	"sync"
	"sync/atomic"
)

// MinSecretLength is the shortest value kept as a known secret. Shorter
// values would match common words and produce false positives.
const MinSecretLength = 9

// Store is an immutable, deduplicated set of known secret values.
// The zero value and nil are valid empty stores.
type Store struct {
	values []string
	index  map[string]struct{}
}

// NewStore builds a store from raw candidate values, dropping duplicates and
// values shorter than MinSecretLength. First-seen order is preserved.
func NewStore(values ...string) *Store {
	s := &Store{index: make(map[string]struct{}, len(values))}
	for _, v := range values {
		if len(v) < MinSecretLength {
			continue
		}
		if _, dup := s.index[v]; dup {
			continue
		}
		s.index[v] = struct{}{}
		s.values = append(s.values, v)
	}
	return s
}

// Load reads every source and builds a store from the values they yield.
// Source problems never fail the load; inspect the results to see which
// path each source took.
func Load(sources ...Source) (*Store, []SourceResult) {
	results := make([]SourceResult, 0, len(sources))
	var values []string
	for _, src := range sources {
		r := src.Load()
		results = append(results, r)
		values = append(values, r.Values...)
	}
	return NewStore(values...), results
}

// Values returns a copy of the secrets in load order.
func (s *Store) Values() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.values))
	copy(out, s.values)
	return out
}

// Each calls fn for every secret without copying the set.
func (s *Store) Each(fn func(secret string)) {
	if s == nil {
		return
	}
	for _, v := range s.values {
		fn(v)
	}
}

// Len returns the number of secrets.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.values)
}

// Contains reports whether v is a known secret.
func (s *Store) Contains(v string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[v]
	return ok
}

// Current returns s itself so a fixed Store can stand in for a Holder.
func (s *Store) Current() *Store {
	return s
}

// Holder owns the current Store and rebuilds it from its sources on demand.
// Current is lock-free and safe to call concurrently with Refresh.
type Holder struct {
	sources []Source

	current atomic.Pointer[Store]

	mu      sync.Mutex
	results []SourceResult
}

// NewHolder loads the sources once and returns a holder for the result.
func NewHolder(sources ...Source) *Holder {
	h := &Holder{sources: sources}
	h.Refresh()
	return h
}

// Current returns the store in effect.
func (h *Holder) Current() *Store {
	return h.current.Load()
}

// Refresh rebuilds the store from all sources and swaps it in.
func (h *Holder) Refresh() []SourceResult {
	h.mu.Lock()
	defer h.mu.Unlock()

	store, results := Load(h.sources...)
	h.current.Store(store)
	h.results = results
	return cloneResults(results)
}

// Results returns the source outcomes of the last refresh.
func (h *Holder) Results() []SourceResult {
	h.mu.Lock()
	defer h.mu.Unlock()
	return cloneResults(h.results)
}

// Sources returns the sources the holder loads from.
func (h *Holder) Sources() []Source {
	out := make([]Source, len(h.sources))
	copy(out, h.sources)
	return out
}

func cloneResults(in []SourceResult) []SourceResult {
	out := make([]SourceResult, len(in))
	copy(out, in)
	return out
}
