package state

import (
	"log/slog"
	"sort"
	"sync"
	"time"
)

type entry struct {
	started  uint64
	snapshot Snapshot
}

// Store holds the published collection of every source. Loads are numbered
// when they start, and only the newest started load may publish.
type Store struct {
	mu      sync.RWMutex
	sources map[string]*entry
}

func NewStore() *Store {
	return &Store{
		sources: make(map[string]*entry),
	}
}

// Begin registers a new load for name and returns its sequence number.
func (s *Store) Begin(name string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.get(name)
	e.started++
	e.snapshot.InFlight = true
	if e.snapshot.Status != StatusLoaded {
		e.snapshot.Status = StatusLoading
		e.snapshot.Collection = emptyCollection
		e.snapshot.Error = ""
	}
	return e.started
}

// Publish replaces the collection of name, unless a newer load has started since seq.
func (s *Store) Publish(name string, seq uint64, collection *Collection) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.get(name)
	if seq != e.started {
		slog.Debug("Discarding superseded load", "source", name, "seq", seq, "latest", e.started)
		return false
	}

	e.snapshot = Snapshot{
		Status:     StatusLoaded,
		Collection: collection,
		Seq:        seq,
		UpdatedAt:  time.Now(),
	}
	return true
}

// Fail records a failed load. The previous collection is dropped, so filters
// see zero entries until the next successful load.
func (s *Store) Fail(name string, seq uint64, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.get(name)
	if seq != e.started {
		slog.Debug("Discarding superseded failure", "source", name, "seq", seq, "latest", e.started)
		return false
	}

	e.snapshot = Snapshot{
		Status:     StatusFailed,
		Collection: emptyCollection,
		Error:      err.Error(),
		Seq:        seq,
		UpdatedAt:  time.Now(),
	}
	return true
}

// Restore publishes a stored collection only when nothing has been loaded yet.
func (s *Store) Restore(name string, collection *Collection) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.get(name)
	if e.snapshot.Status == StatusLoaded || e.snapshot.Status == StatusFailed {
		return false
	}

	e.snapshot.Status = StatusLoaded
	e.snapshot.Collection = collection
	e.snapshot.Error = ""
	e.snapshot.UpdatedAt = time.Now()
	return true
}

func (s *Store) Get(name string) (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.sources[name]
	if !ok {
		return Snapshot{}, false
	}
	return e.snapshot, true
}

func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.sources))
	for name := range s.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Store) get(name string) *entry {
	e, ok := s.sources[name]
	if !ok {
		e = &entry{snapshot: Snapshot{Status: StatusLoading, Collection: emptyCollection}}
		s.sources[name] = e
	}
	return e
}
