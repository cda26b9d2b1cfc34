package export

import (
	"context"
	"sync"

	"github.com/hupe1980/agora/core"
)

// MemorySink is a concurrency-safe in-memory Sink. It is the default when no
// database is configured and the workhorse of tests.
type MemorySink struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{records: make(map[string]Record)}
}

// Save implements Sink.
func (s *MemorySink) Save(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.RunID] = rec
	return nil
}

// Load implements Sink.
func (s *MemorySink) Load(_ context.Context, runID string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[runID]
	if !ok {
		return Record{}, core.ErrNotFound
	}
	return rec, nil
}

// Len returns the number of stored records.
func (s *MemorySink) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
