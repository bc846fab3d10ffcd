package memstore

import (
	"context"
	"slices"
	"sync"

	"github.com/revenue-cat-hackwit/recook-edge-function/core/structured"
)

// Store is an in-memory failure log guarded by an RWMutex.
type Store struct {
	mu      sync.RWMutex
	records []structured.FailureRecord
}

// New returns an empty Store.
func New() *Store {
	return &Store{records: []structured.FailureRecord{}}
}

var _ structured.Recorder = (*Store)(nil)

// RecordFailure appends a copy of r. The error is always nil.
func (s *Store) RecordFailure(_ context.Context, r structured.FailureRecord) error {
	r.Missing = slices.Clone(r.Missing)

	s.mu.Lock()
	s.records = append(s.records, r)
	s.mu.Unlock()
	return nil
}

// Count returns the number of stored records.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Records returns a copy of all records in insertion order.
func (s *Store) Records() []structured.FailureRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.records)
}

// Last returns up to the last n records. The slice is non-nil.
func (s *Store) Last(n int) []structured.FailureRecord {
	if n <= 0 {
		return []structured.FailureRecord{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n > len(s.records) {
		n = len(s.records)
	}
	return slices.Clone(s.records[len(s.records)-n:])
}

// CountByReason returns failure counts for task keyed by reason code, with
// the same semantics as pgstore.Store.CountByReason. An empty task counts
// every task.
func (s *Store) CountByReason(_ context.Context, task string) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for _, r := range s.records {
		if task != "" && r.Task != task {
			continue
		}
		counts[r.Reason.String()]++
	}
	return counts, nil
}

// Clear drops every record, keeping the backing capacity.
func (s *Store) Clear() {
	s.mu.Lock()
	s.records = s.records[:0]
	s.mu.Unlock()
}
