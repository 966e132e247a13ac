// Package store owns the per-run contact set and its tabular export. Merges
// are serialized through a single mutex so concurrent company workers never
// update the same resolved contact in place.
package store

import (
	"sync"

	"github.com/google/uuid"
	"github.com/jonathan/outreach-agent/internal/aggregate"
	"github.com/jonathan/outreach-agent/internal/types"
)

// Store accumulates candidates for exactly one run.
type Store struct {
	mu    sync.Mutex
	agg   *aggregate.Aggregator
	runID uuid.UUID

	finalized []types.ResolvedContact
	done      bool
}

// New creates a Store for a fresh run. maxPerCompany <= 0 uses the
// aggregator default.
func New(maxPerCompany int) *Store {
	return &Store{
		agg:   aggregate.New(maxPerCompany),
		runID: uuid.New(),
	}
}

// RunID identifies this run in logs and export metadata.
func (s *Store) RunID() uuid.UUID {
	return s.runID
}

// Add merges one candidate. Safe for concurrent callers. Candidates
// arriving after Finalize are dropped: the aggregation phase has ended.
func (s *Store) Add(c types.Candidate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return
	}
	s.agg.Merge(c)
}

// Len returns the number of distinct contacts merged so far.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return len(s.finalized)
	}
	return s.agg.Len()
}

// Finalize ends the aggregation phase and returns the ranked contact set.
// Repeated calls return the same immutable result.
func (s *Store) Finalize() []types.ResolvedContact {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.done {
		s.finalized = s.agg.Finalize()
		s.done = true
	}
	return s.finalized
}
