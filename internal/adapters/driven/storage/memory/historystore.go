// Package memory provides in-memory implementations of driven ports,
// used in tests and as fallbacks when persistent storage is unavailable.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/quillsync-cli/internal/core/domain"
	"github.com/custodia-labs/quillsync-cli/internal/core/ports/driven"
)

// Ensure RunHistoryStore implements the interface.
var _ driven.RunHistoryStore = (*RunHistoryStore)(nil)

// RunHistoryStore is an in-memory implementation of driven.RunHistoryStore.
type RunHistoryStore struct {
	mu      sync.RWMutex
	records map[string]domain.RunRecord
}

// NewRunHistoryStore creates a new in-memory run history store.
func NewRunHistoryStore() *RunHistoryStore {
	return &RunHistoryStore{
		records: make(map[string]domain.RunRecord),
	}
}

// Record stores a completed run.
func (s *RunHistoryStore) Record(_ context.Context, record domain.RunRecord) error {
	if record.ID == "" {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ID] = record
	return nil
}

// Recent returns the most recent runs, newest first. A limit of zero or
// less returns every run.
func (s *RunHistoryStore) Recent(_ context.Context, limit int) ([]domain.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.sortedLocked()
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Prune removes all but the newest keep records.
func (s *RunHistoryStore) Prune(_ context.Context, keep int) error {
	if keep < 0 {
		keep = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.sortedLocked()
	for _, record := range records[min(keep, len(records)):] {
		delete(s.records, record.ID)
	}
	return nil
}

// sortedLocked returns all records newest first. Callers hold the lock.
func (s *RunHistoryStore) sortedLocked() []domain.RunRecord {
	records := make([]domain.RunRecord, 0, len(s.records))
	for _, record := range s.records {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		if !records[i].StartedAt.Equal(records[j].StartedAt) {
			return records[i].StartedAt.After(records[j].StartedAt)
		}
		return records[i].ID < records[j].ID
	})
	return records
}
