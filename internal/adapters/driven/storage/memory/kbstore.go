// Package memory provides in-memory implementations of driven port
// interfaces, used in tests and for runs that should not persist anything.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/lenslink/internal/core/ports/driven"
)

// Ensure KnowledgeStore implements the interface.
var _ driven.KnowledgeStore = (*KnowledgeStore)(nil)

// KnowledgeStore keeps confirmed mappings in memory only.
type KnowledgeStore struct {
	mu     sync.RWMutex
	groups map[string]map[int]int
}

// NewKnowledgeStore creates an empty in-memory knowledge store.
func NewKnowledgeStore() *KnowledgeStore {
	return &KnowledgeStore{groups: make(map[string]map[int]int)}
}

// GetMapping returns a copy of the stored mapping for a group key.
func (s *KnowledgeStore) GetMapping(_ context.Context, groupKey string) (map[int]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	mapping := make(map[int]int, len(s.groups[groupKey]))
	for from, to := range s.groups[groupKey] {
		mapping[from] = to
	}
	return mapping, nil
}

// AddMapping merges additions into the stored mapping for a group key.
func (s *KnowledgeStore) AddMapping(_ context.Context, groupKey string, additions map[int]int) error {
	if len(additions) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.groups[groupKey] == nil {
		s.groups[groupKey] = make(map[int]int, len(additions))
	}
	for from, to := range additions {
		s.groups[groupKey][from] = to
	}
	return nil
}

// Groups lists every group key with at least one stored mapping.
func (s *KnowledgeStore) Groups(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	groups := make([]string, 0, len(s.groups))
	for g, m := range s.groups {
		if len(m) > 0 {
			groups = append(groups, g)
		}
	}
	sort.Strings(groups)
	return groups, nil
}

// DeleteGroup removes all mappings for a group key.
func (s *KnowledgeStore) DeleteGroup(_ context.Context, groupKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.groups, groupKey)
	return nil
}

// Close is a no-op.
func (s *KnowledgeStore) Close() error {
	return nil
}
