package store

import (
	"context"
	"sort"
	"sync"

	"attest/internal/verification/models"
	"attest/pkg/platform/sentinel"
)

// MemoryStore is the in-memory verification store used by tests and by
// processes started without a DATABASE_URL.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]*models.Result
	ordered []*models.Result
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]*models.Result)}
}

func (s *MemoryStore) Create(_ context.Context, result *models.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[result.ID]; exists {
		return sentinel.ErrConflict
	}
	copied := *result
	s.byID[result.ID] = &copied
	s.ordered = append(s.ordered, &copied)
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, id string) (*models.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *result
	return &copied, nil
}

func (s *MemoryStore) ListByCredentialID(_ context.Context, credentialID string) ([]*models.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Result
	for _, result := range s.ordered {
		if result.CredentialID == credentialID {
			copied := *result
			out = append(out, &copied)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].VerifiedAt.After(out[j].VerifiedAt)
	})
	return out, nil
}

func (s *MemoryStore) Ping(_ context.Context) error {
	return nil
}

// Count reports the number of stored results. Test helper.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ordered)
}
