package store

import (
	"context"
	"sort"
	"sync"

	"attest/internal/credential/models"
	"attest/pkg/platform/sentinel"
)

// MemoryStore is the in-memory credential store used by tests and by
// processes started without a DATABASE_URL. The mutex spans the whole of
// Create, so the (holder, type) uniqueness rule holds under concurrency the
// same way the postgres constraint does.
type MemoryStore struct {
	mu          sync.RWMutex
	byID        map[string]*models.Credential
	byHolderKey map[holderKey]string
}

type holderKey struct {
	holderName     string
	credentialType string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:        make(map[string]*models.Credential),
		byHolderKey: make(map[holderKey]string),
	}
}

func (s *MemoryStore) Create(_ context.Context, credential *models.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[credential.ID]; exists {
		return sentinel.ErrConflict
	}
	key := holderKey{credential.HolderName, credential.CredentialType}
	if _, exists := s.byHolderKey[key]; exists {
		return sentinel.ErrConflict
	}

	copied := *credential
	s.byID[credential.ID] = &copied
	s.byHolderKey[key] = credential.ID
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, id string) (*models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	credential, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *credential
	return &copied, nil
}

func (s *MemoryStore) FindByHolderAndType(_ context.Context, holderName, credentialType string) (*models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byHolderKey[holderKey{holderName, credentialType}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *s.byID[id]
	return &copied, nil
}

func (s *MemoryStore) List(_ context.Context, limit, offset int) ([]*models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*models.Credential, 0, len(s.byID))
	for _, credential := range s.byID {
		copied := *credential
		all = append(all, &copied)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})

	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID), nil
}

func (s *MemoryStore) Ping(_ context.Context) error {
	return nil
}
