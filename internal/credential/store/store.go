package store

import (
	"context"

	"attest/internal/credential/models"
)

// Store persists issued credentials. Implementations return
// sentinel.ErrConflict from Create when the (holder_name, credential_type)
// uniqueness rule rejects the row, and sentinel.ErrNotFound from the finders.
type Store interface {
	// Create inserts a new credential. Duplicate prevention is the store's
	// job: the uniqueness rule is enforced at write time, not by a prior read.
	Create(ctx context.Context, credential *models.Credential) error
	FindByID(ctx context.Context, id string) (*models.Credential, error)
	FindByHolderAndType(ctx context.Context, holderName, credentialType string) (*models.Credential, error)
	// List returns credentials newest first.
	List(ctx context.Context, limit, offset int) ([]*models.Credential, error)
	Count(ctx context.Context) (int, error)
	Ping(ctx context.Context) error
}
