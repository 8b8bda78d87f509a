package store

import (
	"context"

	"attest/internal/verification/models"
)

// Store persists verification results. The table is append-only; results are
// never updated or deleted.
type Store interface {
	Create(ctx context.Context, result *models.Result) error
	FindByID(ctx context.Context, id string) (*models.Result, error)
	// ListByCredentialID returns every attempt for a credential id, newest first.
	ListByCredentialID(ctx context.Context, credentialID string) ([]*models.Result, error)
	Ping(ctx context.Context) error
}
