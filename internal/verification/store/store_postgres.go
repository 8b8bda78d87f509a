package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"attest/internal/verification/models"
	"attest/pkg/platform/sentinel"
)

// Schema is the verification-side DDL. The table is append-only; there is no
// update path and no uniqueness beyond the primary key.
const Schema = `
CREATE TABLE IF NOT EXISTS verifications (
    id                  TEXT PRIMARY KEY,
    credential_id       TEXT NOT NULL,
    is_valid            BOOLEAN NOT NULL,
    is_expired          BOOLEAN NOT NULL,
    verification_status TEXT NOT NULL,
    verified_by         TEXT NOT NULL,
    verified_at         TIMESTAMPTZ NOT NULL,
    created_at          TIMESTAMPTZ NOT NULL,
    issuer_worker_id    TEXT,
    issued_date         TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_verifications_credential_id ON verifications (credential_id, verified_at DESC);
`

// PostgresStore persists verification results in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed verification store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, result *models.Result) error {
	issuerWorkerID := sql.NullString{}
	if result.IssuerWorkerID != nil {
		issuerWorkerID = sql.NullString{String: *result.IssuerWorkerID, Valid: true}
	}
	issuedDate := sql.NullTime{}
	if result.IssuedDate != nil {
		issuedDate = sql.NullTime{Time: *result.IssuedDate, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO verifications
			(id, credential_id, is_valid, is_expired, verification_status, verified_by, verified_at, created_at, issuer_worker_id, issued_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		result.ID,
		result.CredentialID,
		result.IsValid,
		result.IsExpired,
		string(result.Status),
		result.VerifiedBy,
		result.VerifiedAt,
		result.CreatedAt,
		issuerWorkerID,
		issuedDate,
	)
	if err != nil {
		return fmt.Errorf("create verification result: %w", err)
	}
	return nil
}

const selectColumns = `id, credential_id, is_valid, is_expired, verification_status, verified_by, verified_at, created_at, issuer_worker_id, issued_date`

func (s *PostgresStore) FindByID(ctx context.Context, id string) (*models.Result, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM verifications WHERE id = $1`, id)
	result, err := scanResult(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find verification by id: %w", err)
	}
	return result, nil
}

func (s *PostgresStore) ListByCredentialID(ctx context.Context, credentialID string) ([]*models.Result, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM verifications
		 WHERE credential_id = $1
		 ORDER BY verified_at DESC`,
		credentialID)
	if err != nil {
		return nil, fmt.Errorf("list verifications: %w", err)
	}
	defer rows.Close()

	var results []*models.Result
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("list verifications: %w", err)
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list verifications: %w", err)
	}
	return results, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResult(row scanner) (*models.Result, error) {
	var (
		result         models.Result
		status         string
		issuerWorkerID sql.NullString
		issuedDate     sql.NullTime
	)
	err := row.Scan(
		&result.ID,
		&result.CredentialID,
		&result.IsValid,
		&result.IsExpired,
		&status,
		&result.VerifiedBy,
		&result.VerifiedAt,
		&result.CreatedAt,
		&issuerWorkerID,
		&issuedDate,
	)
	if err != nil {
		return nil, err
	}
	result.Status = models.Status(status)
	if issuerWorkerID.Valid {
		result.IssuerWorkerID = &issuerWorkerID.String
	}
	if issuedDate.Valid {
		t := issuedDate.Time
		result.IssuedDate = &t
	}
	return &result, nil
}
