package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"attest/internal/credential/models"
	"attest/pkg/platform/sentinel"
)

// Schema is the issuance-side DDL. The unique index on
// (holder_name, credential_type) is the duplicate-prevention mechanism; the
// service never does a read-then-insert.
const Schema = `
CREATE TABLE IF NOT EXISTS credentials (
    id              TEXT PRIMARY KEY,
    holder_name     TEXT NOT NULL,
    credential_type TEXT NOT NULL,
    issuer          TEXT NOT NULL,
    issued_date     TIMESTAMPTZ NOT NULL,
    expiry_date     TIMESTAMPTZ NOT NULL,
    worker_id       TEXT NOT NULL,
    signature       TEXT NOT NULL,
    created_at      TIMESTAMPTZ NOT NULL,
    updated_at      TIMESTAMPTZ NOT NULL,
    UNIQUE (holder_name, credential_type)
);
CREATE INDEX IF NOT EXISTS idx_credentials_created_at ON credentials (created_at DESC);
`

const uniqueViolation = "23505"

// PostgresStore persists credentials in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed credential store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, credential *models.Credential) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO credentials
			(id, holder_name, credential_type, issuer, issued_date, expiry_date, worker_id, signature, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		credential.ID,
		credential.HolderName,
		credential.CredentialType,
		credential.Issuer,
		credential.IssuedDate,
		credential.ExpiryDate,
		credential.WorkerID,
		credential.Signature,
		credential.CreatedAt,
		credential.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create credential: %w", err)
	}
	return nil
}

const selectColumns = `id, holder_name, credential_type, issuer, issued_date, expiry_date, worker_id, signature, created_at, updated_at`

func (s *PostgresStore) FindByID(ctx context.Context, id string) (*models.Credential, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM credentials WHERE id = $1`, id)
	credential, err := scanCredential(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find credential by id: %w", err)
	}
	return credential, nil
}

func (s *PostgresStore) FindByHolderAndType(ctx context.Context, holderName, credentialType string) (*models.Credential, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM credentials
		 WHERE holder_name = $1 AND credential_type = $2
		 ORDER BY created_at DESC LIMIT 1`,
		holderName, credentialType)
	credential, err := scanCredential(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find credential by holder and type: %w", err)
	}
	return credential, nil
}

func (s *PostgresStore) List(ctx context.Context, limit, offset int) ([]*models.Credential, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM credentials
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	defer rows.Close()

	var credentials []*models.Credential
	for rows.Next() {
		credential, err := scanCredential(rows)
		if err != nil {
			return nil, fmt.Errorf("list credentials: %w", err)
		}
		credentials = append(credentials, credential)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	return credentials, nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM credentials`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count credentials: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCredential(row scanner) (*models.Credential, error) {
	var credential models.Credential
	err := row.Scan(
		&credential.ID,
		&credential.HolderName,
		&credential.CredentialType,
		&credential.Issuer,
		&credential.IssuedDate,
		&credential.ExpiryDate,
		&credential.WorkerID,
		&credential.Signature,
		&credential.CreatedAt,
		&credential.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &credential, nil
}
