package handler

import (
	"time"

	"attest/internal/credential/models"
)

// CredentialResponse mirrors the stored credential on the wire.
type CredentialResponse struct {
	ID             string    `json:"id"`
	HolderName     string    `json:"holder_name"`
	CredentialType string    `json:"credential_type"`
	Issuer         string    `json:"issuer"`
	IssuedDate     time.Time `json:"issued_date"`
	ExpiryDate     time.Time `json:"expiry_date"`
	WorkerID       string    `json:"worker_id"`
	Signature      string    `json:"signature"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CredentialDetailResponse adds the computed flags served on point lookups.
type CredentialDetailResponse struct {
	CredentialResponse
	IsValid   bool `json:"is_valid"`
	IsExpired bool `json:"is_expired"`
}

// DuplicateResponse is the 409 payload pointing at the existing credential.
type DuplicateResponse struct {
	ExistingCredentialID string    `json:"existing_credential_id"`
	IssuedDate           time.Time `json:"issued_date"`
	WorkerID             string    `json:"worker_id"`
}

// ListResponse is one page of credentials plus pagination arithmetic.
type ListResponse struct {
	Credentials []CredentialResponse `json:"credentials"`
	Pagination  Pagination           `json:"pagination"`
}

// Pagination describes the page served.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// HealthResponse reports process and dependency status.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// FromCredential converts a stored credential to its wire form.
func FromCredential(c *models.Credential) CredentialResponse {
	return CredentialResponse{
		ID:             c.ID,
		HolderName:     c.HolderName,
		CredentialType: c.CredentialType,
		Issuer:         c.Issuer,
		IssuedDate:     c.IssuedDate,
		ExpiryDate:     c.ExpiryDate,
		WorkerID:       c.WorkerID,
		Signature:      c.Signature,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

// FromCredentials converts a page of credentials.
func FromCredentials(credentials []*models.Credential) []CredentialResponse {
	out := make([]CredentialResponse, 0, len(credentials))
	for _, c := range credentials {
		out = append(out, FromCredential(c))
	}
	return out
}
