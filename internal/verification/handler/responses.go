package handler

import (
	"time"

	"attest/internal/verification/models"
)

// VerificationResponse is the wire form of a verification result.
type VerificationResponse struct {
	VerificationID string        `json:"verification_id"`
	CredentialID   string        `json:"credential_id"`
	IsValid        bool          `json:"is_valid"`
	IsExpired      bool          `json:"is_expired"`
	Status         models.Status `json:"verification_status"`
	VerifiedBy     string        `json:"verified_by"`
	VerifiedAt     time.Time     `json:"verified_at"`
	IssuerWorkerID *string       `json:"issuer_worker_id,omitempty"`
	IssuedDate     *time.Time    `json:"issued_date,omitempty"`
}

// HealthResponse reports process and dependency status.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Issuer   string `json:"issuer"`
}

// FromResult converts a stored result to its wire form.
func FromResult(r *models.Result) VerificationResponse {
	return VerificationResponse{
		VerificationID: r.ID,
		CredentialID:   r.CredentialID,
		IsValid:        r.IsValid,
		IsExpired:      r.IsExpired,
		Status:         r.Status,
		VerifiedBy:     r.VerifiedBy,
		VerifiedAt:     r.VerifiedAt,
		IssuerWorkerID: r.IssuerWorkerID,
		IssuedDate:     r.IssuedDate,
	}
}

// FromResults converts a list of results.
func FromResults(results []*models.Result) []VerificationResponse {
	out := make([]VerificationResponse, 0, len(results))
	for _, r := range results {
		out = append(out, FromResult(r))
	}
	return out
}
