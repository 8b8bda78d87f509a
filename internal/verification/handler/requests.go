package handler

import (
	"time"

	credmodels "attest/internal/credential/models"
	dErrors "attest/pkg/domain-errors"
)

// VerifyRequest is the POST /api/verifications body: the full credential the
// client presents for verification.
type VerifyRequest struct {
	Credential *SubmittedCredential `json:"credential"`
}

// SubmittedCredential is the client's copy of a credential. It mirrors the
// issuance wire format; nothing in it is trusted until the state machine says so.
type SubmittedCredential struct {
	ID             string    `json:"id"`
	HolderName     string    `json:"holder_name"`
	CredentialType string    `json:"credential_type"`
	Issuer         string    `json:"issuer"`
	IssuedDate     time.Time `json:"issued_date"`
	ExpiryDate     time.Time `json:"expiry_date"`
	WorkerID       string    `json:"worker_id"`
	Signature      string    `json:"signature"`
}

// Validate enforces structural presence only; authenticity is the state
// machine's job.
func (r *VerifyRequest) Validate() error {
	if r.Credential == nil {
		return dErrors.New(dErrors.CodeValidation, "credential is required")
	}
	c := r.Credential
	if c.ID == "" {
		return dErrors.New(dErrors.CodeValidation, "credential.id is required")
	}
	if c.HolderName == "" {
		return dErrors.New(dErrors.CodeValidation, "credential.holder_name is required")
	}
	if c.CredentialType == "" {
		return dErrors.New(dErrors.CodeValidation, "credential.credential_type is required")
	}
	if c.Signature == "" {
		return dErrors.New(dErrors.CodeValidation, "credential.signature is required")
	}
	if c.IssuedDate.IsZero() || c.ExpiryDate.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "credential dates are required")
	}
	return nil
}

// ToModel converts the submitted copy into the domain type the state machine
// consumes.
func (c *SubmittedCredential) ToModel() *credmodels.Credential {
	return &credmodels.Credential{
		ID:             c.ID,
		HolderName:     c.HolderName,
		CredentialType: c.CredentialType,
		Issuer:         c.Issuer,
		IssuedDate:     c.IssuedDate,
		ExpiryDate:     c.ExpiryDate,
		WorkerID:       c.WorkerID,
		Signature:      c.Signature,
	}
}
