package handler

import (
	"strings"
	"time"

	dErrors "attest/pkg/domain-errors"
)

const maxFieldLength = 255

// CreateCredentialRequest is the POST /api/credentials body.
type CreateCredentialRequest struct {
	HolderName     string     `json:"holder_name"`
	CredentialType string     `json:"credential_type"`
	ExpiryDate     *time.Time `json:"expiry_date,omitempty"`
}

// Normalize trims surrounding whitespace from string fields.
func (r *CreateCredentialRequest) Normalize() {
	r.HolderName = strings.TrimSpace(r.HolderName)
	r.CredentialType = strings.TrimSpace(r.CredentialType)
}

// Validate enforces presence and length limits.
func (r *CreateCredentialRequest) Validate() error {
	if r.HolderName == "" {
		return dErrors.New(dErrors.CodeValidation, "holder_name is required")
	}
	if len(r.HolderName) > maxFieldLength {
		return dErrors.New(dErrors.CodeValidation, "holder_name is too long")
	}
	if r.CredentialType == "" {
		return dErrors.New(dErrors.CodeValidation, "credential_type is required")
	}
	if len(r.CredentialType) > maxFieldLength {
		return dErrors.New(dErrors.CodeValidation, "credential_type is too long")
	}
	return nil
}
