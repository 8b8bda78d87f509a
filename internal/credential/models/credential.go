package models

import (
	"time"

	"attest/internal/credential/signature"
)

// Credential is the signed record the issuance service persists. The seven
// canonical fields (everything except Signature, CreatedAt, UpdatedAt) are
// covered by the signature and immutable after issuance.
type Credential struct {
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

// CanonicalFields extracts the signed subset in the engine's layout.
func (c *Credential) CanonicalFields() signature.Fields {
	return signature.Fields{
		ID:             c.ID,
		HolderName:     c.HolderName,
		Issuer:         c.Issuer,
		IssuedDate:     c.IssuedDate,
		CredentialType: c.CredentialType,
		ExpiryDate:     c.ExpiryDate,
		WorkerID:       c.WorkerID,
	}
}

// IsExpired reports whether the credential's expiry is at or before now.
func (c *Credential) IsExpired(now time.Time) bool {
	return !c.ExpiryDate.After(now)
}

// Equal compares the fields the verification workflow reconciles against the
// authoritative record: id, holder, issuer, dates, type and signature.
// worker_id is audit metadata and carries no trust weight, so it is excluded.
// Timestamps compare as instants, not struct representations.
func (c *Credential) Equal(other *Credential) bool {
	if other == nil {
		return false
	}
	return c.ID == other.ID &&
		c.HolderName == other.HolderName &&
		c.CredentialType == other.CredentialType &&
		c.Issuer == other.Issuer &&
		c.IssuedDate.Equal(other.IssuedDate) &&
		c.ExpiryDate.Equal(other.ExpiryDate) &&
		c.Signature == other.Signature
}
