package models

import "time"

// Status is the terminal outcome of one verification attempt. Exactly one is
// reached per invocation.
type Status string

const (
	StatusValid             Status = "valid"
	StatusInvalid           Status = "invalid"
	StatusExpired           Status = "expired"
	StatusNotFound          Status = "not_found"
	StatusSignatureMismatch Status = "signature_mismatch"
)

// Result is the persisted record of one verification attempt. Results are
// append-only: every call produces a new record, valid or not.
//
// IssuerWorkerID and IssuedDate are populated only when an authoritative
// matching record was found, and are copied from the issuance-side record,
// not the submitted one. They stay nil across the other terminal states so
// the type is stable for all five.
type Result struct {
	ID             string     `json:"id"`
	CredentialID   string     `json:"credential_id"`
	IsValid        bool       `json:"is_valid"`
	IsExpired      bool       `json:"is_expired"`
	Status         Status     `json:"verification_status"`
	VerifiedBy     string     `json:"verified_by"`
	VerifiedAt     time.Time  `json:"verified_at"`
	CreatedAt      time.Time  `json:"created_at"`
	IssuerWorkerID *string    `json:"issuer_worker_id,omitempty"`
	IssuedDate     *time.Time `json:"issued_date,omitempty"`
}
