// Package signature implements the keyed-hash scheme that binds a credential
// to its canonical fields. The scheme is symmetric on purpose: both services
// share one secret, and a credential is authentic exactly when recomputing the
// hash over its own canonical fields reproduces the stored signature.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultSecret is the signing fallback for processes started without a
// configured secret. It is deliberately weak; anyone holding it can mint
// credentials, so production deployments must override it.
const DefaultSecret = "dev-secret-change-in-production"

// timestampLayout fixes canonical timestamps at millisecond precision in UTC.
// Issuance truncates to the millisecond, so a credential survives the JSON and
// timestamptz round trips without invalidating its signature.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// Fields is the canonical subset of a credential covered by the signature.
// The stored signature itself and the bookkeeping timestamps are excluded.
type Fields struct {
	ID             string
	HolderName     string
	Issuer         string
	IssuedDate     time.Time
	CredentialType string
	ExpiryDate     time.Time
	WorkerID       string
}

// Engine signs and verifies canonical field sets with the process-wide secret.
// All methods are pure functions over their inputs plus the secret.
type Engine struct {
	secret []byte
}

// NewEngine constructs an engine. An empty secret falls back to DefaultSecret.
func NewEngine(secret string) *Engine {
	if secret == "" {
		secret = DefaultSecret
	}
	return &Engine{secret: []byte(secret)}
}

// Sign computes hex(sha256(canonical || secret)) over the seven canonical
// fields in their fixed order.
func (e *Engine) Sign(f Fields) string {
	sum := sha256.Sum256(append([]byte(f.canonical()), e.secret...))
	return hex.EncodeToString(sum[:])
}

// Verify recomputes the signature from the fields and compares it to the
// presented one in constant time. A mismatch is a boolean outcome, never an
// error.
func (e *Engine) Verify(f Fields, presented string) bool {
	return hmac.Equal([]byte(e.Sign(f)), []byte(presented))
}

// canonical serializes the fields into the deterministic byte layout the
// signature covers. Field order is fixed; changing it breaks every credential
// ever issued.
func (f Fields) canonical() string {
	return strings.Join([]string{
		f.ID,
		f.HolderName,
		f.Issuer,
		f.IssuedDate.UTC().Format(timestampLayout),
		f.CredentialType,
		f.ExpiryDate.UTC().Format(timestampLayout),
		f.WorkerID,
	}, "|")
}

// NewID returns a random unique token, used for credential and verification ids.
func NewID() string {
	return uuid.NewString()
}

// Digest is a general-purpose sha256 hex helper. Nothing security-critical
// depends on it.
func Digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
