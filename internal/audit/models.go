package audit

import (
	"context"
	"time"
)

// EventType names an auditable action.
type EventType string

const (
	EventCredentialIssued     EventType = "credential.issued"
	EventCredentialDuplicate  EventType = "credential.duplicate_refused"
	EventVerificationComplete EventType = "verification.completed"
)

// Event is an append-only audit record. Subject is the credential id the
// event concerns; Detail carries outcome-specific fields (status, holder).
type Event struct {
	ID        string            `json:"id"`
	Type      EventType         `json:"type"`
	WorkerID  string            `json:"worker_id"`
	Subject   string            `json:"subject"`
	Detail    map[string]string `json:"detail,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// Store is an append-only sink for audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySubject(ctx context.Context, subject string) ([]Event, error)
}
