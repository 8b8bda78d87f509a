package audit

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	events []Event
	err    error
}

func (s *recordingSink) Publish(_ context.Context, event Event) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestPublisherFillsIdentityFields(t *testing.T) {
	inbox := make(chan Event, 1)
	p := NewPublisher(inbox, quietLogger())

	p.Emit(context.Background(), Event{Type: EventCredentialIssued, Subject: "cred-1"})

	event := <-inbox
	assert.NotEmpty(t, event.ID)
	assert.False(t, event.Timestamp.IsZero())
	assert.Equal(t, EventCredentialIssued, event.Type)
}

func TestPublisherDropsWhenInboxFull(t *testing.T) {
	inbox := make(chan Event, 1)
	p := NewPublisher(inbox, quietLogger())

	p.Emit(context.Background(), Event{Subject: "first"})
	p.Emit(context.Background(), Event{Subject: "dropped"})

	event := <-inbox
	assert.Equal(t, "first", event.Subject)
	select {
	case extra := <-inbox:
		t.Fatalf("expected second event to be dropped, got %q", extra.Subject)
	default:
	}
}

func TestWorkerPersistsAndForwards(t *testing.T) {
	inbox := make(chan Event, 4)
	store := NewMemoryStore()
	sink := &recordingSink{}
	w := NewWorker(store, sink, inbox, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	inbox <- Event{ID: "e1", Type: EventVerificationComplete, Subject: "cred-1"}
	inbox <- Event{ID: "e2", Type: EventVerificationComplete, Subject: "cred-1"}

	require.Eventually(t, func() bool {
		events, err := store.ListBySubject(context.Background(), "cred-1")
		return err == nil && len(events) == 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	err := <-done
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, sink.events, 2)
}

func TestWorkerToleratesSinkFailure(t *testing.T) {
	inbox := make(chan Event, 1)
	store := NewMemoryStore()
	sink := &recordingSink{err: errors.New("broker down")}
	w := NewWorker(store, sink, inbox, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	inbox <- Event{ID: "e1", Subject: "cred-1"}

	// The local trail keeps the event even when the sink rejects it.
	require.Eventually(t, func() bool {
		events, err := store.ListBySubject(context.Background(), "cred-1")
		return err == nil && len(events) == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

func TestWorkerWithoutSink(t *testing.T) {
	inbox := make(chan Event, 1)
	store := NewMemoryStore()
	w := NewWorker(store, nil, inbox, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	inbox <- Event{ID: "e1", Subject: "cred-1"}

	require.Eventually(t, func() bool {
		events, err := store.ListBySubject(context.Background(), "cred-1")
		return err == nil && len(events) == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}
