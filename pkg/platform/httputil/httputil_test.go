package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	dErrors "attest/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	rp := NewResponder("worker-1")

	t.Run("internal error omits description", func(t *testing.T) {
		w := httptest.NewRecorder()
		rp.WriteError(w, dErrors.New(dErrors.CodeInternal, "db failed: password=hunter2"))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}

		var body Envelope
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body.Success {
			t.Fatalf("expected success=false")
		}
		if body.Message != string(dErrors.CodeInternal) {
			t.Fatalf("expected generic internal message, got %q", body.Message)
		}
		if body.WorkerID != "worker-1" {
			t.Fatalf("expected worker_id stamped, got %q", body.WorkerID)
		}
	})

	t.Run("bad request includes description", func(t *testing.T) {
		w := httptest.NewRecorder()
		rp.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "holder_name is required"))

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}

		var body Envelope
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body.Message != "holder_name is required" {
			t.Fatalf("expected message returned for bad request, got %q", body.Message)
		}
	})

	t.Run("unavailable maps to 503", func(t *testing.T) {
		w := httptest.NewRecorder()
		rp.WriteError(w, dErrors.New(dErrors.CodeUnavailable, "issuance service unreachable"))

		if w.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, w.Code)
		}
	})

	t.Run("non-domain error becomes generic 500", func(t *testing.T) {
		w := httptest.NewRecorder()
		rp.WriteError(w, http.ErrBodyNotAllowed)

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}
	})
}

func TestWriteSuccessEnvelope(t *testing.T) {
	rp := NewResponder("worker-1")
	w := httptest.NewRecorder()
	rp.Write(w, http.StatusCreated, "credential issued", map[string]string{"id": "abc"})

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	var body Envelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !body.Success {
		t.Fatalf("expected success=true")
	}
	if body.Timestamp.IsZero() {
		t.Fatalf("expected timestamp to be set")
	}
}
