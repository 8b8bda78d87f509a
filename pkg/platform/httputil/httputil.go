package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	dErrors "attest/pkg/domain-errors"
)

// Envelope is the uniform response body shared by both services. Every
// response, success or failure, carries the worker that produced it and the
// time it was produced.
type Envelope struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Data      any       `json:"data,omitempty"`
	WorkerID  string    `json:"worker_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Responder writes enveloped responses on behalf of one worker process.
type Responder struct {
	workerID string
}

// NewResponder constructs a Responder stamped with the process worker ID.
func NewResponder(workerID string) *Responder {
	return &Responder{workerID: workerID}
}

// Write sends an enveloped success response with the given status code.
func (rp *Responder) Write(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, Envelope{
		Success:   status < http.StatusBadRequest,
		Message:   message,
		Data:      data,
		WorkerID:  rp.workerID,
		Timestamp: time.Now().UTC(),
	})
}

// WriteError centralizes domain error translation to HTTP responses.
// Internal errors never leak their message to the client.
func (rp *Responder) WriteError(w http.ResponseWriter, err error) {
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		message := domainErr.Message
		if domainErr.Code == dErrors.CodeInternal || message == "" {
			message = string(domainErr.Code)
		}
		rp.Write(w, DomainCodeToHTTPStatus(domainErr.Code), message, nil)
		return
	}
	rp.Write(w, http.StatusInternalServerError, string(dErrors.CodeInternal), nil)
}

func writeJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Errors after WriteHeader cannot change the status code, so we ignore
	// encoding errors. The body may be incomplete, but headers are already sent.
	_ = json.NewEncoder(w).Encode(response)
}

// DomainCodeToHTTPStatus translates domain error codes to HTTP status codes.
func DomainCodeToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeBadRequest, dErrors.CodeValidation, dErrors.CodeInvalidInput:
		return http.StatusBadRequest
	case dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeUnavailable:
		return http.StatusServiceUnavailable
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	case dErrors.CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
