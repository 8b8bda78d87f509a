// Package issuerclient is the verification service's outbound client for the
// issuance service's lookup endpoint. It separates the three outcomes the
// state machine cares about: an authoritative record, an explicit not-found,
// and an unreachable issuer.
package issuerclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	credmodels "attest/internal/credential/models"
	"attest/internal/platform/config"
	"attest/pkg/platform/sentinel"
)

// Client calls the issuance service over HTTP. One attempt per call, bounded
// by the configured timeout; retries are the caller's decision (currently:
// nobody retries).
type Client struct {
	baseURL string
	http    *http.Client
}

// New constructs a client from the issuer configuration.
func New(cfg config.IssuerConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

// envelope mirrors the issuance service's uniform response body.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// GetCredential fetches the authoritative credential by id.
// Returns sentinel.ErrNotFound on an explicit 404 (normal business case) and
// sentinel.ErrUnavailable for transport failures and unexpected statuses.
func (c *Client) GetCredential(ctx context.Context, id string) (*credmodels.Credential, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/credentials/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("build issuer request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: issuer lookup: %v", sentinel.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, sentinel.ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: issuer returned status %d", sentinel.ErrUnavailable, resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: decode issuer response: %v", sentinel.ErrUnavailable, err)
	}
	var credential credmodels.Credential
	if err := json.Unmarshal(env.Data, &credential); err != nil {
		return nil, fmt.Errorf("%w: decode issuer credential: %v", sentinel.ErrUnavailable, err)
	}
	return &credential, nil
}

// Health reports whether the issuance service answers its health endpoint.
func (c *Client) Health(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
