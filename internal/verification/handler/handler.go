package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	credmodels "attest/internal/credential/models"
	"attest/internal/verification/models"
	"attest/pkg/platform/httputil"
)

// Service defines the verification operations the handler depends on.
type Service interface {
	Verify(ctx context.Context, submitted *credmodels.Credential) (*models.Result, error)
	Get(ctx context.Context, id string) (*models.Result, error)
	ListByCredential(ctx context.Context, credentialID string) ([]*models.Result, error)
	Health(ctx context.Context) (storeOK bool, issuerOK bool)
}

// Handler wires verification endpoints to the verification service.
type Handler struct {
	service Service
	logger  *slog.Logger
	rp      *httputil.Responder
}

// New constructs a verification handler with its dependencies.
func New(svc Service, logger *slog.Logger, rp *httputil.Responder) *Handler {
	return &Handler{service: svc, logger: logger, rp: rp}
}

// Register mounts verification endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/verifications", h.HandleVerify)
	r.Get("/api/verifications/{id}", h.HandleGet)
	r.Get("/api/verifications/credential/{credentialId}", h.HandleListByCredential)
	r.Get("/health", h.HandleHealth)
}

// HandleVerify handles POST /api/verifications. All five business outcomes
// return 200; only malformed requests are 400 and only this service's own
// failures (or an unreachable issuer) are 5xx.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.DecodeAndPrepare[VerifyRequest](w, r, h.rp, h.logger)
	if !ok {
		return
	}

	result, err := h.service.Verify(ctx, req.Credential.ToModel())
	if err != nil {
		h.rp.WriteError(w, err)
		return
	}

	h.rp.Write(w, http.StatusOK, "verification completed", FromResult(result))
}

// HandleGet handles GET /api/verifications/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.rp.WriteError(w, err)
		return
	}
	h.rp.Write(w, http.StatusOK, "verification found", FromResult(result))
}

// HandleListByCredential handles GET /api/verifications/credential/{credentialId}.
func (h *Handler) HandleListByCredential(w http.ResponseWriter, r *http.Request) {
	results, err := h.service.ListByCredential(r.Context(), chi.URLParam(r, "credentialId"))
	if err != nil {
		h.rp.WriteError(w, err)
		return
	}
	h.rp.Write(w, http.StatusOK, "verifications listed", FromResults(results))
}

// HandleHealth handles GET /health. Issuer reachability degrades the report
// but does not fail it: the verification service itself is still up.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	storeOK, issuerOK := h.service.Health(r.Context())

	resp := HealthResponse{Status: "ok", Database: "up", Issuer: "up"}
	status := http.StatusOK
	if !storeOK {
		resp.Status = "degraded"
		resp.Database = "down"
		status = http.StatusServiceUnavailable
	}
	if !issuerOK {
		resp.Status = "degraded"
		resp.Issuer = "down"
	}
	h.rp.Write(w, status, "health", resp)
}
