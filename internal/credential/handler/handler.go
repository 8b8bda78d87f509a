package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"attest/internal/credential/models"
	"attest/internal/credential/service"
	"attest/pkg/platform/httputil"
	"attest/pkg/requestcontext"
)

// Service defines the issuance operations the handler depends on.
type Service interface {
	Issue(ctx context.Context, req service.IssueRequest) (*models.Credential, error)
	Get(ctx context.Context, id string) (*models.Credential, error)
	VerifyLocal(credential *models.Credential) bool
	List(ctx context.Context, page, limit int) ([]*models.Credential, int, error)
	Health(ctx context.Context) error
}

// Handler wires issuance endpoints to the issuance service.
type Handler struct {
	service Service
	logger  *slog.Logger
	rp      *httputil.Responder
}

// New constructs an issuance handler with its dependencies.
func New(svc Service, logger *slog.Logger, rp *httputil.Responder) *Handler {
	return &Handler{service: svc, logger: logger, rp: rp}
}

// Register mounts issuance endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/credentials", h.HandleCreate)
	r.Get("/api/credentials", h.HandleList)
	r.Get("/api/credentials/{id}", h.HandleGet)
	r.Get("/health", h.HandleHealth)
}

// HandleCreate handles POST /api/credentials.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.DecodeAndPrepare[CreateCredentialRequest](w, r, h.rp, h.logger)
	if !ok {
		return
	}

	credential, err := h.service.Issue(ctx, service.IssueRequest{
		HolderName:     req.HolderName,
		CredentialType: req.CredentialType,
		ExpiryDate:     req.ExpiryDate,
	})
	if err != nil {
		var dup *service.AlreadyIssuedError
		if errors.As(err, &dup) {
			h.rp.Write(w, http.StatusConflict, "credential already issued for this holder and type", DuplicateResponse{
				ExistingCredentialID: dup.Existing.ID,
				IssuedDate:           dup.Existing.IssuedDate,
				WorkerID:             dup.Existing.WorkerID,
			})
			return
		}
		h.rp.WriteError(w, err)
		return
	}

	h.rp.Write(w, http.StatusCreated, "credential issued", FromCredential(credential))
}

// HandleGet handles GET /api/credentials/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	credential, err := h.service.Get(ctx, id)
	if err != nil {
		h.rp.WriteError(w, err)
		return
	}

	now := requestcontext.Now(ctx)
	h.rp.Write(w, http.StatusOK, "credential found", CredentialDetailResponse{
		CredentialResponse: FromCredential(credential),
		IsValid:            h.service.VerifyLocal(credential) && !credential.IsExpired(now),
		IsExpired:          credential.IsExpired(now),
	})
}

// HandleList handles GET /api/credentials?page&limit.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	credentials, total, err := h.service.List(ctx, page, limit)
	if err != nil {
		h.rp.WriteError(w, err)
		return
	}

	totalPages := (total + limit - 1) / limit
	h.rp.Write(w, http.StatusOK, "credentials listed", ListResponse{
		Credentials: FromCredentials(credentials),
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
		},
	})
}

// HandleHealth handles GET /health.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	resp := HealthResponse{Status: "ok", Database: "up"}
	status := http.StatusOK
	if err := h.service.Health(ctx); err != nil {
		h.logger.ErrorContext(ctx, "health check failed", "error", err)
		resp = HealthResponse{Status: "degraded", Database: "down"}
		status = http.StatusServiceUnavailable
	}
	h.rp.Write(w, status, "health", resp)
}
