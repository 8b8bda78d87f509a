package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"attest/internal/audit"
	credmodels "attest/internal/credential/models"
	"attest/internal/credential/signature"
	"attest/internal/verification/metrics"
	"attest/internal/verification/models"
	"attest/internal/verification/store"
	dErrors "attest/pkg/domain-errors"
	"attest/pkg/platform/sentinel"
	"attest/pkg/requestcontext"
)

// IssuerClient fetches the authoritative record from the issuance service.
type IssuerClient interface {
	GetCredential(ctx context.Context, id string) (*credmodels.Credential, error)
	Health(ctx context.Context) bool
}

// Service drives a submitted credential through the verification state
// machine: signature check, authoritative lookup, field equality, expiry.
// Each step is terminal on failure and short-circuits the rest.
type Service struct {
	store    store.Store
	issuer   IssuerClient
	engine   *signature.Engine
	logger   *slog.Logger
	workerID string
	metrics  *metrics.Metrics
	audit    *audit.Publisher
	tracer   trace.Tracer
}

// Option configures optional service collaborators.
type Option func(*Service)

// WithMetrics attaches prometheus metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithAudit attaches the audit publisher.
func WithAudit(p *audit.Publisher) Option {
	return func(s *Service) { s.audit = p }
}

// New constructs the verification service.
func New(st store.Store, issuer IssuerClient, engine *signature.Engine, logger *slog.Logger, workerID string, opts ...Option) *Service {
	s := &Service{
		store:    st,
		issuer:   issuer,
		engine:   engine,
		logger:   logger,
		workerID: workerID,
		tracer:   otel.Tracer("attest/verification"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Verify classifies a submitted credential and persists exactly one Result
// for every terminal outcome. The one exception is an unreachable issuance
// service: that is an availability problem, not a verdict about the
// credential, so it surfaces as CodeUnavailable and records nothing.
func (s *Service) Verify(ctx context.Context, submitted *credmodels.Credential) (*models.Result, error) {
	ctx, span := s.tracer.Start(ctx, "verification.verify")
	defer span.End()
	span.SetAttributes(attribute.String("credential.id", submitted.ID))
	start := time.Now()

	// Step 1: the credential must be consistent with its own claimed fields.
	// Garbage input is rejected before any network call.
	if !s.engine.Verify(submitted.CanonicalFields(), submitted.Signature) {
		return s.finalize(ctx, span, start, submitted, models.StatusSignatureMismatch, nil)
	}

	// Step 2: fetch the authoritative record.
	authoritative, err := s.issuer.GetCredential(ctx, submitted.ID)
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return s.finalize(ctx, span, start, submitted, models.StatusNotFound, nil)
		case errors.Is(err, sentinel.ErrUnavailable):
			s.metrics.IncIssuerUnavailable()
			s.logger.ErrorContext(ctx, "issuance service unreachable",
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
				"credential_id", submitted.ID,
			)
			return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "issuance service unreachable")
		default:
			// Unexpected failure mid-machine: classify conservatively rather
			// than propagate, and still record the attempt.
			s.logger.ErrorContext(ctx, "unexpected error during authoritative lookup",
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
				"credential_id", submitted.ID,
			)
			return s.finalize(ctx, span, start, submitted, models.StatusInvalid, nil)
		}
	}

	// Step 3: the submitted copy must match the record of truth field by
	// field. This catches credentials re-signed under a different secret and
	// copies with altered metadata.
	if !submitted.Equal(authoritative) {
		return s.finalize(ctx, span, start, submitted, models.StatusInvalid, nil)
	}

	// Step 4: expiry is judged on the authoritative record.
	if authoritative.IsExpired(requestcontext.Now(ctx)) {
		return s.finalize(ctx, span, start, submitted, models.StatusExpired, authoritative)
	}
	return s.finalize(ctx, span, start, submitted, models.StatusValid, authoritative)
}

// finalize builds, persists, and reports the terminal Result. authoritative
// is non-nil only when a matching record was found (valid or expired); its
// worker id and issued date are copied onto the result.
func (s *Service) finalize(
	ctx context.Context,
	span trace.Span,
	start time.Time,
	submitted *credmodels.Credential,
	status models.Status,
	authoritative *credmodels.Credential,
) (*models.Result, error) {
	now := requestcontext.Now(ctx).UTC().Truncate(time.Millisecond)
	result := &models.Result{
		ID:           signature.NewID(),
		CredentialID: submitted.ID,
		IsValid:      status == models.StatusValid,
		IsExpired:    status == models.StatusExpired,
		Status:       status,
		VerifiedBy:   s.workerID,
		VerifiedAt:   now,
		CreatedAt:    now,
	}
	if authoritative != nil {
		workerID := authoritative.WorkerID
		issuedDate := authoritative.IssuedDate
		result.IssuerWorkerID = &workerID
		result.IssuedDate = &issuedDate
	}

	if err := s.store.Create(ctx, result); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist verification result",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
			"credential_id", submitted.ID,
			"status", status,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record verification")
	}

	span.SetAttributes(attribute.String("verification.status", string(status)))
	s.metrics.IncStatus(string(status))
	s.metrics.ObserveVerifyDuration(time.Since(start).Seconds())
	s.emitAudit(ctx, result)
	s.logger.InfoContext(ctx, "verification completed",
		"request_id", requestcontext.RequestID(ctx),
		"verification_id", result.ID,
		"credential_id", result.CredentialID,
		"status", status,
	)
	return result, nil
}

// Get fetches a stored verification result by id.
func (s *Service) Get(ctx context.Context, id string) (*models.Result, error) {
	result, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "verification not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to fetch verification")
	}
	return result, nil
}

// ListByCredential returns every verification attempt for a credential id.
func (s *Service) ListByCredential(ctx context.Context, credentialID string) ([]*models.Result, error) {
	results, err := s.store.ListByCredentialID(ctx, credentialID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list verifications")
	}
	return results, nil
}

// Health reports store reachability and issuer reachability.
func (s *Service) Health(ctx context.Context) (storeOK bool, issuerOK bool) {
	return s.store.Ping(ctx) == nil, s.issuer.Health(ctx)
}

func (s *Service) emitAudit(ctx context.Context, result *models.Result) {
	if s.audit == nil {
		return
	}
	s.audit.Emit(ctx, audit.Event{
		Type:     audit.EventVerificationComplete,
		WorkerID: s.workerID,
		Subject:  result.CredentialID,
		Detail: map[string]string{
			"verification_id": result.ID,
			"status":          string(result.Status),
		},
	})
}
