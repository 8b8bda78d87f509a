package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"attest/internal/audit"
	"attest/internal/credential/metrics"
	"attest/internal/credential/models"
	"attest/internal/credential/signature"
	"attest/internal/credential/store"
	dErrors "attest/pkg/domain-errors"
	"attest/pkg/platform/sentinel"
	"attest/pkg/requestcontext"
)

// IssuerName is the fixed authority recorded on every credential.
const IssuerName = "attest-issuer"

// defaultValidity applies when the caller does not supply an expiry date.
const defaultValidity = 365 * 24 * time.Hour

// AlreadyIssuedError reports a duplicate (holder, type) pair along with the
// credential that already covers it. Duplicate issuance is a client-visible
// conflict, not silent idempotence.
type AlreadyIssuedError struct {
	Existing *models.Credential
}

func (e *AlreadyIssuedError) Error() string {
	return fmt.Sprintf("credential already issued for holder %q type %q", e.Existing.HolderName, e.Existing.CredentialType)
}

// IssueRequest is the validated input to the issuance workflow.
type IssueRequest struct {
	HolderName     string
	CredentialType string
	ExpiryDate     *time.Time
}

// Service orchestrates credential issuance and lookups.
type Service struct {
	store    store.Store
	engine   *signature.Engine
	logger   *slog.Logger
	workerID string
	metrics  *metrics.Metrics
	audit    *audit.Publisher
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

// New constructs the issuance service.
func New(st store.Store, engine *signature.Engine, logger *slog.Logger, workerID string, opts ...Option) *Service {
	s := &Service{
		store:    st,
		engine:   engine,
		logger:   logger,
		workerID: workerID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue creates and persists a signed credential. Duplicate prevention is
// insert-first: the store's uniqueness constraint decides, and on conflict the
// existing credential is fetched to build the conflict payload. There is no
// read-before-write window for two concurrent requests to slip through.
func (s *Service) Issue(ctx context.Context, req IssueRequest) (*models.Credential, error) {
	start := time.Now()
	now := requestcontext.Now(ctx).UTC().Truncate(time.Millisecond)

	expiry := now.Add(defaultValidity)
	if req.ExpiryDate != nil {
		expiry = req.ExpiryDate.UTC().Truncate(time.Millisecond)
	}

	credential := &models.Credential{
		ID:             signature.NewID(),
		HolderName:     req.HolderName,
		CredentialType: req.CredentialType,
		Issuer:         IssuerName,
		IssuedDate:     now,
		ExpiryDate:     expiry,
		WorkerID:       s.workerID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	credential.Signature = s.engine.Sign(credential.CanonicalFields())

	if err := s.store.Create(ctx, credential); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, s.alreadyIssued(ctx, req)
		}
		s.logger.ErrorContext(ctx, "failed to persist credential",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
			"holder_name", req.HolderName,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue credential")
	}

	s.metrics.IncIssued()
	s.metrics.ObserveIssueDuration(time.Since(start).Seconds())
	s.emitAudit(ctx, audit.EventCredentialIssued, credential.ID, map[string]string{
		"holder_name":     credential.HolderName,
		"credential_type": credential.CredentialType,
	})
	s.logger.InfoContext(ctx, "credential issued",
		"request_id", requestcontext.RequestID(ctx),
		"credential_id", credential.ID,
		"credential_type", credential.CredentialType,
	)
	return credential, nil
}

// alreadyIssued resolves the conflicting row after a constraint rejection.
func (s *Service) alreadyIssued(ctx context.Context, req IssueRequest) error {
	existing, err := s.store.FindByHolderAndType(ctx, req.HolderName, req.CredentialType)
	if err != nil {
		// The row that beat us should be readable; if it is not, something
		// else is wrong with the store.
		s.logger.ErrorContext(ctx, "conflict row lookup failed",
			"error", err,
			"holder_name", req.HolderName,
		)
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue credential")
	}

	s.metrics.IncDuplicate()
	s.emitAudit(ctx, audit.EventCredentialDuplicate, existing.ID, map[string]string{
		"holder_name":     req.HolderName,
		"credential_type": req.CredentialType,
	})
	return &AlreadyIssuedError{Existing: existing}
}

// Get fetches a credential by id.
func (s *Service) Get(ctx context.Context, id string) (*models.Credential, error) {
	credential, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "credential not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to fetch credential")
	}
	return credential, nil
}

// VerifyLocal recomputes the signature over a credential's own fields.
// Exposed so the fetch endpoint can report is_valid alongside the record.
func (s *Service) VerifyLocal(credential *models.Credential) bool {
	return s.engine.Verify(credential.CanonicalFields(), credential.Signature)
}

// List returns one page of credentials, newest first, plus the total count.
func (s *Service) List(ctx context.Context, page, limit int) ([]*models.Credential, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	offset := (page - 1) * limit

	credentials, err := s.store.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list credentials")
	}
	total, err := s.store.Count(ctx)
	if err != nil {
		return nil, 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list credentials")
	}
	return credentials, total, nil
}

// Health reports store reachability.
func (s *Service) Health(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) emitAudit(ctx context.Context, eventType audit.EventType, subject string, detail map[string]string) {
	if s.audit == nil {
		return
	}
	s.audit.Emit(ctx, audit.Event{
		Type:     eventType,
		WorkerID: s.workerID,
		Subject:  subject,
		Detail:   detail,
	})
}
