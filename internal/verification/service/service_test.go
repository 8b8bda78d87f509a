package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	credmodels "attest/internal/credential/models"
	"attest/internal/credential/signature"
	"attest/internal/verification/models"
	"attest/internal/verification/store"
	dErrors "attest/pkg/domain-errors"
	"attest/pkg/platform/sentinel"
	"attest/pkg/requestcontext"
)

// fakeIssuer is a call-recording issuer client. Lookups return the configured
// credential, sentinel error, or generic error, and count every call so tests
// can assert the short-circuit behavior of the state machine.
type fakeIssuer struct {
	credential *credmodels.Credential
	err        error
	healthy    bool
	calls      int
}

func (f *fakeIssuer) GetCredential(_ context.Context, _ string) (*credmodels.Credential, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.credential == nil {
		return nil, sentinel.ErrNotFound
	}
	copied := *f.credential
	return &copied, nil
}

func (f *fakeIssuer) Health(_ context.Context) bool { return f.healthy }

var testEngine = signature.NewEngine("test-secret")

func issuedCredential(t *testing.T, now time.Time, validity time.Duration) *credmodels.Credential {
	t.Helper()
	issued := now.UTC().Truncate(time.Millisecond)
	cred := &credmodels.Credential{
		ID:             signature.NewID(),
		HolderName:     "John Doe",
		CredentialType: "certificate",
		Issuer:         "attest-issuer",
		IssuedDate:     issued,
		ExpiryDate:     issued.Add(validity),
		WorkerID:       "issuer-1",
		CreatedAt:      issued,
		UpdatedAt:      issued,
	}
	cred.Signature = testEngine.Sign(cred.CanonicalFields())
	return cred
}

func newVerifier(t *testing.T, issuer *fakeIssuer) (*Service, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return New(st, issuer, testEngine, logger, "verifier-1"), st
}

func TestVerifyValid(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	cred := issuedCredential(t, now, 365*24*time.Hour)
	issuer := &fakeIssuer{credential: cred}
	svc, st := newVerifier(t, issuer)
	ctx := requestcontext.WithTime(context.Background(), now)

	submitted := *cred
	result, err := svc.Verify(ctx, &submitted)
	require.NoError(t, err)

	assert.Equal(t, models.StatusValid, result.Status)
	assert.True(t, result.IsValid)
	assert.False(t, result.IsExpired)
	assert.Equal(t, cred.ID, result.CredentialID)
	assert.Equal(t, "verifier-1", result.VerifiedBy)
	require.NotNil(t, result.IssuerWorkerID, "authoritative worker id must be copied")
	assert.Equal(t, "issuer-1", *result.IssuerWorkerID)
	require.NotNil(t, result.IssuedDate)
	assert.True(t, cred.IssuedDate.Equal(*result.IssuedDate))
	assert.Equal(t, 1, st.Count(), "exactly one result persisted")
}

func TestVerifySignatureMismatchSkipsLookup(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	cred := issuedCredential(t, now, 365*24*time.Hour)
	issuer := &fakeIssuer{credential: cred}
	svc, st := newVerifier(t, issuer)
	ctx := requestcontext.WithTime(context.Background(), now)

	tampered := *cred
	tampered.Signature = "0000" + tampered.Signature[4:]
	result, err := svc.Verify(ctx, &tampered)
	require.NoError(t, err)

	assert.Equal(t, models.StatusSignatureMismatch, result.Status)
	assert.False(t, result.IsValid)
	assert.False(t, result.IsExpired)
	assert.Nil(t, result.IssuerWorkerID)
	assert.Equal(t, 0, issuer.calls, "mismatched signature must never reach the issuer")
	assert.Equal(t, 1, st.Count())
}

func TestVerifyTamperedCanonicalFieldIsSignatureMismatch(t *testing.T) {
	// Flipping holder_name without re-signing breaks the credential's own
	// signature; the state machine must stop at step 1, not reach field
	// comparison.
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	cred := issuedCredential(t, now, 365*24*time.Hour)
	issuer := &fakeIssuer{credential: cred}
	svc, _ := newVerifier(t, issuer)
	ctx := requestcontext.WithTime(context.Background(), now)

	tampered := *cred
	tampered.HolderName = "Jahn Doe"
	result, err := svc.Verify(ctx, &tampered)
	require.NoError(t, err)

	assert.Equal(t, models.StatusSignatureMismatch, result.Status)
	assert.Equal(t, 0, issuer.calls)
}

func TestVerifyNotFound(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	cred := issuedCredential(t, now, 365*24*time.Hour)
	issuer := &fakeIssuer{} // no record
	svc, st := newVerifier(t, issuer)
	ctx := requestcontext.WithTime(context.Background(), now)

	result, err := svc.Verify(ctx, cred)
	require.NoError(t, err)

	assert.Equal(t, models.StatusNotFound, result.Status)
	assert.False(t, result.IsValid)
	assert.Nil(t, result.IssuerWorkerID)
	assert.Equal(t, 1, issuer.calls)
	assert.Equal(t, 1, st.Count())
}

func TestVerifyForgedCopyIsInvalid(t *testing.T) {
	// A copy that is self-consistent (it passes its own signature check) but
	// diverges from the record of truth must be caught by field equality.
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	cred := issuedCredential(t, now, 365*24*time.Hour)
	issuer := &fakeIssuer{credential: cred}
	svc, st := newVerifier(t, issuer)
	ctx := requestcontext.WithTime(context.Background(), now)

	forged := *cred
	forged.ExpiryDate = forged.ExpiryDate.Add(365 * 24 * time.Hour)
	forged.Signature = testEngine.Sign(forged.CanonicalFields())

	result, err := svc.Verify(ctx, &forged)
	require.NoError(t, err)

	assert.Equal(t, models.StatusInvalid, result.Status)
	assert.False(t, result.IsValid)
	assert.Nil(t, result.IssuerWorkerID, "no matching record, no issuer fields")
	assert.Equal(t, 1, st.Count())
}

func TestVerifyExpired(t *testing.T) {
	issuedAt := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	cred := issuedCredential(t, issuedAt, 24*time.Hour)
	issuer := &fakeIssuer{credential: cred}
	svc, st := newVerifier(t, issuer)
	now := issuedAt.Add(48 * time.Hour)
	ctx := requestcontext.WithTime(context.Background(), now)

	submitted := *cred
	result, err := svc.Verify(ctx, &submitted)
	require.NoError(t, err)

	assert.Equal(t, models.StatusExpired, result.Status)
	assert.False(t, result.IsValid)
	assert.True(t, result.IsExpired)
	require.NotNil(t, result.IssuerWorkerID, "expired-but-authentic still copies issuer fields")
	assert.Equal(t, 1, st.Count())
}

func TestVerifyIssuerUnavailableIsNotAVerdict(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	cred := issuedCredential(t, now, 365*24*time.Hour)
	issuer := &fakeIssuer{err: sentinel.ErrUnavailable}
	svc, st := newVerifier(t, issuer)
	ctx := requestcontext.WithTime(context.Background(), now)

	_, err := svc.Verify(ctx, cred)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
	assert.Equal(t, 0, st.Count(), "availability failures must not pollute the audit trail")
}

func TestVerifyUnexpectedLookupErrorCollapsesToInvalid(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	cred := issuedCredential(t, now, 365*24*time.Hour)
	issuer := &fakeIssuer{err: errors.New("malformed payload")}
	svc, st := newVerifier(t, issuer)
	ctx := requestcontext.WithTime(context.Background(), now)

	result, err := svc.Verify(ctx, cred)
	require.NoError(t, err)

	assert.Equal(t, models.StatusInvalid, result.Status)
	assert.Equal(t, 1, st.Count())
}

func TestVerifyEveryOutcomePersistsExactlyOneResult(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	cred := issuedCredential(t, now, 365*24*time.Hour)
	issuer := &fakeIssuer{credential: cred}
	svc, st := newVerifier(t, issuer)
	ctx := requestcontext.WithTime(context.Background(), now)

	for i := range 3 {
		submitted := *cred
		_, err := svc.Verify(ctx, &submitted)
		require.NoError(t, err)
		assert.Equal(t, i+1, st.Count(), "each attempt appends a new result")
	}

	attempts, err := svc.ListByCredential(ctx, cred.ID)
	require.NoError(t, err)
	assert.Len(t, attempts, 3)
}

func TestVerifyPersistFailureSurfacesInternal(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	cred := issuedCredential(t, now, 365*24*time.Hour)
	issuer := &fakeIssuer{credential: cred}
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	svc := New(failingStore{}, issuer, testEngine, logger, "verifier-1")
	ctx := requestcontext.WithTime(context.Background(), now)

	_, err := svc.Verify(ctx, cred)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
}

func TestGetNotFound(t *testing.T) {
	svc, _ := newVerifier(t, &fakeIssuer{})
	_, err := svc.Get(context.Background(), "missing")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

type failingStore struct{}

var errDown = errors.New("connection refused")

func (failingStore) Create(context.Context, *models.Result) error { return errDown }
func (failingStore) FindByID(context.Context, string) (*models.Result, error) {
	return nil, errDown
}
func (failingStore) ListByCredentialID(context.Context, string) ([]*models.Result, error) {
	return nil, errDown
}
func (failingStore) Ping(context.Context) error { return errDown }
