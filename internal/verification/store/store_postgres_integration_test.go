//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"attest/internal/credential/signature"
	"attest/internal/verification/models"
	"attest/internal/verification/store"
	"attest/pkg/platform/sentinel"
	"attest/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateAll(context.Background()))
}

func (s *PostgresStoreSuite) newResult(credentialID string, status models.Status, at time.Time) *models.Result {
	return &models.Result{
		ID:           signature.NewID(),
		CredentialID: credentialID,
		IsValid:      status == models.StatusValid,
		IsExpired:    status == models.StatusExpired,
		Status:       status,
		VerifiedBy:   "verifier-1",
		VerifiedAt:   at,
		CreatedAt:    at,
	}
}

func (s *PostgresStoreSuite) TestCreateAndFindWithIssuerFields() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	workerID := "issuer-1"
	issued := now.Add(-24 * time.Hour)
	result := s.newResult("cred-1", models.StatusValid, now)
	result.IssuerWorkerID = &workerID
	result.IssuedDate = &issued
	s.Require().NoError(s.store.Create(ctx, result))

	found, err := s.store.FindByID(ctx, result.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusValid, found.Status)
	s.True(found.IsValid)
	s.Require().NotNil(found.IssuerWorkerID)
	s.Equal("issuer-1", *found.IssuerWorkerID)
	s.Require().NotNil(found.IssuedDate)
	s.True(issued.Equal(*found.IssuedDate))
}

func (s *PostgresStoreSuite) TestCreateWithoutIssuerFields() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	result := s.newResult("cred-2", models.StatusSignatureMismatch, now)
	s.Require().NoError(s.store.Create(ctx, result))

	found, err := s.store.FindByID(ctx, result.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusSignatureMismatch, found.Status)
	s.Nil(found.IssuerWorkerID)
	s.Nil(found.IssuedDate)
}

func (s *PostgresStoreSuite) TestFindByIDNotFound() {
	_, err := s.store.FindByID(context.Background(), "missing")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestListByCredentialNewestFirst() {
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Millisecond)

	first := s.newResult("cred-3", models.StatusNotFound, base.Add(-2*time.Hour))
	second := s.newResult("cred-3", models.StatusValid, base)
	other := s.newResult("cred-other", models.StatusValid, base)
	for _, r := range []*models.Result{first, second, other} {
		s.Require().NoError(s.store.Create(ctx, r))
	}

	results, err := s.store.ListByCredentialID(ctx, "cred-3")
	s.Require().NoError(err)
	s.Require().Len(results, 2)
	s.Equal(second.ID, results[0].ID)
	s.Equal(first.ID, results[1].ID)
}
