package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/counseling-api/internal/dto"
	"github.com/noah-isme/counseling-api/internal/models"
	appErrors "github.com/noah-isme/counseling-api/pkg/errors"
)

type adminRepoStub struct {
	admins map[string]*models.Admin
}

func (s *adminRepoStub) List(ctx context.Context) ([]models.Admin, error) {
	out := make([]models.Admin, 0, len(s.admins))
	for _, a := range s.admins {
		out = append(out, *a)
	}
	return out, nil
}

func (s *adminRepoStub) FindByID(ctx context.Context, id string) (*models.Admin, error) {
	if a, ok := s.admins[id]; ok {
		return a, nil
	}
	return nil, sql.ErrNoRows
}

func (s *adminRepoStub) Update(ctx context.Context, a *models.Admin) error {
	if _, ok := s.admins[a.ID]; !ok {
		return sql.ErrNoRows
	}
	s.admins[a.ID] = a
	return nil
}

func (s *adminRepoStub) Delete(ctx context.Context, id string) error {
	if _, ok := s.admins[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.admins, id)
	return nil
}

func newAdminFixture() (*AdminService, *adminRepoStub) {
	repo := &adminRepoStub{admins: map[string]*models.Admin{
		"A001": {ID: "A001", Name: "Super Admin"},
		"A002": {ID: "A002", Name: "Staf Akademik"},
	}}
	return NewAdminService(repo, &auditLoggerStub{}, nil, zap.NewNop()), repo
}

func TestAdminServiceUpdate(t *testing.T) {
	svc, repo := newAdminFixture()

	_, err := svc.Update(context.Background(), admin, "A002", dto.UpdateAdminRequest{Name: "staf   kemahasiswaan"})
	require.NoError(t, err)
	assert.Equal(t, "Staf Kemahasiswaan", repo.admins["A002"].Name)

	_, err = svc.Update(context.Background(), admin, "A009", dto.UpdateAdminRequest{Name: "X"})
	requireCode(t, err, appErrors.ErrNotFound)
}

func TestAdminServiceDeleteRejectsSelf(t *testing.T) {
	svc, repo := newAdminFixture()

	requireCode(t, svc.Delete(context.Background(), admin, "A001"), appErrors.ErrValidation)
	assert.Contains(t, repo.admins, "A001")

	require.NoError(t, svc.Delete(context.Background(), admin, "A002"))
	assert.NotContains(t, repo.admins, "A002")
}
