package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/counseling-api/internal/dto"
	"github.com/noah-isme/counseling-api/internal/models"
	"github.com/noah-isme/counseling-api/internal/repository"
	appErrors "github.com/noah-isme/counseling-api/pkg/errors"
)

type studentRepoStub struct {
	students    map[string]*models.Student
	deleteErr   error
	listFilter  models.StudentFilter
	minSessions int
	recommendTo string
	limit       int
}

func (s *studentRepoStub) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	s.listFilter = filter
	out := make([]models.Student, 0, len(s.students))
	for _, st := range s.students {
		out = append(out, *st)
	}
	return out, len(out), nil
}

func (s *studentRepoStub) FindByNRP(ctx context.Context, nrp string) (*models.Student, error) {
	if st, ok := s.students[nrp]; ok {
		return st, nil
	}
	return nil, sql.ErrNoRows
}

func (s *studentRepoStub) Update(ctx context.Context, student *models.Student) error {
	if _, ok := s.students[student.NRP]; !ok {
		return sql.ErrNoRows
	}
	s.students[student.NRP] = student
	return nil
}

func (s *studentRepoStub) Delete(ctx context.Context, nrp string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if _, ok := s.students[nrp]; !ok {
		return sql.ErrNoRows
	}
	delete(s.students, nrp)
	return nil
}

func (s *studentRepoStub) RecentActivity(ctx context.Context) ([]models.StudentActivity, error) {
	return []models.StudentActivity{{NRP: "5025211001"}}, nil
}

func (s *studentRepoStub) ListByTopic(ctx context.Context, topicID string) ([]models.Student, error) {
	return nil, nil
}

func (s *studentRepoStub) RecurringIssues(ctx context.Context, minSessions int) ([]models.RecurringIssue, error) {
	s.minSessions = minSessions
	return nil, nil
}

func (s *studentRepoStub) Recommendations(ctx context.Context, nrp string, limit int) ([]models.CounselorRecommendation, error) {
	s.recommendTo, s.limit = nrp, limit
	return nil, nil
}

func newStudentFixture() (*StudentService, *studentRepoStub, *auditLoggerStub) {
	repo := &studentRepoStub{students: map[string]*models.Student{
		"5025211001": {NRP: "5025211001", Name: "Budi Santoso", Department: "Informatika"},
	}}
	audit := &auditLoggerStub{}
	return NewStudentService(repo, audit, nil, zap.NewNop()), repo, audit
}

func TestStudentServiceListDefaultsPaging(t *testing.T) {
	svc, repo, _ := newStudentFixture()

	items, pagination, err := svc.List(context.Background(), models.StudentFilter{PageSize: 500})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, repo.listFilter.PageSize)
	assert.Equal(t, 1, pagination.TotalCount)
}

func TestStudentServiceGetMissing(t *testing.T) {
	svc, _, _ := newStudentFixture()

	_, err := svc.Get(context.Background(), "0000")
	requireCode(t, err, appErrors.ErrNotFound)
}

func TestStudentServiceUpdateNormalizesName(t *testing.T) {
	svc, repo, audit := newStudentFixture()

	updated, err := svc.Update(context.Background(), admin, "5025211001", dto.UpdateStudentRequest{
		Name:       "  budi   SANTOSO ",
		Department: " Sistem Informasi ",
	})
	require.NoError(t, err)
	assert.Equal(t, "Budi Santoso", updated.Name)
	assert.Equal(t, "Sistem Informasi", repo.students["5025211001"].Department)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionProfileUpdate, audit.logs[0].Action)
}

func TestStudentServiceUpdateValidation(t *testing.T) {
	svc, _, _ := newStudentFixture()

	_, err := svc.Update(context.Background(), admin, "5025211001", dto.UpdateStudentRequest{})
	requireCode(t, err, appErrors.ErrValidation)
}

func TestStudentServiceDelete(t *testing.T) {
	svc, repo, audit := newStudentFixture()

	require.NoError(t, svc.Delete(context.Background(), admin, "5025211001"))
	assert.Empty(t, repo.students)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionProfileDelete, audit.logs[0].Action)

	requireCode(t, svc.Delete(context.Background(), admin, "5025211001"), appErrors.ErrNotFound)
}

func TestStudentServiceDeleteWithSessionsConflicts(t *testing.T) {
	svc, repo, audit := newStudentFixture()
	repo.deleteErr = repository.ErrReferenced

	err := svc.Delete(context.Background(), admin, "5025211001")
	requireCode(t, err, appErrors.ErrConflict)
	assert.Len(t, repo.students, 1)
	assert.Empty(t, audit.logs)
}

func TestStudentServiceDeleteInternalError(t *testing.T) {
	svc, repo, _ := newStudentFixture()
	repo.deleteErr = errors.New("connection reset")

	requireCode(t, svc.Delete(context.Background(), admin, "5025211001"), appErrors.ErrInternal)
}

func TestStudentServiceAggregates(t *testing.T) {
	svc, repo, _ := newStudentFixture()
	ctx := context.Background()

	activity, err := svc.RecentActivity(ctx)
	require.NoError(t, err)
	assert.Len(t, activity, 1)

	_, err = svc.RecurringIssues(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.minSessions)

	_, err = svc.ListByTopic(ctx, " ")
	requireCode(t, err, appErrors.ErrValidation)
}

func TestStudentServiceRecommendations(t *testing.T) {
	svc, repo, _ := newStudentFixture()

	_, err := svc.Recommendations(context.Background(), student, 0)
	require.NoError(t, err)
	assert.Equal(t, student.EntityID, repo.recommendTo)
	assert.Equal(t, 5, repo.limit)

	_, err = svc.Recommendations(context.Background(), konselor1, 3)
	requireCode(t, err, appErrors.ErrForbidden)
}
