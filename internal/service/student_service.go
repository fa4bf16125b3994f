package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/counseling-api/internal/dto"
	"github.com/noah-isme/counseling-api/internal/models"
	"github.com/noah-isme/counseling-api/internal/repository"
	appErrors "github.com/noah-isme/counseling-api/pkg/errors"
)

const (
	studentResource        = "student"
	recurringIssueMinimum  = 2
	recommendationsDefault = 5
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByNRP(ctx context.Context, nrp string) (*models.Student, error)
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, nrp string) error
	RecentActivity(ctx context.Context) ([]models.StudentActivity, error)
	ListByTopic(ctx context.Context, topicID string) ([]models.Student, error)
	RecurringIssues(ctx context.Context, minSessions int) ([]models.RecurringIssue, error)
	Recommendations(ctx context.Context, nrp string, limit int) ([]models.CounselorRecommendation, error)
}

// StudentService handles student profile use-cases.
type StudentService struct {
	repo      studentRepository
	audit     auditLogger
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, audit auditLogger, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, audit: audit, validator: validate, logger: logger}
}

// List returns students with pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Get returns a student by NRP.
func (s *StudentService) Get(ctx context.Context, nrp string) (*models.Student, error) {
	student, err := s.repo.FindByNRP(ctx, nrp)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// Update edits the profile of a student.
func (s *StudentService) Update(ctx context.Context, caller *models.JWTClaims, nrp string, req dto.UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	student := &models.Student{
		NRP:        nrp,
		Name:       normalizeName(req.Name),
		Department: strings.TrimSpace(req.Department),
		Contact:    req.Contact,
	}
	if err := s.repo.Update(ctx, student); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	recordProfileAudit(ctx, s.audit, s.logger, caller, models.AuditActionProfileUpdate, studentResource, nrp, student)
	return student, nil
}

// Delete removes a student and its account. Students with sessions are kept.
func (s *StudentService) Delete(ctx context.Context, caller *models.JWTClaims, nrp string) error {
	if err := s.repo.Delete(ctx, nrp); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		case errors.Is(err, repository.ErrReferenced):
			return appErrors.Clone(appErrors.ErrConflict, "student still has counseling sessions")
		}
		s.logger.Error("failed to delete student", zap.String("nrp", nrp), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	recordProfileAudit(ctx, s.audit, s.logger, caller, models.AuditActionProfileDelete, studentResource, nrp, nil)
	return nil
}

// RecentActivity lists students with the date of their latest session.
func (s *StudentService) RecentActivity(ctx context.Context) ([]models.StudentActivity, error) {
	items, err := s.repo.RecentActivity(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student activity")
	}
	return items, nil
}

// ListByTopic returns students who booked the given topic.
func (s *StudentService) ListByTopic(ctx context.Context, topicID string) ([]models.Student, error) {
	topicID = strings.TrimSpace(topicID)
	if topicID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "topic_id is required")
	}
	items, err := s.repo.ListByTopic(ctx, topicID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students by topic")
	}
	return items, nil
}

// RecurringIssues returns students with repeated sessions on one topic.
func (s *StudentService) RecurringIssues(ctx context.Context) ([]models.RecurringIssue, error) {
	items, err := s.repo.RecurringIssues(ctx, recurringIssueMinimum)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list recurring issues")
	}
	return items, nil
}

// Recommendations suggests counselors for the calling student.
func (s *StudentService) Recommendations(ctx context.Context, caller *models.JWTClaims, limit int) ([]models.CounselorRecommendation, error) {
	if caller == nil || caller.Role != models.RoleMahasiswa {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "recommendations are available to students only")
	}
	if limit <= 0 || limit > 20 {
		limit = recommendationsDefault
	}
	items, err := s.repo.Recommendations(ctx, caller.EntityID, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build recommendations")
	}
	return items, nil
}

func recordProfileAudit(ctx context.Context, audit auditLogger, logger *zap.Logger, caller *models.JWTClaims, action, resource, id string, values interface{}) {
	entry := &models.AuditLog{Action: action, Resource: resource, ResourceID: &id}
	if caller != nil {
		entry.AccountID = &caller.AccountID
	}
	if values != nil {
		entry.NewValues = auditValues(values)
	}
	recordAudit(ctx, audit, logger, entry)
}
