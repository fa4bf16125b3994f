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

const counselorResource = "counselor"

type counselorRepository interface {
	List(ctx context.Context) ([]models.CounselorWithTopics, error)
	FindByNIK(ctx context.Context, nik string) (*models.CounselorWithTopics, error)
	Exists(ctx context.Context, nik string) (bool, error)
	Update(ctx context.Context, counselor *models.Counselor) error
	Delete(ctx context.Context, nik string) error
	AddExpertise(ctx context.Context, nik, topicID string) (bool, error)
	RemoveExpertise(ctx context.Context, nik, topicID string) error
	ListIdle(ctx context.Context) ([]models.Counselor, error)
	SessionSummary(ctx context.Context) ([]models.CounselorSessionSummary, error)
}

// CounselorService handles counselor profiles and expertise.
type CounselorService struct {
	repo      counselorRepository
	topics    sessionTopicReader
	audit     auditLogger
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCounselorService constructs a CounselorService.
func NewCounselorService(repo counselorRepository, topics sessionTopicReader, audit auditLogger, validate *validator.Validate, logger *zap.Logger) *CounselorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CounselorService{repo: repo, topics: topics, audit: audit, validator: validate, logger: logger}
}

// List returns all counselors with their expertise topic names.
func (s *CounselorService) List(ctx context.Context) ([]models.CounselorWithTopics, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list counselors")
	}
	return items, nil
}

// Get returns a counselor by NIK.
func (s *CounselorService) Get(ctx context.Context, nik string) (*models.CounselorWithTopics, error) {
	counselor, err := s.repo.FindByNIK(ctx, nik)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrCounselorNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load counselor")
	}
	return counselor, nil
}

// Update edits a counselor profile.
func (s *CounselorService) Update(ctx context.Context, caller *models.JWTClaims, nik string, req dto.UpdateCounselorRequest) (*models.Counselor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid counselor payload")
	}
	counselor := &models.Counselor{
		NIK:            nik,
		Name:           normalizeName(req.Name),
		Specialization: strings.TrimSpace(req.Specialization),
		Contact:        req.Contact,
	}
	if err := s.repo.Update(ctx, counselor); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrCounselorNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update counselor")
	}
	recordProfileAudit(ctx, s.audit, s.logger, caller, models.AuditActionProfileUpdate, counselorResource, nik, counselor)
	return counselor, nil
}

// Delete removes a counselor with its expertise and account. Counselors that
// still have sessions are refused.
func (s *CounselorService) Delete(ctx context.Context, caller *models.JWTClaims, nik string) error {
	if err := s.repo.Delete(ctx, nik); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return appErrors.ErrCounselorNotFound
		case errors.Is(err, repository.ErrReferenced):
			return appErrors.Clone(appErrors.ErrConflict, "counselor still has counseling sessions")
		}
		s.logger.Error("failed to delete counselor", zap.String("nik", nik), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete counselor")
	}
	recordProfileAudit(ctx, s.audit, s.logger, caller, models.AuditActionProfileDelete, counselorResource, nik, nil)
	return nil
}

// AddExpertise links a topic to a counselor. Existing links are reported
// with Created false.
func (s *CounselorService) AddExpertise(ctx context.Context, caller *models.JWTClaims, nik string, req dto.AddExpertiseRequest) (*dto.ExpertiseResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid expertise payload")
	}
	exists, err := s.repo.Exists(ctx, nik)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load counselor")
	}
	if !exists {
		return nil, appErrors.ErrCounselorNotFound
	}
	if _, err := s.topics.FindByID(ctx, req.TopicID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "topic not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load topic")
	}

	created, err := s.repo.AddExpertise(ctx, nik, req.TopicID)
	if err != nil {
		if errors.Is(err, repository.ErrReferenced) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "counselor or topic not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to add expertise")
	}
	if created {
		recordProfileAudit(ctx, s.audit, s.logger, caller, models.AuditActionProfileUpdate, counselorResource, nik,
			map[string]string{"added_topic": req.TopicID})
	}
	return &dto.ExpertiseResult{CounselorNIK: nik, TopicID: req.TopicID, Created: created}, nil
}

// RemoveExpertise unlinks a topic from a counselor.
func (s *CounselorService) RemoveExpertise(ctx context.Context, caller *models.JWTClaims, nik, topicID string) error {
	if err := s.repo.RemoveExpertise(ctx, nik, topicID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "expertise not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove expertise")
	}
	recordProfileAudit(ctx, s.audit, s.logger, caller, models.AuditActionProfileUpdate, counselorResource, nik,
		map[string]string{"removed_topic": topicID})
	return nil
}

// ListIdle returns counselors that never had a session.
func (s *CounselorService) ListIdle(ctx context.Context) ([]models.Counselor, error) {
	items, err := s.repo.ListIdle(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list idle counselors")
	}
	return items, nil
}

// SessionSummary returns per-counselor session counts.
func (s *CounselorService) SessionSummary(ctx context.Context) ([]models.CounselorSessionSummary, error) {
	items, err := s.repo.SessionSummary(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to summarise counselor sessions")
	}
	return items, nil
}
