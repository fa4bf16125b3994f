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

const topicResource = "topic"

type topicRepository interface {
	List(ctx context.Context) ([]models.Topic, error)
	FindByID(ctx context.Context, id string) (*models.Topic, error)
	Create(ctx context.Context, topic *models.Topic) error
	Update(ctx context.Context, topic *models.Topic) error
	CountExpertise(ctx context.Context, topicID string) (int, error)
	Delete(ctx context.Context, id string) error
}

// TopicService manages counseling topics.
type TopicService struct {
	repo      topicRepository
	audit     auditLogger
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTopicService constructs a TopicService.
func NewTopicService(repo topicRepository, audit auditLogger, validate *validator.Validate, logger *zap.Logger) *TopicService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TopicService{repo: repo, audit: audit, validator: validate, logger: logger}
}

// List returns all topics.
func (s *TopicService) List(ctx context.Context) ([]models.Topic, error) {
	topics, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list topics")
	}
	return topics, nil
}

// Get returns a topic by id.
func (s *TopicService) Get(ctx context.Context, id string) (*models.Topic, error) {
	topic, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "topic not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load topic")
	}
	return topic, nil
}

// Create adds a topic attributed to the calling administrator.
func (s *TopicService) Create(ctx context.Context, caller *models.JWTClaims, req dto.TopicRequest) (*models.Topic, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid topic payload")
	}
	topic := &models.Topic{Name: strings.TrimSpace(req.Name)}
	if caller != nil && caller.Role == models.RoleAdmin {
		adminID := caller.EntityID
		topic.AdminID = &adminID
	}
	if err := s.repo.Create(ctx, topic); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "topic already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create topic")
	}
	recordProfileAudit(ctx, s.audit, s.logger, caller, models.AuditActionTopicChange, topicResource, topic.ID, topic)
	return topic, nil
}

// Update renames a topic.
func (s *TopicService) Update(ctx context.Context, caller *models.JWTClaims, id string, req dto.TopicRequest) (*models.Topic, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid topic payload")
	}
	topic := &models.Topic{ID: id, Name: strings.TrimSpace(req.Name)}
	if err := s.repo.Update(ctx, topic); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "topic not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update topic")
	}
	recordProfileAudit(ctx, s.audit, s.logger, caller, models.AuditActionTopicChange, topicResource, id, topic)
	return topic, nil
}

// Delete removes a topic that no counselor lists as expertise.
func (s *TopicService) Delete(ctx context.Context, caller *models.JWTClaims, id string) error {
	count, err := s.repo.CountExpertise(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check topic usage")
	}
	if count > 0 {
		return appErrors.ErrTopicInUse
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return appErrors.Clone(appErrors.ErrNotFound, "topic not found")
		case errors.Is(err, repository.ErrReferenced):
			return appErrors.Clone(appErrors.ErrTopicInUse, "topic is still referenced by sessions or counselors")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete topic")
	}
	recordProfileAudit(ctx, s.audit, s.logger, caller, models.AuditActionTopicChange, topicResource, id, map[string]bool{"deleted": true})
	return nil
}
