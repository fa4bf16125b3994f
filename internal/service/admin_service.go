package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/counseling-api/internal/dto"
	"github.com/noah-isme/counseling-api/internal/models"
	appErrors "github.com/noah-isme/counseling-api/pkg/errors"
)

const adminResource = "admin"

type adminRepository interface {
	List(ctx context.Context) ([]models.Admin, error)
	FindByID(ctx context.Context, id string) (*models.Admin, error)
	Update(ctx context.Context, admin *models.Admin) error
	Delete(ctx context.Context, id string) error
}

// AdminService manages administrator profiles.
type AdminService struct {
	repo      adminRepository
	audit     auditLogger
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAdminService constructs an AdminService.
func NewAdminService(repo adminRepository, audit auditLogger, validate *validator.Validate, logger *zap.Logger) *AdminService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{repo: repo, audit: audit, validator: validate, logger: logger}
}

// List returns all administrators.
func (s *AdminService) List(ctx context.Context) ([]models.Admin, error) {
	admins, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list admins")
	}
	return admins, nil
}

// Get returns an administrator by id.
func (s *AdminService) Get(ctx context.Context, id string) (*models.Admin, error) {
	admin, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "admin not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load admin")
	}
	return admin, nil
}

// Update renames an administrator.
func (s *AdminService) Update(ctx context.Context, caller *models.JWTClaims, id string, req dto.UpdateAdminRequest) (*models.Admin, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid admin payload")
	}
	admin := &models.Admin{ID: id, Name: normalizeName(req.Name)}
	if err := s.repo.Update(ctx, admin); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "admin not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update admin")
	}
	recordProfileAudit(ctx, s.audit, s.logger, caller, models.AuditActionProfileUpdate, adminResource, id, admin)
	return admin, nil
}

// Delete removes an administrator and its account. Administrators cannot
// delete themselves.
func (s *AdminService) Delete(ctx context.Context, caller *models.JWTClaims, id string) error {
	if caller != nil && caller.EntityID == id {
		return appErrors.Clone(appErrors.ErrValidation, "administrators cannot delete their own profile")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "admin not found")
		}
		s.logger.Error("failed to delete admin", zap.String("id", id), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete admin")
	}
	recordProfileAudit(ctx, s.audit, s.logger, caller, models.AuditActionProfileDelete, adminResource, id, nil)
	return nil
}
