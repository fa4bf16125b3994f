package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/counseling-api/internal/dto"
	"github.com/noah-isme/counseling-api/internal/models"
	"github.com/noah-isme/counseling-api/internal/repository"
	"github.com/noah-isme/counseling-api/pkg/config"
	appErrors "github.com/noah-isme/counseling-api/pkg/errors"
)

const (
	sessionResource     = "session"
	reportCachePattern  = "reports:*"
	sessionPageSizeMax  = 100
	sessionTransferOK   = "success"
	sessionTransferFail = "rejected"
)

type sessionStore interface {
	List(ctx context.Context, filter models.SessionFilter) ([]models.SessionDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.Session, error)
	FindDetailByID(ctx context.Context, id string) (*models.SessionDetail, error)
	HasConflict(ctx context.Context, counselorNIK string, date time.Time, excludeID string) (bool, error)
	Create(ctx context.Context, session *models.Session) error
	UpdateStatusNotes(ctx context.Context, id string, status *models.SessionStatus, notes *string) (*models.Session, error)
	Reschedule(ctx context.Context, id string, date time.Time) (*models.Session, error)
	Transfer(ctx context.Context, params repository.TransferParams) (*models.Session, error)
	Delete(ctx context.Context, id string) error
	ListCompleted(ctx context.Context, filter models.CompletedSessionFilter) ([]models.SessionDetail, error)
	ListBySpecialization(ctx context.Context, specialization string) ([]models.SessionDetail, error)
	StatusDistribution(ctx context.Context) ([]models.StatusCount, error)
}

type sessionCounselorReader interface {
	Exists(ctx context.Context, nik string) (bool, error)
	HasExpertise(ctx context.Context, nik, topicID string) (bool, error)
}

type sessionTopicReader interface {
	FindByID(ctx context.Context, id string) (*models.Topic, error)
}

type sessionAdminReader interface {
	FirstID(ctx context.Context) (string, error)
}

type reportCacheInvalidator interface {
	Invalidate(ctx context.Context, pattern string) error
}

// SessionConfig carries the configurable session policies.
type SessionConfig struct {
	StatusMode       string
	AdminAttribution string
	Location         *time.Location
}

// SessionService implements the counseling session lifecycle.
type SessionService struct {
	repo       sessionStore
	counselors sessionCounselorReader
	topics     sessionTopicReader
	admins     sessionAdminReader
	policy     *AccessPolicy
	audit      auditLogger
	cache      reportCacheInvalidator
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	config     SessionConfig
	now        func() time.Time
}

// NewSessionService builds a SessionService with sane defaults.
func NewSessionService(
	repo sessionStore,
	counselors sessionCounselorReader,
	topics sessionTopicReader,
	admins sessionAdminReader,
	audit auditLogger,
	cache reportCacheInvalidator,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg SessionConfig,
) *SessionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.StatusMode == "" {
		cfg.StatusMode = config.StatusModePermissive
	}
	if cfg.AdminAttribution == "" {
		cfg.AdminAttribution = config.AdminAttributionFirst
	}
	return &SessionService{
		repo:       repo,
		counselors: counselors,
		topics:     topics,
		admins:     admins,
		policy:     NewAccessPolicy(),
		audit:      audit,
		cache:      cache,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
		config:     cfg,
		now:        time.Now,
	}
}

// Create books a session for the calling student.
func (s *SessionService) Create(ctx context.Context, caller *models.JWTClaims, req dto.CreateSessionRequest) (*models.SessionDetail, error) {
	if err := s.policy.Authorize(caller, OpSessionCreate, nil); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}
	date, err := parseSessionDate(req.ScheduledDate)
	if err != nil {
		return nil, err
	}
	if err := ensureNotPast(date, s.now(), s.config.Location); err != nil {
		return nil, err
	}

	if err := s.ensureCounselor(ctx, req.CounselorNIK); err != nil {
		return nil, err
	}
	if _, err := s.topics.FindByID(ctx, req.TopicID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "topic not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load topic")
	}
	conflict, err := s.repo.HasConflict(ctx, req.CounselorNIK, date, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check schedule")
	}
	if conflict {
		return nil, appErrors.ErrScheduleConflict
	}

	adminID, err := s.adminOfRecord(ctx)
	if err != nil {
		return nil, err
	}

	session := &models.Session{
		ScheduledDate: date,
		Status:        models.SessionRequested,
		StudentNRP:    caller.EntityID,
		CounselorNIK:  req.CounselorNIK,
		TopicID:       req.TopicID,
		AdminID:       adminID,
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, s.storeError(err, "failed to create session")
	}
	s.metrics.IncSessionsCreated()
	s.afterWrite(ctx, caller, models.AuditActionSessionCreate, session.ID, map[string]interface{}{
		"counselor_nik":  session.CounselorNIK,
		"topic_id":       session.TopicID,
		"scheduled_date": date.Format(sessionDateLayout),
		"student_nrp":    session.StudentNRP,
	})
	return s.detail(ctx, session.ID)
}

// Get returns a session visible to the caller.
func (s *SessionService) Get(ctx context.Context, caller *models.JWTClaims, id string) (*models.SessionDetail, error) {
	session, err := s.detail(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Authorize(caller, OpSessionView, &session.Session); err != nil {
		return nil, err
	}
	return session, nil
}

// UpdateStatusOrNotes changes status and/or notes of a session.
func (s *SessionService) UpdateStatusOrNotes(ctx context.Context, caller *models.JWTClaims, id string, req dto.UpdateSessionRequest) (*models.Session, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}
	if req.Status == nil && req.Notes == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "status or notes is required")
	}

	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Authorize(caller, OpSessionUpdate, current); err != nil {
		return nil, err
	}

	var status *models.SessionStatus
	if req.Status != nil {
		next := models.SessionStatus(*req.Status)
		if err := checkTransition(s.config.StatusMode, current.Status, next); err != nil {
			return nil, err
		}
		status = &next
	}

	// The date is not touched here, so past sessions stay editable.
	updated, err := s.repo.UpdateStatusNotes(ctx, id, status, req.Notes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrSessionNotFound
		}
		return nil, s.storeError(err, "failed to update session")
	}
	changes := map[string]interface{}{}
	if status != nil {
		changes["status"] = *status
	}
	if req.Notes != nil {
		changes["notes"] = *req.Notes
	}
	s.afterWrite(ctx, caller, models.AuditActionSessionUpdate, id, changes)
	return updated, nil
}

// Reschedule moves a session to another date.
func (s *SessionService) Reschedule(ctx context.Context, caller *models.JWTClaims, id string, req dto.RescheduleSessionRequest) (*models.Session, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reschedule payload")
	}
	date, err := parseSessionDate(req.ScheduledDate)
	if err != nil {
		return nil, err
	}

	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Authorize(caller, OpSessionReschedule, current); err != nil {
		return nil, err
	}
	if current.Status.Terminal() {
		return nil, appErrors.ErrSessionTerminal
	}
	if current.ScheduledDate.Equal(date) {
		return current, nil
	}
	if err := ensureNotPast(date, s.now(), s.config.Location); err != nil {
		return nil, err
	}
	conflict, err := s.repo.HasConflict(ctx, current.CounselorNIK, date, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check schedule")
	}
	if conflict {
		return nil, appErrors.ErrScheduleConflict
	}

	updated, err := s.repo.Reschedule(ctx, id, date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrSessionNotFound
		}
		return nil, s.storeError(err, "failed to reschedule session")
	}
	s.afterWrite(ctx, caller, models.AuditActionSessionUpdate, id, map[string]interface{}{
		"scheduled_date": date.Format(sessionDateLayout),
		"previous_date":  current.ScheduledDate.Format(sessionDateLayout),
	})
	return updated, nil
}

// Transfer reassigns a session to another qualified counselor on the same date.
func (s *SessionService) Transfer(ctx context.Context, caller *models.JWTClaims, req dto.TransferSessionRequest) (*models.Session, error) {
	if err := s.policy.Authorize(caller, OpSessionTransfer, nil); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid transfer payload")
	}

	updated, err := s.transfer(ctx, req)
	if err != nil {
		s.metrics.IncSessionTransfer(sessionTransferFail)
		return nil, err
	}
	s.metrics.IncSessionTransfer(sessionTransferOK)
	s.afterWrite(ctx, caller, models.AuditActionSessionTransfer, updated.ID, map[string]interface{}{
		"counselor_nik": updated.CounselorNIK,
	})
	return updated, nil
}

func (s *SessionService) transfer(ctx context.Context, req dto.TransferSessionRequest) (*models.Session, error) {
	current, err := s.load(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureCounselor(ctx, req.CounselorNIK); err != nil {
		return nil, err
	}
	qualified, err := s.counselors.HasExpertise(ctx, req.CounselorNIK, current.TopicID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check counselor expertise")
	}
	if !qualified {
		return nil, appErrors.ErrCounselorNotQualified
	}
	if current.Status.Terminal() {
		return nil, appErrors.ErrSessionTerminal
	}
	if current.CounselorNIK == req.CounselorNIK {
		return nil, appErrors.Clone(appErrors.ErrValidation, "session is already assigned to this counselor")
	}
	conflict, err := s.repo.HasConflict(ctx, req.CounselorNIK, current.ScheduledDate, current.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check schedule")
	}
	if conflict {
		return nil, appErrors.ErrScheduleConflict
	}

	updated, err := s.repo.Transfer(ctx, repository.TransferParams{
		SessionID:        current.ID,
		FromCounselorNIK: current.CounselorNIK,
		ToCounselorNIK:   req.CounselorNIK,
		Note:             transferNote(s.now(), current.CounselorNIK, req.CounselorNIK),
	})
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.ErrSessionNotFound
		case errors.Is(err, repository.ErrSessionChanged):
			return nil, appErrors.Clone(appErrors.ErrConflict, "session changed while transferring, retry")
		}
		return nil, s.storeError(err, "failed to transfer session")
	}
	return updated, nil
}

// Delete removes a session.
func (s *SessionService) Delete(ctx context.Context, caller *models.JWTClaims, id string) error {
	if err := s.policy.Authorize(caller, OpSessionDelete, nil); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrSessionNotFound
		}
		return s.storeError(err, "failed to delete session")
	}
	s.afterWrite(ctx, caller, models.AuditActionSessionDelete, id, nil)
	return nil
}

// ListAll returns sessions for administrators.
func (s *SessionService) ListAll(ctx context.Context, status string, page, pageSize int) ([]models.SessionDetail, *models.Pagination, error) {
	filter := models.SessionFilter{Page: page, PageSize: pageSize}
	if status = strings.TrimSpace(status); status != "" {
		st := models.SessionStatus(status)
		if !st.Valid() {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown status filter")
		}
		filter.Status = &st
	}
	return s.listPage(ctx, filter)
}

// ListMine returns one page of the caller's own sessions.
func (s *SessionService) ListMine(ctx context.Context, caller *models.JWTClaims, page, pageSize int) ([]models.SessionDetail, *models.Pagination, error) {
	if caller == nil {
		return nil, nil, appErrors.ErrUnauthorized
	}
	filter := models.SessionFilter{Page: page, PageSize: pageSize}
	switch caller.Role {
	case models.RoleMahasiswa:
		filter.StudentNRP = caller.EntityID
	case models.RoleKonselor:
		filter.CounselorNIK = caller.EntityID
	default:
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "only students and counselors have own sessions")
	}
	return s.listPage(ctx, filter)
}

func (s *SessionService) listPage(ctx context.Context, filter models.SessionFilter) ([]models.SessionDetail, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > sessionPageSizeMax {
		filter.PageSize = 20
	}
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}
	return items, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// ListCompleted returns completed sessions in a date range. Counselors only
// see their own.
func (s *SessionService) ListCompleted(ctx context.Context, caller *models.JWTClaims, query dto.CompletedSessionQuery) ([]models.SessionDetail, error) {
	if caller == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date range")
	}
	start, err := parseSessionDate(query.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseSessionDate(query.EndDate)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_date must not be before start_date")
	}

	filter := models.CompletedSessionFilter{StartDate: start, EndDate: end, CounselorNIK: query.CounselorNIK}
	switch caller.Role {
	case models.RoleAdmin:
	case models.RoleKonselor:
		if query.CounselorNIK != "" && query.CounselorNIK != caller.EntityID {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "counselors can only view their own sessions")
		}
		filter.CounselorNIK = caller.EntityID
	default:
		return nil, appErrors.ErrForbidden
	}

	items, err := s.repo.ListCompleted(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list completed sessions")
	}
	return items, nil
}

// ListBySpecialization returns sessions handled by counselors of a specialization.
func (s *SessionService) ListBySpecialization(ctx context.Context, specialization string) ([]models.SessionDetail, error) {
	specialization = strings.TrimSpace(specialization)
	if specialization == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "specialization is required")
	}
	items, err := s.repo.ListBySpecialization(ctx, specialization)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}
	return items, nil
}

// StatusDistribution counts sessions per status, including empty buckets.
func (s *SessionService) StatusDistribution(ctx context.Context) ([]models.StatusCount, error) {
	counts, err := s.repo.StatusDistribution(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count sessions")
	}
	totals := make(map[models.SessionStatus]int, len(counts))
	for _, c := range counts {
		totals[c.Status] = c.Total
	}
	result := make([]models.StatusCount, 0, 4)
	for _, st := range []models.SessionStatus{models.SessionRequested, models.SessionScheduled, models.SessionCompleted, models.SessionCancelled} {
		result = append(result, models.StatusCount{Status: st, Total: totals[st]})
	}
	return result, nil
}

func (s *SessionService) load(ctx context.Context, id string) (*models.Session, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrSessionNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	return session, nil
}

func (s *SessionService) detail(ctx context.Context, id string) (*models.SessionDetail, error) {
	session, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrSessionNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	return session, nil
}

func (s *SessionService) ensureCounselor(ctx context.Context, nik string) error {
	exists, err := s.counselors.Exists(ctx, nik)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load counselor")
	}
	if !exists {
		return appErrors.ErrCounselorNotFound
	}
	return nil
}

func (s *SessionService) adminOfRecord(ctx context.Context) (*string, error) {
	if s.config.AdminAttribution == config.AdminAttributionNone || s.admins == nil {
		return nil, nil
	}
	id, err := s.admins.FirstID(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve administrator")
	}
	return &id, nil
}

// storeError maps repository sentinels onto API errors.
func (s *SessionService) storeError(err error, message string) error {
	switch {
	case errors.Is(err, repository.ErrScheduleConflict):
		return appErrors.ErrScheduleConflict
	case errors.Is(err, repository.ErrPastDate):
		return appErrors.Clone(appErrors.ErrValidation, "session date cannot be in the past")
	case errors.Is(err, repository.ErrReferenced):
		return appErrors.Clone(appErrors.ErrNotFound, "referenced student, counselor or topic not found")
	}
	s.logger.Error(message, zap.Error(err))
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func (s *SessionService) afterWrite(ctx context.Context, caller *models.JWTClaims, action, sessionID string, values map[string]interface{}) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, reportCachePattern); err != nil {
			s.logger.Warn("failed to invalidate report cache", zap.Error(err))
		}
	}
	entry := &models.AuditLog{
		Action:     action,
		Resource:   sessionResource,
		ResourceID: &sessionID,
	}
	if caller != nil {
		entry.AccountID = &caller.AccountID
		if values == nil {
			values = map[string]interface{}{}
		}
		values["actor_role"] = caller.Role
		values["actor_id"] = caller.EntityID
	}
	if values != nil {
		entry.NewValues = auditValues(values)
	}
	recordAudit(ctx, s.audit, s.logger, entry)
}
