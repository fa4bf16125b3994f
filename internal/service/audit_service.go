package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/counseling-api/internal/models"
	"github.com/noah-isme/counseling-api/pkg/jobs"
)

const auditJobType = "audit_log"

type auditStore interface {
	Create(ctx context.Context, log *models.AuditLog) error
}

// auditLogger records audit entries without affecting the caller's outcome.
type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// AuditService persists audit entries through a background queue.
type AuditService struct {
	repo   auditStore
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewAuditService wires the queue worker that writes entries to repo.
func NewAuditService(repo auditStore, cfg jobs.QueueConfig, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &AuditService{repo: repo, logger: logger}
	cfg.Logger = logger
	svc.queue = jobs.NewQueue("audit", svc.persist, cfg)
	return svc
}

// Start launches the queue workers.
func (s *AuditService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains pending entries and stops the workers.
func (s *AuditService) Stop() {
	s.queue.Stop()
}

// CreateAuditLog enqueues the entry. A full or stopped queue drops it with a
// warning.
func (s *AuditService) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	if log == nil {
		return nil
	}
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if err := s.queue.TryEnqueue(jobs.Job{ID: log.ID, Type: auditJobType, Payload: *log}); err != nil {
		s.logger.Warn("audit entry dropped", zap.String("action", log.Action), zap.Error(err))
		return err
	}
	return nil
}

func (s *AuditService) persist(ctx context.Context, job jobs.Job) error {
	entry, ok := job.Payload.(models.AuditLog)
	if !ok {
		return fmt.Errorf("unexpected audit payload %T", job.Payload)
	}
	return s.repo.Create(ctx, &entry)
}

// auditValues marshals v for AuditLog.NewValues, returning nil on failure.
func auditValues(v interface{}) []byte {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return payload
}

func recordAudit(ctx context.Context, audit auditLogger, logger *zap.Logger, log *models.AuditLog) {
	if audit == nil {
		return
	}
	if err := audit.CreateAuditLog(ctx, log); err != nil {
		logger.Warn("failed to record audit log", zap.String("action", log.Action), zap.Error(err))
	}
}
