package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/counseling-api/internal/models"
	"github.com/noah-isme/counseling-api/pkg/jobs"
)

type auditStoreStub struct {
	entries chan models.AuditLog
	err     error
}

func (s *auditStoreStub) Create(ctx context.Context, log *models.AuditLog) error {
	if s.err != nil {
		return s.err
	}
	s.entries <- *log
	return nil
}

func TestAuditServicePersistsInBackground(t *testing.T) {
	store := &auditStoreStub{entries: make(chan models.AuditLog, 1)}
	svc := NewAuditService(store, jobs.QueueConfig{Workers: 1}, zap.NewNop())
	svc.Start(context.Background())
	defer svc.Stop()

	entry := &models.AuditLog{Action: models.AuditActionSessionCreate, Resource: "session"}
	require.NoError(t, svc.CreateAuditLog(context.Background(), entry))
	assert.NotEmpty(t, entry.ID)

	select {
	case got := <-store.entries:
		assert.Equal(t, entry.ID, got.ID)
		assert.Equal(t, models.AuditActionSessionCreate, got.Action)
	case <-time.After(2 * time.Second):
		t.Fatal("audit entry was not persisted")
	}
}

func TestAuditServiceRejectsBeforeStart(t *testing.T) {
	svc := NewAuditService(&auditStoreStub{entries: make(chan models.AuditLog, 1)}, jobs.QueueConfig{}, nil)

	err := svc.CreateAuditLog(context.Background(), &models.AuditLog{Action: models.AuditActionLogin})
	require.Error(t, err)
	assert.NoError(t, svc.CreateAuditLog(context.Background(), nil))
}

func TestAuditServicePersistRejectsForeignPayload(t *testing.T) {
	svc := NewAuditService(&auditStoreStub{}, jobs.QueueConfig{}, nil)

	err := svc.persist(context.Background(), jobs.Job{ID: "x", Type: auditJobType, Payload: "not an entry"})
	require.Error(t, err)
}

type failingAuditLogger struct{}

func (failingAuditLogger) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	return errors.New("queue full")
}

func TestRecordAuditSwallowsFailures(t *testing.T) {
	assert.NotPanics(t, func() {
		recordAudit(context.Background(), failingAuditLogger{}, zap.NewNop(), &models.AuditLog{Action: models.AuditActionLogin})
		recordAudit(context.Background(), nil, zap.NewNop(), &models.AuditLog{Action: models.AuditActionLogin})
	})
}

func TestAuditValues(t *testing.T) {
	assert.JSONEq(t, `{"status":"Scheduled"}`, string(auditValues(map[string]string{"status": "Scheduled"})))
	assert.Nil(t, auditValues(make(chan int)))
}
