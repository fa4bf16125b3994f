package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/counseling-api/internal/models"
)

func TestAuditRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewAuditRepository(db)

	account := "U001"
	resourceID := "S001"
	entry := &models.AuditLog{
		AccountID:  &account,
		Action:     models.AuditActionSessionCreate,
		Resource:   "session",
		ResourceID: &resourceID,
		NewValues:  []byte(`{"status":"Requested"}`),
		IPAddress:  "127.0.0.1",
		UserAgent:  "test",
	}

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO audit_logs`)).
		WithArgs(sqlmock.AnyArg(), "U001", models.AuditActionSessionCreate, "session", "S001", `{"status":"Requested"}`, "127.0.0.1", "test", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), entry))
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepositoryCreateWrapsError(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewAuditRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO audit_logs`)).
		WillReturnError(errors.New("connection reset"))

	err := repo.Create(context.Background(), &models.AuditLog{ID: "log-1", Action: models.AuditActionLogin, Resource: "account"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create audit log")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepositoryListByResource(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewAuditRepository(db)

	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "account_id", "action", "resource", "resource_id", "new_values", "ip_address", "user_agent", "created_at"}).
		AddRow("log-2", "U001", models.AuditActionSessionTransfer, "session", "S001", []byte(`{"to":"K002"}`), "", "", now).
		AddRow("log-1", "U002", models.AuditActionSessionCreate, "session", "S001", nil, "", "", now.Add(-time.Hour))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM audit_logs WHERE resource = $1 AND resource_id = $2`)).
		WithArgs("session", "S001").
		WillReturnRows(rows)

	logs, err := repo.ListByResource(context.Background(), "session", "S001")
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, models.AuditActionSessionTransfer, logs[0].Action)
	require.NotNil(t, logs[0].AccountID)
	assert.Equal(t, "U001", *logs[0].AccountID)
	require.NoError(t, mock.ExpectationsWereMet())
}
