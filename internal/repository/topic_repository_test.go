package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/counseling-api/internal/models"
)

func TestTopicRepositoryCreateAllocatesID(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewTopicRepository(db, nil)

	admin := "A001"
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT nextval($1::regclass)")).
		WithArgs("topic_id_seq").
		WillReturnRows(sqlmock.NewRows([]string{"nextval"}).AddRow(12))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO topics (id, name, admin_id) VALUES ($1, $2, $3)")).
		WithArgs("T012", "Karier", &admin).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "admin_id", "created_at", "updated_at"}).
			AddRow("T012", "Karier", admin, now, now))

	topic := &models.Topic{Name: "Karier", AdminID: &admin}
	require.NoError(t, repo.Create(context.Background(), topic))
	assert.Equal(t, "T012", topic.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTopicRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewTopicRepository(db, nil)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM topics WHERE id = $1")).
		WithArgs("T001").
		WillReturnError(&pq.Error{Code: pqForeignKeyViolation})
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM topics WHERE id = $1")).
		WithArgs("T404").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM topics WHERE id = $1")).
		WithArgs("T002").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.True(t, errors.Is(repo.Delete(context.Background(), "T001"), ErrReferenced))
	assert.True(t, errors.Is(repo.Delete(context.Background(), "T404"), sql.ErrNoRows))
	assert.NoError(t, repo.Delete(context.Background(), "T002"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTopicRepositoryCountExpertise(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewTopicRepository(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM counselor_topics WHERE topic_id = $1")).
		WithArgs("T001").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountExpertise(context.Background(), "T001")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	require.NoError(t, mock.ExpectationsWereMet())
}
