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
)

func TestCounselorRepositoryFindByNIKIncludesTopics(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewCounselorRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM counselors c")).
		WithArgs("K001").
		WillReturnRows(sqlmock.NewRows([]string{"nik", "name", "specialization", "contact", "account_id", "created_at", "updated_at", "topics"}).
			AddRow("K001", "Sari Dewi", "Akademik", nil, "U002", now, now, "{Akademik,Karier}"))

	counselor, err := repo.FindByNIK(context.Background(), "K001")
	require.NoError(t, err)
	assert.Equal(t, "Sari Dewi", counselor.Name)
	assert.Equal(t, []string{"Akademik", "Karier"}, []string(counselor.Topics))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCounselorRepositoryDeleteRemovesExpertiseFirst(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewCounselorRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT account_id FROM counselors WHERE nik = $1 FOR UPDATE")).
		WithArgs("K001").
		WillReturnRows(sqlmock.NewRows([]string{"account_id"}).AddRow("U002"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM sessions WHERE counselor_nik = $1")).
		WithArgs("K001").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM counselor_topics WHERE counselor_nik = $1")).
		WithArgs("K001").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM counselors WHERE nik = $1")).
		WithArgs("K001").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM accounts WHERE id = $1")).
		WithArgs("U002").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "K001"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCounselorRepositoryDeleteRefusedWithSessions(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewCounselorRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT account_id FROM counselors")).
		WithArgs("K001").
		WillReturnRows(sqlmock.NewRows([]string{"account_id"}).AddRow("U002"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM sessions")).
		WithArgs("K001").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), "K001")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrReferenced))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCounselorRepositoryAddExpertise(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewCounselorRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO counselor_topics")).
		WithArgs("K001", "T001").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO counselor_topics")).
		WithArgs("K001", "T001").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO counselor_topics")).
		WithArgs("K001", "T404").
		WillReturnError(&pq.Error{Code: pqForeignKeyViolation})

	created, err := repo.AddExpertise(context.Background(), "K001", "T001")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.AddExpertise(context.Background(), "K001", "T001")
	require.NoError(t, err)
	assert.False(t, created)

	_, err = repo.AddExpertise(context.Background(), "K001", "T404")
	assert.True(t, errors.Is(err, ErrReferenced))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCounselorRepositoryRemoveExpertiseMissing(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewCounselorRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM counselor_topics WHERE counselor_nik = $1 AND topic_id = $2")).
		WithArgs("K001", "T009").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.RemoveExpertise(context.Background(), "K001", "T009")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCounselorRepositoryHasExpertise(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewCounselorRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM counselor_topics")).
		WithArgs("K001", "T002").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.HasExpertise(context.Background(), "K001", "T002")
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}
