package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminRepositoryFirstID(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewAdminRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM admins ORDER BY id ASC LIMIT 1")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("A001"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM admins ORDER BY id ASC LIMIT 1")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	id, err := repo.FirstID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "A001", id)

	_, err = repo.FirstID(context.Background())
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewAdminRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT account_id FROM admins WHERE id = $1 FOR UPDATE")).
		WithArgs("A002").
		WillReturnRows(sqlmock.NewRows([]string{"account_id"}).AddRow("U010"))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM admins WHERE id = $1")).
		WithArgs("A002").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM accounts WHERE id = $1")).
		WithArgs("U010").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "A002"))
	require.NoError(t, mock.ExpectationsWereMet())
}
