package repository

import (
	"context"
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

var accountRowColumns = []string{"id", "username", "password_hash", "role", "created_at", "updated_at"}

func TestAccountRepositoryRegisterStudent(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewAccountRepository(db, nil)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT nextval($1::regclass)")).
		WithArgs("account_id_seq").
		WillReturnRows(sqlmock.NewRows([]string{"nextval"}).AddRow(5))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO accounts (id, username, password_hash, role)")).
		WithArgs("U005", "budi", "hash", "Mahasiswa").
		WillReturnRows(sqlmock.NewRows(accountRowColumns).AddRow("U005", "budi", "hash", "Mahasiswa", now, now))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO students (nrp, name, department, contact, account_id)")).
		WithArgs("5025211001", "Budi Santoso", "Informatika", nil, "U005").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	account, entityID, err := repo.Register(context.Background(), RegisterParams{
		Username:     "budi",
		PasswordHash: "hash",
		Role:         models.RoleMahasiswa,
		Name:         "Budi Santoso",
		NRP:          "5025211001",
		Department:   "Informatika",
	})
	require.NoError(t, err)
	assert.Equal(t, "U005", account.ID)
	assert.Equal(t, "5025211001", entityID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepositoryRegisterAdminAllocatesAdminID(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewAccountRepository(db, nil)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT nextval($1::regclass)")).
		WithArgs("account_id_seq").
		WillReturnRows(sqlmock.NewRows([]string{"nextval"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO accounts")).
		WithArgs("U001", "root", "hash", "Admin").
		WillReturnRows(sqlmock.NewRows(accountRowColumns).AddRow("U001", "root", "hash", "Admin", now, now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT nextval($1::regclass)")).
		WithArgs("admin_id_seq").
		WillReturnRows(sqlmock.NewRows([]string{"nextval"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO admins (id, name, account_id)")).
		WithArgs("A001", "Root", "U001").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, entityID, err := repo.Register(context.Background(), RegisterParams{
		Username: "root", PasswordHash: "hash", Role: models.RoleAdmin, Name: "Root",
	})
	require.NoError(t, err)
	assert.Equal(t, "A001", entityID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepositoryRegisterDuplicateRollsBack(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewAccountRepository(db, nil)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT nextval($1::regclass)")).
		WithArgs("account_id_seq").
		WillReturnRows(sqlmock.NewRows([]string{"nextval"}).AddRow(2))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO accounts")).
		WillReturnError(&pq.Error{Code: pqUniqueViolation, Constraint: "accounts_username_key"})
	mock.ExpectRollback()

	_, _, err := repo.Register(context.Background(), RegisterParams{
		Username: "budi", PasswordHash: "hash", Role: models.RoleMahasiswa, NRP: "1", Name: "B", Department: "D",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicate))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepositoryResolveEntityID(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewAccountRepository(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT nik FROM counselors WHERE account_id = $1")).
		WithArgs("U002").
		WillReturnRows(sqlmock.NewRows([]string{"nik"}).AddRow("K001"))

	entityID, err := repo.ResolveEntityID(context.Background(), &models.Account{ID: "U002", Role: models.RoleKonselor})
	require.NoError(t, err)
	assert.Equal(t, "K001", entityID)
	require.NoError(t, mock.ExpectationsWereMet())
}
