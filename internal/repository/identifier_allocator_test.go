package repository

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/counseling-api/internal/models"
)

func TestIdentifierAllocatorNext(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	sqlxDB := sqlx.NewDb(db, "sqlmock")

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT nextval($1::regclass)`)).
		WithArgs("session_id_seq").
		WillReturnRows(sqlmock.NewRows([]string{"nextval"}).AddRow(7))

	id, err := NewIdentifierAllocator().Next(context.Background(), sqlxDB, models.IDSession)
	require.NoError(t, err)
	assert.Equal(t, "S007", id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdentifierAllocatorPropagatesErrors(t *testing.T) {
	alloc := &IdentifierAllocator{nextVal: func(ctx context.Context, q sqlx.QueryerContext, sequence string) (int64, error) {
		return 0, errors.New("sequence missing")
	}}
	_, err := alloc.Next(context.Background(), nil, models.IDTopic)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "allocate T id")
}

func TestIdentifierAllocatorConcurrentLabelsFollowSequence(t *testing.T) {
	var counter int64
	alloc := &IdentifierAllocator{nextVal: func(ctx context.Context, q sqlx.QueryerContext, sequence string) (int64, error) {
		return atomic.AddInt64(&counter, 1), nil
	}}

	const n = 200
	var mu sync.Mutex
	seen := make(map[string]struct{}, n)

	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < n; i++ {
		g.Go(func() error {
			id, err := alloc.Next(ctx, nil, models.IDSession)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			if _, dup := seen[id]; dup {
				return errors.New("duplicate id " + id)
			}
			seen[id] = struct{}{}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Len(t, seen, n)
}

func TestSessionRepositoryCreateDrawsIDInsideTransaction(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "sqlmock")
	defer sqlxDB.Close()

	var drawnInTx bool
	alloc := &IdentifierAllocator{nextVal: func(ctx context.Context, q sqlx.QueryerContext, sequence string) (int64, error) {
		_, drawnInTx = q.(*sqlx.Tx)
		return postgresNextVal(ctx, q, sequence)
	}}
	repo := NewSessionRepository(sqlxDB, alloc)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`SELECT pg_advisory_xact_lock`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS`)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT nextval($1::regclass)`)).
		WithArgs("session_id_seq").
		WillReturnRows(sqlmock.NewRows([]string{"nextval"}).AddRow(12))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO sessions`)).
		WillReturnError(errors.New("insert failed"))
	mock.ExpectRollback()

	session := &models.Session{
		ScheduledDate: time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC),
		Status:        models.SessionRequested,
		StudentNRP:    "5025211001",
		CounselorNIK:  "K001",
		TopicID:       "T001",
	}
	require.Error(t, repo.Create(context.Background(), session))
	assert.True(t, drawnInTx)
	assert.Equal(t, "S012", session.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}
