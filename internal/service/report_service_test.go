package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/counseling-api/internal/dto"
	"github.com/noah-isme/counseling-api/internal/models"
	appErrors "github.com/noah-isme/counseling-api/pkg/errors"
)

type memoryCacheRepo struct {
	mu      sync.Mutex
	entries map[string][]byte
	deleted []string
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{entries: map[string][]byte{}}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	payload, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.entries[key] = payload
	m.mu.Unlock()
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
		}
	}
	m.deleted = append(m.deleted, pattern)
	return nil
}

type monthlyReportStub struct {
	calls  int
	err    error
	report models.MonthlyReport
}

func (s *monthlyReportStub) Monthly(ctx context.Context, month, year int) (*models.MonthlyReport, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	report := s.report
	return &report, nil
}

func newReportFixture(cacheEnabled bool) (*ReportService, *monthlyReportStub, *memoryCacheRepo) {
	topic := "Akademik"
	repo := &monthlyReportStub{report: models.MonthlyReport{TotalSessions: 4, CompletedSessions: 2, CancelledSessions: 1, MostPopularTopic: &topic}}
	cacheRepo := newMemoryCacheRepo()
	cache := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), cacheEnabled)
	return NewReportService(repo, cache, nil, nil, zap.NewNop()), repo, cacheRepo
}

func TestReportServiceMonthlyUsesCache(t *testing.T) {
	svc, repo, cacheRepo := newReportFixture(true)
	ctx := context.Background()
	query := dto.MonthlyReportQuery{Month: 10, Year: 2026}

	first, hit, err := svc.Monthly(ctx, query)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 4, first.TotalSessions)
	assert.Equal(t, 10, first.Month)
	assert.Contains(t, cacheRepo.entries, "reports:monthly:2026-10")

	second, hit, err := svc.Monthly(ctx, query)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first.TotalSessions, second.TotalSessions)
	assert.Equal(t, 2026, second.Year)
	assert.Equal(t, 1, repo.calls)

	require.NoError(t, svc.cache.Invalidate(ctx, reportCachePattern))
	_, hit, err = svc.Monthly(ctx, query)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, repo.calls)
}

func TestReportServiceMonthlyWithoutCache(t *testing.T) {
	svc, repo, _ := newReportFixture(false)
	query := dto.MonthlyReportQuery{Month: 1, Year: 2026}

	_, _, err := svc.Monthly(context.Background(), query)
	require.NoError(t, err)
	_, _, err = svc.Monthly(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls)
}

func TestReportServiceMonthlyValidation(t *testing.T) {
	svc, _, _ := newReportFixture(false)

	_, _, err := svc.Monthly(context.Background(), dto.MonthlyReportQuery{Month: 13, Year: 2026})
	requireCode(t, err, appErrors.ErrValidation)
}

func TestReportServiceMonthlyStoreError(t *testing.T) {
	svc, repo, cacheRepo := newReportFixture(true)
	repo.err = errors.New("db down")

	_, _, err := svc.Monthly(context.Background(), dto.MonthlyReportQuery{Month: 2, Year: 2026})
	requireCode(t, err, appErrors.ErrInternal)
	assert.Empty(t, cacheRepo.entries)
}

func TestReportServiceExportCSV(t *testing.T) {
	svc, _, _ := newReportFixture(false)

	file, err := svc.Export(context.Background(), dto.MonthlyReportQuery{Month: 10, Year: 2026})
	require.NoError(t, err)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.True(t, strings.HasPrefix(file.Filename, "laporan-2026-10-"))
	assert.True(t, strings.HasSuffix(file.Filename, ".csv"))
	assert.Contains(t, string(file.Body), "month,year,total_sessions")
	assert.Contains(t, string(file.Body), "10,2026,4,2,1,Akademik")
}

func TestReportServiceExportPDF(t *testing.T) {
	svc, _, _ := newReportFixture(false)

	file, err := svc.Export(context.Background(), dto.MonthlyReportQuery{Month: 10, Year: 2026, Format: "pdf"})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Body, []byte("%PDF")))
}

func TestCacheServiceNilIsMiss(t *testing.T) {
	var cache *CacheService
	var dest models.MonthlyReport

	assert.False(t, cache.Enabled())
	assert.False(t, cache.Get(context.Background(), "k", &dest))
	assert.NoError(t, cache.Invalidate(context.Background(), "reports:*"))

	value, hit, err := cache.Load(context.Background(), "k", &dest, func(ctx context.Context) (interface{}, error) {
		return "fresh", nil
	})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "fresh", value)
}
