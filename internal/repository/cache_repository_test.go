package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/counseling-api/internal/models"
	appErrors "github.com/noah-isme/counseling-api/pkg/errors"
)

func newCacheRepo(t *testing.T) (*CacheRepository, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	repo := NewCacheRepository(client, zap.NewNop())
	t.Cleanup(func() { _ = client.Close() })
	return repo, srv
}

func TestCacheRepositoryRoundTrip(t *testing.T) {
	repo, srv := newCacheRepo(t)
	ctx := context.Background()

	topic := "Akademik"
	report := models.MonthlyReport{Month: 10, Year: 2026, TotalSessions: 4, MostPopularTopic: &topic}
	require.NoError(t, repo.Set(ctx, "reports:monthly:2026-10", report, time.Minute))
	assert.True(t, srv.Exists("reports:monthly:2026-10"))

	var cached models.MonthlyReport
	require.NoError(t, repo.Get(ctx, "reports:monthly:2026-10", &cached))
	assert.Equal(t, 4, cached.TotalSessions)

	srv.FastForward(2 * time.Minute)
	err := repo.Get(ctx, "reports:monthly:2026-10", &cached)
	assert.True(t, errors.Is(err, appErrors.ErrCacheMiss))
}

func TestCacheRepositoryDeleteByPattern(t *testing.T) {
	repo, srv := newCacheRepo(t)
	ctx := context.Background()

	require.NoError(t, srv.Set("reports:monthly:2026-09", "{}"))
	require.NoError(t, srv.Set("reports:monthly:2026-10", "{}"))
	require.NoError(t, srv.Set("other:key", "{}"))

	require.NoError(t, repo.DeleteByPattern(ctx, "reports:*"))
	assert.False(t, srv.Exists("reports:monthly:2026-09"))
	assert.False(t, srv.Exists("reports:monthly:2026-10"))
	assert.True(t, srv.Exists("other:key"))
}

func TestCacheRepositoryNilClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	var dest map[string]int
	assert.True(t, errors.Is(repo.Get(ctx, "k", &dest), appErrors.ErrCacheMiss))
	assert.NoError(t, repo.Set(ctx, "k", 1, time.Second))
	assert.NoError(t, repo.DeleteByPattern(ctx, "*"))
}
