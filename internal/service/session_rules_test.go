package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/counseling-api/internal/models"
	"github.com/noah-isme/counseling-api/pkg/config"
)

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "Budi Santoso", normalizeName("  bUDI   santoso "))
	assert.Equal(t, "Dewi", normalizeName("DEWI"))
}

func TestParseSessionDate(t *testing.T) {
	d, err := parseSessionDate("2026-10-20")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC), d)

	d, err = parseSessionDate("2026-10-20T23:30:00+07:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC), d)

	_, err = parseSessionDate("tomorrow")
	require.Error(t, err)
}

func TestEnsureNotPastUsesLocation(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	now := time.Date(2026, 10, 18, 18, 0, 0, 0, time.UTC)

	assert.Error(t, ensureNotPast(time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC), now, jakarta))
	assert.NoError(t, ensureNotPast(time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), now, jakarta))
	assert.NoError(t, ensureNotPast(time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC), now, time.UTC))
}

func TestCheckTransition(t *testing.T) {
	assert.NoError(t, checkTransition(config.StatusModePermissive, models.SessionCancelled, models.SessionScheduled))
	assert.NoError(t, checkTransition(config.StatusModeStrict, models.SessionRequested, models.SessionScheduled))
	assert.NoError(t, checkTransition(config.StatusModeStrict, models.SessionScheduled, models.SessionCompleted))
	assert.Error(t, checkTransition(config.StatusModeStrict, models.SessionRequested, models.SessionCompleted))
	assert.Error(t, checkTransition(config.StatusModeStrict, models.SessionCancelled, models.SessionScheduled))
	assert.Error(t, checkTransition(config.StatusModePermissive, models.SessionRequested, models.SessionStatus("Done")))
}

func TestTransferNote(t *testing.T) {
	at := time.Date(2026, 10, 18, 10, 0, 0, 0, time.FixedZone("WIB", 7*3600))
	assert.Equal(t, "[Transfer 2026-10-18T03:00:00Z] Konselor K1 -> K2", transferNote(at, "K1", "K2"))
}
