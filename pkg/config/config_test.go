package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMemoryBackendDefaults(t *testing.T) {
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, BackendMemory, cfg.DataBackend)
	assert.Equal(t, 12*time.Hour, cfg.BypassFlagTTL)
	assert.Equal(t, float64(50000), cfg.MysteryBoxPrice)
	assert.NotEmpty(t, cfg.PaymentURLMysteryBox)
}

func TestLoadFirebaseRequiresProject(t *testing.T) {
	t.Setenv("DATA_BACKEND", "firebase")
	t.Setenv("FIREBASE_PROJECT_ID", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("DATA_BACKEND", "postgres")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadParsesDurations(t *testing.T) {
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("WATCH_POLL_INTERVAL", "500ms")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, cfg.WatchPollInterval)
}
