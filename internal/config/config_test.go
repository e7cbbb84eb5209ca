package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "8182", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Empty(t, cfg.GraphAPIBaseURL)
	assert.Equal(t, int64(1000), cfg.WSMaxConnections)
	assert.Equal(t, 20, cfg.WSMaxPerIP)
	assert.Equal(t, 10.0, cfg.WSConnectionsPerIP)
	assert.Equal(t, 10, cfg.WSConnectionBurst)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("GRAPH_API_BASE_URL", "http://localhost:8080")
	t.Setenv("WS_MAX_CONNECTIONS", "50")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.Port)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "http://localhost:8080", cfg.GraphAPIBaseURL)
	assert.Equal(t, int64(50), cfg.WSMaxConnections)
}

func TestLoadRejectsBadIntegers(t *testing.T) {
	t.Setenv("WS_MAX_CONNECTIONS", "lots")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsNonPositiveLimits(t *testing.T) {
	t.Setenv("WS_MAX_CONNECTIONS", "0")

	_, err := Load()
	assert.Error(t, err)
}
