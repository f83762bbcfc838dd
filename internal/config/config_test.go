package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPortal_Defaults(t *testing.T) {
	cfg, err := LoadPortal()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "http://localhost:8080/api", cfg.BackendURL)
	assert.Equal(t, 2*time.Second, cfg.SessionLoadTimeout)
	assert.Equal(t, []string{"/api", "/static", "/_image", "/favicon.ico", "/healthz"}, cfg.FilterExclude)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestLoadPortal_Overrides(t *testing.T) {
	t.Setenv("BACKEND_URL", "https://api.example.edu/api/")
	t.Setenv("FILTER_EXCLUDE", " /api , assets,,/favicon.ico")
	t.Setenv("SESSION_MAX_AGE", "2h")

	cfg, err := LoadPortal()
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.edu/api", cfg.BackendURL)
	assert.Equal(t, []string{"/api", "/assets", "/favicon.ico"}, cfg.FilterExclude)
	assert.Equal(t, 2*time.Hour, cfg.SessionMaxAge)
}

func TestLoadPortal_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"relative backend url", "BACKEND_URL", "/api"},
		{"bad scheme", "BACKEND_URL", "ftp://example.edu"},
		{"zero load timeout", "SESSION_LOAD_TIMEOUT", "0s"},
		{"unparsable duration", "SESSION_MAX_AGE", "forever"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := LoadPortal()
			assert.Error(t, err)
		})
	}
}

func TestLoadAPI(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("ACCESS_TOKEN_TTL", "30m")

	cfg, err := LoadAPI()
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, "8080", cfg.ServerPort)

	t.Setenv("ACCESS_TOKEN_TTL", "-1m")
	_, err = LoadAPI()
	assert.Error(t, err)
}
