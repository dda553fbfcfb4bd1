package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestDefaults(t *testing.T) {
	cfg, err := FromEnv(envOf(map[string]string{"SECRET_KEY": "k"}))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "data/badger", cfg.DataDir)
	assert.Equal(t, int32(10), cfg.DBMaxConns)
	assert.Equal(t, 20*time.Second, cfg.CacheTTL)
	assert.Equal(t, 336*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, "/auth/login/", cfg.LoginURL)
	assert.False(t, cfg.Debug)
}

func TestOverrides(t *testing.T) {
	cfg, err := FromEnv(envOf(map[string]string{
		"SECRET_KEY":   "k",
		"HOST":         "127.0.0.1",
		"PORT":         "9000",
		"CACHE_TTL":    "1m",
		"PAGE_SIZE":    "5",
		"DATABASE_URL": "postgres://localhost/yatube",
	}))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr())
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.Equal(t, 5, cfg.PageSize)
	assert.Equal(t, "postgres://localhost/yatube", cfg.DatabaseURL)
}

func TestInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{name: "missing secret", env: map[string]string{}, want: "SECRET_KEY"},
		{name: "bad ttl", env: map[string]string{"SECRET_KEY": "k", "CACHE_TTL": "soon"}, want: "CACHE_TTL"},
		{name: "bad page size", env: map[string]string{"SECRET_KEY": "k", "PAGE_SIZE": "0"}, want: "PAGE_SIZE"},
		{name: "bad debug", env: map[string]string{"SECRET_KEY": "k", "DEBUG": "maybe"}, want: "DEBUG"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromEnv(envOf(tt.env))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDebugAllowsMissingSecret(t *testing.T) {
	cfg, err := FromEnv(envOf(map[string]string{"DEBUG": "true"}))
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.SecretKey)
}
