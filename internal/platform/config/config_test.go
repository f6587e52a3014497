package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, CacheBackendMemory, cfg.Cache.Backend)
	assert.Equal(t, "https://restcountries.com/v2", cfg.Directory.BaseURL)
	assert.False(t, cfg.Borders.Strict)
	assert.Equal(t, 25, PageSize)
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "atlas.toml")
	content := `
addr = ":9090"
request_timeout = "20s"

[directory]
base_url = "http://directory.internal/v2"
timeout = "2s"

[cache]
backend = "redis"
ttl = "30m"

[redis]
url = "redis://localhost:6379/0"

[borders]
concurrency = 4
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("ATLAS_ADDR", ":7070")
	t.Setenv("ATLAS_STRICT_BORDERS", "true")
	t.Setenv("ATLAS_REQUEST_TIMEOUT", "45s")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Addr, "env overrides file")
	assert.Equal(t, 45*time.Second, cfg.RequestTimeout, "env overrides file")
	assert.Equal(t, "http://directory.internal/v2", cfg.Directory.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.Directory.Timeout)
	assert.Equal(t, CacheBackendRedis, cfg.Cache.Backend)
	assert.Equal(t, 30*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 4, cfg.Borders.Concurrency)
	assert.True(t, cfg.Borders.Strict)
	assert.Equal(t, 10, cfg.Redis.PoolSize, "unset keys keep defaults")
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Run("bad duration", func(t *testing.T) {
		t.Setenv("ATLAS_CACHE_TTL", "soon")
		_, err := Load("")
		assert.ErrorContains(t, err, "ATLAS_CACHE_TTL")
	})

	t.Run("bad request timeout", func(t *testing.T) {
		t.Setenv("ATLAS_REQUEST_TIMEOUT", "never")
		_, err := Load("")
		assert.ErrorContains(t, err, "ATLAS_REQUEST_TIMEOUT")
	})

	t.Run("zero request timeout", func(t *testing.T) {
		t.Setenv("ATLAS_REQUEST_TIMEOUT", "0s")
		_, err := Load("")
		assert.ErrorContains(t, err, "request timeout must be positive")
	})

	t.Run("redis backend without url", func(t *testing.T) {
		t.Setenv("ATLAS_CACHE_BACKEND", "redis")
		_, err := Load("")
		assert.ErrorContains(t, err, "ATLAS_REDIS_URL")
	})

	t.Run("unknown backend", func(t *testing.T) {
		t.Setenv("ATLAS_CACHE_BACKEND", "memcached")
		_, err := Load("")
		assert.ErrorContains(t, err, "unknown cache backend")
	})

	t.Run("relative directory url", func(t *testing.T) {
		t.Setenv("ATLAS_DIRECTORY_URL", "/v2")
		_, err := Load("")
		assert.ErrorContains(t, err, "invalid directory base URL")
	})

	t.Run("zero border concurrency", func(t *testing.T) {
		t.Setenv("ATLAS_BORDER_CONCURRENCY", "0")
		_, err := Load("")
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
		assert.Error(t, err)
	})
}
