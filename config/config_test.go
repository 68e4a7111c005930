package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blockpress.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "badger", cfg.Storage.Driver)
	assert.Equal(t, "static", cfg.Catalog.Driver)
	assert.Equal(t, 72*time.Hour, cfg.Auth.TTL())
	assert.Equal(t, ":8080", cfg.Addr())
}

func TestLoad_FileThenEnv(t *testing.T) {
	base := writeConfig(t, `
[server]
port = 9000
host = "127.0.0.1"

[storage]
driver = "mongo"
seed_samples = false

[auth]
token_ttl = "1h"

[ratelimit]
requests_per_second = 2.5
burst = 3
`)
	override := writeConfig(t, `
[mongo]
database = "blog_test"
`)
	t.Setenv("BLOCKPRESS_REDIS_ADDR", "localhost:6380")
	t.Setenv("BLOCKPRESS_LOG_OUTPUT", "console, file")

	cfg, err := Load(base, override)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Addr())
	assert.Equal(t, "mongo", cfg.Storage.Driver)
	assert.False(t, cfg.Storage.SeedSamples)
	assert.Equal(t, "blog_test", cfg.Mongo.Database)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URI)
	assert.Equal(t, time.Hour, cfg.Auth.TTL())
	assert.Equal(t, 2.5, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, "localhost:6380", cfg.Redis.Addr)
	assert.Equal(t, []string{"console", "file"}, cfg.Logging.Output)
}

func TestLoad_PortEnv(t *testing.T) {
	t.Setenv("PORT", ":7070")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "[server\nport = 1"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "[storage]\ndriver = \"sqlite\""))
	assert.ErrorContains(t, err, "unknown storage driver")

	_, err = Load(writeConfig(t, "[catalog]\ndriver = \"mongo\""))
	assert.ErrorContains(t, err, "requires storage driver mongo")

	_, err = Load(writeConfig(t, "environment = \"production\""))
	assert.ErrorContains(t, err, "jwt_secret")
}

func TestParseDurationFallback(t *testing.T) {
	assert.Equal(t, 10*time.Minute, RateLimitConfig{IdleTTL: "soon"}.IdleDuration())
	assert.Equal(t, 10*time.Second, MongoConfig{}.ConnectTimeout())
}
