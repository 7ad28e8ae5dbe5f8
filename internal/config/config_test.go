package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "app:\n  name: accounts\n"))
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.App.Env)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, "memory", cfg.Handshake.Backend)
	assert.Equal(t, "10m", cfg.Handshake.TTL)
	assert.Equal(t, "720h", cfg.Session.TTL)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FullFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
app:
  app_env: prod
  version: "1.2.3"
server:
  addr: ":9090"
  read_timeout: 5s
storage:
  driver: postgres
  dsn: postgres://accounts@localhost/accounts
handshake:
  backend: redis
  ttl: 5m
  redis:
    addr: localhost:6379
providers:
  social:
    consumer_key: ck
    consumer_secret: cs
    callback_url: https://app.example/callback
  scrobble:
    api_key: ak
    api_secret: as
crypto:
  social:
    active_key: k1
    keys:
      k1: c2VjcmV0
session:
  secret: a-long-enough-session-secret-value
  ttl: 24h
`))
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.App.Env)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, "redis", cfg.Handshake.Backend)
	assert.Equal(t, "5m", cfg.Handshake.TTL)
	assert.Equal(t, "k1", cfg.Crypto.Social.ActiveKey)
	assert.Equal(t, "c2VjcmV0", cfg.Crypto.Social.Keys["k1"])
	assert.Equal(t, "24h", cfg.Session.TTL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":7070")
	t.Setenv("SESSION_SECRET", "from-environment")
	t.Setenv("CRYPTO_SOCIAL_KEYS", "k1=abc; k2=def")
	t.Setenv("CRYPTO_SOCIAL_ACTIVE_KEY", "k2")

	cfg, err := Load(writeConfig(t, "server:\n  addr: \":8080\"\n"))
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, "from-environment", cfg.Session.Secret)
	assert.Equal(t, "k2", cfg.Crypto.Social.ActiveKey)
	assert.Equal(t, map[string]string{"k1": "abc", "k2": "def"}, cfg.Crypto.Social.Keys)
}

func TestLoad_InvalidDuration(t *testing.T) {
	_, err := Load(writeConfig(t, "handshake:\n  ttl: tomorrow\n"))
	assert.Error(t, err)
}

func TestLoad_PostgresRequiresDSN(t *testing.T) {
	_, err := Load(writeConfig(t, "storage:\n  driver: postgres\n"))
	assert.Error(t, err)
}

func TestLoad_RedisRequiresAddr(t *testing.T) {
	_, err := Load(writeConfig(t, "handshake:\n  backend: redis\n"))
	assert.Error(t, err)
}

func TestDuration(t *testing.T) {
	assert.Equal(t, "5m0s", Duration("5m", 0).String())
	assert.Equal(t, "10s", Duration("", 10*time.Second).String())
	assert.Equal(t, "10s", Duration("junk", 10*time.Second).String())
}
