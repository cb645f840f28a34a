package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, "info", cfg.Server.LogLevel)
	require.Equal(t, "memory", cfg.Store.Driver)
	require.Equal(t, "userdeck", cfg.Auth.JWT.Issuer)
	require.Equal(t, 15*time.Minute, cfg.Auth.JWT.TTL)
	require.True(t, cfg.Server.RateLimit.Enabled)
	require.Equal(t, time.Minute, cfg.Server.RateLimit.Window)
	require.True(t, cfg.Monitoring.Prometheus.Enabled)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	contents := []byte(`
server:
  port: 9100
  log_level: debug
store:
  driver: sqlite
  path: /tmp/accounts.sqlite
auth:
  jwt:
    secret: file-secret
    access_token_ttl: 1h
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), contents, 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	require.Equal(t, 9100, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.LogLevel)
	require.Equal(t, "sqlite", cfg.Store.Driver)
	require.Equal(t, "file-secret", cfg.Auth.JWT.Secret)
	require.Equal(t, time.Hour, cfg.Auth.JWT.TTL)
}

func TestValidateAggregatesFailures(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Port = -1
	cfg.Store.Driver = "etcd"
	cfg.Server.RateLimit.Enabled = true

	err := cfg.Validate()
	require.Error(t, err)
	require.GreaterOrEqual(t, len(multierr.Errors(err)), 4)
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	cfg.Auth.JWT.Secret = "test-secret"

	require.NoError(t, cfg.Validate())
}

func TestApplyRuntimeDefaultsGeneratesJWTSecret(t *testing.T) {
	cfg := &Config{}

	generated, err := ApplyRuntimeDefaults(cfg)
	require.NoError(t, err)
	require.True(t, generated["auth.jwt.secret"])
	require.NotEmpty(t, cfg.Auth.JWT.Secret)

	// A configured secret is left alone.
	again, err := ApplyRuntimeDefaults(cfg)
	require.NoError(t, err)
	require.Empty(t, again)
}
