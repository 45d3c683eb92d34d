package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/raine/ironsource-go/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFileDefaults(t *testing.T) {
	cfg, err := LoadFile("")
	require.NoError(t, err)

	assert.Equal(t, api.PlatformBaseURL, cfg.PlatformURL)
	assert.Equal(t, api.AdvertiserBaseURL, cfg.AdvertiserURL)
	assert.Equal(t, api.AudienceBaseURL, cfg.AudienceURL)
	assert.Equal(t, 60*time.Second, cfg.Timeout)
	assert.Equal(t, 1, cfg.Burst)
	assert.Zero(t, cfg.RequestsPerSecond)
}

func TestLoadFileLayers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ironsource.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
user: file-user
token: file-token
secret: file-secret
timeout: 15s
requests_per_second: 2
advertiser_url: http://localhost:8080
`), 0o600))

	t.Setenv("IRONSOURCE_TOKEN", "env-token")
	t.Setenv("IRONSOURCE_RPS", "5.5")
	t.Setenv("IRONSOURCE_BURST", "3")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "file-user", cfg.User)
	assert.Equal(t, "env-token", cfg.Token)
	assert.Equal(t, "file-secret", cfg.Secret)
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.Equal(t, 5.5, cfg.RequestsPerSecond)
	assert.Equal(t, 3, cfg.Burst)
	assert.Equal(t, "http://localhost:8080", cfg.AdvertiserURL)
	assert.Equal(t, api.PlatformBaseURL, cfg.PlatformURL)
	require.NoError(t, cfg.Validate())

	opts := cfg.ClientOpts()
	assert.Equal(t, "env-token", opts.Token)
	assert.Equal(t, 5.5, opts.RequestsPerSecond)
	assert.Equal(t, 15*time.Second, opts.Timeout)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "failed to load config file")
}

func TestLoadUsesConfigPathEnvVar(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("secret: s\n"), 0o600))
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "s", cfg.Secret)
}

func TestValidate(t *testing.T) {
	cfg := defaultConfig()
	err := cfg.Validate()
	assert.ErrorContains(t, err, "token is required")
	assert.ErrorContains(t, err, "secret is required")

	cfg.Token, cfg.Secret = "t", "s"
	assert.NoError(t, cfg.Validate())

	cfg.Burst = -1
	assert.ErrorContains(t, cfg.Validate(), "burst must not be less than 0, got -1")

	cfg.Burst = 1
	cfg.Timeout = -time.Second
	err = cfg.Validate()
	var verr *api.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "timeout", verr.Field)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "platform_url", envKey("IRONSOURCE_PLATFORM_URL"))
	assert.Equal(t, "requests_per_second", envKey("IRONSOURCE_RPS"))
	assert.Equal(t, "", envKey("IRONSOURCE_CONFIG"))
}
