package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())
	return home
}

func TestLoadDefaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "data.txt", cfg.Credentials.KeysFile)
	assert.Equal(t, "proxy.txt", cfg.Credentials.ProxiesFile)
	assert.Equal(t, "code.txt", cfg.Credentials.ReferralFile)
	assert.Equal(t, "https://dashboard.synthelix.io", cfg.Service.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Service.Timeout)
	assert.Equal(t, 2*time.Second, cfg.Schedule.AccountDelay)
	assert.Equal(t, 60*time.Second, cfg.Schedule.CheckInterval)
	assert.Equal(t, 3*time.Second, cfg.Schedule.TaskDelay)
	assert.Equal(t, time.Second, cfg.Schedule.StopSettleDelay)
	assert.Equal(t, 600*time.Second, cfg.Schedule.LowWaterMark)
	assert.Equal(t, 3, cfg.Retry.MaxRetries)
	assert.Equal(t, 5*time.Second, cfg.Retry.Delay)
	assert.Equal(t, 1.0, cfg.Retry.Multiplier)
	assert.Zero(t, cfg.Retry.Jitter)
	assert.Equal(t, time.Minute, cfg.Retry.MaxDelay)
	assert.Equal(t, filepath.Join(home, ".config", "synthelix", "state.toml"), cfg.State.Path)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadReadsConfigFileFromHome(t *testing.T) {
	home := isolate(t)

	dir := filepath.Join(home, ".config", "synthelix")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "synthelix.toml"), []byte(`
[schedule]
check_interval = "5m"

[retry]
max_retries = 1
multiplier = 2.0
max_delay = "20s"

[log]
level = "debug"
`), 0o600))

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, 5*time.Minute, cfg.Schedule.CheckInterval)
	assert.Equal(t, 1, cfg.Retry.MaxRetries)
	assert.Equal(t, 2.0, cfg.Retry.Multiplier)
	assert.Equal(t, 20*time.Second, cfg.Retry.MaxDelay)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 2*time.Second, cfg.Schedule.AccountDelay)
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte("[service]\nbase_url = \"http://file.example\"\n"), 0o600))
	t.Setenv("SYNTHELIX_SERVICE_BASE_URL", "http://env.example")
	t.Setenv("SYNTHELIX_CREDENTIALS_KEYS_FILE", "/secrets/keys.txt")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, "http://env.example", cfg.Service.BaseURL)
	assert.Equal(t, "/secrets/keys.txt", cfg.Credentials.KeysFile)
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	isolate(t)

	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "read config file")
}

func TestValidateRejectsBadValues(t *testing.T) {
	isolate(t)

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	tests := []struct {
		name    string
		mutate  func(*Config)
		message string
	}{
		{name: "base url scheme", mutate: func(c *Config) { c.Service.BaseURL = "ftp://host" }, message: "must use http or https"},
		{name: "base url host", mutate: func(c *Config) { c.Service.BaseURL = "https://" }, message: "has no host"},
		{name: "timeout", mutate: func(c *Config) { c.Service.Timeout = 0 }, message: KeyTimeout},
		{name: "negative delay", mutate: func(c *Config) { c.Schedule.AccountDelay = -time.Second }, message: KeyAccountDelay},
		{name: "max retries", mutate: func(c *Config) { c.Retry.MaxRetries = -1 }, message: KeyMaxRetries},
		{name: "multiplier", mutate: func(c *Config) { c.Retry.Multiplier = 0.5 }, message: KeyRetryMultiplier},
		{name: "jitter", mutate: func(c *Config) { c.Retry.Jitter = 2 }, message: KeyRetryJitter},
		{name: "negative max delay", mutate: func(c *Config) { c.Retry.MaxDelay = -time.Second }, message: KeyRetryMaxDelay},
		{name: "max delay below delay", mutate: func(c *Config) { c.Retry.MaxDelay = time.Second }, message: KeyRetryMaxDelay},
		{name: "keys file", mutate: func(c *Config) { c.Credentials.KeysFile = " " }, message: KeyKeysFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			broken := cfg
			tt.mutate(&broken)
			assert.ErrorContains(t, broken.Validate(), tt.message)
		})
	}
}
