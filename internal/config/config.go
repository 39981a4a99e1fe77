package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	configName = "synthelix"
	configType = "toml"
	envPrefix  = "SYNTHELIX"
	configDir  = ".config/synthelix"
)

const (
	KeyKeysFile        = "credentials.keys_file"
	KeyProxiesFile     = "credentials.proxies_file"
	KeyReferralFile    = "credentials.referral_file"
	KeyBaseURL         = "service.base_url"
	KeyTimeout         = "service.timeout"
	KeyAccountDelay    = "schedule.account_delay"
	KeyCheckInterval   = "schedule.check_interval"
	KeyTaskDelay       = "schedule.task_delay"
	KeyStopSettleDelay = "schedule.stop_settle_delay"
	KeyLowWaterMark    = "schedule.low_water_mark"
	KeyMaxRetries      = "retry.max_retries"
	KeyRetryDelay      = "retry.delay"
	KeyRetryMultiplier = "retry.multiplier"
	KeyRetryJitter     = "retry.jitter"
	KeyRetryMaxDelay   = "retry.max_delay"
	KeyStatePath       = "state.path"
	KeyLogLevel        = "log.level"
)

type Config struct {
	Credentials Credentials `mapstructure:"credentials"`
	Service     Service     `mapstructure:"service"`
	Schedule    Schedule    `mapstructure:"schedule"`
	Retry       Retry       `mapstructure:"retry"`
	State       State       `mapstructure:"state"`
	Log         Log         `mapstructure:"log"`
}

type Credentials struct {
	KeysFile     string `mapstructure:"keys_file"`
	ProxiesFile  string `mapstructure:"proxies_file"`
	ReferralFile string `mapstructure:"referral_file"`
}

type Service struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type Schedule struct {
	AccountDelay    time.Duration `mapstructure:"account_delay"`
	CheckInterval   time.Duration `mapstructure:"check_interval"`
	TaskDelay       time.Duration `mapstructure:"task_delay"`
	StopSettleDelay time.Duration `mapstructure:"stop_settle_delay"`
	LowWaterMark    time.Duration `mapstructure:"low_water_mark"`
}

type Retry struct {
	MaxRetries int           `mapstructure:"max_retries"`
	Delay      time.Duration `mapstructure:"delay"`
	Multiplier float64       `mapstructure:"multiplier"`
	Jitter     float64       `mapstructure:"jitter"`
	// MaxDelay caps a growing delay. Zero leaves it uncapped.
	MaxDelay time.Duration `mapstructure:"max_delay"`
}

type State struct {
	Path string `mapstructure:"path"`
}

type Log struct {
	Level string `mapstructure:"level"`
}

// SetDefaults registers every key with its default and enables SYNTHELIX_*
// environment overrides.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyKeysFile, "data.txt")
	v.SetDefault(KeyProxiesFile, "proxy.txt")
	v.SetDefault(KeyReferralFile, "code.txt")
	v.SetDefault(KeyBaseURL, "https://dashboard.synthelix.io")
	v.SetDefault(KeyTimeout, 30*time.Second)
	v.SetDefault(KeyAccountDelay, 2*time.Second)
	v.SetDefault(KeyCheckInterval, 60*time.Second)
	v.SetDefault(KeyTaskDelay, 3*time.Second)
	v.SetDefault(KeyStopSettleDelay, time.Second)
	v.SetDefault(KeyLowWaterMark, 600*time.Second)
	v.SetDefault(KeyMaxRetries, 3)
	v.SetDefault(KeyRetryDelay, 5*time.Second)
	v.SetDefault(KeyRetryMultiplier, 1.0)
	v.SetDefault(KeyRetryJitter, 0.0)
	v.SetDefault(KeyRetryMaxDelay, time.Minute)
	v.SetDefault(KeyLogLevel, "info")
	if homeDir, err := os.UserHomeDir(); err == nil {
		v.SetDefault(KeyStatePath, filepath.Join(homeDir, configDir, "state.toml"))
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads configFile, or synthelix.toml from the working directory and
// $HOME/.config/synthelix when configFile is empty. A missing default file
// is not an error; a missing explicit file is.
func Load(v *viper.Viper, configFile string) (Config, error) {
	if v == nil {
		v = viper.New()
	}
	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		v.AddConfigPath(".")
		if homeDir, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(homeDir, configDir))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &configNotFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	if err := validateBaseURL(c.Service.BaseURL); err != nil {
		errs = append(errs, err)
	}
	if c.Service.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be > 0, got %s", KeyTimeout, c.Service.Timeout))
	}

	for key, d := range map[string]time.Duration{
		KeyAccountDelay:    c.Schedule.AccountDelay,
		KeyCheckInterval:   c.Schedule.CheckInterval,
		KeyTaskDelay:       c.Schedule.TaskDelay,
		KeyStopSettleDelay: c.Schedule.StopSettleDelay,
		KeyLowWaterMark:    c.Schedule.LowWaterMark,
		KeyRetryDelay:      c.Retry.Delay,
		KeyRetryMaxDelay:   c.Retry.MaxDelay,
	} {
		if d < 0 {
			errs = append(errs, fmt.Errorf("%s must be >= 0, got %s", key, d))
		}
	}

	if c.Retry.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("%s must be >= 0, got %d", KeyMaxRetries, c.Retry.MaxRetries))
	}
	if c.Retry.Multiplier < 1 {
		errs = append(errs, fmt.Errorf("%s must be >= 1, got %v", KeyRetryMultiplier, c.Retry.Multiplier))
	}
	if c.Retry.Jitter < 0 || c.Retry.Jitter > 1 {
		errs = append(errs, fmt.Errorf("%s must be within [0,1], got %v", KeyRetryJitter, c.Retry.Jitter))
	}
	if c.Retry.MaxDelay > 0 && c.Retry.MaxDelay < c.Retry.Delay {
		errs = append(errs, fmt.Errorf("%s must be >= %s (%s), got %s", KeyRetryMaxDelay, KeyRetryDelay, c.Retry.Delay, c.Retry.MaxDelay))
	}
	if strings.TrimSpace(c.Credentials.KeysFile) == "" {
		errs = append(errs, fmt.Errorf("%s is empty", KeyKeysFile))
	}

	return errors.Join(errs...)
}

func validateBaseURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", KeyBaseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must use http or https, got %q", KeyBaseURL, raw)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s has no host: %q", KeyBaseURL, raw)
	}
	return nil
}
