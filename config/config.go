// Package config loads client settings from config.env, an optional YAML
// file and IRONSOURCE_* environment variables, in increasing priority.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/raine/ironsource-go/api"
)

const (
	AppName     = "ironsource-go"
	EnvFileName = "config.env"

	// ConfigPathEnvVar overrides the YAML file location.
	ConfigPathEnvVar  = "IRONSOURCE_CONFIG"
	DefaultConfigFile = "ironsource.yaml"

	envPrefix = "IRONSOURCE_"
)

// Config holds everything needed to build an api.Client.
type Config struct {
	User   string `koanf:"user"`
	Token  string `koanf:"token" validate:"required"`
	Secret string `koanf:"secret" validate:"required"`

	PlatformURL   string `koanf:"platform_url"`
	AdvertiserURL string `koanf:"advertiser_url"`
	AudienceURL   string `koanf:"audience_url"`

	Timeout           time.Duration `koanf:"timeout" validate:"gte=0"`
	RequestsPerSecond float64       `koanf:"requests_per_second" validate:"gte=0"`
	Burst             int           `koanf:"burst" validate:"gte=0"`

	Debug bool `koanf:"debug"`
}

func defaultConfig() Config {
	return Config{
		PlatformURL:   api.PlatformBaseURL,
		AdvertiserURL: api.AdvertiserBaseURL,
		AudienceURL:   api.AudienceBaseURL,
		Timeout:       60 * time.Second,
		Burst:         1,
	}
}

// LoadEnvFile loads environment variables from the config file in the user's
// config directory. Errors are ignored since the file may not exist.
func LoadEnvFile() {
	configBase, err := os.UserConfigDir()
	if err != nil {
		return
	}
	configPath := filepath.Join(configBase, AppName, EnvFileName)
	_ = godotenv.Load(configPath)
}

// Load reads config.env, then the YAML file named by IRONSOURCE_CONFIG (or
// ironsource.yaml in the working directory, if present), then the
// environment.
func Load() (*Config, error) {
	LoadEnvFile()
	return LoadFile(findConfigFile())
}

// LoadFile layers defaults, the YAML file at path and the environment. An
// empty path skips the file.
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		return p
	}
	if _, err := os.Stat(DefaultConfigFile); err == nil {
		return DefaultConfigFile
	}
	return ""
}

// envKey maps IRONSOURCE_PLATFORM_URL to platform_url. IRONSOURCE_RPS is
// accepted as a short form of IRONSOURCE_REQUESTS_PER_SECOND.
func envKey(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
	switch key {
	case "config":
		return ""
	case "rps":
		return "requests_per_second"
	}
	return key
}

// Validate reports missing credentials and out of range limits.
func (c *Config) Validate() error {
	return api.ValidateStruct(c)
}

// ClientOpts converts the configuration for api.NewClient.
func (c *Config) ClientOpts() api.ClientOpts {
	return api.ClientOpts{
		User:              c.User,
		Token:             c.Token,
		Secret:            c.Secret,
		PlatformURL:       c.PlatformURL,
		AdvertiserURL:     c.AdvertiserURL,
		AudienceURL:       c.AudienceURL,
		Timeout:           c.Timeout,
		RequestsPerSecond: c.RequestsPerSecond,
		Burst:             c.Burst,
	}
}
