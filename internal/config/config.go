package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultPort           = "3000"
	DefaultBackendURL     = "http://localhost:5000"
	DefaultRequestTimeout = 15 * time.Second
	DefaultStatsCacheTTL  = 60 * time.Second
	DefaultPollInterval   = 20 * time.Second
)

// Config holds application configuration
type Config struct {
	Port           string
	BackendURL     string
	RequestTimeout time.Duration
	StatsCacheTTL  time.Duration
	PollInterval   time.Duration
	TrustedOrigins []string
}

// Overrides are command flag values. Empty fields are ignored.
type Overrides struct {
	Port       string
	BackendURL string
}

// envFiles are loaded before anything else. Variables already present in
// the environment win.
var envFiles = []string{".env"}

// Load loads configuration from multiple sources with priority:
// 1. Command flags (see LoadWithOverrides)
// 2. Config file (./posturai.toml or $XDG_CONFIG_HOME/posturai/posturai.toml)
// 3. Environment variables, including .env
func Load() (*Config, error) {
	return LoadWithOverrides(Overrides{})
}

// LoadWithOverrides loads config and applies flag overrides
func LoadWithOverrides(overrides Overrides) (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, err
	}

	v := newBaseViper()
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}
	return buildConfig(v, overrides), nil
}

func loadEnvFiles() error {
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

func newBaseViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName("posturai")
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	// Manual XDG lookup so tests can point it at a temp dir.
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		if home, err := os.UserHomeDir(); err == nil {
			configHome = filepath.Join(home, ".config")
		}
	}
	if configHome != "" {
		v.AddConfigPath(filepath.Join(configHome, "posturai"))
	}

	return v
}

func buildConfig(v *viper.Viper, overrides Overrides) *Config {
	cfg := &Config{
		Port:           DefaultPort,
		BackendURL:     DefaultBackendURL,
		RequestTimeout: DefaultRequestTimeout,
		StatsCacheTTL:  DefaultStatsCacheTTL,
		PollInterval:   DefaultPollInterval,
		TrustedOrigins: []string{"localhost"},
	}

	cfg.Port = stringSetting(v, "port", "PORT", cfg.Port)
	cfg.BackendURL = strings.TrimSuffix(stringSetting(v, "backend_url", "BACKEND_URL", cfg.BackendURL), "/")
	cfg.RequestTimeout = durationSetting(v, "request_timeout", "REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.StatsCacheTTL = durationSetting(v, "stats_cache_ttl", "STATS_CACHE_TTL", cfg.StatsCacheTTL)
	cfg.PollInterval = durationSetting(v, "poll_interval", "POLL_INTERVAL", cfg.PollInterval)

	if v.IsSet("trusted_origins") {
		cfg.TrustedOrigins = parseTrustedOrigins(v.GetString("trusted_origins"))
	} else if envOrigins := os.Getenv("TRUSTED_ORIGINS"); envOrigins != "" {
		cfg.TrustedOrigins = parseTrustedOrigins(envOrigins)
	}

	// Apply overrides (flags) last
	if overrides.Port != "" {
		cfg.Port = overrides.Port
	}
	if overrides.BackendURL != "" {
		cfg.BackendURL = strings.TrimSuffix(overrides.BackendURL, "/")
	}

	return cfg
}

func stringSetting(v *viper.Viper, key, env, fallback string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	if value := os.Getenv(env); value != "" {
		return value
	}
	return fallback
}

// durationSetting accepts Go durations ("90s") or plain seconds ("90").
// Invalid or non-positive values keep the fallback.
func durationSetting(v *viper.Viper, key, env string, fallback time.Duration) time.Duration {
	var raw string
	if v.IsSet(key) {
		raw = v.GetString(key)
	} else {
		raw = os.Getenv(env)
	}
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		d, err = time.ParseDuration(raw + "s")
	}
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
