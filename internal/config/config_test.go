package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	original, existed := os.LookupEnv(key)
	if existed {
		t.Cleanup(func() {
			_ = os.Setenv(key, original)
		})
	} else {
		t.Cleanup(func() {
			_ = os.Unsetenv(key)
		})
	}
	_ = os.Unsetenv(key)
}

func writeTestConfig(t *testing.T, home string, contents string) {
	t.Helper()
	configDir := filepath.Join(home, ".config", "posturai")
	require.NoError(t, os.MkdirAll(configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "posturai.toml"), []byte(contents), 0o644))
}

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	for _, key := range []string{"PORT", "BACKEND_URL", "REQUEST_TIMEOUT", "STATS_CACHE_TTL", "POLL_INTERVAL", "TRUSTED_ORIGINS"} {
		unsetEnv(t, key)
	}

	original := envFiles
	envFiles = []string{filepath.Join(home, ".env")}
	t.Cleanup(func() { envFiles = original })
	return home
}

func TestLoadDefaultsWhenNoConfigSources(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "http://localhost:5000", cfg.BackendURL)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 60*time.Second, cfg.StatsCacheTTL)
	assert.Equal(t, 20*time.Second, cfg.PollInterval)
	assert.Equal(t, []string{"localhost"}, cfg.TrustedOrigins)
}

func TestLoadUsesEnvironmentVariables(t *testing.T) {
	isolate(t)
	t.Setenv("PORT", "4321")
	t.Setenv("BACKEND_URL", "http://flask:5000/")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("STATS_CACHE_TTL", "120")
	t.Setenv("POLL_INTERVAL", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "4321", cfg.Port)
	assert.Equal(t, "http://flask:5000", cfg.BackendURL)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 2*time.Minute, cfg.StatsCacheTTL)
	assert.Equal(t, DefaultPollInterval, cfg.PollInterval)
}

func TestLoadReadsDotEnv(t *testing.T) {
	home := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(home, ".env"), []byte("BACKEND_URL=http://dotenv:5000\nPORT=7000\n"), 0o644))
	t.Setenv("PORT", "8000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://dotenv:5000", cfg.BackendURL)
	assert.Equal(t, "8000", cfg.Port) // real environment wins over .env
}

func TestLoadWithOverridesPriority(t *testing.T) {
	home := isolate(t)
	writeTestConfig(t, home, `
port = "4000"
backend_url = "http://config:5000"
poll_interval = "45s"
`)

	t.Setenv("PORT", "5000")
	t.Setenv("BACKEND_URL", "http://env:5000")

	cfg, err := LoadWithOverrides(Overrides{BackendURL: "http://flag:5000/"})
	require.NoError(t, err)
	assert.Equal(t, "http://flag:5000", cfg.BackendURL)
	assert.Equal(t, "4000", cfg.Port)
	assert.Equal(t, 45*time.Second, cfg.PollInterval)

	cfg, err = LoadWithOverrides(Overrides{Port: "9999"})
	require.NoError(t, err)
	assert.Equal(t, "http://config:5000", cfg.BackendURL)
	assert.Equal(t, "9999", cfg.Port)
}

func TestLoadFallsBackToEnvWhenConfigMissing(t *testing.T) {
	home := isolate(t)
	writeTestConfig(t, home, `
stats_cache_ttl = 30
`)

	t.Setenv("PORT", "5000")
	t.Setenv("TRUSTED_ORIGINS", "Example.com, https://foo.test/, bad/path")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.StatsCacheTTL)
	assert.Equal(t, []string{"example.com", "foo.test"}, cfg.TrustedOrigins)
	assert.Equal(t, []string{"http://example.com", "https://example.com", "http://foo.test", "https://foo.test"}, cfg.AllowedOrigins())
}

func TestLoadRejectsMalformedConfigFile(t *testing.T) {
	home := isolate(t)
	writeTestConfig(t, home, "port = = 1")

	_, err := Load()
	assert.Error(t, err)
}

func TestSanitizeTrustedDomain(t *testing.T) {
	tests := []struct {
		input       string
		expected    string
		shouldError bool
	}{
		{"example.com", "example.com", false},
		{"EXAMPLE.com", "example.com", false},
		{"http://example.com", "example.com", false},
		{"https://example.com:3000/", "example.com:3000", false},
		{"example.com/path", "", true},
		{"https://example.com/path", "", true},
		{"http://example.com?foo=1", "", true},
		{"http://example.com#frag", "", true},
		{"", "", true},
		{"https://*.example.com", "", true},
	}

	for _, tt := range tests {
		got, err := SanitizeTrustedDomain(tt.input)
		if tt.shouldError {
			assert.Error(t, err, tt.input)
			continue
		}
		assert.NoError(t, err, tt.input)
		assert.Equal(t, tt.expected, got)
	}
}

func TestParseTrustedOriginsReportsRejectedEntries(t *testing.T) {
	hosts, err := ParseTrustedOrigins("a.test, *.b.test, user@c.test, D.test:8080")

	assert.Equal(t, []string{"a.test", "d.test:8080"}, hosts)
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)
	assert.ErrorIs(t, err, ErrInvalidOrigin)

	hosts, err = ParseTrustedOrigins("  ")
	assert.NoError(t, err)
	assert.Empty(t, hosts)
}

func TestDurationSetting(t *testing.T) {
	unsetEnv(t, "REQUEST_TIMEOUT")

	v := viper.New()
	assert.Equal(t, 15*time.Second, durationSetting(v, "request_timeout", "REQUEST_TIMEOUT", 15*time.Second))

	t.Setenv("REQUEST_TIMEOUT", "45")
	assert.Equal(t, 45*time.Second, durationSetting(v, "request_timeout", "REQUEST_TIMEOUT", 15*time.Second))

	v.Set("request_timeout", "2m")
	assert.Equal(t, 2*time.Minute, durationSetting(v, "request_timeout", "REQUEST_TIMEOUT", 15*time.Second))

	v.Set("request_timeout", "-3s")
	assert.Equal(t, 15*time.Second, durationSetting(v, "request_timeout", "REQUEST_TIMEOUT", 15*time.Second))
}
