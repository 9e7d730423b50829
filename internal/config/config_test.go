package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/devpolicy/internal/policy"
	"github.com/roach88/devpolicy/internal/settings"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func noEnv(string) string { return "" }

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "devpolicy.db", cfg.Database)
	assert.Equal(t, "127.0.0.1:9464", cfg.Listen)
	assert.Equal(t, "com.google.android.gms", cfg.PrivilegedPackage)
	assert.Equal(t, "com.dolby.daxservice", cfg.AudioEnhancementPackage)
	assert.Empty(t, cfg.Packages)
}

func TestLoadFile_YAML(t *testing.T) {
	path := writeFile(t, "devpolicy.yaml", `
database: /var/lib/devpolicy/state.db
listen: 0.0.0.0:9000
log_level: debug
settings:
  hide_idle_from_privileged_app: true
  extreme_idle: true
packages:
  com.google.android.gms: 10123
  com.dolby.daxservice: 10045
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "/var/lib/devpolicy/state.db", cfg.Database)
	assert.Equal(t, "0.0.0.0:9000", cfg.Listen)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	// Unset fields keep their defaults.
	assert.Equal(t, "com.google.android.gms", cfg.PrivilegedPackage)
	assert.Equal(t, map[string]int{
		"com.google.android.gms": 10123,
		"com.dolby.daxservice":   10045,
	}, cfg.Packages)

	assert.Equal(t, settings.Values{
		settings.HideIdleFromPrivilegedApp:    true,
		settings.UnrestrictedNetworkWhileIdle: false,
		settings.AggressiveIdle:               false,
		settings.ExtremeIdle:                  true,
	}, cfg.Settings.Values())
}

func TestLoadFile_CUE(t *testing.T) {
	path := writeFile(t, "devpolicy.cue", `
database:                  "policy.db"
listen:                    "localhost:8080"
log_level:                 "warn"
privileged_package:        "com.example.services"
audio_enhancement_package: ""
settings: {
	hide_idle_from_privileged_app:   false
	unrestricted_network_while_idle: true
	aggressive_idle:                 true
	extreme_idle:                    false
}
packages: "com.example.services": 10200
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "policy.db", cfg.Database)
	assert.Equal(t, slog.LevelWarn, cfg.SlogLevel())
	assert.Equal(t, "com.example.services", cfg.PrivilegedPackage)
	assert.Empty(t, cfg.AudioEnhancementPackage)
	assert.True(t, cfg.Settings.UnrestrictedNetworkWhileIdle)
	assert.True(t, cfg.Settings.AggressiveIdle)
	assert.Equal(t, 10200, cfg.Packages["com.example.services"])
}

func TestLoadFile_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "read config")
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := LoadFile(writeFile(t, "devpolicy.toml", "database = 'x'"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported config format")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := LoadFile(writeFile(t, "devpolicy.yaml", "database: [unterminated"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse config")
	})

	t.Run("malformed cue", func(t *testing.T) {
		_, err := LoadFile(writeFile(t, "devpolicy.cue", "database: {"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse config")
	})
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty database", func(c *Config) { c.Database = "" }},
		{"listen without port", func(c *Config) { c.Listen = "localhost" }},
		{"unbracketed ipv6 listen", func(c *Config) { c.Listen = "::1:9464" }},
		{"bracketed ipv6 without port", func(c *Config) { c.Listen = "[::1]" }},
		{"unknown log level", func(c *Config) { c.LogLevel = "verbose" }},
		{"bad privileged package", func(c *Config) { c.PrivilegedPackage = "gms" }},
		{"bad audio package", func(c *Config) { c.AudioEnhancementPackage = "com..dolby" }},
		{"negative uid", func(c *Config) { c.Packages = map[string]int{"com.example.app": -1} }},
		{"bad package key", func(c *Config) { c.Packages = map[string]int{"not a package": 10000} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "want *ValidationError, got %T", err)
			assert.NotEmpty(t, verr.Details)
			assert.Contains(t, verr.Error(), "invalid config")
		})
	}
}

func TestValidate_ListenAddresses(t *testing.T) {
	for _, addr := range []string{"127.0.0.1:9464", "localhost:8080", ":9464", "[::1]:9464", "[fe80::1%eth0]:9464"} {
		t.Run(addr, func(t *testing.T) {
			cfg := Default()
			cfg.Listen = addr
			assert.NoError(t, cfg.Validate())
		})
	}
}

func TestValidate_AllowsEmptyBindingPackages(t *testing.T) {
	cfg := Default()
	cfg.PrivilegedPackage = ""
	cfg.AudioEnhancementPackage = ""
	cfg.Packages = nil

	assert.NoError(t, cfg.Validate())
}

func TestWithEnv(t *testing.T) {
	env := map[string]string{
		EnvDatabase: "/tmp/env.db",
		EnvLogLevel: "ERROR",
	}
	cfg := Default().WithEnv(func(k string) string { return env[k] })

	assert.Equal(t, "/tmp/env.db", cfg.Database)
	assert.Equal(t, "127.0.0.1:9464", cfg.Listen, "unset variables leave the value alone")
	assert.Equal(t, slog.LevelError, cfg.SlogLevel())

	assert.Equal(t, Default(), Default().WithEnv(noEnv))
}

func TestLoad(t *testing.T) {
	t.Setenv(EnvListen, "127.0.0.1:7000")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7000", cfg.Listen)

	_, err = Load(writeFile(t, "bad.yaml", "log_level: chatty\n"))
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestBindings(t *testing.T) {
	cfg := Default()
	assert.Equal(t, map[policy.Binding]string{
		policy.PrivilegedApp:       "com.google.android.gms",
		policy.AudioEnhancementApp: "com.dolby.daxservice",
	}, cfg.Bindings())
}

func TestSlogLevel_DefaultsToInfo(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "nonsense"
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}
