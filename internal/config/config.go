// Package config loads the devpolicy daemon configuration.
//
// A config file may be YAML (.yaml, .yml) or CUE (.cue). File values are
// applied over Default(), then DEVPOLICY_* environment variables override
// them, then the result is validated against the embedded CUE schema.
package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/devpolicy/internal/policy"
	"github.com/roach88/devpolicy/internal/settings"
)

//go:embed schema.cue
var schemaSource string

// Environment variables that override file values.
const (
	EnvDatabase = "DEVPOLICY_DB"
	EnvListen   = "DEVPOLICY_LISTEN"
	EnvLogLevel = "DEVPOLICY_LOG_LEVEL"
)

// Config is the daemon configuration.
type Config struct {
	Database string `yaml:"database" json:"database"`
	Listen   string `yaml:"listen" json:"listen"`
	LogLevel string `yaml:"log_level" json:"log_level"`

	PrivilegedPackage       string `yaml:"privileged_package" json:"privileged_package"`
	AudioEnhancementPackage string `yaml:"audio_enhancement_package" json:"audio_enhancement_package"`

	// Settings are written to the store only for keys never set before.
	Settings SettingsDefaults `yaml:"settings" json:"settings"`

	// Packages is the initial name→uid table used to resolve bindings at
	// startup, before the host reports any package events.
	Packages map[string]int `yaml:"packages" json:"packages"`
}

// SettingsDefaults holds the default value of each policy setting.
type SettingsDefaults struct {
	HideIdleFromPrivilegedApp    bool `yaml:"hide_idle_from_privileged_app" json:"hide_idle_from_privileged_app"`
	UnrestrictedNetworkWhileIdle bool `yaml:"unrestricted_network_while_idle" json:"unrestricted_network_while_idle"`
	AggressiveIdle               bool `yaml:"aggressive_idle" json:"aggressive_idle"`
	ExtremeIdle                  bool `yaml:"extreme_idle" json:"extreme_idle"`
}

// Values converts the defaults to settings.Values.
func (s SettingsDefaults) Values() settings.Values {
	return settings.Values{
		settings.HideIdleFromPrivilegedApp:    s.HideIdleFromPrivilegedApp,
		settings.UnrestrictedNetworkWhileIdle: s.UnrestrictedNetworkWhileIdle,
		settings.AggressiveIdle:               s.AggressiveIdle,
		settings.ExtremeIdle:                  s.ExtremeIdle,
	}
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Database:                "devpolicy.db",
		Listen:                  "127.0.0.1:9464",
		LogLevel:                "info",
		PrivilegedPackage:       "com.google.android.gms",
		AudioEnhancementPackage: "com.dolby.daxservice",
		Packages:                map[string]int{},
	}
}

// ValidationError reports a config that violates the schema.
type ValidationError struct {
	Details string
	Err     error
}

func (e *ValidationError) Error() string {
	return "invalid config: " + strings.TrimSpace(e.Details)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Load reads path (if non-empty), applies environment overrides from
// os.Getenv and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		cfg, err = LoadFile(path)
		if err != nil {
			return Config{}, err
		}
	}

	cfg = cfg.WithEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile reads a YAML or CUE file over Default(). It does not validate.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	case ".cue":
		v := cuecontext.New().CompileBytes(data, cue.Filename(path))
		if err := v.Err(); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %s", path, cueerrors.Details(err, nil))
		}
		if err := v.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("decode config %s: %w", path, err)
		}
	default:
		return Config{}, fmt.Errorf("unsupported config format %q (want .yaml, .yml or .cue)", ext)
	}

	if cfg.Packages == nil {
		cfg.Packages = map[string]int{}
	}
	return cfg, nil
}

// WithEnv returns a copy of c with non-empty environment values applied.
func (c Config) WithEnv(getenv func(string) string) Config {
	if v := getenv(EnvDatabase); v != "" {
		c.Database = v
	}
	if v := getenv(EnvListen); v != "" {
		c.Listen = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	return c
}

// Validate checks c against the embedded CUE schema.
func (c Config) Validate() error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}

	if c.Packages == nil {
		c.Packages = map[string]int{}
	}

	v := schema.LookupPath(cue.ParsePath("#Config")).Unify(ctx.Encode(c))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return &ValidationError{Details: cueerrors.Details(err, nil), Err: err}
	}
	return nil
}

// Bindings returns the configured package name per binding.
func (c Config) Bindings() map[policy.Binding]string {
	return map[policy.Binding]string{
		policy.PrivilegedApp:       c.PrivilegedPackage,
		policy.AudioEnhancementApp: c.AudioEnhancementPackage,
	}
}

// SlogLevel maps LogLevel to a slog.Level. Unknown values map to Info.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
