// Package config provides CLI configuration loading and validation.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/reoring/dstruct"
	"github.com/reoring/dstruct/i18n"
	"github.com/reoring/dstruct/ident"
	"github.com/reoring/dstruct/internal/logging"
)

// Config is the root configuration structure.
type Config struct {
	Language   string           `yaml:"language"` // catalog for error messages: en or ja
	IDScheme   string           `yaml:"id_scheme"`
	Validation ValidationConfig `yaml:"validation"`
	Store      StoreConfig      `yaml:"store"`
	Logging    logging.Config   `yaml:"logging"`
}

// ValidationConfig configures document validation.
type ValidationConfig struct {
	AllowNull  []string   `yaml:"allow_null"` // kind names accepting nil
	Equivalent [][]string `yaml:"equivalent"` // groups of mutually compatible kinds
	MaxDepth   int        `yaml:"max_depth"`
	CollectAll bool       `yaml:"collect_all"` // report every violation, not just the first
}

// StoreConfig configures persistence.
type StoreConfig struct {
	Driver string `yaml:"driver"` // memory or sqlite
	DSN    string `yaml:"dsn"`
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return finish(&cfg)
}

// LoadWithFallback loads path when it exists and otherwise builds the
// configuration from the environment and defaults alone.
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat config: %w", err)
		}
	}
	return finish(&Config{})
}

func finish(cfg *Config) (*Config, error) {
	applyEnvOverrides(cfg)
	setDefaults(cfg)
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies DSTRUCT_* environment variables to the config.
// Environment variables always override file-based configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DSTRUCT_LANGUAGE"); v != "" {
		cfg.Language = v
	}
	if v := os.Getenv("DSTRUCT_ID_SCHEME"); v != "" {
		cfg.IDScheme = v
	}
	if v := os.Getenv("DSTRUCT_ALLOW_NULL"); v != "" {
		cfg.Validation.AllowNull = splitList(v)
	}
	if v := os.Getenv("DSTRUCT_MAX_DEPTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Validation.MaxDepth = n
		}
	}
	if v := os.Getenv("DSTRUCT_COLLECT_ALL"); v != "" {
		cfg.Validation.CollectAll = parseBool(v)
	}
	if v := os.Getenv("DSTRUCT_STORE_DRIVER"); v != "" {
		cfg.Store.Driver = v
	}
	if v := os.Getenv("DSTRUCT_STORE_DSN"); v != "" {
		cfg.Store.DSN = v
	}
	if v := os.Getenv("DSTRUCT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("DSTRUCT_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}

// parseBool parses a boolean from common string values.
func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func setDefaults(cfg *Config) {
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	if cfg.IDScheme == "" {
		cfg.IDScheme = "objectid"
	}
	if cfg.Validation.MaxDepth == 0 {
		cfg.Validation.MaxDepth = dstruct.DefaultMaxDepth
	}
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = "sqlite"
	}
	if cfg.Store.DSN == "" {
		cfg.Store.DSN = "dstruct.db"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
}

func validate(cfg *Config) error {
	if cfg.Language != "en" && cfg.Language != "ja" {
		return fmt.Errorf("language must be 'en' or 'ja', got %q", cfg.Language)
	}
	if _, err := ident.Lookup(cfg.IDScheme); err != nil {
		return fmt.Errorf("id_scheme: %w", err)
	}
	if _, err := parseKinds(cfg.Validation.AllowNull); err != nil {
		return fmt.Errorf("validation.allow_null: %w", err)
	}
	for i, g := range cfg.Validation.Equivalent {
		if len(g) < 2 {
			return fmt.Errorf("validation.equivalent[%d] needs at least two kinds", i)
		}
		if _, err := parseKinds(g); err != nil {
			return fmt.Errorf("validation.equivalent[%d]: %w", i, err)
		}
	}
	if cfg.Validation.MaxDepth < 1 {
		return fmt.Errorf("validation.max_depth must be positive, got %d", cfg.Validation.MaxDepth)
	}
	validDrivers := map[string]bool{"memory": true, "sqlite": true}
	if !validDrivers[cfg.Store.Driver] {
		return fmt.Errorf("store.driver must be 'memory' or 'sqlite', got %q", cfg.Store.Driver)
	}
	validFormats := map[string]bool{"console": true, "json": true}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("logging.format must be 'console' or 'json', got %q", cfg.Logging.Format)
	}
	return nil
}

func parseKinds(names []string) ([]dstruct.Kind, error) {
	kinds := make([]dstruct.Kind, 0, len(names))
	for _, n := range names {
		k, ok := dstruct.ParseKind(n)
		if !ok {
			return nil, fmt.Errorf("unknown kind %q", n)
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

// Scheme returns the configured identifier scheme.
func (c *Config) Scheme() ident.Scheme {
	s, err := ident.Lookup(c.IDScheme)
	if err != nil {
		return ident.ObjectIDs
	}
	return s
}

// ValidateOptions converts the validation section into validator options.
func (c *Config) ValidateOptions() []dstruct.ValidateOption {
	opts := []dstruct.ValidateOption{
		dstruct.WithIDScheme(c.Scheme()),
		dstruct.WithMaxDepth(c.Validation.MaxDepth),
	}
	if kinds, err := parseKinds(c.Validation.AllowNull); err == nil && len(kinds) > 0 {
		opts = append(opts, dstruct.AllowNull(kinds...))
	}
	for _, g := range c.Validation.Equivalent {
		if kinds, err := parseKinds(g); err == nil {
			opts = append(opts, dstruct.Equivalent(kinds...))
		}
	}
	return opts
}

// Defaults returns the build defaults matching the configured id scheme.
func (c *Config) Defaults() dstruct.Defaults {
	return dstruct.StandardDefaults().WithIDScheme(c.Scheme())
}

// Apply installs process-wide settings (the message catalog language).
func (c *Config) Apply() {
	i18n.SetLanguage(c.Language)
}
