// Package config loads optional per-workspace settings for rustsym.
//
// Settings are read from .rustsym.toml or .rustsym.yaml in the workspace root
// (TOML wins if both exist), then overridden from the environment:
//
//	RUSTSYM_LOG_LEVEL   debug|info|warn|error
//	RUSTSYM_TOOLCHAIN   0|false|no|off disables the toolchain library root
//
// The declaration keyword table and the excluded directory list are not
// configurable.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// File names looked for in the workspace root, in order.
const (
	TOMLFile = ".rustsym.toml"
	YAMLFile = ".rustsym.yaml"
)

// Config holds indexing and logging settings.
type Config struct {
	// Toolchain enables indexing the active toolchain's standard library.
	Toolchain bool `toml:"toolchain" yaml:"toolchain"`

	// RespectGitignore skips files matched by the workspace .gitignore.
	RespectGitignore bool `toml:"respect_gitignore" yaml:"respect_gitignore"`

	// MaxFileSize skips larger source files. Zero means no limit.
	MaxFileSize int64 `toml:"max_file_size" yaml:"max_file_size"`

	// SearchWorkers bounds workspace search parallelism. Zero means GOMAXPROCS.
	SearchWorkers int `toml:"search_workers" yaml:"search_workers"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level" yaml:"log_level"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		Toolchain: true,
		LogLevel:  "info",
	}
}

// Load reads the config for a workspace root. If path is non-empty it is read
// instead of probing the root, and it must exist. Environment overrides are
// applied last.
func Load(root, path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = findConfigFile(root)
	}
	if path != "" {
		if err := decodeFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	cfg.ApplyEnv(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func findConfigFile(root string) string {
	for _, name := range []string{TOMLFile, YAMLFile} {
		p := filepath.Join(root, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

func decodeFile(cfg *Config, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		return fmt.Errorf("%s: unsupported config format (want .toml or .yaml)", path)
	}
	return nil
}

// ApplyEnv overrides fields from environment variables read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv("RUSTSYM_LOG_LEVEL")); v != "" {
		c.LogLevel = v
	}
	if v := strings.TrimSpace(getenv("RUSTSYM_TOOLCHAIN")); v != "" {
		switch strings.ToLower(v) {
		case "0", "false", "no", "off":
			c.Toolchain = false
		default:
			c.Toolchain = true
		}
	}
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	var errs []error
	if c.MaxFileSize < 0 {
		errs = append(errs, fmt.Errorf("max_file_size must be >= 0, got %d", c.MaxFileSize))
	}
	if c.SearchWorkers < 0 {
		errs = append(errs, fmt.Errorf("search_workers must be >= 0, got %d", c.SearchWorkers))
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level %q is not one of debug, info, warn, error", c.LogLevel))
	}
	return errors.Join(errs...)
}
