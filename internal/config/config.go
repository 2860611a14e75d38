// Package config loads the optional .autoversion.yaml file from the
// firmware repository root and applies defaults when it is absent.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oleiade/autoversion/internal/flags"
	"github.com/oleiade/autoversion/internal/resolver"
)

const (
	// FileName is the configuration file looked up in the repository root.
	FileName = ".autoversion.yaml"

	// EnvFlagsFile overrides the flags file path from the environment,
	// which is how CI pipelines usually wire the tool.
	EnvFlagsFile = "AUTOVERSION_FLAGS_FILE"
)

// Config models .autoversion.yaml. Every field is optional.
type Config struct {
	// MacroName is the preprocessor symbol to define. Default: AUTO_VERSION.
	MacroName string `yaml:"macro_name"`

	// PinnedVersion, when set, is embedded verbatim and version control is
	// never queried (e.g. "v2.0.0" for release builds).
	PinnedVersion string `yaml:"pinned_version"`

	// Fallback is the sentinel embedded when resolution fails. Default: dev.
	Fallback string `yaml:"fallback"`

	// RepoDir is the directory the version-control query runs in.
	// Default: the directory the config was loaded from.
	RepoDir string `yaml:"repo_dir"`

	// FlagsFile is the flag-accumulation file shared with the build
	// orchestrator. Overridden by the AUTOVERSION_FLAGS_FILE environment
	// variable and by the command line.
	FlagsFile string `yaml:"flags_file"`

	// Changelog is the path to the markdown changelog used by the notes
	// operation. Default: CHANGELOG.md next to the config.
	Changelog string `yaml:"changelog"`

	// HistoryDB is the path of the sqlite resolution-history database.
	// Empty disables history recording.
	HistoryDB string `yaml:"history_db"`

	// QueryTimeout bounds the version-control subprocess, as a Go duration
	// string (e.g. "10s"). Invalid or empty values use the resolver default.
	QueryTimeout string `yaml:"query_timeout"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		MacroName: flags.DefaultMacroName,
		Fallback:  resolver.DefaultFallback,
		Changelog: "CHANGELOG.md",
	}
}

// Load reads .autoversion.yaml from dir. A missing file yields the defaults;
// a malformed file is an error.
func Load(dir string) (*Config, error) {
	cfg := Default()
	if cfg.RepoDir == "" {
		cfg.RepoDir = dir
	}

	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if cfg.MacroName == "" {
		cfg.MacroName = flags.DefaultMacroName
	}
	if cfg.Fallback == "" {
		cfg.Fallback = resolver.DefaultFallback
	}
	if cfg.RepoDir == "" {
		cfg.RepoDir = dir
	}
	if cfg.Changelog == "" {
		cfg.Changelog = "CHANGELOG.md"
	}

	return cfg, nil
}

// ResolveFlagsFile returns the effective flags file path, applying the
// environment override on top of the file-based configuration.
func (c *Config) ResolveFlagsFile() string {
	if path := os.Getenv(EnvFlagsFile); path != "" {
		return path
	}
	return c.FlagsFile
}

// ChangelogPath returns the changelog path resolved relative to the
// repository directory when it is not absolute.
func (c *Config) ChangelogPath() string {
	if filepath.IsAbs(c.Changelog) || c.RepoDir == "" {
		return c.Changelog
	}
	return filepath.Join(c.RepoDir, c.Changelog)
}

// ResolverOptions translates the configuration into resolver options.
func (c *Config) ResolverOptions() *resolver.Options {
	opts := &resolver.Options{
		RepoDir:  c.RepoDir,
		Pinned:   c.PinnedVersion,
		Fallback: c.Fallback,
	}
	if c.QueryTimeout != "" {
		if d, err := time.ParseDuration(c.QueryTimeout); err == nil && d > 0 {
			opts.Timeout = d
		}
	}
	return opts
}
