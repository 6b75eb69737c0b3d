// Package config reads corec.toml, the compiler's project manifest: a
// package name, a diagnostics bag capacity and color mode, and an
// incremental-cache directory (SPEC_FULL.md §1.1). Grounded on the
// teacher's cmd/surge/project_manifest.go: toml.DecodeFile into a struct
// plus meta.IsDefined checks for the required keys, rather than relying on
// the zero value of a missing field to mean "absent".
package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"corec/internal/diagfmt"
)

// Config is corec.toml's decoded shape.
type Config struct {
	Package     PackageConfig     `toml:"package"`
	Diagnostics DiagnosticsConfig `toml:"diagnostics"`
	Cache       CacheConfig       `toml:"cache"`
}

// PackageConfig is corec.toml's required `[package]` table.
type PackageConfig struct {
	Name string `toml:"name"`
}

// DiagnosticsConfig is corec.toml's optional `[diagnostics]` table.
type DiagnosticsConfig struct {
	// Capacity bounds the diag.Bag every pass reports into (spec.md §6).
	Capacity int `toml:"capacity"`
	// Color enables ANSI severity coloring in internal/diagfmt's pretty
	// printer (github.com/fatih/color).
	Color bool `toml:"color"`
	// PathMode selects how internal/diagfmt renders a diagnostic's file
	// path: "auto", "absolute", "relative", or "basename".
	PathMode string `toml:"path_mode"`
}

// CacheConfig is corec.toml's optional `[cache]` table.
type CacheConfig struct {
	// Dir is where internal/driver's on-disk incremental cache writes its
	// msgpack-encoded per-file diagnostic summaries.
	Dir string `toml:"dir"`
}

// Default returns the configuration corec uses when no corec.toml is
// present: a reasonably large diagnostics bag, color on, auto path mode,
// and a cache directory relative to the working directory.
func Default() *Config {
	return &Config{
		Diagnostics: DiagnosticsConfig{
			Capacity: 256,
			Color:    true,
			PathMode: "auto",
		},
		Cache: CacheConfig{Dir: ".corec-cache"},
	}
}

// Load reads and validates corec.toml at path. [package] and
// [package].name are required; [diagnostics] and [cache] are optional and
// fall back to Default's values for any key left unset.
func Load(path string) (*Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") {
		return nil, fmt.Errorf("%s: missing [package]", path)
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(cfg.Package.Name) == "" {
		return nil, fmt.Errorf("%s: missing [package].name", path)
	}
	if !meta.IsDefined("diagnostics", "capacity") {
		cfg.Diagnostics.Capacity = Default().Diagnostics.Capacity
	}
	if !meta.IsDefined("diagnostics", "path_mode") || cfg.Diagnostics.PathMode == "" {
		cfg.Diagnostics.PathMode = Default().Diagnostics.PathMode
	}
	if !meta.IsDefined("cache", "dir") || cfg.Cache.Dir == "" {
		cfg.Cache.Dir = Default().Cache.Dir
	}
	return cfg, nil
}

// PathMode converts the manifest's string path_mode setting to
// internal/diagfmt's PathMode enum, defaulting to PathModeAuto for an
// unrecognized value.
func (c *Config) PathMode() diagfmt.PathMode {
	switch strings.ToLower(c.Diagnostics.PathMode) {
	case "absolute":
		return diagfmt.PathModeAbsolute
	case "relative":
		return diagfmt.PathModeRelative
	case "basename":
		return diagfmt.PathModeBasename
	default:
		return diagfmt.PathModeAuto
	}
}
