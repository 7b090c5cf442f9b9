// Package config loads hv settings from .assets/hv.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Dicklesworthstone/hierarchy_viewer/pkg/tree"
)

// ErrInvalidConfig is returned when a loaded config fails validation.
var ErrInvalidConfig = errors.New("invalid config")

// FileName is the config file looked up under the assets directory.
const FileName = "hv.yaml"

// Glyph set names accepted by tree.glyphs.
const (
	GlyphsUnicode = "unicode"
	GlyphsASCII   = "ascii"
)

// Config holds every tunable hv reads from disk.
type Config struct {
	Sort     tree.SortState `yaml:"sort"`
	Filter   FilterConfig   `yaml:"filter"`
	Tree     TreeConfig     `yaml:"tree"`
	PageSize int            `yaml:"page_size"`
	LogLevel string         `yaml:"log_level"`
	Store    StoreConfig    `yaml:"store"`
	Watch    WatchConfig    `yaml:"watch"`
}

// FilterConfig sets the initial filter fields and matching mode.
type FilterConfig struct {
	Fields []string `yaml:"fields"`
	Fuzzy  bool     `yaml:"fuzzy"`
}

// TreeConfig controls initial expansion and the connector glyphs.
type TreeConfig struct {
	DefaultExpanded bool   `yaml:"default_expanded"`
	Glyphs          string `yaml:"glyphs"`
}

// StoreConfig selects an optional SQLite store as the record source.
type StoreConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

// WatchConfig tunes live reload.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Sort:     tree.SortState{Field: "name"},
		Tree:     TreeConfig{Glyphs: GlyphsUnicode},
		LogLevel: "warn",
		Store:    StoreConfig{Driver: "sqlite"},
		Watch:    WatchConfig{Debounce: 200 * time.Millisecond},
	}
}

// DefaultPath returns the config path for an assets directory.
func DefaultPath(dir string) string {
	return filepath.Join(dir, ".assets", FileName)
}

// Load reads path over the defaults. A missing file yields Default().
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: parse %s: %v", ErrInvalidConfig, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	if c.PageSize < 0 {
		return fmt.Errorf("%w: page_size must not be negative, got %d", ErrInvalidConfig, c.PageSize)
	}
	switch c.Tree.Glyphs {
	case "", GlyphsUnicode, GlyphsASCII:
	default:
		return fmt.Errorf("%w: tree.glyphs must be %q or %q, got %q", ErrInvalidConfig, GlyphsUnicode, GlyphsASCII, c.Tree.Glyphs)
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	switch c.Store.Driver {
	case "", "sqlite", "sqlite3":
	default:
		return fmt.Errorf("%w: store.driver must be sqlite or sqlite3, got %q", ErrInvalidConfig, c.Store.Driver)
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("%w: watch.debounce must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Glyphs returns the prefix glyph set named by tree.glyphs.
func (c Config) Glyphs() tree.Glyphs {
	if c.Tree.Glyphs == GlyphsASCII {
		return tree.ASCIIGlyphs
	}
	return tree.DefaultGlyphs
}

// Save writes the config as YAML, creating parent directories.
func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
