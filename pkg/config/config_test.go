package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Dicklesworthstone/hierarchy_viewer/pkg/tree"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Sort.Field != "name" || cfg.Watch.Debounce != 200*time.Millisecond || cfg.Glyphs() != tree.DefaultGlyphs {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	yml := `
sort:
  field: priority
  descending: true
filter:
  fields: [name, tags]
  fuzzy: true
tree:
  default_expanded: true
  glyphs: ascii
page_size: 25
log_level: debug
store:
  driver: sqlite3
  path: assets.db
watch:
  debounce: 1s
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Sort != (tree.SortState{Field: "priority", Descending: true}) {
		t.Errorf("sort = %+v", cfg.Sort)
	}
	if !cfg.Filter.Fuzzy || len(cfg.Filter.Fields) != 2 {
		t.Errorf("filter = %+v", cfg.Filter)
	}
	if !cfg.Tree.DefaultExpanded || cfg.Glyphs() != tree.ASCIIGlyphs {
		t.Errorf("tree = %+v", cfg.Tree)
	}
	if cfg.PageSize != 25 || cfg.LogLevel != "debug" {
		t.Errorf("page_size = %d log_level = %q", cfg.PageSize, cfg.LogLevel)
	}
	if cfg.Store.Driver != "sqlite3" || cfg.Store.Path != "assets.db" {
		t.Errorf("store = %+v", cfg.Store)
	}
	if cfg.Watch.Debounce != time.Second {
		t.Errorf("debounce = %v", cfg.Watch.Debounce)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yml  string
	}{
		{"malformed", "sort: [\n"},
		{"negative page size", "page_size: -1\n"},
		{"unknown glyphs", "tree:\n  glyphs: emoji\n"},
		{"unknown level", "log_level: loud\n"},
		{"unknown driver", "store:\n  driver: postgres\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), FileName)
			if err := os.WriteFile(path, []byte(tt.yml), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("err = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := DefaultPath(t.TempDir())
	want := Default()
	want.Sort = tree.SortState{Field: "createdAt", Descending: true}
	want.PageSize = 10

	if err := want.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.Sort != want.Sort || got.PageSize != 10 || got.Watch.Debounce != want.Watch.Debounce {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}
}
