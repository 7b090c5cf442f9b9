package export

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Dicklesworthstone/hierarchy_viewer/pkg/model"
	"github.com/Dicklesworthstone/hierarchy_viewer/pkg/render"
	"github.com/Dicklesworthstone/hierarchy_viewer/pkg/tree"
)

func sampleLines(t *testing.T) []Line {
	t.Helper()
	c := tree.NewCollection(tree.CollectionConfig[model.Asset]{
		Columns:         render.AssetColumns(),
		Sort:            tree.SortState{Field: model.FieldName},
		DefaultExpanded: true,
	})
	if err := c.Update([]model.Asset{
		{ID: "r", Name: "Scene <main>"},
		{ID: "a", ParentID: "r", Name: "Teapot"},
		{ID: "b", ParentID: "missing", Name: "Orphan"},
	}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	return LinesFromNodes(c.Items().Items, c.Columns(), tree.DefaultGlyphs)
}

func TestLinesFromNodes(t *testing.T) {
	lines := sampleLines(t)
	if len(lines) != 5 || !lines[0].Header {
		t.Fatalf("lines = %+v", lines)
	}
	var placeholders int
	for _, l := range lines {
		if l.Placeholder {
			placeholders++
		}
	}
	if placeholders != 1 {
		t.Errorf("placeholder lines = %d, want 1", placeholders)
	}
}

func TestSaveSnapshot_SVGAndPNG(t *testing.T) {
	lines := sampleLines(t)
	tmp := t.TempDir()

	cases := []struct {
		name string
		file string
	}{
		{"svg", "tree.svg"},
		{"png", "tree.png"},
		{"nested dir", filepath.Join("out", "tree.svg")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := filepath.Join(tmp, tc.file)
			if err := SaveSnapshot(SnapshotOptions{Path: out, Title: "assets", Lines: lines}); err != nil {
				t.Fatalf("SaveSnapshot error: %v", err)
			}
			info, err := os.Stat(out)
			if err != nil {
				t.Fatalf("output not created: %v", err)
			}
			if info.Size() == 0 {
				t.Fatalf("output file is empty")
			}
		})
	}

	data, err := os.ReadFile(filepath.Join(tmp, "tree.svg"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Scene &lt;main&gt;") {
		t.Errorf("svg text not escaped")
	}
}

func TestSaveSnapshot_InvalidFormat(t *testing.T) {
	err := SaveSnapshot(SnapshotOptions{Path: filepath.Join(t.TempDir(), "tree.txt"), Lines: sampleLines(t)})
	if err == nil {
		t.Fatalf("expected error for invalid format")
	}
}

func TestSaveSnapshots_Concurrent(t *testing.T) {
	tmp := t.TempDir()
	svgPath := filepath.Join(tmp, "a.svg")
	pngPath := filepath.Join(tmp, "a.png")
	if err := SaveSnapshots(context.Background(), "assets", sampleLines(t), svgPath, "", pngPath); err != nil {
		t.Fatalf("SaveSnapshots error: %v", err)
	}
	for _, p := range []string{svgPath, pngPath} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("%s not written: %v", p, err)
		}
	}

	err := SaveSnapshots(context.Background(), "assets", nil, filepath.Join(tmp, "bad.gif"))
	if err == nil {
		t.Error("expected error for unsupported format")
	}
}
