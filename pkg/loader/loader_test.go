package loader_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Dicklesworthstone/hierarchy_viewer/pkg/loader"
	"github.com/Dicklesworthstone/hierarchy_viewer/pkg/model"
)

func writeFile(t *testing.T, path string, lines ...string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadAssetsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assets.jsonl")
	writeFile(t, path,
		`{"assetId":"root","assetName":"Scene","priority":1}`,
		``,
		`{not json`,
		`{"assetId":"mesh","assetName":"Teapot","parentId":"root","tags":["cad"]}`,
	)

	assets, err := loader.LoadAssetsFromFile(path)
	if err != nil {
		t.Fatalf("LoadAssetsFromFile failed: %v", err)
	}
	if len(assets) != 2 {
		t.Fatalf("Expected 2 assets, got %d", len(assets))
	}
	if assets[0].Priority == nil || *assets[0].Priority != 1 {
		t.Errorf("root priority = %v", assets[0].Priority)
	}
	if assets[1].ParentID != "root" || assets[1].Tags[0] != "cad" {
		t.Errorf("mesh = %+v", assets[1])
	}
}

func TestLoadAssetsFromFile_Missing(t *testing.T) {
	_, err := loader.LoadAssetsFromFile(filepath.Join(t.TempDir(), "nope.jsonl"))
	if !errors.Is(err, loader.ErrNoAssets) {
		t.Fatalf("err = %v, want ErrNoAssets", err)
	}
}

func TestLoadAssets_AppliesLinks(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, loader.AssetsPath(dir),
		`{"assetId":"a","assetName":"A"}`,
		`{"assetId":"b","assetName":"B"}`,
	)
	writeFile(t, loader.LinksPath(dir),
		`{"assetLinkId":"l1","fromAssetId":"a","toAssetId":"b","relationshipType":"parentChild"}`,
	)

	assets, err := loader.LoadAssets(dir)
	if err != nil {
		t.Fatalf("LoadAssets failed: %v", err)
	}
	if assets[1].ParentID != "a" {
		t.Errorf("b parent = %q, want a", assets[1].ParentID)
	}
}

func TestLoadAssets_NoLinksFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, loader.AssetsPath(dir), `{"assetId":"a"}`)

	assets, err := loader.LoadAssets(dir)
	if err != nil {
		t.Fatalf("LoadAssets failed: %v", err)
	}
	if len(assets) != 1 {
		t.Errorf("Expected 1 asset, got %d", len(assets))
	}
}

func TestApplyParentLinks(t *testing.T) {
	assets := []model.Asset{{ID: "p1"}, {ID: "p2"}, {ID: "c"}, {ID: "d", ParentID: "p2"}}
	links := []model.AssetLink{
		{FromAssetID: "p1", ToAssetID: "c", Type: model.LinkRelated},
		{FromAssetID: "ghost", ToAssetID: "c", Type: model.LinkParentChild},
		{FromAssetID: "p2", ToAssetID: "c", Type: model.LinkParentChild},
		{FromAssetID: "p1", ToAssetID: "c", Type: model.LinkParentChild},
		{FromAssetID: "p1", ToAssetID: "d", Type: model.LinkParentChild},
	}

	got := loader.ApplyParentLinks(assets, links)

	tests := []struct {
		id, parent string
	}{
		{"p1", ""},
		{"p2", ""},
		{"c", "p2"},
		{"d", "p2"},
	}
	for i, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if got[i].ParentID != tt.parent {
				t.Errorf("%s parent = %q, want %q", tt.id, got[i].ParentID, tt.parent)
			}
		})
	}
	if assets[2].ParentID != "" {
		t.Errorf("input was mutated")
	}
}

func TestLoadSubtree(t *testing.T) {
	assets := []model.Asset{
		{ID: "root"},
		{ID: "a", ParentID: "root"},
		{ID: "b", ParentID: "root"},
		{ID: "a1", ParentID: "a"},
		{ID: "other"},
	}

	sub, err := loader.LoadSubtree("a", assets)
	if err != nil {
		t.Fatalf("LoadSubtree failed: %v", err)
	}
	if sub.TotalCount() != 2 {
		t.Errorf("TotalCount = %d, want 2", sub.TotalCount())
	}
	flat := sub.Assets()
	if flat[0].ID != "a" || flat[0].ParentID != "" || flat[1].ID != "a1" {
		t.Errorf("Assets() = %+v", flat)
	}

	sub, err = loader.LoadSubtree("root", assets)
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, d := range sub.Descendants {
		ids = append(ids, d.ID)
	}
	if strings.Join(ids, ",") != "a,b,a1" {
		t.Errorf("descendants = %v, want breadth-first a,b,a1", ids)
	}

	if _, err := loader.LoadSubtree("missing", assets); err == nil {
		t.Error("expected error for missing root")
	}
}

func TestLoadLinkMetadataFromFile(t *testing.T) {
	dir := t.TempDir()
	if _, err := loader.LoadLinkMetadataFromFile(loader.LinkMetadataPath(dir)); !os.IsNotExist(err) {
		t.Fatalf("missing file err = %v, want not-exist", err)
	}

	writeFile(t, loader.LinkMetadataPath(dir),
		`{"assetLinkId":"l1","metadataKey":"weight","metadataValue":"2.5","metadataValueType":"number"}`,
		`garbage`,
		`{"assetLinkId":"l1","metadataKey":"note","metadataValue":"bolted"}`,
	)
	meta, err := loader.LoadLinkMetadataFromFile(loader.LinkMetadataPath(dir))
	if err != nil {
		t.Fatalf("LoadLinkMetadataFromFile failed: %v", err)
	}
	if len(meta) != 2 || meta[0].ValueType != model.MetadataNumber || meta[1].Key != "note" {
		t.Errorf("metadata = %+v", meta)
	}
}

func TestLoadSubtree_UnknownRoot(t *testing.T) {
	_, err := loader.LoadSubtree("ghost", []model.Asset{{ID: "a"}})
	if !errors.Is(err, loader.ErrRootNotFound) {
		t.Errorf("err = %v, want ErrRootNotFound", err)
	}
}
