package ui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Dicklesworthstone/hierarchy_viewer/pkg/model"
)

// LinkSource looks up the relationships of one asset. *store.Store
// satisfies it.
type LinkSource interface {
	GetLinks(databaseID, assetID string) (model.Relationships, error)
}

// MetadataSource is implemented by link sources that also carry per-link
// metadata, such as *store.Store.
type MetadataSource interface {
	GetLinkMetadata(linkID string) ([]model.LinkMetadata, error)
}

// AssetDetails builds the markdown shown in the details pane. It keeps its
// own snapshot of the assets so fetches can run off the update loop.
type AssetDetails struct {
	links LinkSource

	mu     sync.RWMutex
	assets map[string]model.Asset
}

// NewAssetDetails creates a details source. links may be nil.
func NewAssetDetails(links LinkSource) *AssetDetails {
	return &AssetDetails{links: links, assets: make(map[string]model.Asset)}
}

// SetAssets replaces the snapshot.
func (d *AssetDetails) SetAssets(assets []model.Asset) {
	m := make(map[string]model.Asset, len(assets))
	for _, a := range assets {
		m[a.ID] = a.Clone()
	}
	d.mu.Lock()
	d.assets = m
	d.mu.Unlock()
}

// Fetch returns markdown describing key. It is a selection.FetchFunc.
func (d *AssetDetails) Fetch(ctx context.Context, key string) (string, error) {
	d.mu.RLock()
	a, ok := d.assets[key]
	d.mu.RUnlock()
	if !ok {
		return fmt.Sprintf("# %s\n\n_Referenced as a parent but not present in the asset list._\n", key), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", a.DisplayName())
	fmt.Fprintf(&sb, "| Field | Value |\n|---|---|\n")
	row := func(name, value string) {
		if value != "" {
			fmt.Fprintf(&sb, "| %s | %s |\n", name, escapeCell(value))
		}
	}
	row("ID", "`"+a.ID+"`")
	row("Database", a.DatabaseID)
	row("Parent", a.ParentID)
	row("Type", a.AssetType)
	if a.Priority != nil {
		row("Priority", fmt.Sprintf("P%d", *a.Priority))
	}
	if len(a.Tags) > 0 {
		row("Tags", strings.Join(a.Tags, ", "))
	}
	if !a.CreatedAt.IsZero() {
		row("Created", a.CreatedAt.Format(time.RFC3339))
	}
	if a.Description != "" {
		fmt.Fprintf(&sb, "\n%s\n", a.Description)
	}

	if d.links == nil {
		return sb.String(), nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	rel, err := d.links.GetLinks(a.DatabaseID, a.ID)
	if err != nil {
		return "", fmt.Errorf("load links for %s: %w", a.ID, err)
	}
	meta, _ := d.links.(MetadataSource)
	for _, group := range []struct {
		title  string
		linked []model.LinkedAsset
	}{
		{"Parents", rel.Parents},
		{"Children", rel.Children},
		{"Related", rel.Related},
	} {
		if err := writeLinked(ctx, &sb, group.title, group.linked, meta); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

func writeLinked(ctx context.Context, sb *strings.Builder, title string, linked []model.LinkedAsset, meta MetadataSource) error {
	if len(linked) == 0 {
		return nil
	}
	fmt.Fprintf(sb, "\n## %s\n\n", title)
	for _, l := range linked {
		name := l.AssetName
		if name == "" {
			name = l.AssetID
		}
		if l.AliasID != "" {
			fmt.Fprintf(sb, "- %s (`%s`, alias %s)\n", name, l.AssetID, l.AliasID)
		} else {
			fmt.Fprintf(sb, "- %s (`%s`)\n", name, l.AssetID)
		}
		if meta == nil || l.LinkID == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		items, err := meta.GetLinkMetadata(l.LinkID)
		if err != nil {
			return fmt.Errorf("load metadata for link %s: %w", l.LinkID, err)
		}
		for _, m := range items {
			fmt.Fprintf(sb, "  - %s: %s\n", m.Key, m.Value)
		}
	}
	return nil
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
