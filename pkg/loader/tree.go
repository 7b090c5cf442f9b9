package loader

import (
	"fmt"

	"github.com/Dicklesworthstone/hierarchy_viewer/pkg/model"
)

// ApplyParentLinks returns a copy of assets with ParentID set from
// parent-child links. The first link naming a child wins; links whose
// endpoints are not among assets are ignored. Assets that already carry a
// ParentID keep it.
func ApplyParentLinks(assets []model.Asset, links []model.AssetLink) []model.Asset {
	out := make([]model.Asset, len(assets))
	pos := make(map[string]int, len(assets))
	for i, a := range assets {
		out[i] = a.Clone()
		pos[a.ID] = i
	}

	assigned := make(map[string]bool)
	for _, l := range links {
		if !l.Type.IsHierarchical() {
			continue
		}
		childIdx, ok := pos[l.ToAssetID]
		if !ok {
			continue
		}
		if _, ok := pos[l.FromAssetID]; !ok {
			continue
		}
		if assigned[l.ToAssetID] || out[childIdx].ParentID != "" {
			continue
		}
		out[childIdx].ParentID = l.FromAssetID
		assigned[l.ToAssetID] = true
	}
	return out
}

// Subtree contains an asset and all its descendants
type Subtree struct {
	Root        *model.Asset            // The root asset
	Descendants []*model.Asset          // All children recursively via ParentID
	AssetMap    map[string]*model.Asset // All assets by ID for O(1) lookup
}

// LoadSubtree loads an asset subtree starting from rootID.
// Descendants are listed in breadth-first order.
func LoadSubtree(rootID string, assets []model.Asset) (*Subtree, error) {
	assetMap := make(map[string]*model.Asset, len(assets))
	for i := range assets {
		assetMap[assets[i].ID] = &assets[i]
	}

	root, exists := assetMap[rootID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrRootNotFound, rootID)
	}

	childrenMap := make(map[string][]string)
	for _, a := range assets {
		if a.ParentID != "" {
			childrenMap[a.ParentID] = append(childrenMap[a.ParentID], a.ID)
		}
	}

	descendants := make([]*model.Asset, 0)
	seen := map[string]bool{rootID: true}
	queue := []string{rootID}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, childID := range childrenMap[current] {
			if seen[childID] {
				continue
			}
			seen[childID] = true
			descendants = append(descendants, assetMap[childID])
			queue = append(queue, childID)
		}
	}

	return &Subtree{
		Root:        root,
		Descendants: descendants,
		AssetMap:    assetMap,
	}, nil
}

// Assets returns root + all descendants as a flat slice of values
func (t *Subtree) Assets() []model.Asset {
	result := make([]model.Asset, 0, 1+len(t.Descendants))
	root := *t.Root
	// The subtree root is shown as a root even if it has a parent.
	root.ParentID = ""
	result = append(result, root)
	for _, d := range t.Descendants {
		result = append(result, *d)
	}
	return result
}

// TotalCount returns the total number of assets in the subtree (root + descendants)
func (t *Subtree) TotalCount() int {
	return 1 + len(t.Descendants)
}
