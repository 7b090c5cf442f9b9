package tree

import "slices"

// BuildTreeNodes reconciles idx against records and returns the ordered roots.
//
// Existing keys keep their node and get their payload merged. New keys get a
// fresh node. A parent key with no record yields a placeholder node that is
// adopted in place once the record arrives. Keys that vanished are removed
// together with every record whose parent chain still reaches them; children
// are never promoted to roots.
//
// Records with an empty key are skipped and duplicate keys resolve to the last
// record. Cyclic parent chains are rejected with a *CycleError before idx is
// touched.
func BuildTreeNodes[T Record](records []T, idx *Index[T]) ([]*Node[T], error) {
	latest := make(map[string]T, len(records))
	order := make([]string, 0, len(records))
	skipped := 0
	for _, rec := range records {
		key := rec.Key()
		if key == "" {
			skipped++
			continue
		}
		if _, seen := latest[key]; !seen {
			order = append(order, key)
		}
		latest[key] = rec
	}

	if err := detectCycle(order, latest); err != nil {
		return nil, err
	}

	// Vanished keys: live, real nodes with no record this round.
	var vanished []string
	for key, node := range idx.nodes {
		if _, ok := latest[key]; !ok && !node.placeholder {
			vanished = append(vanished, key)
			idx.tombstones[key] = struct{}{}
		}
	}
	referenced := make(map[string]struct{}, len(latest))
	for _, rec := range latest {
		if pk := rec.ParentKey(); pk != "" {
			referenced[pk] = struct{}{}
		}
	}
	for key := range idx.tombstones {
		_, present := latest[key]
		_, named := referenced[key]
		if present || !named {
			delete(idx.tombstones, key)
		}
	}

	dropped := droppedKeys(order, latest, idx.tombstones)

	removed := 0
	remove := func(key string) {
		if node, ok := idx.nodes[key]; ok {
			node.detach()
			delete(idx.nodes, key)
			removed++
		}
	}
	for _, key := range vanished {
		remove(key)
	}
	for key := range dropped {
		remove(key)
	}

	created := 0
	for _, key := range order {
		if dropped[key] {
			continue
		}
		rec := latest[key]
		node, ok := idx.nodes[key]
		switch {
		case !ok:
			node = newNode[T](key, idx.opts.DefaultExpanded)
			node.Payload = rec
			idx.nodes[key] = node
			created++
		case node.placeholder:
			node.placeholder = false
			node.Payload = rec
		default:
			node.Payload = idx.opts.Merge(node.Payload, rec)
		}
	}

	placeholders := 0
	for _, key := range order {
		if dropped[key] {
			continue
		}
		node := idx.nodes[key]
		var parent *Node[T]
		if pk := latest[key].ParentKey(); pk != "" {
			p, ok := idx.nodes[pk]
			if !ok {
				p = newNode[T](pk, idx.opts.DefaultExpanded)
				p.placeholder = true
				idx.nodes[pk] = p
				placeholders++
			}
			parent = p
		}
		if node.parent == parent {
			continue
		}
		if node.parent != nil {
			node.parent.removeChild(node)
		}
		if parent != nil {
			parent.appendChild(node)
		}
	}

	// Placeholders nobody references any more.
	for key, node := range idx.nodes {
		if node.placeholder && len(node.children) == 0 {
			node.detach()
			delete(idx.nodes, key)
		}
	}

	roots := collectRoots(order, dropped, idx)
	for _, node := range idx.nodes {
		node.refreshStatus()
	}
	RecomputeVisibility(roots)

	idx.opts.Logger.Debug("reconciled tree",
		"records", len(records),
		"skipped", skipped,
		"created", created,
		"removed", removed,
		"placeholders", placeholders,
		"live", len(idx.nodes),
		"roots", len(roots),
	)
	return roots, nil
}

// detectCycle walks every parent chain among the input records.
func detectCycle[T Record](order []string, latest map[string]T) error {
	const (
		visiting = 1
		done     = 2
	)
	state := make(map[string]int, len(order))
	for _, start := range order {
		var path []string
		key := start
		for key != "" && state[key] != done {
			rec, ok := latest[key]
			if !ok {
				break
			}
			if state[key] == visiting {
				i := slices.Index(path, key)
				cycle := append(slices.Clone(path[i:]), key)
				return &CycleError{Keys: cycle}
			}
			state[key] = visiting
			path = append(path, key)
			key = rec.ParentKey()
		}
		for _, k := range path {
			state[k] = done
		}
	}
	return nil
}

// droppedKeys returns the input keys whose parent chain reaches a tombstone.
// Chains are acyclic here.
func droppedKeys[T Record](order []string, latest map[string]T, tombstones map[string]struct{}) map[string]bool {
	dropped := make(map[string]bool)
	if len(tombstones) == 0 {
		return dropped
	}
	resolved := make(map[string]bool, len(order))
	for _, start := range order {
		var path []string
		drop := false
		key := start
		for key != "" {
			if resolved[key] {
				drop = dropped[key]
				break
			}
			rec, ok := latest[key]
			if !ok {
				_, drop = tombstones[key]
				break
			}
			path = append(path, key)
			key = rec.ParentKey()
		}
		for _, k := range path {
			resolved[k] = true
			if drop {
				dropped[k] = true
			}
		}
	}
	return dropped
}

// collectRoots orders roots by the first input record that lives under them.
func collectRoots[T Record](order []string, dropped map[string]bool, idx *Index[T]) []*Node[T] {
	seen := make(map[*Node[T]]bool)
	roots := make([]*Node[T], 0)
	for _, key := range order {
		if dropped[key] {
			continue
		}
		root := idx.nodes[key]
		for root.parent != nil {
			root = root.parent
		}
		if !seen[root] {
			seen[root] = true
			roots = append(roots, root)
		}
	}
	return roots
}
