package loader

import "errors"

var (
	// ErrNoAssets is returned when the assets file does not exist.
	ErrNoAssets = errors.New("no assets found")

	// ErrRootNotFound is returned by LoadSubtree when the root asset is missing.
	ErrRootNotFound = errors.New("subtree root not found")
)
