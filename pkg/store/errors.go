package store

import "errors"

var (
	// ErrUnknownDriver is returned by Open for an unsupported driver name.
	ErrUnknownDriver = errors.New("unknown database driver")

	// ErrAssetNotFound is returned when a link endpoint does not exist.
	ErrAssetNotFound = errors.New("asset not found")

	// ErrInvalidLinkType is returned for a relationship type other than parentChild or related.
	ErrInvalidLinkType = errors.New("invalid relationship type")

	// ErrLinkExists is returned when an equivalent link with the same alias exists.
	ErrLinkExists = errors.New("relationship already exists between these assets")

	// ErrReverseLink is returned when the opposite parent-child link exists.
	ErrReverseLink = errors.New("reverse parent-child relationship exists")

	// ErrLinkCycle is returned when a parent-child link would close a cycle.
	ErrLinkCycle = errors.New("parent-child relationship would create a cycle")

	// ErrLinkNotFound is returned when deleting a link that does not exist.
	ErrLinkNotFound = errors.New("asset link not found")

	// ErrMetadataExists is returned when creating a metadata key a link already has.
	ErrMetadataExists = errors.New("metadata key already exists for this asset link")

	// ErrMetadataNotFound is returned when updating or deleting a missing metadata key.
	ErrMetadataNotFound = errors.New("metadata key not found for this asset link")
)
