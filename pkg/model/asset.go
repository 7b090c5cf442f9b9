package model

import (
	"fmt"
	"time"
)

// Asset is one node of an asset hierarchy as loaded from disk or the store.
type Asset struct {
	ID              string    `json:"assetId" yaml:"assetId"`
	DatabaseID      string    `json:"databaseId" yaml:"databaseId"`
	ParentID        string    `json:"parentId,omitempty" yaml:"parentId,omitempty"`
	Name            string    `json:"assetName" yaml:"assetName"`
	AssetType       string    `json:"assetType,omitempty" yaml:"assetType,omitempty"`
	Description     string    `json:"description,omitempty" yaml:"description,omitempty"`
	Tags            []string  `json:"tags,omitempty" yaml:"tags,omitempty"`
	Priority        *int      `json:"priority,omitempty" yaml:"priority,omitempty"`
	HasChildrenHint bool      `json:"hasChildren,omitempty" yaml:"hasChildren,omitempty"`
	CreatedAt       time.Time `json:"createdAt,omitzero" yaml:"createdAt,omitempty"`
}

// Field names exposed to sorting and filtering.
const (
	FieldID          = "id"
	FieldDatabaseID  = "databaseId"
	FieldParentID    = "parentId"
	FieldName        = "name"
	FieldType        = "type"
	FieldDescription = "description"
	FieldTags        = "tags"
	FieldPriority    = "priority"
	FieldCreatedAt   = "createdAt"
)

var assetFieldNames = []string{
	FieldID, FieldDatabaseID, FieldParentID, FieldName, FieldType,
	FieldDescription, FieldTags, FieldPriority, FieldCreatedAt,
}

// Key returns the asset ID.
func (a Asset) Key() string { return a.ID }

// ParentKey returns the parent asset ID, empty for roots.
func (a Asset) ParentKey() string { return a.ParentID }

// HasChildren reports the children hint carried by the record.
func (a Asset) HasChildren() bool { return a.HasChildrenHint }

// FieldNames lists the fields FieldValue understands.
func (a Asset) FieldNames() []string { return assetFieldNames }

// FieldValue returns a field by name. Unset optional fields are absent.
func (a Asset) FieldValue(name string) (any, bool) {
	switch name {
	case FieldID:
		return a.ID, true
	case FieldDatabaseID:
		return a.DatabaseID, a.DatabaseID != ""
	case FieldParentID:
		return a.ParentID, a.ParentID != ""
	case FieldName:
		return a.Name, true
	case FieldType:
		return a.AssetType, a.AssetType != ""
	case FieldDescription:
		return a.Description, a.Description != ""
	case FieldTags:
		return a.Tags, len(a.Tags) > 0
	case FieldPriority:
		if a.Priority == nil {
			return nil, false
		}
		return *a.Priority, true
	case FieldCreatedAt:
		return a.CreatedAt, !a.CreatedAt.IsZero()
	}
	return nil, false
}

// Clone creates a deep copy of the asset
func (a Asset) Clone() Asset {
	clone := a
	if a.Priority != nil {
		v := *a.Priority
		clone.Priority = &v
	}
	if a.Tags != nil {
		clone.Tags = make([]string, len(a.Tags))
		copy(clone.Tags, a.Tags)
	}
	return clone
}

// Validate checks if the asset data is logically valid
func (a *Asset) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("asset ID cannot be empty")
	}
	if a.ParentID == a.ID {
		return fmt.Errorf("asset %s cannot be its own parent", a.ID)
	}
	if a.Priority != nil && *a.Priority < 0 {
		return fmt.Errorf("asset %s has negative priority %d", a.ID, *a.Priority)
	}
	return nil
}

// DisplayName returns the name, falling back to the ID.
func (a Asset) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}
	return a.ID
}

// IntPtr is a helper for building assets with a priority.
func IntPtr(v int) *int {
	return &v
}
