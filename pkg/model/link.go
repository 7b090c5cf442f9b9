package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// LinkType categorizes the relationship between two assets
type LinkType string

const (
	LinkParentChild LinkType = "parentChild"
	LinkRelated     LinkType = "related"
)

// IsValid returns true if the link type is a recognized value
func (t LinkType) IsValid() bool {
	switch t {
	case LinkParentChild, LinkRelated:
		return true
	}
	return false
}

// IsHierarchical returns true if the link defines a parent-child edge
func (t LinkType) IsHierarchical() bool {
	return t == LinkParentChild
}

// AssetLink is a directed relationship between two assets. For parent-child
// links From is the parent and To the child; related links are symmetric.
type AssetLink struct {
	ID             string    `json:"assetLinkId"`
	FromAssetID    string    `json:"fromAssetId"`
	FromDatabaseID string    `json:"fromAssetDatabaseId"`
	ToAssetID      string    `json:"toAssetId"`
	ToDatabaseID   string    `json:"toAssetDatabaseId"`
	Type           LinkType  `json:"relationshipType"`
	AliasID        string    `json:"assetLinkAliasId,omitempty"`
	Tags           []string  `json:"tags,omitempty"`
	CreatedAt      time.Time `json:"createdAt,omitzero"`
}

// Validate checks if the link is well formed
func (l *AssetLink) Validate() error {
	if l.FromAssetID == "" || l.ToAssetID == "" {
		return fmt.Errorf("asset link needs both endpoints")
	}
	if !l.Type.IsValid() {
		return fmt.Errorf("invalid relationship type: %s", l.Type)
	}
	if l.FromAssetID == l.ToAssetID && l.FromDatabaseID == l.ToDatabaseID {
		return fmt.Errorf("cannot link asset %s to itself", l.FromAssetID)
	}
	return nil
}

// LinkedAsset is the far end of a link as seen from one asset.
type LinkedAsset struct {
	LinkID     string `json:"assetLinkId"`
	AssetID    string `json:"assetId"`
	AssetName  string `json:"assetName"`
	DatabaseID string `json:"databaseId"`
	AliasID    string `json:"assetLinkAliasId,omitempty"`
}

// Relationships groups the links of one asset by direction.
type Relationships struct {
	Parents  []LinkedAsset `json:"parent"`
	Children []LinkedAsset `json:"child"`
	Related  []LinkedAsset `json:"relatedTo"`
}

// Total returns the number of linked assets across all groups.
func (r Relationships) Total() int {
	return len(r.Parents) + len(r.Children) + len(r.Related)
}

// MetadataValueType says how a link metadata value is interpreted.
type MetadataValueType string

const (
	MetadataString          MetadataValueType = "string"
	MetadataMultilineString MetadataValueType = "multiline_string"
	MetadataNumber          MetadataValueType = "number"
	MetadataBoolean         MetadataValueType = "boolean"
	MetadataDate            MetadataValueType = "date"
	MetadataXYZ             MetadataValueType = "xyz"
	MetadataWXYZ            MetadataValueType = "wxyz"
	MetadataMatrix4x4       MetadataValueType = "matrix4x4"
	MetadataGeoPoint        MetadataValueType = "geopoint"
	MetadataGeoJSON         MetadataValueType = "geojson"
	MetadataLLA             MetadataValueType = "lla"
	MetadataJSON            MetadataValueType = "json"
)

// IsValid returns true if the value type is a recognized value
func (t MetadataValueType) IsValid() bool {
	switch t {
	case MetadataString, MetadataMultilineString, MetadataNumber, MetadataBoolean,
		MetadataDate, MetadataXYZ, MetadataWXYZ, MetadataMatrix4x4,
		MetadataGeoPoint, MetadataGeoJSON, MetadataLLA, MetadataJSON:
		return true
	}
	return false
}

// LinkMetadata is one key/value pair attached to an asset link.
type LinkMetadata struct {
	LinkID    string            `json:"assetLinkId"`
	Key       string            `json:"metadataKey"`
	Value     string            `json:"metadataValue"`
	ValueType MetadataValueType `json:"metadataValueType,omitempty"`
}

// Validate checks the key and that Value parses as ValueType. An empty
// ValueType is treated as a string.
func (m *LinkMetadata) Validate() error {
	if m.LinkID == "" || m.Key == "" {
		return fmt.Errorf("link metadata needs a link ID and a key")
	}
	typ := m.ValueType
	if typ == "" {
		typ = MetadataString
	}
	if !typ.IsValid() {
		return fmt.Errorf("invalid metadata value type: %s", m.ValueType)
	}
	switch typ {
	case MetadataNumber:
		if _, err := strconv.ParseFloat(m.Value, 64); err != nil {
			return fmt.Errorf("metadata %s: %q is not a number", m.Key, m.Value)
		}
	case MetadataBoolean:
		if _, err := strconv.ParseBool(m.Value); err != nil {
			return fmt.Errorf("metadata %s: %q is not a boolean", m.Key, m.Value)
		}
	case MetadataDate:
		if _, err := time.Parse(time.RFC3339, m.Value); err != nil {
			if _, err := time.Parse(time.DateOnly, m.Value); err != nil {
				return fmt.Errorf("metadata %s: %q is not a date", m.Key, m.Value)
			}
		}
	case MetadataXYZ, MetadataWXYZ, MetadataMatrix4x4, MetadataGeoPoint, MetadataGeoJSON, MetadataLLA, MetadataJSON:
		if !json.Valid([]byte(m.Value)) {
			return fmt.Errorf("metadata %s: value is not valid JSON", m.Key)
		}
	}
	return nil
}
