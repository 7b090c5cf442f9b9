// Package render draws a tree collection as a text table.
package render

import (
	"strconv"

	"github.com/Dicklesworthstone/hierarchy_viewer/pkg/model"
	"github.com/Dicklesworthstone/hierarchy_viewer/pkg/tree"
)

// AssetColumns returns the table columns for asset hierarchies. The first
// column carries the tree prefix.
func AssetColumns() []tree.Column[model.Asset] {
	return []tree.Column[model.Asset]{
		{ID: model.FieldName, Header: "Name", Width: 36, Cell: assetName},
		{ID: model.FieldType, Header: "Type", Width: 12},
		{ID: model.FieldPriority, Header: "Pri", Width: 4, Cell: assetPriority},
		{ID: model.FieldTags, Header: "Tags", Width: 20},
		{ID: model.FieldCreatedAt, Header: "Created", Width: 19},
		{ID: model.FieldID, Header: "ID", Width: 14},
	}
}

// SortableFields lists the column IDs offered for sorting, in display order.
func SortableFields[T tree.Record](columns []tree.Column[T]) []string {
	out := make([]string, 0, len(columns))
	for _, c := range columns {
		field := c.SortingField
		if field == "" {
			field = c.ID
		}
		out = append(out, field)
	}
	return out
}

func assetName(n *tree.Node[model.Asset]) string {
	if n.IsPlaceholder() {
		return n.Key + " (missing)"
	}
	return n.Payload.DisplayName()
}

func assetPriority(n *tree.Node[model.Asset]) string {
	if n.IsPlaceholder() || n.Payload.Priority == nil {
		return ""
	}
	return "P" + strconv.Itoa(*n.Payload.Priority)
}

// Cell returns the display text of one column for a node.
func Cell[T tree.Record](n *tree.Node[T], col tree.Column[T]) string {
	if col.Cell != nil {
		return col.Cell(n)
	}
	v, ok := n.Field(col.ID)
	if !ok {
		return ""
	}
	return tree.FormatValue(v)
}
