package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/Dicklesworthstone/hierarchy_viewer/pkg/model"
)

type assetRef struct {
	databaseID string
	assetID    string
}

// CreateLink validates and inserts a link, filling in its ID and CreatedAt.
//
// Parent-child links are rejected when an equivalent link with the same alias
// exists, when the reverse link exists under any alias, or when the new edge
// would close a cycle. Related links are rejected when a related link with
// the same alias exists in either direction.
func (s *Store) CreateLink(l *model.AssetLink) error {
	if !l.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidLinkType, l.Type)
	}
	from := assetRef{l.FromDatabaseID, l.FromAssetID}
	to := assetRef{l.ToDatabaseID, l.ToAssetID}
	if from == to {
		return fmt.Errorf("%w: cannot link asset %s to itself", ErrLinkCycle, l.FromAssetID)
	}
	for _, ref := range []assetRef{from, to} {
		if _, err := s.GetAsset(ref.databaseID, ref.assetID); err != nil {
			return err
		}
	}

	exists, err := s.linkExists(from, to, l.Type, l.AliasID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s -> %s", ErrLinkExists, l.FromAssetID, l.ToAssetID)
	}

	if l.Type.IsHierarchical() {
		reverse, err := s.countLinks(to, from, model.LinkParentChild)
		if err != nil {
			return err
		}
		if reverse > 0 {
			return fmt.Errorf("%w: %s -> %s", ErrReverseLink, l.ToAssetID, l.FromAssetID)
		}
		cyclic, err := s.wouldCycle(from, to)
		if err != nil {
			return err
		}
		if cyclic {
			return fmt.Errorf("%w: %s -> %s", ErrLinkCycle, l.FromAssetID, l.ToAssetID)
		}
	}

	l.ID = uuid.NewString()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	tags, err := json.Marshal(l.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO asset_links
			(id, from_database_id, from_asset_id, to_database_id, to_asset_id, relationship_type, alias_id, tags, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, l.ID, l.FromDatabaseID, l.FromAssetID, l.ToDatabaseID, l.ToAssetID, string(l.Type), l.AliasID, string(tags), l.CreatedAt)
	if err != nil {
		return err
	}
	s.logger.Debug("created asset link", "id", l.ID, "type", l.Type, "from", l.FromAssetID, "to", l.ToAssetID)
	return nil
}

// DeleteLink removes a link and its metadata by ID.
func (s *Store) DeleteLink(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`DELETE FROM asset_links WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrLinkNotFound, id)
	}
	if _, err := tx.Exec(`DELETE FROM asset_link_metadata WHERE link_id = ?`, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.logger.Debug("deleted asset link", "id", id)
	return nil
}

// ListLinks returns every link in insertion order.
func (s *Store) ListLinks() ([]model.AssetLink, error) {
	rows, err := s.db.Query(`
		SELECT id, from_database_id, from_asset_id, to_database_id, to_asset_id, relationship_type, alias_id, tags, created_at
		FROM asset_links
		ORDER BY rowid
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []model.AssetLink
	for rows.Next() {
		var (
			l    model.AssetLink
			typ  string
			tags string
		)
		if err := rows.Scan(&l.ID, &l.FromDatabaseID, &l.FromAssetID, &l.ToDatabaseID, &l.ToAssetID,
			&typ, &l.AliasID, &tags, &l.CreatedAt); err != nil {
			return nil, err
		}
		l.Type = model.LinkType(typ)
		if tags != "" {
			if err := json.Unmarshal([]byte(tags), &l.Tags); err != nil {
				return nil, fmt.Errorf("decode tags for link %s: %w", l.ID, err)
			}
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

// GetLinks returns the assets linked to one asset, grouped by direction.
func (s *Store) GetLinks(databaseID, assetID string) (model.Relationships, error) {
	rel := model.Relationships{
		Parents:  []model.LinkedAsset{},
		Children: []model.LinkedAsset{},
		Related:  []model.LinkedAsset{},
	}
	if _, err := s.GetAsset(databaseID, assetID); err != nil {
		return rel, err
	}

	rows, err := s.db.Query(`
		SELECT l.id, l.relationship_type, l.alias_id,
			l.from_database_id, l.from_asset_id, l.to_database_id, l.to_asset_id,
			COALESCE(fa.name, ''), COALESCE(ta.name, '')
		FROM asset_links l
		LEFT JOIN assets fa ON fa.database_id = l.from_database_id AND fa.asset_id = l.from_asset_id
		LEFT JOIN assets ta ON ta.database_id = l.to_database_id AND ta.asset_id = l.to_asset_id
		WHERE (l.from_database_id = ? AND l.from_asset_id = ?) OR (l.to_database_id = ? AND l.to_asset_id = ?)
		ORDER BY l.rowid
	`, databaseID, assetID, databaseID, assetID)
	if err != nil {
		return rel, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id, typ, alias             string
			fromDB, fromID, toDB, toID string
			fromName, toName           string
		)
		if err := rows.Scan(&id, &typ, &alias, &fromDB, &fromID, &toDB, &toID, &fromName, &toName); err != nil {
			return rel, err
		}
		outgoing := fromDB == databaseID && fromID == assetID
		other := model.LinkedAsset{LinkID: id, AliasID: alias}
		if outgoing {
			other.AssetID, other.DatabaseID, other.AssetName = toID, toDB, toName
		} else {
			other.AssetID, other.DatabaseID, other.AssetName = fromID, fromDB, fromName
		}

		switch model.LinkType(typ) {
		case model.LinkParentChild:
			if outgoing {
				rel.Children = append(rel.Children, other)
			} else {
				rel.Parents = append(rel.Parents, other)
			}
		case model.LinkRelated:
			rel.Related = append(rel.Related, other)
		}
	}
	return rel, rows.Err()
}

func (s *Store) linkExists(from, to assetRef, typ model.LinkType, alias string) (bool, error) {
	query := `
		SELECT COUNT(*) FROM asset_links
		WHERE relationship_type = ? AND alias_id = ? AND (
			(from_database_id = ? AND from_asset_id = ? AND to_database_id = ? AND to_asset_id = ?)`
	args := []any{string(typ), alias, from.databaseID, from.assetID, to.databaseID, to.assetID}
	if typ == model.LinkRelated {
		query += `
			OR (from_database_id = ? AND from_asset_id = ? AND to_database_id = ? AND to_asset_id = ?)`
		args = append(args, to.databaseID, to.assetID, from.databaseID, from.assetID)
	}
	query += `)`

	var n int
	if err := s.db.QueryRow(query, args...).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) countLinks(from, to assetRef, typ model.LinkType) (int, error) {
	var n int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM asset_links
		WHERE relationship_type = ?
			AND from_database_id = ? AND from_asset_id = ?
			AND to_database_id = ? AND to_asset_id = ?
	`, string(typ), from.databaseID, from.assetID, to.databaseID, to.assetID).Scan(&n)
	return n, err
}

// wouldCycle reports whether parent already descends from child across all
// parent-child links regardless of alias.
func (s *Store) wouldCycle(parent, child assetRef) (bool, error) {
	rows, err := s.db.Query(`
		SELECT from_database_id, from_asset_id, to_database_id, to_asset_id
		FROM asset_links
		WHERE relationship_type = ?
	`, string(model.LinkParentChild))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	g := simple.NewDirectedGraph()
	ids := make(map[assetRef]int64)
	nodeFor := func(ref assetRef) simple.Node {
		id, ok := ids[ref]
		if !ok {
			id = int64(len(ids))
			ids[ref] = id
			g.AddNode(simple.Node(id))
		}
		return simple.Node(id)
	}
	p, c := nodeFor(parent), nodeFor(child)

	for rows.Next() {
		var from, to assetRef
		if err := rows.Scan(&from.databaseID, &from.assetID, &to.databaseID, &to.assetID); err != nil {
			return false, err
		}
		f, t := nodeFor(from), nodeFor(to)
		if f.ID() == t.ID() || g.HasEdgeFromTo(f.ID(), t.ID()) {
			continue
		}
		g.SetEdge(g.NewEdge(f, t))
	}
	if err := rows.Err(); err != nil {
		return false, err
	}

	return topo.PathExistsIn(g, c, p), nil
}
