package store

import (
	"database/sql"
	"fmt"

	"github.com/Dicklesworthstone/hierarchy_viewer/pkg/model"
)

// CreateLinkMetadata attaches a new key to an existing link.
func (s *Store) CreateLinkMetadata(m model.LinkMetadata) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if err := s.requireLink(m.LinkID); err != nil {
		return err
	}
	if m.ValueType == "" {
		m.ValueType = model.MetadataString
	}

	var n int
	if err := s.db.QueryRow(`
		SELECT COUNT(*) FROM asset_link_metadata WHERE link_id = ? AND metadata_key = ?
	`, m.LinkID, m.Key).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: %s on %s", ErrMetadataExists, m.Key, m.LinkID)
	}

	_, err := s.db.Exec(`
		INSERT INTO asset_link_metadata (link_id, metadata_key, metadata_value, value_type)
		VALUES (?, ?, ?, ?)
	`, m.LinkID, m.Key, m.Value, string(m.ValueType))
	if err != nil {
		return err
	}
	s.logger.Debug("created link metadata", "link", m.LinkID, "key", m.Key)
	return nil
}

// GetLinkMetadata returns every key of a link ordered by key.
func (s *Store) GetLinkMetadata(linkID string) ([]model.LinkMetadata, error) {
	if err := s.requireLink(linkID); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(`
		SELECT link_id, metadata_key, metadata_value, value_type
		FROM asset_link_metadata
		WHERE link_id = ?
		ORDER BY metadata_key
	`, linkID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	meta := []model.LinkMetadata{}
	for rows.Next() {
		var (
			m   model.LinkMetadata
			typ string
		)
		if err := rows.Scan(&m.LinkID, &m.Key, &m.Value, &typ); err != nil {
			return nil, err
		}
		m.ValueType = model.MetadataValueType(typ)
		meta = append(meta, m)
	}
	return meta, rows.Err()
}

// UpdateLinkMetadata replaces the value and type of an existing key.
func (s *Store) UpdateLinkMetadata(m model.LinkMetadata) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if m.ValueType == "" {
		m.ValueType = model.MetadataString
	}
	res, err := s.db.Exec(`
		UPDATE asset_link_metadata SET metadata_value = ?, value_type = ?
		WHERE link_id = ? AND metadata_key = ?
	`, m.Value, string(m.ValueType), m.LinkID, m.Key)
	if err != nil {
		return err
	}
	return metadataAffected(res, m.LinkID, m.Key)
}

// DeleteLinkMetadata removes one key from a link.
func (s *Store) DeleteLinkMetadata(linkID, key string) error {
	res, err := s.db.Exec(`
		DELETE FROM asset_link_metadata WHERE link_id = ? AND metadata_key = ?
	`, linkID, key)
	if err != nil {
		return err
	}
	return metadataAffected(res, linkID, key)
}

func (s *Store) requireLink(id string) error {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM asset_links WHERE id = ?`, id).Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrLinkNotFound, id)
	}
	return nil
}

func metadataAffected(res sql.Result, linkID, key string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s on %s", ErrMetadataNotFound, key, linkID)
	}
	return nil
}
