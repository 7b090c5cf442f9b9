// Package store persists assets and asset links in SQLite.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"github.com/Dicklesworthstone/hierarchy_viewer/pkg/model"
)

const (
	// DriverPure is the cgo-free modernc.org/sqlite driver.
	DriverPure = "sqlite"
	// DriverCgo is the mattn/go-sqlite3 driver.
	DriverCgo = "sqlite3"
)

// Store handles asset and link persistence
type Store struct {
	db     *sql.DB
	logger *log.Logger
}

// Open opens or creates the asset database at the given path.
// An empty driver selects DriverPure.
func Open(driver, dbPath string) (*Store, error) {
	switch driver {
	case "":
		driver = DriverPure
	case DriverPure, DriverCgo:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}

	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open(driver, dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db, logger: log.Default()}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return s, nil
}

// SetLogger replaces the store's logger.
func (s *Store) SetLogger(l *log.Logger) {
	if l != nil {
		s.logger = l
	}
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS assets (
		database_id TEXT NOT NULL DEFAULT '',
		asset_id TEXT NOT NULL,
		parent_id TEXT DEFAULT '',
		name TEXT DEFAULT '',
		asset_type TEXT DEFAULT '',
		description TEXT DEFAULT '',
		tags TEXT DEFAULT '[]',
		priority INTEGER,
		has_children INTEGER DEFAULT 0,
		created_at DATETIME NOT NULL,
		PRIMARY KEY (database_id, asset_id)
	);

	CREATE TABLE IF NOT EXISTS asset_links (
		id TEXT PRIMARY KEY,
		from_database_id TEXT NOT NULL,
		from_asset_id TEXT NOT NULL,
		to_database_id TEXT NOT NULL,
		to_asset_id TEXT NOT NULL,
		relationship_type TEXT NOT NULL,
		alias_id TEXT DEFAULT '',
		tags TEXT DEFAULT '[]',
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS asset_link_metadata (
		link_id TEXT NOT NULL,
		metadata_key TEXT NOT NULL,
		metadata_value TEXT NOT NULL DEFAULT '',
		value_type TEXT NOT NULL DEFAULT 'string',
		PRIMARY KEY (link_id, metadata_key)
	);

	CREATE INDEX IF NOT EXISTS idx_links_from ON asset_links(from_database_id, from_asset_id);
	CREATE INDEX IF NOT EXISTS idx_links_to ON asset_links(to_database_id, to_asset_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// PutAsset inserts or replaces an asset.
func (s *Store) PutAsset(a model.Asset) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	tags, err := json.Marshal(a.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}
	var priority sql.NullInt64
	if a.Priority != nil {
		priority = sql.NullInt64{Int64: int64(*a.Priority), Valid: true}
	}

	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO assets
			(database_id, asset_id, parent_id, name, asset_type, description, tags, priority, has_children, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.DatabaseID, a.ID, a.ParentID, a.Name, a.AssetType, a.Description, string(tags), priority, a.HasChildrenHint, a.CreatedAt)
	return err
}

// GetAsset returns one asset.
func (s *Store) GetAsset(databaseID, assetID string) (*model.Asset, error) {
	row := s.db.QueryRow(`
		SELECT database_id, asset_id, parent_id, name, asset_type, description, tags, priority, has_children, created_at
		FROM assets
		WHERE database_id = ? AND asset_id = ?
	`, databaseID, assetID)
	a, err := scanAsset(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s/%s", ErrAssetNotFound, databaseID, assetID)
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListAssets returns all assets of a database in insertion order. An empty
// databaseID lists every asset.
func (s *Store) ListAssets(databaseID string) ([]model.Asset, error) {
	query := `
		SELECT database_id, asset_id, parent_id, name, asset_type, description, tags, priority, has_children, created_at
		FROM assets`
	var args []any
	if databaseID != "" {
		query += ` WHERE database_id = ?`
		args = append(args, databaseID)
	}
	query += ` ORDER BY rowid`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assets []model.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

// DeleteAsset removes an asset, every link touching it and their metadata.
func (s *Store) DeleteAsset(databaseID, assetID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`DELETE FROM assets WHERE database_id = ? AND asset_id = ?`, databaseID, assetID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s/%s", ErrAssetNotFound, databaseID, assetID)
	}
	touching := `
		SELECT id FROM asset_links
		WHERE (from_database_id = ? AND from_asset_id = ?) OR (to_database_id = ? AND to_asset_id = ?)`
	args := []any{databaseID, assetID, databaseID, assetID}
	if _, err := tx.Exec(`DELETE FROM asset_link_metadata WHERE link_id IN (`+touching+`)`, args...); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM asset_links WHERE id IN (`+touching+`)`, args...); err != nil {
		return err
	}
	return tx.Commit()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAsset(sc scanner) (model.Asset, error) {
	var (
		a        model.Asset
		tags     string
		priority sql.NullInt64
	)
	err := sc.Scan(&a.DatabaseID, &a.ID, &a.ParentID, &a.Name, &a.AssetType, &a.Description,
		&tags, &priority, &a.HasChildrenHint, &a.CreatedAt)
	if err != nil {
		return a, err
	}
	if tags != "" {
		if err := json.Unmarshal([]byte(tags), &a.Tags); err != nil {
			return a, fmt.Errorf("decode tags for %s: %w", a.ID, err)
		}
	}
	if priority.Valid {
		a.Priority = model.IntPtr(int(priority.Int64))
	}
	return a, nil
}
