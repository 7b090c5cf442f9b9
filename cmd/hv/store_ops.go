package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/Dicklesworthstone/hierarchy_viewer/pkg/config"
	"github.com/Dicklesworthstone/hierarchy_viewer/pkg/loader"
	"github.com/Dicklesworthstone/hierarchy_viewer/pkg/model"
	"github.com/Dicklesworthstone/hierarchy_viewer/pkg/store"
)

var errNeedsStore = errors.New("this operation needs -db or store.path")

// hasStoreOps reports whether any flag asks to write to the store.
func hasStoreOps(opts options) bool {
	return opts.importData || opts.link != "" || opts.unlink != "" ||
		opts.deleteAsset != "" || opts.meta != "" || opts.unmeta != ""
}

// runStoreOps applies the write flags to the configured store and reports
// each result on w.
func runStoreOps(w io.Writer, opts options, cfg config.Config, logger *log.Logger) error {
	if cfg.Store.Path == "" {
		return errNeedsStore
	}
	st, err := store.Open(cfg.Store.Driver, cfg.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close()
	st.SetLogger(logger)

	if opts.importData {
		stats, err := importFiles(st, opts, logger)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Imported %d assets, %d links, %d metadata entries (%d rejected) into %s\n",
			stats.assets, stats.links, stats.metadata, stats.rejected, cfg.Store.Path)
	}

	if opts.link != "" {
		from, to, ok := strings.Cut(opts.link, ",")
		if !ok {
			return fmt.Errorf("-link wants from,to, got %q", opts.link)
		}
		fromDB, fromID := parseAssetRef(from)
		toDB, toID := parseAssetRef(to)
		l := &model.AssetLink{
			FromDatabaseID: fromDB, FromAssetID: fromID,
			ToDatabaseID: toDB, ToAssetID: toID,
			Type:    model.LinkType(opts.linkType),
			AliasID: opts.linkAlias,
		}
		if err := st.CreateLink(l); err != nil {
			return fmt.Errorf("create link: %w", err)
		}
		fmt.Fprintf(w, "Created %s link %s: %s -> %s\n", l.Type, l.ID, fromID, toID)
	}

	if opts.meta != "" {
		linkID, pair, _ := strings.Cut(opts.meta, ",")
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return fmt.Errorf("-meta wants linkID,key=value, got %q", opts.meta)
		}
		m := model.LinkMetadata{LinkID: linkID, Key: key, Value: value, ValueType: model.MetadataValueType(opts.metaType)}
		verb := "Set"
		err := st.CreateLinkMetadata(m)
		if errors.Is(err, store.ErrMetadataExists) {
			verb = "Updated"
			err = st.UpdateLinkMetadata(m)
		}
		if err != nil {
			return fmt.Errorf("link metadata: %w", err)
		}
		fmt.Fprintf(w, "%s %s on link %s\n", verb, key, linkID)
	}

	if opts.unmeta != "" {
		linkID, key, ok := strings.Cut(opts.unmeta, ",")
		if !ok {
			return fmt.Errorf("-unmeta wants linkID,key, got %q", opts.unmeta)
		}
		if err := st.DeleteLinkMetadata(linkID, key); err != nil {
			return fmt.Errorf("delete link metadata: %w", err)
		}
		fmt.Fprintf(w, "Deleted %s from link %s\n", key, linkID)
	}

	if opts.unlink != "" {
		if err := st.DeleteLink(opts.unlink); err != nil {
			return fmt.Errorf("delete link: %w", err)
		}
		fmt.Fprintf(w, "Deleted link %s\n", opts.unlink)
	}

	if opts.deleteAsset != "" {
		db, id := parseAssetRef(opts.deleteAsset)
		if err := st.DeleteAsset(db, id); err != nil {
			return fmt.Errorf("delete asset: %w", err)
		}
		fmt.Fprintf(w, "Deleted asset %s\n", opts.deleteAsset)
	}
	return nil
}

// parseAssetRef splits "databaseId/assetId"; a bare ID has no database.
func parseAssetRef(ref string) (databaseID, assetID string) {
	if db, id, ok := strings.Cut(ref, "/"); ok {
		return db, id
	}
	return "", ref
}

type importStats struct {
	assets   int
	links    int
	metadata int
	rejected int
}

// importFiles copies the JSONL asset, link and link metadata files into st.
// Records the store refuses are logged and counted; link IDs from the files
// are remapped to the IDs the store assigns.
func importFiles(st *store.Store, opts options, logger *log.Logger) (importStats, error) {
	var stats importStats

	assetsPath := opts.file
	if assetsPath == "" {
		assetsPath = loader.AssetsPath(opts.dir)
	}
	linksPath := opts.links
	if linksPath == "" {
		linksPath = loader.LinksPath(opts.dir)
	}

	assets, err := loader.LoadAssetsFromFile(assetsPath)
	if err != nil {
		return stats, err
	}
	links, err := loader.LoadLinksFromFile(linksPath)
	if err != nil && !os.IsNotExist(err) {
		return stats, fmt.Errorf("load links: %w", err)
	}
	meta, err := loader.LoadLinkMetadataFromFile(loader.LinkMetadataPath(opts.dir))
	if err != nil && !os.IsNotExist(err) {
		return stats, fmt.Errorf("load link metadata: %w", err)
	}

	for _, a := range assets {
		if err := a.Validate(); err != nil {
			logger.Warn("asset rejected", "id", a.ID, "err", err)
			stats.rejected++
			continue
		}
		if err := st.PutAsset(a); err != nil {
			return stats, fmt.Errorf("store asset %s: %w", a.ID, err)
		}
		stats.assets++
	}

	ids := make(map[string]string, len(links))
	for _, l := range links {
		fileID := l.ID
		if err := st.CreateLink(&l); err != nil {
			if !isLinkRejection(err) {
				return stats, fmt.Errorf("store link %s -> %s: %w", l.FromAssetID, l.ToAssetID, err)
			}
			logger.Warn("link rejected", "from", l.FromAssetID, "to", l.ToAssetID, "type", l.Type, "err", err)
			stats.rejected++
			continue
		}
		if fileID != "" {
			ids[fileID] = l.ID
		}
		stats.links++
	}

	for _, m := range meta {
		linkID, ok := ids[m.LinkID]
		if !ok {
			logger.Warn("metadata for unknown link", "link", m.LinkID, "key", m.Key)
			stats.rejected++
			continue
		}
		m.LinkID = linkID
		if err := m.Validate(); err != nil {
			logger.Warn("metadata rejected", "link", m.LinkID, "key", m.Key, "err", err)
			stats.rejected++
			continue
		}
		err := st.CreateLinkMetadata(m)
		if errors.Is(err, store.ErrMetadataExists) {
			err = st.UpdateLinkMetadata(m)
		}
		if err != nil {
			return stats, fmt.Errorf("store metadata %s: %w", m.Key, err)
		}
		stats.metadata++
	}

	logger.Info("import finished", "assets", stats.assets, "links", stats.links, "metadata", stats.metadata, "rejected", stats.rejected)
	return stats, nil
}

func isLinkRejection(err error) bool {
	for _, target := range []error{
		store.ErrInvalidLinkType, store.ErrAssetNotFound, store.ErrLinkExists,
		store.ErrReverseLink, store.ErrLinkCycle,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
