package loader

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/Dicklesworthstone/hierarchy_viewer/pkg/model"
)

const (
	assetsDir     = ".assets"
	assetsFile    = "assets.jsonl"
	linksFile     = "links.jsonl"
	metadataFile  = "link_metadata.jsonl"
	maxLineLength = 1024 * 1024 * 10 // 10MB
)

// AssetsPath returns the default assets file under dir.
func AssetsPath(dir string) string {
	return filepath.Join(dir, assetsDir, assetsFile)
}

// LinksPath returns the default links file under dir.
func LinksPath(dir string) string {
	return filepath.Join(dir, assetsDir, linksFile)
}

// LinkMetadataPath returns the default link metadata file under dir.
func LinkMetadataPath(dir string) string {
	return filepath.Join(dir, assetsDir, metadataFile)
}

// LoadAssets reads assets from the .assets/assets.jsonl file in the given directory.
// Parent keys are filled in from .assets/links.jsonl when that file exists.
func LoadAssets(dir string) ([]model.Asset, error) {
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current working directory: %w", err)
		}
	}

	assets, err := LoadAssetsFromFile(AssetsPath(dir))
	if err != nil {
		return nil, err
	}

	links, err := LoadLinksFromFile(LinksPath(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return assets, nil
		}
		return nil, err
	}
	return ApplyParentLinks(assets, links), nil
}

// LoadAssetsFromFile reads assets directly from a specific JSONL file path.
func LoadAssetsFromFile(path string) ([]model.Asset, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w at %s", ErrNoAssets, path)
	}
	return readJSONL[model.Asset](path, "assets")
}

// LoadLinksFromFile reads asset links from a JSONL file. A missing file
// returns an error satisfying os.IsNotExist.
func LoadLinksFromFile(path string) ([]model.AssetLink, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return readJSONL[model.AssetLink](path, "links")
}

// LoadLinkMetadataFromFile reads link metadata from a JSONL file. A missing
// file returns an error satisfying os.IsNotExist.
func LoadLinkMetadataFromFile(path string) ([]model.LinkMetadata, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return readJSONL[model.LinkMetadata](path, "link metadata")
}

func readJSONL[T any](path, what string) ([]T, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file: %w", what, err)
	}
	defer file.Close()

	var out []T
	scanner := bufio.NewScanner(file)
	buf := make([]byte, maxLineLength)
	scanner.Buffer(buf, maxLineLength)

	lineNum := 0
	skipped := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var v T
		if err := json.Unmarshal(line, &v); err != nil {
			// Skip malformed lines but continue loading the rest
			log.Debug("skipping malformed line", "file", path, "line", lineNum, "err", err)
			skipped++
			continue
		}
		out = append(out, v)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading %s file: %w", what, err)
	}

	log.Debug("loaded "+what, "file", path, "count", len(out), "skipped", skipped)
	return out, nil
}
