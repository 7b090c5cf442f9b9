package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/Dicklesworthstone/hierarchy_viewer/pkg/config"
	"github.com/Dicklesworthstone/hierarchy_viewer/pkg/export"
	"github.com/Dicklesworthstone/hierarchy_viewer/pkg/loader"
	"github.com/Dicklesworthstone/hierarchy_viewer/pkg/logging"
	"github.com/Dicklesworthstone/hierarchy_viewer/pkg/model"
	"github.com/Dicklesworthstone/hierarchy_viewer/pkg/render"
	"github.com/Dicklesworthstone/hierarchy_viewer/pkg/selection"
	"github.com/Dicklesworthstone/hierarchy_viewer/pkg/store"
	"github.com/Dicklesworthstone/hierarchy_viewer/pkg/tree"
	"github.com/Dicklesworthstone/hierarchy_viewer/pkg/ui"
	"github.com/Dicklesworthstone/hierarchy_viewer/pkg/watcher"
)

const version = "0.1.0"

type options struct {
	configPath string
	dir        string
	file       string
	links      string
	db         string
	sortField  string
	desc       bool
	filter     string
	fuzzy      bool
	expand     bool
	ascii      bool
	plain      bool
	svgPath    string
	pngPath    string
	watch      bool
	pickSort   bool
	debug      bool
	root       string

	importData  bool
	link        string
	linkType    string
	linkAlias   string
	unlink      string
	deleteAsset string
	meta        string
	metaType    string
	unmeta      string

	set map[string]bool
}

func main() {
	var opts options
	help := flag.Bool("help", false, "Show help")
	showVersion := flag.Bool("version", false, "Show version")
	flag.StringVar(&opts.configPath, "config", "", "Config file (default <dir>/.assets/hv.yaml)")
	flag.StringVar(&opts.dir, "dir", ".", "Directory containing .assets/")
	flag.StringVar(&opts.file, "file", "", "Assets JSONL file (overrides <dir>/.assets/assets.jsonl)")
	flag.StringVar(&opts.links, "links", "", "Asset links JSONL file used to derive parents")
	flag.StringVar(&opts.db, "db", "", "Read assets and links from this SQLite database")
	flag.StringVar(&opts.sortField, "sort", "", "Sort field (name, type, priority, tags, createdAt, id)")
	flag.BoolVar(&opts.desc, "desc", false, "Sort descending")
	flag.StringVar(&opts.filter, "filter", "", "Initial filter text")
	flag.BoolVar(&opts.fuzzy, "fuzzy", false, "Use fuzzy filter matching")
	flag.BoolVar(&opts.expand, "expand", false, "Expand every node")
	flag.BoolVar(&opts.ascii, "ascii", false, "Draw tree connectors with ASCII")
	flag.BoolVar(&opts.plain, "plain", false, "Print the table instead of starting the TUI")
	flag.StringVar(&opts.svgPath, "svg", "", "Write an SVG snapshot to this path")
	flag.StringVar(&opts.pngPath, "png", "", "Write a PNG snapshot to this path")
	flag.BoolVar(&opts.watch, "watch", false, "Reload when the asset files change")
	flag.BoolVar(&opts.pickSort, "pick-sort", false, "Choose the sort interactively before starting")
	flag.BoolVar(&opts.debug, "debug", false, "Enable debug logging (written to .assets/hv.log while the TUI runs)")
	flag.StringVar(&opts.root, "root", "", "Show only this asset and its descendants")
	flag.BoolVar(&opts.importData, "import", false, "Import the JSONL assets, links and link metadata into -db")
	flag.StringVar(&opts.link, "link", "", "Create a link in -db: from,to (asset IDs, optionally databaseId/assetId)")
	flag.StringVar(&opts.linkType, "link-type", string(model.LinkParentChild), "Relationship type for -link (parentChild or related)")
	flag.StringVar(&opts.linkAlias, "link-alias", "", "Alias ID for -link")
	flag.StringVar(&opts.unlink, "unlink", "", "Delete the link with this ID from -db")
	flag.StringVar(&opts.deleteAsset, "delete-asset", "", "Delete this asset and its links from -db")
	flag.StringVar(&opts.meta, "meta", "", "Set link metadata in -db: linkID,key=value")
	flag.StringVar(&opts.metaType, "meta-type", string(model.MetadataString), "Value type for -meta")
	flag.StringVar(&opts.unmeta, "unmeta", "", "Delete link metadata from -db: linkID,key")
	flag.Parse()

	if *help {
		fmt.Println("Usage: hv [options]")
		fmt.Println("\nA viewer for hierarchical asset collections.")
		flag.PrintDefaults()
		os.Exit(0)
	}
	if *showVersion {
		fmt.Printf("hv version %s\n", version)
		os.Exit(0)
	}

	opts.set = make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, loader.ErrNoAssets) {
			fmt.Fprintln(os.Stderr, "Create .assets/assets.jsonl or pass -file or -db.")
		}
		os.Exit(1)
	}
}

func run(opts options) error {
	cfgPath := opts.configPath
	if cfgPath == "" {
		cfgPath = config.DefaultPath(opts.dir)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	applyFlags(&cfg, opts)

	level := cfg.LogLevel
	if opts.debug {
		level = "debug"
	}
	logger, err := logging.Setup(level)
	if err != nil {
		return err
	}
	logger.Debug("config loaded", "path", cfgPath, "sort", cfg.Sort.Field, "descending", cfg.Sort.Descending)

	if hasStoreOps(opts) {
		return runStoreOps(os.Stdout, opts, cfg, logger)
	}

	stdoutTTY := term.IsTerminal(int(os.Stdout.Fd()))
	if opts.pickSort {
		if !stdoutTTY {
			return errors.New("-pick-sort needs a terminal")
		}
		var remember bool
		if cfg.Sort, remember, err = pickSort(cfg.Sort); err != nil {
			return err
		}
		if remember {
			if err := saveSort(cfgPath, cfg.Sort); err != nil {
				return err
			}
			logger.Info("sort saved", "path", cfgPath, "field", cfg.Sort.Field)
		}
	}

	src, err := openSource(opts, cfg, logger)
	if err != nil {
		return err
	}
	defer src.Close()

	assets, err := src.Load()
	if err != nil {
		return err
	}

	coll := tree.NewCollection(tree.CollectionConfig[model.Asset]{
		Columns: render.AssetColumns(),
		Sort:    cfg.Sort,
		Filter: tree.FilterOptions[model.Asset]{
			Fields: cfg.Filter.Fields,
			Fuzzy:  cfg.Filter.Fuzzy,
		},
		PageSize:        cfg.PageSize,
		DefaultExpanded: cfg.Tree.DefaultExpanded,
		Logger:          logger,
	})
	if err := coll.Update(assets); err != nil {
		return fmt.Errorf("build tree: %w", err)
	}
	if opts.expand {
		coll.ExpandAll()
	}
	if opts.filter != "" {
		coll.SetFilter(opts.filter)
	}
	glyphs := cfg.Glyphs()

	if opts.svgPath != "" || opts.pngPath != "" {
		lines := export.LinesFromNodes(allRows(coll), coll.Columns(), glyphs)
		title := fmt.Sprintf("%d assets", coll.Len())
		if err := export.SaveSnapshots(context.Background(), title, lines, opts.svgPath, opts.pngPath); err != nil {
			return fmt.Errorf("export: %w", err)
		}
		logger.Info("snapshot written", "svg", opts.svgPath, "png", opts.pngPath)
		if !opts.plain {
			return nil
		}
	}

	if opts.plain || !stdoutTTY {
		width := 0
		if stdoutTTY {
			if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
				width = w
			}
		}
		fmt.Print(render.Table(allRows(coll), coll.Columns(), render.Options{Glyphs: glyphs, MaxWidth: width}))
		return nil
	}

	return runTUI(coll, assets, src, cfg, opts, logger)
}

// logPath is where debug logs go while the TUI owns the terminal. Without
// -debug, logs are dropped.
func logPath(opts options) string {
	if !opts.debug {
		return ""
	}
	return filepath.Join(opts.dir, ".assets", "hv.log")
}

// allRows ignores paging so exports and plain output show every row.
func allRows(coll *tree.Collection[model.Asset]) []*tree.Node[model.Asset] {
	state := coll.Items()
	if state.Pagination.PageSize == 0 || state.Pagination.Pages <= 1 {
		return state.Items
	}
	var rows []*tree.Node[model.Asset]
	for p := 0; p < state.Pagination.Pages; p++ {
		coll.SetPage(p)
		rows = append(rows, coll.Items().Items...)
	}
	coll.SetPage(0)
	return rows
}

func applyFlags(cfg *config.Config, opts options) {
	if opts.set["sort"] {
		cfg.Sort.Field = opts.sortField
	}
	if opts.set["desc"] {
		cfg.Sort.Descending = opts.desc
	}
	if opts.set["fuzzy"] {
		cfg.Filter.Fuzzy = opts.fuzzy
	}
	if opts.ascii {
		cfg.Tree.Glyphs = config.GlyphsASCII
	}
	if opts.db != "" {
		cfg.Store.Path = opts.db
	}
}

func pickSort(current tree.SortState) (tree.SortState, bool, error) {
	fields := render.SortableFields(render.AssetColumns())
	state := current
	var remember bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Sort assets by").
				Options(huh.NewOptions(fields...)...).
				Value(&state.Field),
			huh.NewConfirm().
				Title("Descending?").
				Value(&state.Descending),
			huh.NewConfirm().
				Title("Save as the default sort?").
				Value(&remember),
		),
	)
	if err := form.Run(); err != nil {
		return current, false, fmt.Errorf("sort picker: %w", err)
	}
	return state, remember, nil
}

// saveSort writes sort into the config file at path, keeping the file's
// other settings. Flag overrides are not persisted.
func saveSort(path string, sort tree.SortState) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	cfg.Sort = sort
	if err := cfg.Save(path); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// RECORD SOURCES
// ══════════════════════════════════════════════════════════════════════════════

type source struct {
	load  func() ([]model.Asset, error)
	store *store.Store
	paths []string // files to watch
	root  string   // focus on this subtree when set
}

func (s *source) Load() ([]model.Asset, error) {
	assets, err := s.load()
	if err != nil || s.root == "" {
		return assets, err
	}
	sub, err := loader.LoadSubtree(s.root, assets)
	if err != nil {
		return nil, err
	}
	return sub.Assets(), nil
}

func (s *source) Close() {
	if s.store != nil {
		s.store.Close()
	}
}

func openSource(opts options, cfg config.Config, logger *log.Logger) (*source, error) {
	src, err := openRecords(opts, cfg, logger)
	if err != nil {
		return nil, err
	}
	src.root = opts.root
	return src, nil
}

// openRecords picks the record source: the store when a path is configured,
// otherwise the JSONL files. Store sources watch the database file itself.
func openRecords(opts options, cfg config.Config, logger *log.Logger) (*source, error) {
	if cfg.Store.Path != "" {
		st, err := store.Open(cfg.Store.Driver, cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		st.SetLogger(logger)
		return &source{
			store: st,
			paths: []string{cfg.Store.Path},
			load: func() ([]model.Asset, error) {
				assets, err := st.ListAssets("")
				if err != nil {
					return nil, fmt.Errorf("list assets: %w", err)
				}
				links, err := st.ListLinks()
				if err != nil {
					return nil, fmt.Errorf("list links: %w", err)
				}
				return loader.ApplyParentLinks(assets, links), nil
			},
		}, nil
	}

	if opts.file == "" {
		return &source{
			paths: []string{loader.AssetsPath(opts.dir), loader.LinksPath(opts.dir)},
			load:  func() ([]model.Asset, error) { return loader.LoadAssets(opts.dir) },
		}, nil
	}

	return &source{
		paths: []string{opts.file, opts.links},
		load: func() ([]model.Asset, error) {
			assets, err := loader.LoadAssetsFromFile(opts.file)
			if err != nil || opts.links == "" {
				return assets, err
			}
			links, err := loader.LoadLinksFromFile(opts.links)
			if err != nil {
				return nil, fmt.Errorf("load links: %w", err)
			}
			return loader.ApplyParentLinks(assets, links), nil
		},
	}, nil
}

func runTUI(coll *tree.Collection[model.Asset], assets []model.Asset, src *source, cfg config.Config, opts options, logger *log.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var links ui.LinkSource
	if src.store != nil {
		links = src.store
	}
	details := ui.NewAssetDetails(links)
	details.SetAssets(assets)
	tracker := selection.NewTracker(details.Fetch, logger)

	uiCfg := ui.Config{
		Title:      "hv " + filepath.Base(absDir(opts.dir)),
		Collection: coll,
		Glyphs:     cfg.Glyphs(),
		Tracker:    tracker,
		Details:    details,
		Reload:     src.Load,
		Logger:     logger,
	}

	if opts.watch {
		w, err := watcher.New(src.paths, cfg.Watch.Debounce, logger)
		if err != nil {
			return err
		}
		defer w.Close()
		go func() {
			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("watcher stopped", "err", err)
			}
		}()
		uiCfg.Changes = w.Changes()
	}

	restore, err := logging.Redirect(logger, logPath(opts))
	if err != nil {
		return err
	}
	defer restore()

	p := tea.NewProgram(ui.New(uiCfg), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running hv: %w", err)
	}
	return nil
}

func absDir(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return dir
	}
	return abs
}
