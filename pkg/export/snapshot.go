// Package export writes tree snapshots as SVG or PNG images.
package export

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"git.sr.ht/~sbinet/gg"
	svg "github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/sync/errgroup"

	"github.com/Dicklesworthstone/hierarchy_viewer/pkg/render"
	"github.com/Dicklesworthstone/hierarchy_viewer/pkg/tree"
)

// Supported snapshot formats.
const (
	FormatSVG = "svg"
	FormatPNG = "png"
)

// Layout constants in pixels. basicfont.Face7x13 glyphs are 7x13.
const (
	charWidth  = 7
	lineHeight = 18
	padding    = 16
	minWidth   = 320
)

// Line is one rendered row of a snapshot.
type Line struct {
	Text        string
	Depth       int
	Placeholder bool
	Header      bool
}

// SnapshotOptions configures SaveSnapshot.
type SnapshotOptions struct {
	Path   string
	Format string // inferred from Path's extension when empty
	Title  string
	Lines  []Line
}

// LinesFromNodes renders nodes as snapshot lines using the table renderer.
func LinesFromNodes[T tree.Record](nodes []*tree.Node[T], columns []tree.Column[T], glyphs tree.Glyphs) []Line {
	opts := render.Options{Glyphs: glyphs}
	lines := make([]Line, 0, len(nodes)+1)
	lines = append(lines, Line{Text: render.Header(columns, opts), Header: true})
	for _, n := range nodes {
		lines = append(lines, Line{
			Text:        render.Row(n, columns, opts),
			Depth:       n.Depth(),
			Placeholder: n.IsPlaceholder(),
		})
	}
	return lines
}

// SaveSnapshot writes one snapshot file.
func SaveSnapshot(opts SnapshotOptions) error {
	format := opts.Format
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(opts.Path)), ".")
	}
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	switch format {
	case FormatSVG:
		return saveSVG(opts)
	case FormatPNG:
		return savePNG(opts)
	default:
		return fmt.Errorf("unsupported snapshot format %q (use svg or png)", format)
	}
}

// SaveSnapshots writes every path concurrently with the same lines.
func SaveSnapshots(ctx context.Context, title string, lines []Line, paths ...string) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, p := range paths {
		if p == "" {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := SaveSnapshot(SnapshotOptions{Path: p, Title: title, Lines: lines}); err != nil {
				return fmt.Errorf("%s: %w", p, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func canvasSize(opts SnapshotOptions) (int, int) {
	longest := len([]rune(opts.Title))
	for _, l := range opts.Lines {
		if n := len([]rune(l.Text)); n > longest {
			longest = n
		}
	}
	w := max(longest*charWidth+2*padding, minWidth)
	h := (len(opts.Lines)+2)*lineHeight + 2*padding
	return w, h
}

// ═══════════════════════════════════════════════════════════════════════════
// SVG
// ═══════════════════════════════════════════════════════════════════════════

func saveSVG(opts SnapshotOptions) error {
	f, err := os.Create(opts.Path)
	if err != nil {
		return fmt.Errorf("create svg: %w", err)
	}
	defer f.Close()

	w, h := canvasSize(opts)
	canvas := svg.New(f)
	canvas.Start(w, h)
	canvas.Rect(0, 0, w, h, "fill:#282A36")
	canvas.Text(padding, padding+lineHeight-4, opts.Title, "fill:#BD93F9;font-family:monospace;font-size:14px;font-weight:bold")

	for i, l := range opts.Lines {
		y := padding + (i+2)*lineHeight
		style := "fill:#F8F8F2;font-family:monospace;font-size:12px;white-space:pre"
		switch {
		case l.Header:
			style = "fill:#8BE9FD;font-family:monospace;font-size:12px;font-weight:bold;white-space:pre"
		case l.Placeholder:
			style = "fill:#6272A4;font-family:monospace;font-size:12px;font-style:italic;white-space:pre"
		}
		canvas.Text(padding, y, l.Text, style)
	}
	canvas.End()
	return f.Close()
}

// ═══════════════════════════════════════════════════════════════════════════
// PNG
// ═══════════════════════════════════════════════════════════════════════════

var (
	pngBackground  = color.RGBA{0x28, 0x2A, 0x36, 0xFF}
	pngText        = color.RGBA{0xF8, 0xF8, 0xF2, 0xFF}
	pngTitle       = color.RGBA{0xBD, 0x93, 0xF9, 0xFF}
	pngHeader      = color.RGBA{0x8B, 0xE9, 0xFD, 0xFF}
	pngPlaceholder = color.RGBA{0x62, 0x72, 0xA4, 0xFF}
)

// basicfont only covers ASCII and Latin-1.
var pngGlyphs = strings.NewReplacer(
	tree.DefaultGlyphs.LastChild, tree.ASCIIGlyphs.LastChild,
	tree.DefaultGlyphs.MiddleChild, tree.ASCIIGlyphs.MiddleChild,
	tree.DefaultGlyphs.ChildOfMiddleChild, tree.ASCIIGlyphs.ChildOfMiddleChild,
	"▾", "v", "▸", ">", "◦", "o", "…", "~",
)

func savePNG(opts SnapshotOptions) error {
	w, h := canvasSize(opts)
	dc := gg.NewContext(w, h)
	dc.SetColor(pngBackground)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	dc.SetColor(pngTitle)
	dc.DrawString(opts.Title, padding, float64(padding+lineHeight-4))
	for i, l := range opts.Lines {
		switch {
		case l.Header:
			dc.SetColor(pngHeader)
		case l.Placeholder:
			dc.SetColor(pngPlaceholder)
		default:
			dc.SetColor(pngText)
		}
		dc.DrawString(pngGlyphs.Replace(l.Text), padding, float64(padding+(i+2)*lineHeight))
	}

	if err := dc.SavePNG(opts.Path); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}
