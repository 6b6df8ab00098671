package app

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dshills/quire/internal/analysis"
	"github.com/dshills/quire/internal/config"
	"github.com/dshills/quire/internal/engine/buffer"
	"github.com/dshills/quire/internal/engine/history"
	"github.com/dshills/quire/internal/engine/search"
	"github.com/dshills/quire/internal/markup/kml"
	"github.com/dshills/quire/internal/markup/markdown"
	"github.com/dshills/quire/internal/renderer/layout"
	"github.com/dshills/quire/internal/renderer/viewport"
)

// Format is a document file format.
type Format int

const (
	// FormatText is plain text, one paragraph per line.
	FormatText Format = iota
	// FormatKML is the native markup.
	FormatKML
	// FormatMarkdown is CommonMark with GitHub extensions. Import only.
	FormatMarkdown
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatKML:
		return "kml"
	case FormatMarkdown:
		return "markdown"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// FormatFromPath picks a format by file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".kml":
		return FormatKML, nil
	case ".md", ".markdown":
		return FormatMarkdown, nil
	case ".txt", ".text":
		return FormatText, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Document is one open manuscript. It runs on a single editing goroutine;
// only the analysis runner works concurrently, over snapshots, and its
// results are applied by Poll or Wait on the editing goroutine.
type Document struct {
	cfg  config.Config
	log  *Logger
	path string

	buf    *buffer.Buffer
	hist   *history.History
	cache  *layout.Cache
	view   *viewport.Manager
	finder *search.Navigator
	runner *analysis.Runner

	caret    buffer.Position
	modified bool
	closed   bool
	reports  map[string]analysis.Result
}

// NewDocument creates an empty document. A nil logger discards output.
func NewDocument(cfg config.Config, logger *Logger) (*Document, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = NullLogger()
	}

	buf := buffer.NewBuffer()
	hist := history.NewHistory(cfg.History.MaxEntries)
	cache := layout.NewCache(newEngine(cfg.Layout), cfg.Layout.CacheEntries)
	d := &Document{
		cfg:     cfg,
		log:     logger.WithComponent("document"),
		buf:     buf,
		hist:    hist,
		cache:   cache,
		view:    viewport.NewManager(buf, cache, viewportOptions(cfg.Viewport)),
		finder:  search.NewNavigator(buf, hist),
		runner:  analysis.NewRunner(cfg.Analysis.ResultBuffer),
		reports: make(map[string]analysis.Result),
	}
	buf.MarkAllDirty()
	d.view.OnTotalHeightChanged(func(oldTotal, newTotal float64) {
		d.log.Debug("content height %.1f -> %.1f", oldTotal, newTotal)
	})
	return d, nil
}

func newEngine(c config.LayoutConfig) *layout.Engine {
	e := layout.NewEngine(layout.CellMetrics{
		CellWidth:   c.CellWidth,
		RowHeight:   c.RowHeight,
		BoldScale:   c.BoldScale,
		ScriptScale: c.ScriptScale,
	})
	e.SetTabWidth(c.TabWidth)
	e.SetParagraphSpacing(c.ParagraphSpacing)
	return e
}

func viewportOptions(c config.ViewportConfig) viewport.Options {
	return viewport.Options{
		Width:     c.Width,
		Height:    c.Height,
		Lookahead: c.Lookahead,
		Margins:   viewport.Margins{Top: c.MarginTop, Bottom: c.MarginBottom},
	}
}

// Open loads the file at path, choosing the format by extension.
func (d *Document) Open(path string) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return opError("open", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return opError("open", path, err)
	}
	if err := d.Load(f, data); err != nil {
		return opError("open", path, err)
	}
	d.path = path
	return nil
}

// Load replaces the content with data in format f. History, search state
// and the caret are reset. On error the document is unchanged.
func (d *Document) Load(f Format, data []byte) error {
	if d.closed {
		return ErrClosed
	}
	var err error
	switch f {
	case FormatKML:
		err = kml.Unmarshal(data, d.buf)
	case FormatMarkdown:
		err = markdown.Import(data, d.buf)
	case FormatText:
		d.buf.Reset(buffer.SplitParagraphs(string(data)))
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
	}
	if err != nil {
		return err
	}

	d.hist.Clear()
	d.finder.Clear()
	d.caret = buffer.Position{}
	d.modified = false
	d.view.ScrollToTop()
	d.view.Sync()
	d.log.Info("loaded %d paragraphs as %s", d.buf.Count(), f)
	return nil
}

// Save writes the document to path in the format chosen by its extension.
// Markdown is import only.
func (d *Document) Save(path string) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return opError("save", path, err)
	}
	var data []byte
	switch f {
	case FormatKML:
		if data, err = kml.Marshal(d.buf); err != nil {
			return opError("save", path, err)
		}
	case FormatText:
		data = []byte(d.buf.PlainText() + "\n")
	default:
		return opError("save", path, fmt.Errorf("%w: cannot write %s", ErrUnsupportedFormat, f))
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return opError("save", path, err)
	}
	d.path = path
	d.modified = false
	d.log.Info("saved %d paragraphs to %s", d.buf.Count(), path)
	return nil
}

// Export returns the document as KML.
func (d *Document) Export() ([]byte, error) {
	var out bytes.Buffer
	if err := kml.Serialize(&out, d.buf); err != nil {
		return nil, opError("export", "kml", err)
	}
	return out.Bytes(), nil
}

// ApplyConfig switches to cfg. Changed layout settings mark every
// paragraph dirty; they are laid out again as they come into view.
func (d *Document) ApplyConfig(cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return opError("configure", "", err)
	}
	if cfg.Layout != d.cfg.Layout {
		d.cache.SetEngine(newEngine(cfg.Layout))
		d.buf.MarkAllDirty()
		d.buf.SetEstimator(d.view.Estimator())
	}
	d.view.Resize(cfg.Viewport.Width, cfg.Viewport.Height)
	lookahead := cfg.Viewport.Lookahead
	if lookahead == 0 {
		lookahead = viewport.DefaultLookahead
	}
	d.view.SetLookahead(lookahead)
	d.view.SetMargins(viewport.Margins{Top: cfg.Viewport.MarginTop, Bottom: cfg.Viewport.MarginBottom})
	d.hist.SetMaxEntries(cfg.History.MaxEntries)
	d.log.SetLevel(ParseLogLevel(cfg.Log.Level))
	d.cfg = cfg
	d.view.Sync()
	d.log.Debug("configuration applied")
	return nil
}

// Close stops background analysis. Further edits fail with ErrClosed.
func (d *Document) Close() {
	if d.closed {
		return
	}
	d.closed = true
	d.runner.Close()
}

// Config returns the active configuration.
func (d *Document) Config() config.Config { return d.cfg }

// Path returns the file the document was last opened from or saved to.
func (d *Document) Path() string { return d.path }

// IsModified reports whether the document changed since it was loaded or
// saved.
func (d *Document) IsModified() bool { return d.modified }

// Buffer returns the paragraph buffer.
func (d *Document) Buffer() *buffer.Buffer { return d.buf }

// History returns the undo history.
func (d *Document) History() *history.History { return d.hist }

// Viewport returns the viewport manager.
func (d *Document) Viewport() *viewport.Manager { return d.view }

// Finder returns the search navigator.
func (d *Document) Finder() *search.Navigator { return d.finder }

// Caret returns the caret position.
func (d *Document) Caret() buffer.Position { return d.caret }

// SetCaret moves the caret, clamped to the document, and scrolls it into
// view.
func (d *Document) SetCaret(pos buffer.Position) {
	d.caret = d.buf.Clamp(pos)
	d.reveal()
}

func (d *Document) reveal() {
	if _, err := d.view.ScrollToReveal(d.caret); err != nil {
		d.log.Warn("reveal %s: %v", d.caret, err)
	}
}

// VisibleLine is one visual line inside the viewport.
type VisibleLine struct {
	Paragraph int
	Line      int
	Top       float64 // document offset of the line's top edge
	Text      string
}

// VisibleLines lays out the paragraphs in the viewport and returns their
// visual lines from the first that reaches into the viewport to the last
// that starts inside it.
func (d *Document) VisibleLines() ([]VisibleLine, error) {
	r := d.view.Visible()
	top := d.view.ScrollOffset()
	bottom := top + d.view.Height()

	var out []VisibleLine
	for i := r.First; i <= r.Last; i++ {
		l, err := d.view.LayoutAt(i)
		if err != nil {
			return nil, opError("layout", fmt.Sprint(i), err)
		}
		p, _ := d.buf.Paragraph(i)
		base := d.buf.OffsetOf(i)
		for n, line := range l.Lines {
			y := base + line.Top
			if y+line.Height <= top || y >= bottom {
				continue
			}
			out = append(out, VisibleLine{
				Paragraph: i,
				Line:      n,
				Top:       y,
				Text:      strings.TrimRight(p.Slice(line.Start, line.End), " \t\u2028"),
			})
		}
	}
	return out, nil
}
