package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("expected valid defaults, got %v", err)
	}
}

func TestParseKeepsDefaultsForMissingKeys(t *testing.T) {
	cfg, err := Parse("test.toml", []byte(`
[layout]
tabWidth = 8
paragraphSpacing = 6

[viewport]
width = 320
lookahead = -1

[search]
caseSensitive = true

[log]
level = "debug"
`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Layout.TabWidth != 8 {
		t.Errorf("expected tab width 8, got %d", cfg.Layout.TabWidth)
	}
	if cfg.Layout.ParagraphSpacing != 6 {
		t.Errorf("expected spacing 6, got %v", cfg.Layout.ParagraphSpacing)
	}
	if cfg.Layout.CellWidth != 8 {
		t.Errorf("expected default cell width 8, got %v", cfg.Layout.CellWidth)
	}
	if cfg.Viewport.Width != 320 || cfg.Viewport.Lookahead != -1 {
		t.Errorf("unexpected viewport %+v", cfg.Viewport)
	}
	if cfg.Viewport.Height != 480 {
		t.Errorf("expected default height 480, got %v", cfg.Viewport.Height)
	}
	if !cfg.Search.CaseSensitive || !cfg.Search.WrapAround {
		t.Errorf("unexpected search %+v", cfg.Search)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Prefix != "quire" {
		t.Errorf("unexpected log %+v", cfg.Log)
	}
	if cfg.Analysis != Default().Analysis {
		t.Errorf("expected default analysis, got %+v", cfg.Analysis)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		line int
	}{
		{"syntax", "[layout]\ntabWidth = = 3\n", 2},
		{"unknown key", "[layout]\ncolumns = 3\n", 2},
		{"wrong type", "[viewport]\nwidth = \"wide\"\n", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("bad.toml", []byte(tt.data))
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected ParseError, got %v", err)
			}
			if pe.Path != "bad.toml" {
				t.Errorf("expected path bad.toml, got %q", pe.Path)
			}
			if tt.line > 0 && pe.Line != tt.line {
				t.Errorf("expected line %d, got %d (%v)", tt.line, pe.Line, err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Layout.CellWidth = 0
	cfg.Layout.TabWidth = 0
	cfg.Analysis.OveruseThreshold = 120
	cfg.Log.Level = "loud"

	err := cfg.Validate()
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	for _, field := range []string{"layout.cellWidth", "layout.tabWidth", "analysis.overuseThreshold", "log.level"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("expected error to mention %s, got %v", field, err)
		}
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"QUIRE_LOG_LEVEL":        "warn",
		"QUIRE_VIEWPORT_WIDTH":   "1024",
		"QUIRE_LAYOUT_TAB_WIDTH": " 2 ",
		"OTHER_VIEWPORT_WIDTH":   "1",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
	cfg := Default()
	if err := ApplyEnv(&cfg, lookup); err != nil {
		t.Fatal(err)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("expected level warn, got %q", cfg.Log.Level)
	}
	if cfg.Viewport.Width != 1024 {
		t.Errorf("expected width 1024, got %v", cfg.Viewport.Width)
	}
	if cfg.Layout.TabWidth != 2 {
		t.Errorf("expected tab width 2, got %d", cfg.Layout.TabWidth)
	}

	env["QUIRE_HISTORY_MAX_ENTRIES"] = "lots"
	if err := ApplyEnv(&cfg, lookup); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(filepath.Join(dir, "missing.toml"))
	if err != nil {
		t.Fatalf("expected missing file to load defaults, got %v", err)
	}
	if cfg.Layout != Default().Layout {
		t.Errorf("expected default layout, got %+v", cfg.Layout)
	}

	path := filepath.Join(dir, "quire.toml")
	if err := os.WriteFile(path, []byte("[history]\nmaxEntries = 10\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.History.MaxEntries != 10 {
		t.Errorf("expected 10 history entries, got %d", cfg.History.MaxEntries)
	}

	if err := os.WriteFile(path, []byte("[layout]\nrowHeight = -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Viewport.Lookahead = 7
	cfg.Analysis.Language = "pl"

	var out bytes.Buffer
	if err := Encode(&out, cfg); err != nil {
		t.Fatal(err)
	}
	got, err := Read(&out)
	if err != nil {
		t.Fatal(err)
	}
	if got != cfg {
		t.Errorf("expected %+v, got %+v", cfg, got)
	}
}

func TestWatchReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quire.toml")
	if err := os.WriteFile(path, []byte("[viewport]\nwidth = 100\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := Watch(path, WithDebounce(50*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("[viewport]\nwidth = 200\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	u := nextUpdate(t, w)
	if u.Err != nil {
		t.Fatalf("unexpected error %v", u.Err)
	}
	if u.Config.Viewport.Width != 200 {
		t.Errorf("expected width 200, got %v", u.Config.Viewport.Width)
	}

	if err := os.WriteFile(path, []byte("[viewport\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	u = nextUpdate(t, w)
	var pe *ParseError
	if !errors.As(u.Err, &pe) {
		t.Errorf("expected ParseError, got %v", u.Err)
	}
}

func TestWatchIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quire.toml")
	w, err := Watch(path, WithDebounce(10*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(dir, "other.toml"), []byte("x = 1"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case u := <-w.Updates():
		t.Errorf("expected no update, got %+v", u)
	case <-time.After(200 * time.Millisecond):
	}

	if err := w.Close(); err != nil {
		t.Errorf("unexpected close error %v", err)
	}
	if _, ok := <-w.Updates(); ok {
		t.Error("expected updates channel to be closed")
	}
	if err := w.Close(); err != nil {
		t.Errorf("expected repeated Close to succeed, got %v", err)
	}
}

func nextUpdate(t *testing.T, w *Watcher) Update {
	t.Helper()
	select {
	case u, ok := <-w.Updates():
		if !ok {
			t.Fatal("updates channel closed")
		}
		return u
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for config update")
	}
	return Update{}
}
