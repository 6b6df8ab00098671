// Package config holds the settings of the editing core.
//
// A Config is a plain value passed into constructors; nothing reads it
// from a global. Settings are loaded from TOML:
//
//	[layout]
//	cellWidth = 8
//	rowHeight = 20
//	tabWidth = 4
//
//	[viewport]
//	width = 640
//	lookahead = 50
//
//	[log]
//	level = "debug"
//
// Missing keys keep their defaults. Unknown keys are rejected. Environment
// variables prefixed with QUIRE_ override file values, and Watch reloads a
// file as it changes.
package config

// Config is the complete configuration.
type Config struct {
	Layout   LayoutConfig   `toml:"layout"`
	Viewport ViewportConfig `toml:"viewport"`
	History  HistoryConfig  `toml:"history"`
	Search   SearchConfig   `toml:"search"`
	Analysis AnalysisConfig `toml:"analysis"`
	Log      LogConfig      `toml:"log"`
}

// LayoutConfig configures text measurement and the layout cache.
type LayoutConfig struct {
	// CellWidth is the advance of one narrow character cell.
	CellWidth float64 `toml:"cellWidth"`
	// RowHeight is the height of one visual line.
	RowHeight float64 `toml:"rowHeight"`
	// BoldScale multiplies the advance of bold text.
	BoldScale float64 `toml:"boldScale"`
	// ScriptScale multiplies the advance of superscript and subscript.
	ScriptScale float64 `toml:"scriptScale"`
	// TabWidth is the tab stop interval in cells.
	TabWidth int `toml:"tabWidth"`
	// ParagraphSpacing is the space below every paragraph.
	ParagraphSpacing float64 `toml:"paragraphSpacing"`
	// CacheEntries bounds the number of cached paragraph layouts.
	CacheEntries int `toml:"cacheEntries"`
}

// ViewportConfig configures the visible window.
type ViewportConfig struct {
	Width        float64 `toml:"width"`
	Height       float64 `toml:"height"`
	Lookahead    int     `toml:"lookahead"` // negative disables
	MarginTop    float64 `toml:"marginTop"`
	MarginBottom float64 `toml:"marginBottom"`
}

// HistoryConfig configures undo.
type HistoryConfig struct {
	MaxEntries int `toml:"maxEntries"`
}

// SearchConfig holds the default search options.
type SearchConfig struct {
	CaseSensitive bool `toml:"caseSensitive"`
	WholeWord     bool `toml:"wholeWord"`
	UseRegex      bool `toml:"useRegex"`
	WrapAround    bool `toml:"wrapAround"`
}

// AnalysisConfig configures background analyses.
type AnalysisConfig struct {
	ResultBuffer       int     `toml:"resultBuffer"`
	Language           string  `toml:"language"`
	OveruseThreshold   float64 `toml:"overuseThreshold"`
	RepetitionDistance int     `toml:"repetitionDistance"`
	FilterStopWords    bool    `toml:"filterStopWords"`
	MinWordLength      int     `toml:"minWordLength"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `toml:"level"`
	Prefix string `toml:"prefix"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Layout: LayoutConfig{
			CellWidth:    8,
			RowHeight:    20,
			BoldScale:    1.125,
			ScriptScale:  0.75,
			TabWidth:     4,
			CacheEntries: 150,
		},
		Viewport: ViewportConfig{
			Width:        640,
			Height:       480,
			Lookahead:    50,
			MarginTop:    40,
			MarginBottom: 40,
		},
		History: HistoryConfig{
			MaxEntries: 1000,
		},
		Search: SearchConfig{
			WrapAround: true,
		},
		Analysis: AnalysisConfig{
			ResultBuffer:       16,
			Language:           "en",
			OveruseThreshold:   1.5,
			RepetitionDistance: 50,
			FilterStopWords:    true,
			MinWordLength:      2,
		},
		Log: LogConfig{
			Level:  "info",
			Prefix: "quire",
		},
	}
}
