package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix prefixes environment variables that override file settings.
const EnvPrefix = "QUIRE_"

// Load reads the TOML file at path on top of the defaults, applies
// environment overrides and validates the result. A missing file is not an
// error; the defaults are used.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	default:
		if cfg, err = Parse(path, data); err != nil {
			return cfg, err
		}
	}
	if err := ApplyEnv(&cfg, os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Parse decodes TOML data on top of the defaults. source names the data in
// errors. The result is not validated.
func Parse(source string, data []byte) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Default(), parseError(source, err)
	}
	return cfg, nil
}

// Read decodes TOML from r on top of the defaults.
func Read(r io.Reader) (Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Default(), fmt.Errorf("reading config: %w", err)
	}
	return Parse("<reader>", data)
}

func parseError(source string, err error) error {
	pe := &ParseError{Path: source, Message: err.Error(), Err: err}
	var decErr *toml.DecodeError
	var strictErr *toml.StrictMissingError
	switch {
	case errors.As(err, &decErr):
		pe.Line, pe.Column = decErr.Position()
	case errors.As(err, &strictErr) && len(strictErr.Errors) > 0:
		first := strictErr.Errors[0]
		pe.Line, pe.Column = first.Position()
		pe.Message = "unknown key " + strings.Join(first.Key(), ".")
	}
	return pe
}

// Encode writes cfg as TOML.
func Encode(w io.Writer, cfg Config) error {
	enc := toml.NewEncoder(w)
	enc.SetIndentTables(true)
	return enc.Encode(cfg)
}

// envSetting maps one environment variable onto a field.
type envSetting struct {
	name string
	set  func(cfg *Config, value string) error
}

var envSettings = []envSetting{
	{"LOG_LEVEL", func(c *Config, v string) error { c.Log.Level = v; return nil }},
	{"LAYOUT_CELL_WIDTH", floatSetter(func(c *Config) *float64 { return &c.Layout.CellWidth })},
	{"LAYOUT_ROW_HEIGHT", floatSetter(func(c *Config) *float64 { return &c.Layout.RowHeight })},
	{"LAYOUT_TAB_WIDTH", intSetter(func(c *Config) *int { return &c.Layout.TabWidth })},
	{"VIEWPORT_WIDTH", floatSetter(func(c *Config) *float64 { return &c.Viewport.Width })},
	{"VIEWPORT_HEIGHT", floatSetter(func(c *Config) *float64 { return &c.Viewport.Height })},
	{"VIEWPORT_LOOKAHEAD", intSetter(func(c *Config) *int { return &c.Viewport.Lookahead })},
	{"HISTORY_MAX_ENTRIES", intSetter(func(c *Config) *int { return &c.History.MaxEntries })},
	{"ANALYSIS_LANGUAGE", func(c *Config, v string) error { c.Analysis.Language = v; return nil }},
}

func floatSetter(field func(*Config) *float64) func(*Config, string) error {
	return func(c *Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		*field(c) = f
		return nil
	}
}

func intSetter(field func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

// ApplyEnv overrides cfg from environment variables found by lookup, e.g.
// QUIRE_LOG_LEVEL or QUIRE_VIEWPORT_WIDTH.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	for _, s := range envSettings {
		name := EnvPrefix + s.name
		value, ok := lookup(name)
		if !ok {
			continue
		}
		if err := s.set(cfg, strings.TrimSpace(value)); err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalidConfig, name, value, err)
		}
	}
	return nil
}
