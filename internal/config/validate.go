package config

import (
	"errors"
	"slices"
	"strings"
)

var logLevels = []string{"debug", "info", "warn", "warning", "error"}

// Validate reports every invalid setting. Each error wraps
// ErrInvalidConfig.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, path, format string, args ...any) {
		if !ok {
			errs = append(errs, fieldError(path, format, args...))
		}
	}

	l := c.Layout
	check(l.CellWidth > 0, "layout.cellWidth", "must be positive, got %v", l.CellWidth)
	check(l.RowHeight > 0, "layout.rowHeight", "must be positive, got %v", l.RowHeight)
	check(l.BoldScale >= 0, "layout.boldScale", "must not be negative, got %v", l.BoldScale)
	check(l.ScriptScale >= 0, "layout.scriptScale", "must not be negative, got %v", l.ScriptScale)
	check(l.TabWidth >= 1, "layout.tabWidth", "must be at least 1, got %d", l.TabWidth)
	check(l.ParagraphSpacing >= 0, "layout.paragraphSpacing", "must not be negative, got %v", l.ParagraphSpacing)
	check(l.CacheEntries >= 0, "layout.cacheEntries", "must not be negative, got %d", l.CacheEntries)

	v := c.Viewport
	check(v.Width >= 0, "viewport.width", "must not be negative, got %v", v.Width)
	check(v.Height >= 0, "viewport.height", "must not be negative, got %v", v.Height)
	check(v.MarginTop >= 0, "viewport.marginTop", "must not be negative, got %v", v.MarginTop)
	check(v.MarginBottom >= 0, "viewport.marginBottom", "must not be negative, got %v", v.MarginBottom)

	check(c.History.MaxEntries >= 0, "history.maxEntries", "must not be negative, got %d", c.History.MaxEntries)

	a := c.Analysis
	check(a.ResultBuffer >= 0, "analysis.resultBuffer", "must not be negative, got %d", a.ResultBuffer)
	check(a.Language != "", "analysis.language", "must not be empty")
	check(a.OveruseThreshold > 0 && a.OveruseThreshold <= 100, "analysis.overuseThreshold", "must be in (0, 100], got %v", a.OveruseThreshold)
	check(a.RepetitionDistance >= 1, "analysis.repetitionDistance", "must be at least 1, got %d", a.RepetitionDistance)
	check(a.MinWordLength >= 1, "analysis.minWordLength", "must be at least 1, got %d", a.MinWordLength)

	check(validLevel(c.Log.Level), "log.level", "must be one of %s, got %q", strings.Join(logLevels, ", "), c.Log.Level)

	return errors.Join(errs...)
}

func validLevel(level string) bool {
	return slices.Contains(logLevels, strings.ToLower(level))
}
