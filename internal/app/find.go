package app

import (
	"github.com/dshills/quire/internal/engine/buffer"
	"github.com/dshills/quire/internal/engine/search"
)

// SearchOptions returns the configured default search options.
func (d *Document) SearchOptions() search.Options {
	s := d.cfg.Search
	return search.Options{
		CaseSensitive: s.CaseSensitive,
		WholeWord:     s.WholeWord,
		UseRegex:      s.UseRegex,
		WrapAround:    s.WrapAround,
	}
}

// Find starts a search with the configured options and selects the first
// match at or after the caret. It returns the number of matches.
func (d *Document) Find(pattern string) (int, error) {
	return d.FindWith(pattern, d.SearchOptions())
}

// FindWith starts a search with explicit options.
func (d *Document) FindWith(pattern string, opts search.Options) (int, error) {
	if err := d.finder.SetQuery(pattern, opts); err != nil {
		return 0, opError("find", pattern, err)
	}
	n := d.finder.Count()
	if n == 0 {
		return 0, nil
	}
	r, err := d.finder.SelectFrom(d.caret)
	if err != nil {
		return n, opError("find", pattern, err)
	}
	d.selectMatch(r)
	d.log.Debug("find %q: %d matches", pattern, n)
	return n, nil
}

// FindNext moves to the next match and returns it.
func (d *Document) FindNext() (buffer.Range, error) {
	r, err := d.finder.Next()
	if err != nil {
		return r, opError("find-next", "", err)
	}
	d.selectMatch(r)
	return r, nil
}

// FindPrevious moves to the previous match and returns it.
func (d *Document) FindPrevious() (buffer.Range, error) {
	r, err := d.finder.Previous()
	if err != nil {
		return r, opError("find-previous", "", err)
	}
	d.selectMatch(r)
	return r, nil
}

func (d *Document) selectMatch(r buffer.Range) {
	d.caret = r.End
	d.reveal()
}

// Replace replaces the current match with replacement and moves to the
// next one.
func (d *Document) Replace(replacement string) error {
	if d.closed {
		return ErrClosed
	}
	cur, ok := d.finder.Current()
	if !ok {
		return opError("replace", "", search.ErrNoMatch)
	}
	d.finder.SetReplacement(replacement)
	if err := d.finder.ReplaceCurrent(); err != nil {
		return opError("replace", cur.String(), err)
	}
	caret := cur.Start
	if next, ok := d.finder.Current(); ok {
		caret = next.End
	}
	d.edited("replace", caret)
	return nil
}

// ReplaceAll replaces every match as one undoable edit and returns the
// number replaced.
func (d *Document) ReplaceAll(replacement string) (int, error) {
	if d.closed {
		return 0, ErrClosed
	}
	d.finder.SetReplacement(replacement)
	n, err := d.finder.ReplaceAll()
	if err != nil {
		return 0, opError("replace-all", "", err)
	}
	d.edited("replace-all", d.caret)
	d.log.Info("replaced %d matches", n)
	return n, nil
}
