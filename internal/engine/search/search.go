// Package search finds pattern occurrences in a paragraph buffer.
//
// A pattern is compiled once into a Matcher, which scans paragraph text and
// reports matches as rune-offset ranges within a single paragraph. Matches
// never span a paragraph break. Finding is independent of layout: it only
// reads paragraph text, through the Source interface, so it runs equally
// over a live buffer or an immutable snapshot.
//
// Replacing goes through the history commands so that format ranges, the
// height index and the undo stack stay consistent; see Navigator.
package search

import (
	"errors"
	"fmt"
	"regexp"
	"unicode"
	"unicode/utf8"
)

// Common errors.
var (
	ErrNoMatch        = errors.New("no match")
	ErrInvalidPattern = errors.New("invalid search pattern")
)

// Options controls how a pattern matches.
type Options struct {
	CaseSensitive bool
	WholeWord     bool // match only between Unicode letter/digit boundaries
	UseRegex      bool // treat the pattern as an RE2 regular expression
	WrapAround    bool // navigator Next/Previous continue past the ends
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{WrapAround: true}
}

// Source is the read surface search needs. Both *buffer.Buffer and
// *buffer.Snapshot satisfy it.
type Source interface {
	Count() int
	Text(index int) string
}

// Matcher is a compiled search pattern.
type Matcher struct {
	pattern string
	opts    Options
	re      *regexp.Regexp
}

// Compile compiles pattern under opts. An empty pattern returns ErrNoMatch,
// since it can match nothing; an invalid regular expression returns
// ErrInvalidPattern.
func Compile(pattern string, opts Options) (*Matcher, error) {
	if pattern == "" {
		return nil, fmt.Errorf("empty pattern: %w", ErrNoMatch)
	}
	expr := pattern
	if !opts.UseRegex {
		expr = regexp.QuoteMeta(expr)
	}
	if !opts.CaseSensitive {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	return &Matcher{pattern: pattern, opts: opts, re: re}, nil
}

// Pattern returns the pattern the matcher was compiled from.
func (m *Matcher) Pattern() string {
	return m.pattern
}

// Options returns the matcher's options.
func (m *Matcher) Options() Options {
	return m.opts
}

// match is one occurrence within a paragraph. start and end are rune
// offsets; sub holds the regexp submatch byte indices for expansion.
type match struct {
	start, end int
	sub        []int
}

// scan returns the non-empty matches in text in offset order.
func (m *Matcher) scan(text string) []match {
	if text == "" {
		return nil
	}
	var found [][]int
	if m.opts.WholeWord {
		found = m.wholeWords(text)
	} else {
		found = m.re.FindAllStringSubmatchIndex(text, -1)
	}
	if len(found) == 0 {
		return nil
	}
	out := make([]match, 0, len(found))
	runes, bytePos := 0, 0
	for _, sub := range found {
		bs, be := sub[0], sub[1]
		if bs == be {
			continue
		}
		runes += utf8.RuneCountInString(text[bytePos:bs])
		start := runes
		runes += utf8.RuneCountInString(text[bs:be])
		bytePos = be
		out = append(out, match{start: start, end: runes, sub: sub})
	}
	return out
}

// wholeWords returns the submatch indices of the word-bounded matches in
// text. A rejected match may overlap a bounded one, so the search resumes
// one rune after the rejected start rather than after its end.
func (m *Matcher) wholeWords(text string) [][]int {
	var found [][]int
	for pos := 0; pos < len(text); {
		sub := m.re.FindStringSubmatchIndex(text[pos:])
		if sub == nil {
			break
		}
		for i := range sub {
			if sub[i] >= 0 {
				sub[i] += pos
			}
		}
		bs, be := sub[0], sub[1]
		if bs < be && wordBounded(text, bs, be) {
			found = append(found, sub)
			pos = be
			continue
		}
		_, size := utf8.DecodeRuneInString(text[bs:])
		pos = bs + max(size, 1)
	}
	return found
}

// expand returns the replacement for mt in text. Regex patterns expand
// $1 and ${name} captures; literal patterns insert template as is.
func (m *Matcher) expand(template, text string, mt match) string {
	if !m.opts.UseRegex {
		return template
	}
	return string(m.re.ExpandString(nil, template, text, mt.sub))
}

// wordBounded reports whether text[bs:be] has no word character directly
// before or after it.
func wordBounded(text string, bs, be int) bool {
	if bs > 0 {
		if r, _ := utf8.DecodeLastRuneInString(text[:bs]); isWordRune(r) {
			return false
		}
	}
	if be < len(text) {
		if r, _ := utf8.DecodeRuneInString(text[be:]); isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) || r == '_'
}
