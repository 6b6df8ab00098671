// Package kml converts between a paragraph buffer and KML, the manuscript
// markup format.
//
// A KML document is a root element (kml, doc or document) holding one p
// element per paragraph. Inline elements nest to describe formatting:
//
//	<kml>
//	  <p>Plain <b>bold <i>both</i></b> and <color value="#c00000">red</color></p>
//	  <p>See<footnote id="f1">this</footnote>.<br/>Next line.</p>
//	</kml>
//
// Recognized inline elements are b, i, u, s, sub, sup, weight, color,
// comment, todo and footnote (with their long-form aliases), t as a plain
// text run and br as a forced line break. Unknown elements are skipped
// along with their content. Serialize writes the same vocabulary, so
// Unmarshal(Marshal(buf)) yields a buffer with the same text and the same
// effective formatting.
package kml

import (
	"errors"
)

// ErrMalformed is returned when the input is not well-formed KML.
var ErrMalformed = errors.New("malformed KML")

// lineSeparator is stored in paragraph text for a br element.
const lineSeparator = '\u2028'

// Element names.
const (
	tagRoot      = "kml"
	tagParagraph = "p"
	tagBreak     = "br"
	tagText      = "t"

	tagBold      = "b"
	tagItalic    = "i"
	tagUnderline = "u"
	tagStrike    = "s"
	tagSub       = "sub"
	tagSup       = "sup"
	tagWeight    = "weight"
	tagColor     = "color"
	tagComment   = "comment"
	tagTodo      = "todo"
	tagFootnote  = "footnote"
)

var rootNames = map[string]bool{
	"kml":      true,
	"doc":      true,
	"document": true,
}

var paragraphNames = map[string]bool{
	"p":         true,
	"paragraph": true,
}

// aliases maps long-form inline element names to their canonical form.
var aliases = map[string]string{
	"bold":          tagBold,
	"strong":        tagBold,
	"italic":        tagItalic,
	"em":            tagItalic,
	"underline":     tagUnderline,
	"strike":        tagStrike,
	"strikethrough": tagStrike,
	"subscript":     tagSub,
	"superscript":   tagSup,
	"text":          tagText,
}

func canonical(name string) string {
	if a, ok := aliases[name]; ok {
		return a
	}
	return name
}
