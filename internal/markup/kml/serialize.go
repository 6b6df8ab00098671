package kml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dshills/quire/internal/engine/buffer"
	"github.com/dshills/quire/internal/engine/format"
)

// Serialize writes buf to w as KML, one p element per line.
func Serialize(w io.Writer, buf *buffer.Buffer) error {
	enc := xml.NewEncoder(w)
	if err := enc.EncodeToken(start(tagRoot)); err != nil {
		return fmt.Errorf("serialize kml: %w", err)
	}
	var werr error
	buf.ForEachParagraph(func(i int, text string, ranges []format.Range) bool {
		if werr = enc.EncodeToken(xml.CharData("\n")); werr != nil {
			return false
		}
		if werr = encodeParagraph(enc, text, ranges); werr != nil {
			werr = fmt.Errorf("paragraph %d: %w", i, werr)
			return false
		}
		return true
	})
	if werr != nil {
		return fmt.Errorf("serialize kml: %w", werr)
	}
	if err := enc.EncodeToken(xml.CharData("\n")); err != nil {
		return fmt.Errorf("serialize kml: %w", err)
	}
	if err := enc.EncodeToken(end(tagRoot)); err != nil {
		return fmt.Errorf("serialize kml: %w", err)
	}
	if err := enc.Flush(); err != nil {
		return fmt.Errorf("serialize kml: %w", err)
	}
	return nil
}

// Marshal returns the KML encoding of buf.
func Marshal(buf *buffer.Buffer) ([]byte, error) {
	var b bytes.Buffer
	if err := Serialize(&b, buf); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// MarshalParagraph returns the KML p element for one paragraph.
func MarshalParagraph(text string, ranges []format.Range) (string, error) {
	var b strings.Builder
	enc := xml.NewEncoder(&b)
	if err := encodeParagraph(enc, text, ranges); err != nil {
		return "", err
	}
	if err := enc.Flush(); err != nil {
		return "", err
	}
	return b.String(), nil
}

func encodeParagraph(enc *xml.Encoder, text string, ranges []format.Range) error {
	if err := enc.EncodeToken(start(tagParagraph)); err != nil {
		return err
	}
	runes := []rune(text)
	pos := 0
	for _, r := range ranges {
		if r.Start > pos {
			if err := encodeText(enc, string(runes[pos:r.Start])); err != nil {
				return err
			}
		}
		if err := encodeRun(enc, string(runes[r.Start:r.End]), r.Attrs); err != nil {
			return err
		}
		pos = r.End
	}
	if pos < len(runes) {
		if err := encodeText(enc, string(runes[pos:])); err != nil {
			return err
		}
	}
	return enc.EncodeToken(end(tagParagraph))
}

// encodeRun writes text wrapped in the elements for attrs. Tag elements
// go outermost so a comment spanning styled text stays one element per run.
func encodeRun(enc *xml.Encoder, text string, attrs format.Attributes) error {
	elems := elementsFor(attrs)
	for _, e := range elems {
		if err := enc.EncodeToken(e); err != nil {
			return err
		}
	}
	if err := encodeText(enc, text); err != nil {
		return err
	}
	for i := len(elems) - 1; i >= 0; i-- {
		if err := enc.EncodeToken(elems[i].End()); err != nil {
			return err
		}
	}
	return nil
}

// encodeText writes text, turning line separators into br elements.
func encodeText(enc *xml.Encoder, text string) error {
	for i, part := range strings.Split(text, string(lineSeparator)) {
		if i > 0 {
			if err := enc.EncodeToken(start(tagBreak)); err != nil {
				return err
			}
			if err := enc.EncodeToken(end(tagBreak)); err != nil {
				return err
			}
		}
		if part == "" {
			continue
		}
		if err := enc.EncodeToken(xml.CharData(part)); err != nil {
			return err
		}
	}
	return nil
}

func elementsFor(a format.Attributes) []xml.StartElement {
	var out []xml.StartElement
	if a.CommentID != "" {
		out = append(out, start(tagComment, "id", a.CommentID))
	}
	if a.TodoID != "" {
		out = append(out, start(tagTodo, "id", a.TodoID))
	}
	if a.FootnoteID != "" {
		out = append(out, start(tagFootnote, "id", a.FootnoteID))
	}
	if a.Color != "" {
		out = append(out, start(tagColor, "value", a.Color))
	}
	switch a.Weight {
	case format.WeightNormal:
	case format.WeightBold:
		out = append(out, start(tagBold))
	default:
		out = append(out, start(tagWeight, "value", strconv.Itoa(int(a.Weight))))
	}
	if a.Italic {
		out = append(out, start(tagItalic))
	}
	if a.Underline {
		out = append(out, start(tagUnderline))
	}
	if a.Strikethrough {
		out = append(out, start(tagStrike))
	}
	switch a.VerticalAlign {
	case format.AlignSubscript:
		out = append(out, start(tagSub))
	case format.AlignSuperscript:
		out = append(out, start(tagSup))
	}
	return out
}

// start builds a start element with attribute name/value pairs.
func start(name string, kv ...string) xml.StartElement {
	se := xml.StartElement{Name: xml.Name{Local: name}}
	for i := 0; i+1 < len(kv); i += 2 {
		se.Attr = append(se.Attr, xml.Attr{Name: xml.Name{Local: kv[i]}, Value: kv[i+1]})
	}
	return se
}

func end(name string) xml.EndElement {
	return xml.EndElement{Name: xml.Name{Local: name}}
}
