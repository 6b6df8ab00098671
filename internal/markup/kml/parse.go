package kml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/dshills/quire/internal/engine/buffer"
	"github.com/dshills/quire/internal/engine/format"
	"github.com/dshills/quire/internal/markup"
)

// Parse reads KML from r and replaces the content of buf with it.
func Parse(r io.Reader, buf *buffer.Buffer) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read kml: %w", err)
	}
	return Unmarshal(data, buf)
}

// Unmarshal parses data and replaces the content of buf with it. Input
// without a kml, doc or document root is treated as the body of one. Empty
// input yields a single empty paragraph. A parse error leaves buf unchanged.
func Unmarshal(data []byte, buf *buffer.Buffer) error {
	paragraphs, err := Decode(data)
	if err != nil {
		return err
	}
	return markup.Load(buf, paragraphs)
}

// Decode parses data into paragraphs without touching a buffer.
func Decode(data []byte) ([]markup.Paragraph, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if !hasRoot(trimmed) {
		wrapped := make([]byte, 0, len(trimmed)+11)
		wrapped = append(wrapped, "<kml>"...)
		wrapped = append(wrapped, trimmed...)
		wrapped = append(wrapped, "</kml>"...)
		trimmed = wrapped
	}

	d := xml.NewDecoder(bytes.NewReader(trimmed))
	root, err := nextStart(d)
	if err != nil {
		return nil, malformed(err)
	}
	if !rootNames[root.Name.Local] {
		return nil, fmt.Errorf("%w: unexpected root element <%s>", ErrMalformed, root.Name.Local)
	}

	var out []markup.Paragraph
	for {
		tok, err := d.Token()
		if err != nil {
			return nil, malformed(err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if !paragraphNames[t.Name.Local] {
				if err := d.Skip(); err != nil {
					return nil, malformed(err)
				}
				continue
			}
			p, err := decodeParagraph(d)
			if err != nil {
				return nil, err
			}
			out = append(out, p)
		case xml.EndElement:
			return out, nil
		}
	}
}

// hasRoot reports whether data starts with a root element, ignoring an XML
// declaration.
func hasRoot(data []byte) bool {
	if bytes.HasPrefix(data, []byte("<?xml")) {
		return true
	}
	for name := range rootNames {
		rest, ok := bytes.CutPrefix(data, []byte("<"+name))
		if ok && len(rest) > 0 && (rest[0] == '>' || rest[0] == ' ' || rest[0] == '/' || rest[0] == '\t' || rest[0] == '\n' || rest[0] == '\r') {
			return true
		}
	}
	return false
}

func nextStart(d *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := d.Token()
		if err != nil {
			return xml.StartElement{}, err
		}
		if se, ok := tok.(xml.StartElement); ok {
			return se, nil
		}
	}
}

func malformed(err error) error {
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: unexpected end of input", ErrMalformed)
	}
	return fmt.Errorf("%w: %v", ErrMalformed, err)
}

// decodeParagraph reads inline content up to the paragraph's end element.
func decodeParagraph(d *xml.Decoder) (markup.Paragraph, error) {
	var pb markup.Builder
	for {
		tok, err := d.Token()
		if err != nil {
			return markup.Paragraph{}, malformed(err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			pb.Write(string(t))
		case xml.StartElement:
			name := canonical(t.Name.Local)
			if name == tagBreak {
				pb.Write(string(lineSeparator))
				if err := d.Skip(); err != nil {
					return markup.Paragraph{}, malformed(err)
				}
				continue
			}
			attrs, known, err := inlineAttributes(name, t.Attr, pb.Attrs())
			if err != nil {
				return markup.Paragraph{}, err
			}
			if !known {
				if err := d.Skip(); err != nil {
					return markup.Paragraph{}, malformed(err)
				}
				continue
			}
			pb.Push(attrs)
		case xml.EndElement:
			if pb.Depth() == 0 {
				return pb.Finish(), nil
			}
			pb.Pop()
		}
	}
}

// inlineAttributes returns the attributes in effect inside an inline
// element, given those of its parent. known is false for unrecognized
// elements.
func inlineAttributes(name string, xattrs []xml.Attr, parent format.Attributes) (format.Attributes, bool, error) {
	a := parent
	switch name {
	case tagText:
	case tagBold:
		a.Weight = format.WeightBold
	case tagItalic:
		a.Italic = true
	case tagUnderline:
		a.Underline = true
	case tagStrike:
		a.Strikethrough = true
	case tagSub:
		a.VerticalAlign = format.AlignSubscript
	case tagSup:
		a.VerticalAlign = format.AlignSuperscript
	case tagWeight:
		w, err := strconv.ParseUint(attr(xattrs, "value"), 10, 16)
		if err != nil {
			return a, false, fmt.Errorf("%w: weight: %v", ErrMalformed, err)
		}
		a.Weight = format.Weight(w)
	case tagColor:
		c, err := format.NormalizeColor(attr(xattrs, "value"))
		if err != nil {
			return a, false, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		a.Color = c
	case tagComment:
		a.CommentID = tagID(xattrs)
	case tagTodo:
		a.TodoID = tagID(xattrs)
	case tagFootnote:
		a.FootnoteID = tagID(xattrs)
	default:
		return a, false, nil
	}
	return a, true, nil
}

func attr(xattrs []xml.Attr, name string) string {
	for _, a := range xattrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// tagID returns the id attribute, generating one when it is missing.
func tagID(xattrs []xml.Attr) string {
	if id := attr(xattrs, "id"); id != "" {
		return id
	}
	return format.NewTagID()
}
