// Package markdown imports Markdown (CommonMark with the GitHub extensions)
// into a paragraph buffer.
//
// Every block that holds inline text becomes one buffer paragraph:
// paragraphs, headings (made bold), list items (prefixed with a bullet or
// number), table rows (cells separated by tabs) and each line of a code
// block. Emphasis maps to italic, strong emphasis to bold and ~~text~~ to
// strikethrough. A hard line break becomes a forced line break inside the
// paragraph. Raw HTML is dropped.
package markdown

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/dshills/quire/internal/engine/buffer"
	"github.com/dshills/quire/internal/engine/format"
	"github.com/dshills/quire/internal/markup"
)

// SceneBreak is the paragraph text a thematic break becomes.
const SceneBreak = "* * *"

const lineSeparator = "\u2028"

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Import parses src and replaces the content of buf with it.
func Import(src []byte, buf *buffer.Buffer) error {
	paragraphs, err := Decode(src)
	if err != nil {
		return err
	}
	return markup.Load(buf, paragraphs)
}

// ImportReader reads Markdown from r and replaces the content of buf.
func ImportReader(r io.Reader, buf *buffer.Buffer) error {
	src, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read markdown: %w", err)
	}
	return Import(src, buf)
}

// Decode parses src into paragraphs.
func Decode(src []byte) ([]markup.Paragraph, error) {
	doc := md.Parser().Parse(text.NewReader(src))
	im := &importer{src: src}
	if err := ast.Walk(doc, im.walk); err != nil {
		return nil, fmt.Errorf("import markdown: %w", err)
	}
	return im.out, nil
}

type listState struct {
	ordered bool
	next    int
}

// importer walks the goldmark tree and collects paragraphs.
type importer struct {
	src    []byte
	out    []markup.Paragraph
	pb     markup.Builder
	open   bool
	lists  []listState
	prefix string
}

func (im *importer) begin() {
	if im.open {
		im.end()
	}
	im.open = true
	if im.prefix != "" {
		im.pb.Write(im.prefix)
		im.prefix = ""
	}
}

func (im *importer) end() {
	if !im.open {
		return
	}
	im.out = append(im.out, im.pb.Finish())
	im.open = false
}

func (im *importer) write(b []byte) {
	if !im.open || len(b) == 0 {
		return
	}
	im.pb.Write(string(b))
}

func (im *importer) walk(node ast.Node, entering bool) (ast.WalkStatus, error) {
	switch n := node.(type) {
	case *ast.Paragraph, *ast.TextBlock, *east.TableHeader, *east.TableRow:
		if entering {
			im.begin()
		} else {
			im.end()
		}

	case *ast.Heading:
		if entering {
			im.begin()
			im.pb.PushMerged(format.Bold(), format.MaskWeight)
		} else {
			im.pb.Pop()
			im.end()
		}

	case *ast.List:
		if entering {
			im.lists = append(im.lists, listState{ordered: n.IsOrdered(), next: n.Start})
		} else {
			im.lists = im.lists[:len(im.lists)-1]
		}

	case *ast.ListItem:
		if entering && len(im.lists) > 0 {
			l := &im.lists[len(im.lists)-1]
			indent := strings.Repeat("  ", len(im.lists)-1)
			if l.ordered {
				im.prefix = indent + strconv.Itoa(l.next) + ". "
				l.next++
			} else {
				im.prefix = indent + "• "
			}
		} else if !entering {
			im.prefix = ""
		}

	case *east.TableCell:
		if entering && n.PreviousSibling() != nil {
			im.pb.Write("\t")
		}

	case *east.TaskCheckBox:
		if entering {
			if n.IsChecked {
				im.pb.Write("☑ ")
			} else {
				im.pb.Write("☐ ")
			}
		}

	case *ast.FencedCodeBlock:
		if entering {
			im.codeLines(n.Lines())
		}
		return ast.WalkSkipChildren, nil

	case *ast.CodeBlock:
		if entering {
			im.codeLines(n.Lines())
		}
		return ast.WalkSkipChildren, nil

	case *ast.ThematicBreak:
		if entering {
			im.begin()
			im.pb.Write(SceneBreak)
			im.end()
		}

	case *ast.HTMLBlock, *ast.RawHTML:
		return ast.WalkSkipChildren, nil

	case *ast.Emphasis:
		if entering {
			if n.Level >= 2 {
				im.pb.PushMerged(format.Bold(), format.MaskWeight)
			} else {
				im.pb.PushMerged(format.Italic(), format.MaskItalic)
			}
		} else {
			im.pb.Pop()
		}

	case *east.Strikethrough:
		if entering {
			im.pb.PushMerged(format.Attributes{Strikethrough: true}, format.MaskStrikethrough)
		} else {
			im.pb.Pop()
		}

	case *ast.AutoLink:
		if entering {
			im.write(n.URL(im.src))
		}
		return ast.WalkSkipChildren, nil

	case *ast.Text:
		if entering {
			im.write(clean(n.Segment.Value(im.src)))
			switch {
			case n.HardLineBreak():
				im.write([]byte(lineSeparator))
			case n.SoftLineBreak():
				im.write([]byte(" "))
			}
		}

	case *ast.String:
		if entering {
			im.write(clean(n.Value))
		}
	}
	return ast.WalkContinue, nil
}

// codeLines emits each line of a code block as its own paragraph.
func (im *importer) codeLines(lines *text.Segments) {
	if lines.Len() == 0 {
		im.begin()
		im.end()
		return
	}
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		im.begin()
		im.write(bytes.TrimRight(seg.Value(im.src), "\r\n"))
		im.end()
	}
}

// clean resolves backslash escapes and character references.
func clean(b []byte) []byte {
	b = util.UnescapePunctuations(b)
	b = util.ResolveNumericReferences(b)
	return util.ResolveEntityNames(b)
}
