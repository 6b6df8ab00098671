package analysis

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/sjson"

	"github.com/dshills/quire/internal/engine/buffer"
)

// TagsTaskName is the name of the tag detection task.
const TagsTaskName = "tags"

// TagKind is the keyword that opens a tag.
type TagKind string

// Tag keywords. Matching is case-insensitive; the kind is upper case.
const (
	TagTodo    TagKind = "TODO"
	TagFix     TagKind = "FIX"
	TagCheck   TagKind = "CHECK"
	TagNote    TagKind = "NOTE"
	TagWarning TagKind = "WARNING"
)

// A whole-word keyword, an optional colon and the rest of the line. A
// forced line break (U+2028) ends the content, so one paragraph can hold
// several tags.
var tagPattern = regexp.MustCompile(`(?i)\b(TODO|FIX|CHECK|NOTE|WARNING)\b\s*:?\s*([^\x{2028}]*)`)

// Tag is one detected tag. Offsets are rune offsets in the paragraph.
type Tag struct {
	Kind      TagKind
	Paragraph int
	Offset    int
	Length    int
	Content   string
}

// TagReport is the result of the tag detection task.
type TagReport struct {
	Tags []Tag // in document order
}

// OfKind returns the tags of one kind.
func (r TagReport) OfKind(kind TagKind) []Tag {
	var out []Tag
	for _, t := range r.Tags {
		if t.Kind == kind {
			out = append(out, t)
		}
	}
	return out
}

// InParagraph returns the tags in paragraph index.
func (r TagReport) InParagraph(index int) []Tag {
	var out []Tag
	for _, t := range r.Tags {
		if t.Paragraph == index {
			out = append(out, t)
		}
	}
	return out
}

// Counts returns the number of tags per kind.
func (r TagReport) Counts() map[TagKind]int {
	counts := make(map[TagKind]int)
	for _, t := range r.Tags {
		counts[t.Kind]++
	}
	return counts
}

// JSON implements Report.
func (r TagReport) JSON() ([]byte, error) {
	out := []byte(`{"tags":[]}`)
	var err error
	for _, t := range r.Tags {
		out, err = sjson.SetBytes(out, "tags.-1", map[string]any{
			"kind":      string(t.Kind),
			"paragraph": t.Paragraph,
			"offset":    t.Offset,
			"length":    t.Length,
			"content":   t.Content,
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// TagDetector finds TODO, FIX, CHECK, NOTE and WARNING markers left in the
// text.
type TagDetector struct{}

// Name implements Task.
func (TagDetector) Name() string { return TagsTaskName }

// Run implements Task.
func (TagDetector) Run(ctx context.Context, snap *buffer.Snapshot) (Report, error) {
	var r TagReport
	var err error
	snap.ForEachText(func(i int, text string) bool {
		if err = ctx.Err(); err != nil {
			return false
		}
		r.Tags = append(r.Tags, DetectTags(i, text)...)
		return true
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// DetectTags returns the tags in one paragraph's text.
func DetectTags(paragraph int, text string) []Tag {
	var out []Tag
	for _, m := range tagPattern.FindAllStringSubmatchIndex(text, -1) {
		start := utf8.RuneCountInString(text[:m[0]])
		out = append(out, Tag{
			Kind:      TagKind(strings.ToUpper(text[m[2]:m[3]])),
			Paragraph: paragraph,
			Offset:    start,
			Length:    utf8.RuneCountInString(text[m[0]:m[1]]),
			Content:   strings.TrimSpace(text[m[4]:m[5]]),
		})
	}
	return out
}
