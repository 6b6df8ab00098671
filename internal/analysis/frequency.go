package analysis

import (
	"cmp"
	"context"
	"slices"
	"unicode"

	"github.com/rivo/uniseg"
	"github.com/tidwall/sjson"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/dshills/quire/internal/engine/buffer"
)

// FrequencyTaskName is the name of the word frequency task.
const FrequencyTaskName = "word-frequency"

// Defaults for FrequencyOptions.
const (
	DefaultOveruseThreshold   = 1.5 // percent of counted words
	DefaultRepetitionDistance = 50  // words
	DefaultMinWordLength      = 2
)

// FrequencyOptions configures the word frequency task.
type FrequencyOptions struct {
	Language           string  // BCP 47 tag selecting case rules and stop words
	OveruseThreshold   float64 // a word at or above this share (percent) is overused
	RepetitionDistance int     // repetitions at most this many words apart are reported
	FilterStopWords    bool
	MinWordLength      int // shorter words are ignored
}

// DefaultFrequencyOptions returns the default options.
func DefaultFrequencyOptions() FrequencyOptions {
	return FrequencyOptions{
		Language:           "en",
		OveruseThreshold:   DefaultOveruseThreshold,
		RepetitionDistance: DefaultRepetitionDistance,
		FilterStopWords:    true,
		MinWordLength:      DefaultMinWordLength,
	}
}

// WordCount is the frequency of one word.
type WordCount struct {
	Word       string
	Count      int
	Percentage float64
	Overused   bool
}

// Repetition is a word repeated within the repetition distance. First and
// Second are word positions in the document, counting every extracted word.
type Repetition struct {
	Word     string
	First    int
	Second   int
	Distance int
}

// FrequencyReport is the result of the word frequency task.
type FrequencyReport struct {
	Language    string
	TotalWords  int // counted words, stop words excluded
	UniqueWords int
	Frequencies []WordCount  // by count descending, then word
	Repetitions []Repetition // by distance, then position
}

// Top returns the n most frequent words.
func (r FrequencyReport) Top(n int) []WordCount {
	return r.Frequencies[:max(0, min(n, len(r.Frequencies)))]
}

// Overused returns the words at or above the overuse threshold.
func (r FrequencyReport) Overused() []WordCount {
	var out []WordCount
	for _, wc := range r.Frequencies {
		if wc.Overused {
			out = append(out, wc)
		}
	}
	return out
}

// Lookup returns the frequency of word, which must already be folded.
func (r FrequencyReport) Lookup(word string) (WordCount, bool) {
	for _, wc := range r.Frequencies {
		if wc.Word == word {
			return wc, true
		}
	}
	return WordCount{Word: word}, false
}

// JSON implements Report.
func (r FrequencyReport) JSON() ([]byte, error) {
	out := []byte(`{"frequencies":[],"repetitions":[]}`)
	var err error
	set := func(path string, value any) {
		if err == nil {
			out, err = sjson.SetBytes(out, path, value)
		}
	}
	set("language", r.Language)
	set("totalWords", r.TotalWords)
	set("uniqueWords", r.UniqueWords)
	for _, wc := range r.Frequencies {
		set("frequencies.-1", map[string]any{
			"word":       wc.Word,
			"count":      wc.Count,
			"percentage": wc.Percentage,
			"overused":   wc.Overused,
		})
	}
	for _, rep := range r.Repetitions {
		set("repetitions.-1", map[string]any{
			"word":     rep.Word,
			"first":    rep.First,
			"second":   rep.Second,
			"distance": rep.Distance,
		})
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// WordFrequency finds the most frequent and overused words and close
// repetitions.
type WordFrequency struct {
	opts FrequencyOptions
	tag  language.Tag
	stop map[string]bool
}

// NewWordFrequency creates the task. An unknown language falls back to
// English.
func NewWordFrequency(opts FrequencyOptions) *WordFrequency {
	if opts.OveruseThreshold <= 0 {
		opts.OveruseThreshold = DefaultOveruseThreshold
	}
	if opts.RepetitionDistance <= 0 {
		opts.RepetitionDistance = DefaultRepetitionDistance
	}
	if opts.MinWordLength <= 0 {
		opts.MinWordLength = DefaultMinWordLength
	}
	tag, err := language.Parse(opts.Language)
	if err != nil {
		tag = language.English
	}
	base, _ := tag.Base()
	stop, ok := stopWords[base.String()]
	if !ok {
		stop = stopWords["en"]
	}
	return &WordFrequency{
		opts: opts,
		tag:  tag,
		stop: stop,
	}
}

// Name implements Task.
func (*WordFrequency) Name() string { return FrequencyTaskName }

// Run implements Task.
func (w *WordFrequency) Run(ctx context.Context, snap *buffer.Snapshot) (Report, error) {
	counts := make(map[string]int)
	positions := make(map[string][]int)
	position, total := 0, 0

	var err error
	snap.ForEachText(func(_ int, text string) bool {
		if err = ctx.Err(); err != nil {
			return false
		}
		for _, word := range w.Words(text) {
			if w.opts.FilterStopWords && w.stop[word] {
				position++
				continue
			}
			counts[word]++
			positions[word] = append(positions[word], position)
			total++
			position++
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	report := FrequencyReport{
		Language:    w.tag.String(),
		TotalWords:  total,
		UniqueWords: len(counts),
		Frequencies: make([]WordCount, 0, len(counts)),
	}
	for word, n := range counts {
		pct := 100 * float64(n) / float64(total)
		report.Frequencies = append(report.Frequencies, WordCount{
			Word:       word,
			Count:      n,
			Percentage: pct,
			Overused:   pct >= w.opts.OveruseThreshold,
		})
	}
	slices.SortFunc(report.Frequencies, func(a, b WordCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Word, b.Word)
	})

	for word, pos := range positions {
		for i := 1; i < len(pos); i++ {
			if d := pos[i] - pos[i-1]; d <= w.opts.RepetitionDistance {
				report.Repetitions = append(report.Repetitions, Repetition{
					Word: word, First: pos[i-1], Second: pos[i], Distance: d,
				})
			}
		}
	}
	slices.SortFunc(report.Repetitions, func(a, b Repetition) int {
		if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
			return c
		}
		return cmp.Compare(a.First, b.First)
	})
	return report, nil
}

// Words returns the folded words of text: maximal runs of letters within
// each Unicode word segment, lowercased by the task's language rules and
// NFC-normalized, keeping only those of at least MinWordLength runes.
func (w *WordFrequency) Words(text string) []string {
	fold := cases.Lower(w.tag) // a Caser is not safe for concurrent use
	var out []string
	state := -1
	var seg string
	for text != "" {
		seg, text, state = uniseg.FirstWordInString(text, state)
		start := -1
		for i, r := range seg {
			if unicode.IsLetter(r) || unicode.Is(unicode.Mn, r) {
				if start < 0 {
					start = i
				}
				continue
			}
			if start >= 0 {
				out = w.appendWord(out, fold, seg[start:i])
				start = -1
			}
		}
		if start >= 0 {
			out = w.appendWord(out, fold, seg[start:])
		}
	}
	return out
}

func (w *WordFrequency) appendWord(out []string, fold cases.Caser, raw string) []string {
	word := norm.NFC.String(fold.String(raw))
	if len([]rune(word)) < w.opts.MinWordLength {
		return out
	}
	return append(out, word)
}

// IsStopWord reports whether the folded word is a stop word for the task's
// language.
func (w *WordFrequency) IsStopWord(word string) bool {
	return w.stop[word]
}
