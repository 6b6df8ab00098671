package analysis

import (
	"context"
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"
	"github.com/tidwall/sjson"

	"github.com/dshills/quire/internal/engine/buffer"
)

// WordsPerMinute is the reading speed used for reading time estimates.
const WordsPerMinute = 200

// StatisticsTaskName is the name of the statistics task.
const StatisticsTaskName = "statistics"

// Stats holds document statistics.
type Stats struct {
	Words              int
	Characters         int // including spaces and paragraph breaks
	CharactersNoSpaces int
	Paragraphs         int
	Sentences          int
	ReadingMinutes     int
}

// JSON implements Report.
func (s Stats) JSON() ([]byte, error) {
	fields := []struct {
		path  string
		value int
	}{
		{"words", s.Words},
		{"characters", s.Characters},
		{"charactersNoSpaces", s.CharactersNoSpaces},
		{"paragraphs", s.Paragraphs},
		{"sentences", s.Sentences},
		{"readingMinutes", s.ReadingMinutes},
	}
	out := []byte(`{}`)
	var err error
	for _, f := range fields {
		if out, err = sjson.SetBytes(out, f.path, f.value); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Statistics counts words, characters, paragraphs and sentences.
type Statistics struct{}

// Name implements Task.
func (Statistics) Name() string { return StatisticsTaskName }

// Run implements Task.
func (Statistics) Run(ctx context.Context, snap *buffer.Snapshot) (Report, error) {
	var s Stats
	s.Paragraphs = snap.Count()
	var err error
	snap.ForEachText(func(i int, text string) bool {
		if err = ctx.Err(); err != nil {
			return false
		}
		if i > 0 {
			s.Characters++ // paragraph break
		}
		s.addParagraph(text)
		return true
	})
	if err != nil {
		return nil, err
	}
	s.ReadingMinutes = ReadingMinutes(s.Words)
	return s, nil
}

func (s *Stats) addParagraph(text string) {
	s.Characters += utf8.RuneCountInString(text)
	for _, r := range text {
		if !unicode.IsSpace(r) {
			s.CharactersNoSpaces++
		}
	}
	s.Words += CountWords(text)

	state := -1
	rest := text
	var sentence string
	for rest != "" {
		sentence, rest, state = uniseg.FirstSentenceInString(rest, state)
		if hasWordRune(sentence) {
			s.Sentences++
		}
	}
}

// CountWords returns the number of words in text: Unicode word segments
// holding at least one letter or digit.
func CountWords(text string) int {
	n := 0
	state := -1
	var word string
	for text != "" {
		word, text, state = uniseg.FirstWordInString(text, state)
		if hasWordRune(word) {
			n++
		}
	}
	return n
}

// ReadingMinutes returns the reading time for words at WordsPerMinute,
// rounded up.
func ReadingMinutes(words int) int {
	if words <= 0 {
		return 0
	}
	return (words + WordsPerMinute - 1) / WordsPerMinute
}

func hasWordRune(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
