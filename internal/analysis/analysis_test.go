package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tidwall/gjson"

	"github.com/dshills/quire/internal/engine/buffer"
)

type funcTask struct {
	name string
	fn   func(ctx context.Context, snap *buffer.Snapshot) (Report, error)
}

func (f funcTask) Name() string { return f.name }

func (f funcTask) Run(ctx context.Context, snap *buffer.Snapshot) (Report, error) {
	return f.fn(ctx, snap)
}

// blockingTask waits until its context is canceled.
func blockingTask(name string, started chan<- struct{}) funcTask {
	return funcTask{name: name, fn: func(ctx context.Context, _ *buffer.Snapshot) (Report, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}}
}

func receive(t *testing.T, r *Runner) Result {
	t.Helper()
	select {
	case res, ok := <-r.Results():
		if !ok {
			t.Fatal("result channel closed")
		}
		return res
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for result")
	}
	return Result{}
}

func drained(t *testing.T, r *Runner) {
	t.Helper()
	for res := range r.Results() {
		t.Errorf("expected no further results, got %+v", res)
	}
}

func snapshotOf(text string) *buffer.Snapshot {
	return buffer.NewBufferFromString(text).Snapshot()
}

func TestRunnerDeliversResult(t *testing.T) {
	r := NewRunner(0)
	buf := buffer.NewBufferFromString("one two three")
	snap := buf.Snapshot()

	id, err := r.Submit(Statistics{}, snap)
	if err != nil {
		t.Fatal(err)
	}
	res := receive(t, r)
	if res.ID != id {
		t.Errorf("expected id %s, got %s", id, res.ID)
	}
	if res.Task != StatisticsTaskName {
		t.Errorf("expected task %q, got %q", StatisticsTaskName, res.Task)
	}
	if res.Revision != buf.Revision() {
		t.Errorf("expected revision %d, got %d", buf.Revision(), res.Revision)
	}
	if res.Err != nil {
		t.Fatalf("unexpected error %v", res.Err)
	}
	if got := res.Report.(Stats).Words; got != 3 {
		t.Errorf("expected 3 words, got %d", got)
	}
	if res.Duration() < 0 {
		t.Errorf("expected non-negative duration, got %v", res.Duration())
	}
	r.Close()
	drained(t, r)
}

func TestRunnerSupersedesSameName(t *testing.T) {
	r := NewRunner(4)
	started := make(chan struct{})
	if _, err := r.Submit(blockingTask("count", started), snapshotOf("a")); err != nil {
		t.Fatal(err)
	}
	<-started

	quick := funcTask{name: "count", fn: func(context.Context, *buffer.Snapshot) (Report, error) {
		return Stats{Words: 2}, nil
	}}
	id, err := r.Submit(quick, snapshotOf("b c"))
	if err != nil {
		t.Fatal(err)
	}

	res := receive(t, r)
	if res.ID != id {
		t.Errorf("expected result of newer submission %s, got %s", id, res.ID)
	}
	if got := res.Report.(Stats).Words; got != 2 {
		t.Errorf("expected 2 words, got %d", got)
	}
	r.Close()
	drained(t, r)
}

func TestRunnerCancel(t *testing.T) {
	r := NewRunner(1)
	started := make(chan struct{})
	if _, err := r.Submit(blockingTask("slow", started), snapshotOf("x")); err != nil {
		t.Fatal(err)
	}
	<-started
	if r.Running() != 1 {
		t.Errorf("expected 1 running task, got %d", r.Running())
	}
	r.Cancel("slow")
	if r.Running() != 0 {
		t.Errorf("expected no running tasks, got %d", r.Running())
	}
	r.Close()
	drained(t, r)
}

func TestRunnerCloseCancelsInflight(t *testing.T) {
	r := NewRunner(1)
	started := make(chan struct{})
	if _, err := r.Submit(blockingTask("slow", started), snapshotOf("x")); err != nil {
		t.Fatal(err)
	}
	<-started
	r.Close()
	drained(t, r)

	if _, err := r.Submit(Statistics{}, snapshotOf("x")); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
	r.Close()
}

func TestRunnerRecoversPanic(t *testing.T) {
	r := NewRunner(1)
	defer r.Close()
	bad := funcTask{name: "bad", fn: func(context.Context, *buffer.Snapshot) (Report, error) {
		panic("boom")
	}}
	if _, err := r.Submit(bad, snapshotOf("x")); err != nil {
		t.Fatal(err)
	}
	res := receive(t, r)
	if res.Err == nil || !strings.Contains(res.Err.Error(), "panicked") {
		t.Errorf("expected panic error, got %v", res.Err)
	}
}

func TestResultJSON(t *testing.T) {
	res := Result{
		ID:       "abc",
		Task:     StatisticsTaskName,
		Revision: 7,
		Report:   Stats{Words: 12, Paragraphs: 3},
		Err:      errors.New("late"),
	}
	out, err := res.JSON()
	if err != nil {
		t.Fatal(err)
	}
	if got := gjson.GetBytes(out, "task").String(); got != StatisticsTaskName {
		t.Errorf("expected task %q, got %q", StatisticsTaskName, got)
	}
	if got := gjson.GetBytes(out, "revision").Int(); got != 7 {
		t.Errorf("expected revision 7, got %d", got)
	}
	if got := gjson.GetBytes(out, "report.words").Int(); got != 12 {
		t.Errorf("expected 12 words, got %d", got)
	}
	if got := gjson.GetBytes(out, "error").String(); got != "late" {
		t.Errorf("expected error late, got %q", got)
	}
}

func TestStatistics(t *testing.T) {
	snap := snapshotOf("Hello world. How are you?\nSecond para.")
	report, err := Statistics{}.Run(context.Background(), snap)
	if err != nil {
		t.Fatal(err)
	}
	want := Stats{
		Words:              7,
		Characters:         38,
		CharactersNoSpaces: 32,
		Paragraphs:         2,
		Sentences:          3,
		ReadingMinutes:     1,
	}
	if got := report.(Stats); got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}

	out, err := report.JSON()
	if err != nil {
		t.Fatal(err)
	}
	if got := gjson.GetBytes(out, "charactersNoSpaces").Int(); got != 32 {
		t.Errorf("expected charactersNoSpaces 32, got %d", got)
	}
}

func TestStatisticsCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (Statistics{}).Run(ctx, snapshotOf("text")); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestCountWordsAndReadingMinutes(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"   ", 0},
		{"one", 1},
		{"don't stop", 2},
		{"Zażółć gęślą jaźń.", 3},
		{"3 apples, 12 pears", 4},
		{"-- ... !!", 0},
	}
	for _, tt := range tests {
		if got := CountWords(tt.text); got != tt.want {
			t.Errorf("CountWords(%q): expected %d, got %d", tt.text, tt.want, got)
		}
	}

	for words, want := range map[int]int{0: 0, 1: 1, 200: 1, 201: 2, 1000: 5} {
		if got := ReadingMinutes(words); got != want {
			t.Errorf("ReadingMinutes(%d): expected %d, got %d", words, want, got)
		}
	}
}

func TestWordFrequency(t *testing.T) {
	task := NewWordFrequency(DefaultFrequencyOptions())
	report, err := task.Run(context.Background(), snapshotOf("The cat sat. The cat ran.\nA dog barked at the cat."))
	if err != nil {
		t.Fatal(err)
	}
	fr := report.(FrequencyReport)

	if fr.TotalWords != 7 {
		t.Errorf("expected 7 counted words, got %d", fr.TotalWords)
	}
	if fr.UniqueWords != 5 {
		t.Errorf("expected 5 unique words, got %d", fr.UniqueWords)
	}
	order := []string{"cat", "barked", "dog", "ran", "sat"}
	if len(fr.Frequencies) != len(order) {
		t.Fatalf("expected %d frequencies, got %+v", len(order), fr.Frequencies)
	}
	for i, w := range order {
		if fr.Frequencies[i].Word != w {
			t.Errorf("frequency %d: expected %q, got %q", i, w, fr.Frequencies[i].Word)
		}
	}
	cat, ok := fr.Lookup("cat")
	if !ok || cat.Count != 3 || !cat.Overused {
		t.Errorf("expected cat counted 3 times and overused, got %+v", cat)
	}
	if _, ok := fr.Lookup("the"); ok {
		t.Error("expected stop word the to be filtered")
	}
	if top := fr.Top(2); len(top) != 2 || top[0].Word != "cat" {
		t.Errorf("unexpected top words %+v", top)
	}
	if n := len(fr.Top(100)); n != 5 {
		t.Errorf("expected Top to clamp to 5, got %d", n)
	}

	want := []Repetition{
		{Word: "cat", First: 1, Second: 4, Distance: 3},
		{Word: "cat", First: 4, Second: 10, Distance: 6},
	}
	if len(fr.Repetitions) != len(want) {
		t.Fatalf("expected %d repetitions, got %+v", len(want), fr.Repetitions)
	}
	for i := range want {
		if fr.Repetitions[i] != want[i] {
			t.Errorf("repetition %d: expected %+v, got %+v", i, want[i], fr.Repetitions[i])
		}
	}

	out, err := fr.JSON()
	if err != nil {
		t.Fatal(err)
	}
	if got := gjson.GetBytes(out, "frequencies.0.word").String(); got != "cat" {
		t.Errorf("expected first frequency cat, got %q", got)
	}
	if got := gjson.GetBytes(out, "repetitions.#").Int(); got != 2 {
		t.Errorf("expected 2 repetitions in JSON, got %d", got)
	}
	if got := gjson.GetBytes(out, "totalWords").Int(); got != 7 {
		t.Errorf("expected totalWords 7, got %d", got)
	}
}

func TestWordFrequencyRepetitionDistance(t *testing.T) {
	opts := DefaultFrequencyOptions()
	opts.RepetitionDistance = 2
	task := NewWordFrequency(opts)
	report, err := task.Run(context.Background(), snapshotOf("rain fell rain fell soft warm rain"))
	if err != nil {
		t.Fatal(err)
	}
	fr := report.(FrequencyReport)
	want := []Repetition{
		{Word: "rain", First: 0, Second: 2, Distance: 2},
		{Word: "fell", First: 1, Second: 3, Distance: 2},
	}
	if len(fr.Repetitions) != len(want) {
		t.Fatalf("expected %+v, got %+v", want, fr.Repetitions)
	}
	for i := range want {
		if fr.Repetitions[i] != want[i] {
			t.Errorf("repetition %d: expected %+v, got %+v", i, want[i], fr.Repetitions[i])
		}
	}
}

func TestWordFrequencyPolish(t *testing.T) {
	opts := DefaultFrequencyOptions()
	opts.Language = "pl"
	task := NewWordFrequency(opts)

	report, err := task.Run(context.Background(), snapshotOf("Żółw i ŻÓŁW są tu. Żółw!"))
	if err != nil {
		t.Fatal(err)
	}
	fr := report.(FrequencyReport)
	if fr.Language != "pl" {
		t.Errorf("expected language pl, got %q", fr.Language)
	}
	wc, ok := fr.Lookup("żółw")
	if !ok || wc.Count != 3 {
		t.Errorf("expected żółw counted 3 times, got %+v", wc)
	}
	if _, ok := fr.Lookup("są"); ok {
		t.Error("expected Polish stop word są to be filtered")
	}
	if fr.TotalWords != 4 {
		t.Errorf("expected 4 counted words, got %d", fr.TotalWords)
	}
}

func TestWordFrequencyWithoutStopWords(t *testing.T) {
	opts := DefaultFrequencyOptions()
	opts.FilterStopWords = false
	task := NewWordFrequency(opts)
	report, err := task.Run(context.Background(), snapshotOf("the end of the road"))
	if err != nil {
		t.Fatal(err)
	}
	fr := report.(FrequencyReport)
	if the, _ := fr.Lookup("the"); the.Count != 2 {
		t.Errorf("expected the counted twice, got %+v", the)
	}
	if !task.IsStopWord("the") {
		t.Error("expected the to be an English stop word")
	}
}

func TestWordFrequencyUnknownLanguage(t *testing.T) {
	opts := DefaultFrequencyOptions()
	opts.Language = "not a tag!"
	task := NewWordFrequency(opts)
	if !task.IsStopWord("and") {
		t.Error("expected fallback to English stop words")
	}
}

func TestWords(t *testing.T) {
	task := NewWordFrequency(DefaultFrequencyOptions())
	got := task.Words("It's x-ray night, 2024 A.D.")
	want := []string{"it", "ray", "night"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func BenchmarkWordFrequency(b *testing.B) {
	text := strings.Repeat("The quick brown fox jumps over the lazy dog near the river bank.\n", 500)
	snap := snapshotOf(text)
	task := NewWordFrequency(DefaultFrequencyOptions())
	b.ResetTimer()
	for b.Loop() {
		if _, err := task.Run(context.Background(), snap); err != nil {
			b.Fatal(err)
		}
	}
}

func TestDetectTags(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Tag
	}{
		{"colon", "TODO: fix the ending", []Tag{{Kind: TagTodo, Offset: 0, Length: 20, Content: "fix the ending"}}},
		{"no colon", "todo rewrite", []Tag{{Kind: TagTodo, Offset: 0, Length: 12, Content: "rewrite"}}},
		{"mid sentence", "She said Note:  check later ", []Tag{{Kind: TagNote, Offset: 9, Length: 19, Content: "check later"}}},
		{"no space after colon", "WARNING:the end", []Tag{{Kind: TagWarning, Offset: 0, Length: 15, Content: "the end"}}},
		{"keyword only", "Check", []Tag{{Kind: TagCheck, Offset: 0, Length: 5, Content: ""}}},
		{"rune offsets", "Zażółć TODO x", []Tag{{Kind: TagTodo, Offset: 7, Length: 6, Content: "x"}}},
		{"line separator", "NOTE: a\u2028FIX: b", []Tag{
			{Kind: TagNote, Offset: 0, Length: 7, Content: "a"},
			{Kind: TagFix, Offset: 8, Length: 6, Content: "b"},
		}},
		{"inside words", "a notebook, a prefix: x, a fixture", nil},
		{"plain", "nothing to see", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectTags(0, tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d tags, got %+v", len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("tag %d: expected %+v, got %+v", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestTagDetector(t *testing.T) {
	snap := snapshotOf("Intro\nTODO: one\nnothing here\ncheck: two\u2028todo three")
	report, err := TagDetector{}.Run(context.Background(), snap)
	if err != nil {
		t.Fatal(err)
	}
	r := report.(TagReport)

	if len(r.Tags) != 3 {
		t.Fatalf("expected 3 tags, got %+v", r.Tags)
	}
	wantParagraphs := []int{1, 3, 3}
	for i, tag := range r.Tags {
		if tag.Paragraph != wantParagraphs[i] {
			t.Errorf("tag %d: expected paragraph %d, got %d", i, wantParagraphs[i], tag.Paragraph)
		}
	}
	if got := r.InParagraph(3); len(got) != 2 || got[0].Kind != TagCheck || got[1].Content != "three" {
		t.Errorf("unexpected paragraph 3 tags %+v", got)
	}
	if got := r.OfKind(TagTodo); len(got) != 2 {
		t.Errorf("expected 2 TODO tags, got %+v", got)
	}
	if counts := r.Counts(); counts[TagCheck] != 1 || counts[TagNote] != 0 {
		t.Errorf("unexpected counts %v", counts)
	}

	out, err := r.JSON()
	if err != nil {
		t.Fatal(err)
	}
	if n := gjson.GetBytes(out, "tags.#").Int(); n != 3 {
		t.Errorf("expected 3 encoded tags, got %d in %s", n, out)
	}
	if kind := gjson.GetBytes(out, "tags.1.kind").String(); kind != "CHECK" {
		t.Errorf("expected CHECK, got %q", kind)
	}
	if off := gjson.GetBytes(out, "tags.2.offset").Int(); off != 11 {
		t.Errorf("expected offset 11, got %d", off)
	}

	empty, err := TagReport{}.JSON()
	if err != nil || string(empty) != `{"tags":[]}` {
		t.Errorf("unexpected empty report %s, %v", empty, err)
	}
}

func TestTagDetectorCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (TagDetector{}).Run(ctx, snapshotOf("TODO: x")); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
