package layout

import (
	"testing"

	"github.com/dshills/quire/internal/engine/buffer"
	"github.com/dshills/quire/internal/engine/format"
)

var _ Source = (*buffer.Paragraph)(nil)

type fakeParagraph struct {
	id, rev uint64
	text    string
}

func (p *fakeParagraph) ID() uint64              { return p.id }
func (p *fakeParagraph) Revision() uint64        { return p.rev }
func (p *fakeParagraph) Text() string            { return p.text }
func (p *fakeParagraph) Formats() []format.Range { return nil }

func TestNewCache(t *testing.T) {
	cache := NewCache(NewEngine(unitMetrics{}), 0)
	if cache.Len() != 0 {
		t.Errorf("new cache should be empty, got size %d", cache.Len())
	}
	if stats := cache.Stats(); stats.MaxSize != DefaultMaxEntries {
		t.Errorf("expected max size %d, got %d", DefaultMaxEntries, stats.MaxSize)
	}
}

func TestCacheHit(t *testing.T) {
	cache := NewCache(NewEngine(unitMetrics{}), 10)
	p := &fakeParagraph{id: 1, text: "Hello"}

	first := cache.Get(p, 100)
	second := cache.Get(p, 100)
	if first != second {
		t.Error("second Get should return cached layout")
	}
	stats := cache.Stats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("expected 1 hit and 1 miss, got %+v", stats)
	}
	if stats.HitRate != 0.5 {
		t.Errorf("expected hit rate 0.5, got %v", stats.HitRate)
	}
}

func TestCacheRevisionInvalidates(t *testing.T) {
	cache := NewCache(NewEngine(unitMetrics{}), 10)
	p := &fakeParagraph{id: 1, text: "Hello"}

	first := cache.Get(p, 100)
	p.rev++
	p.text = "Hello there"
	second := cache.Get(p, 100)
	if first == second {
		t.Fatal("expected recomputation after revision change")
	}
	if second.Lines[0].Width != 11 {
		t.Errorf("expected new width 11, got %v", second.Lines[0].Width)
	}
	if cache.Len() != 1 {
		t.Errorf("expected the entry to be replaced, got %d entries", cache.Len())
	}
}

func TestCacheWidthInvalidates(t *testing.T) {
	cache := NewCache(NewEngine(unitMetrics{}), 10)
	p := &fakeParagraph{id: 1, text: "hello world"}

	if l := cache.Get(p, 100); l.LineCount() != 1 {
		t.Fatalf("expected 1 line, got %d", l.LineCount())
	}
	if _, ok := cache.Peek(p, 8); ok {
		t.Error("Peek should miss at a new width")
	}
	if l := cache.Get(p, 8); l.LineCount() != 2 {
		t.Errorf("expected 2 lines at width 8, got %d", l.LineCount())
	}
}

func TestCacheWithBufferParagraph(t *testing.T) {
	buf := buffer.NewBufferFromString("some text")
	cache := NewCache(NewEngine(unitMetrics{}), 10)

	p, err := buf.Paragraph(0)
	if err != nil {
		t.Fatal(err)
	}
	first := cache.Get(p, 0)
	if err := buf.InsertText(buffer.Pos(0, 9), " more"); err != nil {
		t.Fatal(err)
	}
	if _, ok := cache.Peek(p, 0); ok {
		t.Error("edit should make the cached layout stale")
	}
	if second := cache.Get(p, 0); second == first || second.Lines[0].End != 14 {
		t.Errorf("unexpected relayout %+v", second.Lines)
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	cache := NewCache(NewEngine(unitMetrics{}), 2)
	a := &fakeParagraph{id: 1, text: "a"}
	b := &fakeParagraph{id: 2, text: "b"}
	c := &fakeParagraph{id: 3, text: "c"}

	cache.Get(a, 10)
	cache.Get(b, 10)
	cache.Get(a, 10) // a is now more recent than b
	cache.Get(c, 10)

	if cache.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", cache.Len())
	}
	if _, ok := cache.Peek(b, 10); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := cache.Peek(a, 10); !ok {
		t.Error("a should still be cached")
	}
	if cache.Stats().Evictions != 1 {
		t.Errorf("expected 1 eviction, got %d", cache.Stats().Evictions)
	}
}

func TestCacheInvalidateAndClear(t *testing.T) {
	cache := NewCache(NewEngine(unitMetrics{}), 10)
	a := &fakeParagraph{id: 1, text: "a"}
	b := &fakeParagraph{id: 2, text: "b"}
	cache.Get(a, 10)
	cache.Get(b, 10)

	cache.Invalidate(1)
	if _, ok := cache.Peek(a, 10); ok {
		t.Error("a should be invalidated")
	}
	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("expected empty cache, got %d", cache.Len())
	}

	cache.ResetStats()
	if s := cache.Stats(); s.Hits != 0 || s.Misses != 0 {
		t.Errorf("expected reset stats, got %+v", s)
	}
}

func TestCacheSetEngine(t *testing.T) {
	cache := NewCache(NewEngine(unitMetrics{}), 10)
	p := &fakeParagraph{id: 1, text: "ab"}
	cache.Get(p, 0)

	cache.SetEngine(NewEngine(DefaultCellMetrics()))
	if cache.Len() != 0 {
		t.Error("SetEngine should clear the cache")
	}
	if l := cache.Get(p, 0); l.Lines[0].Width != 16 {
		t.Errorf("expected width from new engine, got %v", l.Lines[0].Width)
	}
}
