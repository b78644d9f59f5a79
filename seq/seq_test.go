package seq_test

import (
	"slices"
	"testing"

	"github.com/padseq/padseq/seq"
)

func TestRange(t *testing.T) {
	if got := seq.Collect(seq.Range(2, 6)); !slices.Equal(got, []int{2, 3, 4, 5}) {
		t.Fatalf("Range(2, 6) = %v, want [2 3 4 5]", got)
	}
	if got := seq.Collect(seq.Range(3, 3)); len(got) != 0 {
		t.Fatalf("Range(3, 3) should be empty, got %v", got)
	}
	got := seq.Collect(seq.Take(5, seq.Range(0, seq.Infinity)))
	if !slices.Equal(got, []int{0, 1, 2, 3, 4}) {
		t.Fatalf("infinite Range first 5 = %v", got)
	}
}

func TestCycle(t *testing.T) {
	got := seq.Collect(seq.Take(7, seq.Cycle(seq.Range(0, 3))))
	if want := []int{0, 1, 2, 0, 1, 2, 0}; !slices.Equal(got, want) {
		t.Fatalf("Cycle = %v, want %v", got, want)
	}
}

func TestCycleIsLazy(t *testing.T) {
	pulls := 0
	src := seq.Map(func(i int) int { pulls++; return i }, seq.Range(0, 100))
	c := seq.Cycle(src)
	c.Next()
	c.Next()
	if pulls != 2 {
		t.Fatalf("Cycle pulled %d elements for 2 outputs", pulls)
	}
}

func TestCycleEmptyPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("cycling an empty sequence should panic")
		}
	}()
	seq.Cycle(seq.Range(0, 0)).Next()
}

func TestZipWithStopsAtShorter(t *testing.T) {
	add := func(a, b int) int { return a + b }
	got := seq.Collect(seq.ZipWith(add, seq.Range(0, 3), seq.Range(10, seq.Infinity)))
	if want := []int{10, 12, 14}; !slices.Equal(got, want) {
		t.Fatalf("ZipWith = %v, want %v", got, want)
	}
	got = seq.Collect(seq.ZipWith(add, seq.Range(0, seq.Infinity), seq.Range(0, 2)))
	if len(got) != 2 {
		t.Fatalf("ZipWith with shorter second sequence gave %v", got)
	}
}

func TestZipWithInfinite(t *testing.T) {
	pair := func(a int, b string) string { return b + string(rune('0'+a)) }
	z := seq.ZipWith(pair, seq.Range(0, seq.Infinity), seq.Cycle(seq.FromSlice([]string{"a", "b"})))
	got := seq.Collect(seq.Take(4, z))
	if want := []string{"a0", "b1", "a2", "b3"}; !slices.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestIterateCallsLazily(t *testing.T) {
	calls := 0
	it := seq.Iterate(1, func(x int) int { calls++; return x * 2 })
	got := seq.Collect(seq.Take(4, it))
	if want := []int{1, 2, 4, 8}; !slices.Equal(got, want) {
		t.Fatalf("Iterate = %v, want %v", got, want)
	}
	if calls != 3 {
		t.Fatalf("f called %d times, want 3", calls)
	}
}

func TestPeekable(t *testing.T) {
	p := seq.NewPeekable(seq.Range(0, 2))
	if !p.HasNext() || !p.HasNext() {
		t.Fatalf("HasNext should be true and idempotent")
	}
	if v, _ := p.Peek(); v != 0 {
		t.Fatalf("Peek = %v, want 0", v)
	}
	p.Next()
	if v, ok := p.Next(); !ok || v != 1 {
		t.Fatalf("Next = %v, %v", v, ok)
	}
	if p.HasNext() {
		t.Fatalf("exhausted Peekable reports HasNext")
	}
}

func TestAll(t *testing.T) {
	sum := 0
	for v := range seq.All(seq.Range(1, seq.Infinity)) {
		if v > 4 {
			break
		}
		sum += v
	}
	if sum != 10 {
		t.Fatalf("sum = %d, want 10", sum)
	}
}
