package tracker_test

import (
	"maps"
	"slices"
	"testing"

	"github.com/padseq/padseq/tracker"
)

func TestToggleTwiceRestoresPattern(t *testing.T) {
	m := testModel()
	p := m.Patterns[0]
	p.Toggle(0, tracker.Cell{X: 0, Y: 0})
	steps := maps.Clone(p.Steps)
	notes := slices.Clone(p.ActiveNotes)
	p.Toggle(0, tracker.Cell{X: 2, Y: 3})
	if !p.Has(tracker.Cell{X: 2, Y: 3}) || len(p.ActiveNotes) != 2 {
		t.Fatalf("toggle should add the cell and its note")
	}
	if p.ActiveNotes[1].ID != "pattern-0-2-3" {
		t.Fatalf("active note id = %v", p.ActiveNotes[1].ID)
	}
	p.Toggle(0, tracker.Cell{X: 2, Y: 3})
	if !maps.Equal(p.Steps, steps) {
		t.Fatalf("steps = %v, want %v", p.Steps, steps)
	}
	if !slices.Equal(p.ActiveNotes, notes) {
		t.Fatalf("active notes = %v, want %v", p.ActiveNotes, notes)
	}
}

func TestColumnIsSortedByRow(t *testing.T) {
	m := testModel()
	p := m.Patterns[0]
	for _, y := range []int{9, 2, 5} {
		p.Toggle(0, tracker.Cell{X: 1, Y: y})
	}
	p.Toggle(0, tracker.Cell{X: 2, Y: 0})
	want := []tracker.Cell{{X: 1, Y: 2}, {X: 1, Y: 5}, {X: 1, Y: 9}}
	if got := p.Column(1); !slices.Equal(got, want) {
		t.Fatalf("Column(1) = %v, want %v", got, want)
	}
}

func TestSetMarkerWraps(t *testing.T) {
	p := testModel().Patterns[0]
	for _, c := range []struct{ in, want int }{{3, 3}, {8, 0}, {9, 1}, {-1, 7}, {-9, 7}} {
		p.SetMarker(c.in)
		if p.MarkerPosition != c.want {
			t.Fatalf("SetMarker(%d) gave %d, want %d", c.in, p.MarkerPosition, c.want)
		}
	}
}

func TestSetXLength(t *testing.T) {
	p := testModel().Patterns[0]
	p.SetMarker(6)
	if err := p.SetXLength(0); err == nil {
		t.Fatalf("zero length should be an error")
	}
	if err := p.SetXLength(4); err != nil {
		t.Fatalf("SetXLength(4) failed: %v", err)
	}
	if p.MarkerPosition != 2 {
		t.Fatalf("marker = %d, want 2", p.MarkerPosition)
	}
}

func TestPatternsAddDelete(t *testing.T) {
	m := testModel()
	if id := m.Patterns.AddBeat(); id != 1 {
		t.Fatalf("AddBeat returned %d, want 1", id)
	}
	if p, _ := m.Patterns.Get(1); !p.Beat || p.YLength != tracker.BeatRows {
		t.Fatalf("beat pattern = %+v", p)
	}
	if err := m.Patterns.Delete(0); err != nil {
		t.Fatalf("Delete(0) failed: %v", err)
	}
	if p, _ := m.Patterns.Get(0); !p.Beat {
		t.Fatalf("following patterns should shift down")
	}
	if _, err := m.Patterns.Get(1); err == nil {
		t.Fatalf("Get of a deleted id should fail")
	}
	if err := m.Patterns.Delete(5); err == nil {
		t.Fatalf("Delete of a missing id should fail")
	}
}
