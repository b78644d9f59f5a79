package tracker

import (
	"fmt"
	"slices"
)

type (
	// Cell is a position in a pattern grid: X is the step, Y the row. Row 0
	// is the top row.
	Cell struct{ X, Y int }

	// ActiveNote is a note a pattern has toggled on, keyed by a position
	// derived id.
	ActiveNote struct {
		ID         string
		Instrument string
		Cell       Cell
	}

	// Pattern is a step grid. XLength is the number of steps, YLength the
	// number of rows. Beat patterns play a fixed pitch per row instead of the
	// scale.
	Pattern struct {
		Steps          map[Cell]struct{}
		ActiveNotes    []ActiveNote
		MarkerPosition int
		Playing        bool
		PlayStartTime  *float64
		Instrument     string
		Volume         float64
		XLength        int
		YLength        int
		Beat           bool
	}

	// Patterns is the list of patterns; pattern ids are indices into it.
	Patterns []*Pattern
)

// BeatRows is the number of rows in a beat pattern.
const BeatRows = 8

func newPattern(beat bool) *Pattern {
	p := &Pattern{
		Steps:      map[Cell]struct{}{},
		Instrument: "fm",
		Volume:     1.0 / 3,
		XLength:    8,
		YLength:    16,
		Beat:       beat,
	}
	if beat {
		p.YLength = BeatRows
	}
	return p
}

func (ps *Patterns) AddSynth() int {
	*ps = append(*ps, newPattern(false))
	return len(*ps) - 1
}

func (ps *Patterns) AddBeat() int {
	*ps = append(*ps, newPattern(true))
	return len(*ps) - 1
}

// Get returns the pattern with the id, or an error if there is none.
func (ps Patterns) Get(id int) (*Pattern, error) {
	if id < 0 || id >= len(ps) {
		return nil, fmt.Errorf("no pattern %d", id)
	}
	return ps[id], nil
}

// Delete removes the pattern; the ids of the following patterns shift down.
func (ps *Patterns) Delete(id int) error {
	if _, err := ps.Get(id); err != nil {
		return err
	}
	*ps = slices.Delete(*ps, id, id+1)
	return nil
}

// NoteID is the id of the note started by a cell of the pattern.
func NoteID(patternID int, c Cell) string {
	return fmt.Sprintf("pattern-%d-%d-%d", patternID, c.X, c.Y)
}

// Toggle flips the cell: it is removed from Steps if present, added
// otherwise, and the matching active note is removed or appended.
func (p *Pattern) Toggle(patternID int, c Cell) {
	id := NoteID(patternID, c)
	if _, ok := p.Steps[c]; ok {
		delete(p.Steps, c)
		p.ActiveNotes = slices.DeleteFunc(p.ActiveNotes, func(n ActiveNote) bool { return n.ID == id })
		return
	}
	if p.Steps == nil {
		p.Steps = map[Cell]struct{}{}
	}
	p.Steps[c] = struct{}{}
	p.ActiveNotes = append(p.ActiveNotes, ActiveNote{ID: id, Instrument: p.Instrument, Cell: c})
}

func (p *Pattern) Has(c Cell) bool {
	_, ok := p.Steps[c]
	return ok
}

// Column returns the toggled cells of step x, top row first.
func (p *Pattern) Column(x int) []Cell {
	var ret []Cell
	for c := range p.Steps {
		if c.X == x {
			ret = append(ret, c)
		}
	}
	slices.SortFunc(ret, func(a, b Cell) int { return a.Y - b.Y })
	return ret
}

// SetMarker moves the playhead, wrapping it into [0, XLength).
func (p *Pattern) SetMarker(value int) {
	if p.XLength <= 0 {
		p.MarkerPosition = 0
		return
	}
	p.MarkerPosition = (value%p.XLength + p.XLength) % p.XLength
}

// SetXLength changes the number of steps, keeping the marker in range.
// Cells beyond the new length are kept, so that growing the pattern back
// restores them.
func (p *Pattern) SetXLength(n int) error {
	if n <= 0 {
		return fmt.Errorf("pattern length must be positive, got %d", n)
	}
	p.XLength = n
	p.SetMarker(p.MarkerPosition)
	return nil
}

// markStopped resets the play state.
func (p *Pattern) markStopped() {
	p.Playing = false
	p.ActiveNotes = nil
	p.MarkerPosition = 0
}
