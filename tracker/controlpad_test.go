package tracker_test

import (
	"math"
	"testing"

	"github.com/padseq/padseq"
	"github.com/padseq/padseq/tracker"
)

func newControlPad(m *tracker.Model) (*tracker.ControlPad, *tracker.Arpeggiator, *recInstrument) {
	inst := &recInstrument{}
	is := recInstruments{"fm": inst}
	broker := tracker.NewBroker()
	arp := tracker.NewArpeggiator(m, &padseq.ManualClock{}, is, broker, 0.1)
	return tracker.NewControlPad(m, is, arp, broker), arp, inst
}

func TestControlPadNote(t *testing.T) {
	m := testModel()
	c, _, _ := newControlPad(m)
	for _, tc := range []struct {
		x, want float64
	}{{0.5, 7}, {0, 0}, {-1, 0}, {1, 12}, {2, 12}} {
		n, err := c.Note(tc.x, 0)
		if err != nil {
			t.Fatalf("Note(%v) failed: %v", tc.x, err)
		}
		if n.Pitch != tc.want {
			t.Fatalf("Note(%v) pitch = %v, want %v", tc.x, n.Pitch, tc.want)
		}
	}
	m.Pad.NoScale = true
	if n, _ := c.Note(0.5, 0.25); n.Pitch != 6 || n.Modulation != 0.25 {
		t.Fatalf("unscaled note = %+v, want pitch 6 modulation 0.25", n)
	}
	m.Pad.Range = 2
	if n, _ := c.Note(0.5, 0); n.Pitch != 12 {
		t.Fatalf("two octave range note = %+v, want pitch 12", n)
	}
}

func TestControlPadHeldNote(t *testing.T) {
	m := testModel()
	m.Pad.Octave = 1
	c, _, inst := newControlPad(m)
	c.Input(0.5, 0, 1)
	if len(inst.starts) != 1 {
		t.Fatalf("got %d starts, want 1", len(inst.starts))
	}
	s := inst.starts[0]
	if s.ID != tracker.ControlPadID || s.Pitch != 19 || s.Gain != 0.5 || s.StartTime != 1 || !math.IsInf(s.StopTime, 1) {
		t.Fatalf("start = %+v", s)
	}
	c.Input(0.5, 0.5, 1.1)
	if len(inst.starts) != 1 || len(inst.updates) != 1 || inst.updates[0].Gain != 0.25 {
		t.Fatalf("moving vertically should update the note, starts %d updates %+v", len(inst.starts), inst.updates)
	}
	c.Input(0.1, 0.5, 1.2)
	if len(inst.stops) != 1 || len(inst.starts) != 2 || inst.starts[1].Pitch != 12 {
		t.Fatalf("a new pitch should retrigger, stops %+v starts %+v", inst.stops, inst.starts)
	}
	c.InputEnd(1.3)
	if c.Sounding() || len(inst.stops) != 2 || inst.stops[1].Time != 1.3 {
		t.Fatalf("InputEnd should stop the note, stops %+v", inst.stops)
	}
	c.InputEnd(1.4)
	if len(inst.stops) != 2 {
		t.Fatalf("a second InputEnd should do nothing")
	}
}

func TestControlPadPortamento(t *testing.T) {
	m := testModel()
	m.Pad.Portamento = true
	c, _, inst := newControlPad(m)
	c.Input(0.5, 0, 0)
	c.Input(0.1, 0, 0.1)
	if len(inst.starts) != 1 || len(inst.stops) != 0 || len(inst.updates) != 1 || inst.updates[0].Pitch != 0 {
		t.Fatalf("portamento should glide, starts %d stops %d updates %+v", len(inst.starts), len(inst.stops), inst.updates)
	}
}

func TestControlPadWithoutUpdater(t *testing.T) {
	m := testModel()
	m.Pad.Portamento = true
	c, _, inst := newControlPad(m)
	inst.noUpdate = true
	c.Input(0.5, 0, 0)
	c.Input(0.5, 0.5, 0.1)
	if len(inst.starts) != 1 {
		t.Fatalf("unchanged pitch should not retrigger")
	}
	c.Input(0.1, 0, 0.2)
	if len(inst.starts) != 2 || len(inst.stops) != 1 {
		t.Fatalf("changed pitch should retrigger when the instrument cannot update")
	}
}

func TestControlPadArpeggiator(t *testing.T) {
	m := testModel()
	m.Pad.Arpeggiator = true
	c, arp, inst := newControlPad(m)
	c.Input(0.5, 0, 0)
	if !arp.Active(tracker.ControlPadID) || c.Sounding() || len(inst.starts) != 0 {
		t.Fatalf("the pad should arpeggiate instead of holding a note")
	}
	c.InputEnd(0)
	if arp.Active(tracker.ControlPadID) {
		t.Fatalf("InputEnd should stop the arpeggio")
	}
}
