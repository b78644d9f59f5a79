package tracker_test

import (
	"slices"
	"testing"

	"github.com/padseq/padseq"
	"github.com/padseq/padseq/tracker"
)

func newSequencer(m *tracker.Model) (*tracker.PatternSequencer, *padseq.ManualClock, *recInstrument, *tracker.Broker) {
	clock := &padseq.ManualClock{}
	inst := &recInstrument{}
	broker := tracker.NewBroker()
	return tracker.NewPatternSequencer(m, clock, recInstruments{"fm": inst}, broker, 0), clock, inst, broker
}

func markers(b *tracker.Broker) []int {
	var ret []int
	for {
		select {
		case msg := <-b.ToModel:
			if mm, ok := msg.Data.(tracker.MarkerMoved); ok {
				ret = append(ret, mm.Position)
			}
		default:
			return ret
		}
	}
}

func TestSequencerPlaysColumns(t *testing.T) {
	m := testModel()
	p := m.Patterns[0]
	p.Toggle(0, tracker.Cell{X: 0, Y: 15})
	p.Toggle(0, tracker.Cell{X: 1, Y: 14})
	s, _, inst, broker := newSequencer(m)
	if err := s.Play(0, 0); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if !p.Playing || p.PlayStartTime == nil {
		t.Fatalf("pattern should be playing")
	}
	s.Tick(0.125)
	if len(inst.starts) != 1 {
		t.Fatalf("got %d starts after the first tick, want 1", len(inst.starts))
	}
	first := inst.starts[0]
	if first.ID != "pattern-0-0-15" || first.Pitch != 0 || first.StartTime != 0.125 || first.StopTime != 0.25 {
		t.Fatalf("first note = %+v", first)
	}
	if first.Gain != 1.0/3 {
		t.Fatalf("gain = %v, want the pattern volume", first.Gain)
	}
	s.Tick(0.25)
	if len(inst.stops) != 1 || inst.stops[0].ID != "pattern-0-0-15" || inst.stops[0].Time != 0.25 {
		t.Fatalf("stops = %+v", inst.stops)
	}
	if len(inst.starts) != 2 || inst.starts[1].Pitch != 2 {
		t.Fatalf("second column should play the second scale degree, starts = %+v", inst.starts)
	}
	if got := markers(broker); !slices.Equal(got, []int{0, 1}) {
		t.Fatalf("markers = %v, want [0 1]", got)
	}
}

func TestSequencerMarkerWraps(t *testing.T) {
	m := testModel()
	p := m.Patterns[0]
	p.SetXLength(2)
	s, _, _, broker := newSequencer(m)
	s.Play(0, 0)
	s.Tick(0.125)
	s.Tick(0.25)
	s.Tick(0.375)
	if got := markers(broker); !slices.Equal(got, []int{0, 1, 0}) {
		t.Fatalf("markers = %v, want [0 1 0]", got)
	}
}

func TestSequencerStop(t *testing.T) {
	m := testModel()
	p := m.Patterns[0]
	p.Toggle(0, tracker.Cell{X: 0, Y: 0})
	s, clock, inst, _ := newSequencer(m)
	s.Play(0, 0)
	clock.Set(0.2)
	s.Tick(0.2)
	if err := s.Stop(0); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if p.Playing || p.MarkerPosition != 0 || len(p.ActiveNotes) != 0 {
		t.Fatalf("stopped pattern = %+v", p)
	}
	if len(inst.stops) != 1 || inst.stops[0].Time != 0.2 {
		t.Fatalf("sounding note should stop now, stops = %+v", inst.stops)
	}
	s.Tick(1)
	if len(inst.starts) != 1 {
		t.Fatalf("stopped pattern kept playing")
	}
	if err := s.Stop(3); err == nil {
		t.Fatalf("stopping a missing pattern should fail")
	}
}

func TestSequencerBeatRows(t *testing.T) {
	m := testModel()
	id := m.Patterns.AddBeat()
	p := m.Patterns[id]
	p.Toggle(id, tracker.Cell{X: 0, Y: tracker.BeatRows - 1})
	p.Toggle(id, tracker.Cell{X: 0, Y: 0})
	s, _, inst, _ := newSequencer(m)
	s.Play(id, 0)
	s.Tick(0.125)
	got := []float64{inst.starts[0].Pitch, inst.starts[1].Pitch}
	if want := []float64{-17, -24}; !slices.Equal(got, want) {
		t.Fatalf("beat pitches = %v, want %v", got, want)
	}
}

func TestSequencerStopAll(t *testing.T) {
	m := testModel()
	m.Patterns.AddBeat()
	s, _, _, _ := newSequencer(m)
	s.Play(0, 0)
	s.Play(1, 0)
	s.StopAll()
	for i, p := range m.Patterns {
		if p.Playing {
			t.Fatalf("pattern %d still playing", i)
		}
	}
	if err := s.Delete(0); err != nil || len(m.Patterns) != 1 {
		t.Fatalf("Delete: %v, %d patterns left", err, len(m.Patterns))
	}
}

func TestSequencerTempoChangeAtNextTick(t *testing.T) {
	m := testModel()
	p := m.Patterns[0]
	p.Toggle(0, tracker.Cell{X: 0, Y: 15})
	p.Toggle(0, tracker.Cell{X: 1, Y: 15})
	s, _, inst, _ := newSequencer(m)
	if err := s.Play(0, 0); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	s.Tick(0.125)
	m.BPM = 60
	s.Tick(0.25)
	if len(inst.starts) != 2 {
		t.Fatalf("got %d starts, want 2", len(inst.starts))
	}
	if second := inst.starts[1]; second.StartTime != 0.25 || second.StopTime != 0.5 {
		t.Fatalf("tick after the change at [%v, %v], want [0.25, 0.5]", second.StartTime, second.StopTime)
	}
}
