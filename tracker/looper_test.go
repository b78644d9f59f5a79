package tracker_test

import (
	"fmt"
	"math"
	"slices"
	"testing"

	"github.com/padseq/padseq"
	"github.com/padseq/padseq/seq"
	"github.com/padseq/padseq/tracker"
)

type eventLog []string

func (l *eventLog) start(e padseq.NoteEvent) { *l = append(*l, "start "+e.ID) }
func (l *eventLog) stop(e padseq.NoteEvent)  { *l = append(*l, "stop "+e.ID) }

func events(times ...[2]float64) seq.Iterator[padseq.NoteEvent] {
	var ret []padseq.NoteEvent
	for i, t := range times {
		ret = append(ret, padseq.NoteEvent{ID: fmt.Sprint("e", i), StartTime: t[0], StopTime: t[1], Index: i})
	}
	return seq.FromSlice(ret)
}

func TestNoteDuration(t *testing.T) {
	if d := tracker.NoteDuration(120); d != 0.125 {
		t.Fatalf("NoteDuration(120) = %v, want 0.125", d)
	}
	if s := tracker.NextNoteStartTime(0.125, 0.30); s != 0.375 {
		t.Fatalf("NextNoteStartTime(0.125, 0.30) = %v, want 0.375", s)
	}
}

func TestNextNoteStartTime(t *testing.T) {
	for _, d := range []float64{0.125, 0.1, 1.0 / 3, 0.2} {
		for _, now := range []float64{-1, 0, 0.05, 0.1, 0.125, 0.25, 0.3, 1, 7.77, 100} {
			s := tracker.NextNoteStartTime(d, now)
			if s <= now {
				t.Fatalf("NextNoteStartTime(%v, %v) = %v, should be after the current time", d, now, s)
			}
			if s < 0 {
				t.Fatalf("NextNoteStartTime(%v, %v) = %v is negative", d, now, s)
			}
			k := math.Round(s / d)
			if math.Abs(s/d-k) > 1e-9 {
				t.Fatalf("NextNoteStartTime(%v, %v) = %v is off the grid", d, now, s)
			}
			if k > 0 && (k-1)*d > now {
				t.Fatalf("NextNoteStartTime(%v, %v) = %v skips a grid line", d, now, s)
			}
		}
	}
	if s := tracker.NextNoteStartTime(0.25, 0.25); s != 0.5 {
		t.Fatalf("a time on the grid should give the next line, got %v", s)
	}
}

func TestLooperTieStopsFirst(t *testing.T) {
	var log eventLog
	l := tracker.NewLooper(&padseq.ManualClock{}, 0)
	l.Start(events([2]float64{0, 1}, [2]float64{1, 2}), log.start, log.stop)
	l.Tick(1.5)
	if want := []string{"start e0", "stop e0", "start e1"}; !slices.Equal(log, want) {
		t.Fatalf("got %v, want %v", log, want)
	}
	if !l.Running() {
		t.Fatalf("looper should be running while e1 sounds")
	}
	l.Tick(2)
	if want := "stop e1"; log[len(log)-1] != want {
		t.Fatalf("last event %v, want %v", log[len(log)-1], want)
	}
	if l.Running() {
		t.Fatalf("looper should finish when the sequence ends and nothing sounds")
	}
}

func TestLooperLookaheadIsLazy(t *testing.T) {
	pulls := 0
	it := seq.Map(func(k int) padseq.NoteEvent {
		pulls++
		return padseq.NoteEvent{ID: fmt.Sprint(k), StartTime: float64(k+1) * 0.125, StopTime: float64(k+2) * 0.125}
	}, seq.Range(0, seq.Infinity))
	var log eventLog
	l := tracker.NewLooper(&padseq.ManualClock{}, 0.1)
	l.Start(it, log.start, log.stop)
	l.Tick(0)
	if len(log) != 0 || pulls != 1 {
		t.Fatalf("Tick(0) fired %v and pulled %d events, want nothing and 1 pull", log, pulls)
	}
	l.Tick(1)
	starts, stops := 0, 0
	for _, s := range log {
		if s[:5] == "start" {
			starts++
		} else {
			stops++
		}
	}
	if starts != 8 || stops != 7 || pulls != 9 {
		t.Fatalf("got %d starts, %d stops, %d pulls; want 8, 7, 9", starts, stops, pulls)
	}
}

func TestLooperStop(t *testing.T) {
	clock := &padseq.ManualClock{}
	var stops []padseq.NoteEvent
	l := tracker.NewLooper(clock, 0)
	l.Start(events([2]float64{0, 1}, [2]float64{1, 2}), func(padseq.NoteEvent) {}, func(e padseq.NoteEvent) { stops = append(stops, e) })
	l.Tick(0)
	clock.Set(0.5)
	l.Stop()
	l.Stop()
	l.Tick(5)
	if len(stops) != 1 {
		t.Fatalf("got %d stops, want exactly 1", len(stops))
	}
	if stops[0].ID != "e0" || stops[0].StopTime != 0.5 {
		t.Fatalf("stop = %+v, want e0 at 0.5", stops[0])
	}
	if l.Running() {
		t.Fatalf("looper should be idle after Stop")
	}
}

func TestLooperStopBeforeStartTime(t *testing.T) {
	clock := &padseq.ManualClock{}
	clock.Set(1.5)
	var stops []padseq.NoteEvent
	l := tracker.NewLooper(clock, 1)
	l.Start(events([2]float64{2, 3}), func(padseq.NoteEvent) {}, func(e padseq.NoteEvent) { stops = append(stops, e) })
	l.Tick(1.5)
	l.Stop()
	if len(stops) != 1 || stops[0].StopTime != 2 {
		t.Fatalf("an early started event should stop at its start time, got %+v", stops)
	}
}

func TestLooperStartWhileRunningSwapsOnStart(t *testing.T) {
	var first, second eventLog
	l := tracker.NewLooper(&padseq.ManualClock{}, 0)
	l.Start(events([2]float64{0, 1}, [2]float64{1, 2}), first.start, first.stop)
	l.Tick(0)
	l.Start(events([2]float64{5, 6}), second.start, second.stop)
	l.Tick(1)
	if want := []string{"start e0", "stop e0"}; !slices.Equal(first, want) {
		t.Fatalf("first callbacks got %v, want %v", first, want)
	}
	if want := []string{"start e1"}; !slices.Equal(second, want) {
		t.Fatalf("swapped onStart got %v, want %v", second, want)
	}
}

func TestLooperRestart(t *testing.T) {
	var log eventLog
	l := tracker.NewLooper(&padseq.ManualClock{}, 0)
	l.Start(events([2]float64{0, 1}), log.start, log.stop)
	l.Stop()
	l.Start(events([2]float64{3, 4}), log.start, log.stop)
	l.Tick(3)
	if want := []string{"start e0"}; !slices.Equal(log, want) {
		t.Fatalf("restarted looper got %v, want %v", log, want)
	}
}

func TestLooperLengthIsReadWhenEventFires(t *testing.T) {
	length := 1.0
	var starts []padseq.NoteEvent
	l := tracker.NewLooper(&padseq.ManualClock{}, 0)
	l.Length = func() float64 { return length }
	l.Start(events([2]float64{0, 100}, [2]float64{50, 60}, [2]float64{70, 80}), func(e padseq.NoteEvent) { starts = append(starts, e) }, func(padseq.NoteEvent) {})
	l.Tick(0)
	length = 2
	l.Tick(3)
	if len(starts) != 3 {
		t.Fatalf("got %d starts, want 3", len(starts))
	}
	want := [][2]float64{{0, 1}, {1, 3}, {3, 5}}
	for i, e := range starts {
		if e.StartTime != want[i][0] || e.StopTime != want[i][1] {
			t.Fatalf("event %d at [%v, %v], want %v", i, e.StartTime, e.StopTime, want[i])
		}
	}
}
