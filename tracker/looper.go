package tracker

import (
	"math"
	"slices"

	"github.com/padseq/padseq"
	"github.com/padseq/padseq/seq"
)

type (
	// Looper schedules the events of a lazy, possibly infinite sequence
	// against a clock. Each Tick fires the starts and stops that fall before
	// now + Lookahead, in time order, pulling at most one event from the
	// sequence beyond the window. Events fire early by up to Lookahead; their
	// StartTime and StopTime tell the instrument when the sound should happen.
	//
	// A Looper is idle until Start, running until Stop or until the sequence
	// is exhausted and all of its events have stopped. Callbacks may call
	// Start and Stop of the same Looper.
	//
	// If Length is set, the events are laid end to end: only the StartTime of
	// the first event is used, every later event starts when the previous one
	// stops, and StopTime is StartTime + Length() read when the event fires.
	Looper struct {
		Lookahead float64
		Length    func() float64

		clock    padseq.Clock
		cursor   *seq.Peekable[padseq.NoteEvent]
		onStart  func(padseq.NoteEvent)
		onStop   func(padseq.NoteEvent)
		sounding []padseq.NoteEvent // started but not yet stopped
		running  bool
		ticking  bool
		chained  bool    // an event has been taken in Length mode
		nextTime float64 // start of the next event in Length mode
	}

	// NoteFunc is called by a Looper when an event starts or stops.
	NoteFunc = func(padseq.NoteEvent)
)

// DefaultLookahead is how far ahead, in seconds, events are scheduled.
const DefaultLookahead = 0.1

func NewLooper(clock padseq.Clock, lookahead float64) *Looper {
	return &Looper{Lookahead: lookahead, clock: clock}
}

// Start begins scheduling the events of it. If the Looper is already running,
// only onStart is replaced: the timing continues and it is not consumed.
func (l *Looper) Start(it seq.Iterator[padseq.NoteEvent], onStart, onStop NoteFunc) {
	if l.running {
		l.onStart = onStart
		return
	}
	l.cursor = seq.NewPeekable(it)
	l.onStart, l.onStop = onStart, onStop
	l.sounding = l.sounding[:0]
	l.running = true
	l.chained = false
}

func (l *Looper) Running() bool { return l.running }

// Tick fires all starts and stops due before now + Lookahead. Stops that fall
// at the same time as a start fire first.
func (l *Looper) Tick(now float64) {
	if !l.running || l.ticking {
		return
	}
	l.ticking = true
	defer func() { l.ticking = false }()
	horizon := now + l.Lookahead
	for l.running {
		stop := l.nextStop()
		next, hasNext := l.peek()
		startDue := hasNext && next.StartTime <= horizon
		if stop >= 0 && l.sounding[stop].StopTime <= horizon && (!startDue || l.sounding[stop].StopTime <= next.StartTime) {
			e := l.sounding[stop]
			l.sounding = slices.Delete(l.sounding, stop, stop+1)
			l.onStop(e)
			continue
		}
		if !startDue {
			break
		}
		l.cursor.Next()
		if l.Length != nil {
			next.StopTime = next.StartTime + l.Length()
			l.nextTime, l.chained = next.StopTime, true
		}
		l.sounding = append(l.sounding, next)
		l.onStart(next)
	}
	if l.running && len(l.sounding) == 0 && !l.cursor.HasNext() {
		l.running = false
		l.cursor = nil
	}
}

func (l *Looper) peek() (padseq.NoteEvent, bool) {
	e, ok := l.cursor.Peek()
	if ok && l.chained {
		e.StartTime = l.nextTime
	}
	return e, ok
}

func (l *Looper) nextStop() int {
	ret := -1
	for i, e := range l.sounding {
		if ret < 0 || e.StopTime < l.sounding[ret].StopTime {
			ret = i
		}
	}
	return ret
}

// Stop cancels the schedule and stops every sounding event right away: their
// StopTime is moved to the current time if it was later. The rest of the
// sequence is discarded. Stopping an idle Looper does nothing.
func (l *Looper) Stop() {
	if !l.running {
		return
	}
	l.running = false
	l.cursor = nil
	now := l.clock.Now()
	sounding := l.sounding
	l.sounding = nil
	slices.SortStableFunc(sounding, func(a, b padseq.NoteEvent) int {
		return cmpFloat(a.StopTime, b.StopTime)
	})
	for _, e := range sounding {
		if now < e.StopTime {
			e.StopTime = math.Max(now, e.StartTime)
		}
		l.onStop(e)
	}
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// NoteDuration returns the length of a sixteenth note at the tempo.
func NoteDuration(bpm float64) float64 {
	return 60 / bpm / 4
}

// NextNoteStartTime returns the first multiple of duration that is strictly
// after currentTime.
func NextNoteStartTime(duration, currentTime float64) float64 {
	k := math.Max(0, math.Floor(currentTime/duration)+1)
	for k*duration <= currentTime {
		k++
	}
	for k > 0 && (k-1)*duration > currentTime {
		k--
	}
	return k * duration
}
