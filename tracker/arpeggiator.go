package tracker

import (
	"fmt"
	"strconv"

	"github.com/padseq/padseq"
	"github.com/padseq/padseq/seq"
)

type (
	// Instruments resolves instrument names to instruments.
	Instruments interface {
		Instrument(name string) (padseq.Instrument, bool)
	}

	// Arpeggiator turns held notes into repeating, tempo locked runs over the
	// arpeggiated scale. Every held voice id has its own Looper. Tempo, octave
	// and root note are read from the model when each note fires.
	Arpeggiator struct {
		model       *Model
		clock       padseq.Clock
		instruments Instruments
		broker      *Broker
		lookahead   float64
		voices      map[string]*Looper
	}
)

// arpeggioIDCycle is how many distinct ids an arpeggio cycles through.
const arpeggioIDCycle = 8

func NewArpeggiator(model *Model, clock padseq.Clock, instruments Instruments, broker *Broker, lookahead float64) *Arpeggiator {
	return &Arpeggiator{
		model:       model,
		clock:       clock,
		instruments: instruments,
		broker:      broker,
		lookahead:   lookahead,
		voices:      map[string]*Looper{},
	}
}

// NoteOn starts arpeggiating pitch for the voice id. If the voice is already
// arpeggiating, it is retargeted to the new pitch and modulation without
// resetting its timing.
func (a *Arpeggiator) NoteOn(id string, pitch, modulation float64) {
	onStart := func(e padseq.NoteEvent) {
		p := pitch + float64(e.Pitch+12*a.model.Pad.Octave+a.model.RootNote)
		inst, ok := a.resolve(e.Instrument)
		if !ok {
			return
		}
		inst.InputNoteStart(padseq.NoteStart{
			ID:         e.ID,
			Pitch:      p,
			Frequency:  padseq.PitchToFrequency(p),
			Gain:       padseq.ModulationGain(modulation),
			Instrument: e.Instrument,
			StartTime:  e.StartTime,
			StopTime:   e.StopTime,
		})
	}
	if l, ok := a.voices[id]; ok && l.Running() {
		l.Start(nil, onStart, nil)
		return
	}
	steps, err := padseq.ArpeggiatedScale(a.model.ScaleDegrees(), a.model.Pad.ArpeggiatorPattern)
	if err != nil {
		a.broker.SendAlert("ArpeggiatorError", err.Error(), Error)
		return
	}
	l := NewLooper(a.clock, a.lookahead)
	l.Length = func() float64 { return NoteDuration(a.model.BPM) }
	l.Start(a.events(id, pitch, steps), onStart, a.stop)
	a.voices[id] = l
}

// NoteOff stops the arpeggio of the voice, stopping its sounding note. The
// next NoteOn for the id starts from a fresh grid position.
func (a *Arpeggiator) NoteOff(id string) {
	l, ok := a.voices[id]
	if !ok {
		return
	}
	delete(a.voices, id)
	l.Stop()
}

// Stop stops all voices.
func (a *Arpeggiator) Stop() {
	for id := range a.voices {
		a.NoteOff(id)
	}
}

// Active reports if the voice is arpeggiating.
func (a *Arpeggiator) Active(id string) bool {
	_, ok := a.voices[id]
	return ok
}

func (a *Arpeggiator) Tick(now float64) {
	for id, l := range a.voices {
		l.Tick(now)
		if !l.Running() {
			delete(a.voices, id)
		}
	}
}

// events builds the infinite note stream of one voice: the arpeggiated steps
// cycled from the next grid line on, with ids cycling over arpeggioIDCycle
// values. The Looper times every note after the first.
func (a *Arpeggiator) events(id string, pitch float64, steps []int) seq.Iterator[padseq.NoteEvent] {
	start := NextNoteStartTime(NoteDuration(a.model.BPM), a.clock.Now())
	notes := seq.Map(func(step int) padseq.NoteEvent {
		return padseq.NoteEvent{Pitch: step, StartTime: start, Instrument: a.model.Pad.Instrument}
	}, seq.Cycle(seq.FromSlice(steps)))
	base := strconv.FormatFloat(pitch, 'g', -1, 64)
	return seq.ZipWith(func(e padseq.NoteEvent, i int) padseq.NoteEvent {
		e.ID = fmt.Sprintf("%s-%s-%d", id, base, i)
		e.Index = i
		return e
	}, notes, seq.Cycle(seq.Range(0, arpeggioIDCycle)))
}

func (a *Arpeggiator) stop(e padseq.NoteEvent) {
	if inst, ok := a.resolve(e.Instrument); ok {
		inst.InputNoteStop(padseq.NoteStop{ID: e.ID, Time: e.StopTime})
	}
}

func (a *Arpeggiator) resolve(name string) (padseq.Instrument, bool) {
	inst, ok := a.instruments.Instrument(name)
	if !ok {
		a.broker.SendAlert("UnknownInstrument", fmt.Sprintf("no instrument %q", name), Warning)
	}
	return inst, ok
}
