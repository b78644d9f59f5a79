package tracker

import (
	"fmt"
	"slices"

	"github.com/padseq/padseq"
	"github.com/padseq/padseq/seq"
)

type (
	// PatternSequencer plays the patterns of the model. Every playing pattern
	// has its own Looper over an infinite sequence of sixteenth note ticks;
	// each tick moves the marker and plays the toggled cells of that column
	// until the tick ends.
	PatternSequencer struct {
		model       *Model
		clock       padseq.Clock
		instruments Instruments
		broker      *Broker
		lookahead   float64
		players     map[*Pattern]*patternPlayer
	}

	patternPlayer struct {
		looper  *Looper
		started bool
		notes   map[int][]startedNote // by tick index
	}

	startedNote struct {
		id, instrument string
	}
)

// beatBasePitch is the pitch of the bottom row of a beat pattern.
const beatBasePitch = -24

func NewPatternSequencer(model *Model, clock padseq.Clock, instruments Instruments, broker *Broker, lookahead float64) *PatternSequencer {
	return &PatternSequencer{
		model:       model,
		clock:       clock,
		instruments: instruments,
		broker:      broker,
		lookahead:   lookahead,
		players:     map[*Pattern]*patternPlayer{},
	}
}

// Play starts the pattern at the first grid line after currentTime. Playing
// a pattern that is already playing does nothing.
func (s *PatternSequencer) Play(patternID int, currentTime float64) error {
	p, err := s.model.Patterns.Get(patternID)
	if err != nil {
		return err
	}
	if _, ok := s.players[p]; ok {
		return nil
	}
	pl := &patternPlayer{looper: NewLooper(s.clock, s.lookahead), notes: map[int][]startedNote{}}
	pl.looper.Length = func() float64 { return NoteDuration(s.model.BPM) }
	start := NextNoteStartTime(NoteDuration(s.model.BPM), currentTime)
	events := seq.Map(func(n int) padseq.NoteEvent {
		return padseq.NoteEvent{ID: fmt.Sprintf("tick-%d", n), StartTime: start, Index: n}
	}, seq.Range(0, seq.Infinity))
	pl.looper.Start(events, func(e padseq.NoteEvent) { s.onTick(p, pl, e) }, func(e padseq.NoteEvent) { s.onTickEnd(pl, e) })
	s.players[p] = pl
	p.Playing = true
	p.PlayStartTime = &currentTime
	return nil
}

// Stop stops all the notes of the pattern and resets its marker.
func (s *PatternSequencer) Stop(patternID int) error {
	p, err := s.model.Patterns.Get(patternID)
	if err != nil {
		return err
	}
	s.stop(p)
	return nil
}

func (s *PatternSequencer) stop(p *Pattern) {
	if pl, ok := s.players[p]; ok {
		delete(s.players, p)
		pl.looper.Stop()
	}
	p.markStopped()
}

// StopAll stops every pattern, playing or not.
func (s *PatternSequencer) StopAll() {
	for _, p := range s.model.Patterns {
		s.stop(p)
	}
}

// Delete stops and removes the pattern.
func (s *PatternSequencer) Delete(patternID int) error {
	if err := s.Stop(patternID); err != nil {
		return err
	}
	return s.model.Patterns.Delete(patternID)
}

func (s *PatternSequencer) Tick(now float64) {
	for _, pl := range s.players {
		pl.looper.Tick(now)
	}
}

func (s *PatternSequencer) onTick(p *Pattern, pl *patternPlayer, e padseq.NoteEvent) {
	if pl.started {
		p.SetMarker(p.MarkerPosition + 1)
	} else {
		pl.started = true
		p.SetMarker(p.MarkerPosition)
	}
	id := slices.Index(s.model.Patterns, p)
	TrySend(s.broker.toModel(), MsgToModel{Data: MarkerMoved{PatternID: id, Position: p.MarkerPosition}})
	inst, ok := s.instruments.Instrument(p.Instrument)
	if !ok {
		s.broker.SendAlert("UnknownInstrument", fmt.Sprintf("pattern %d: no instrument %q", id, p.Instrument), Warning)
		return
	}
	for _, c := range p.Column(p.MarkerPosition) {
		if c.Y < 0 || c.Y >= p.YLength {
			continue
		}
		pitch, err := s.rowPitch(p, c.Y)
		if err != nil {
			s.broker.SendAlert("PatternError", err.Error(), Error)
			return
		}
		noteID := NoteID(id, c)
		inst.InputNoteStart(padseq.NoteStart{
			ID:         noteID,
			Pitch:      pitch,
			Frequency:  padseq.PitchToFrequency(pitch),
			Gain:       p.Volume,
			Instrument: p.Instrument,
			StartTime:  e.StartTime,
			StopTime:   e.StopTime,
		})
		pl.notes[e.Index] = append(pl.notes[e.Index], startedNote{id: noteID, instrument: p.Instrument})
	}
}

func (s *PatternSequencer) onTickEnd(pl *patternPlayer, e padseq.NoteEvent) {
	for _, n := range pl.notes[e.Index] {
		if inst, ok := s.instruments.Instrument(n.instrument); ok {
			inst.InputNoteStop(padseq.NoteStop{ID: n.id, Time: e.StopTime})
		}
	}
	delete(pl.notes, e.Index)
}

// rowPitch returns the pitch of row y: the top row of a synth pattern is the
// highest degree of the scale, beat pattern rows are semitones apart.
func (s *PatternSequencer) rowPitch(p *Pattern, y int) (float64, error) {
	i := p.YLength - 1 - y
	if p.Beat {
		return float64(beatBasePitch + i), nil
	}
	pitch, err := padseq.PitchFromScaleIndex(s.model.ScaleDegrees(), i)
	if err != nil {
		return 0, err
	}
	return float64(pitch + s.model.RootNote), nil
}
