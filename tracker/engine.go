package tracker

import (
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/padseq/padseq"
)

type (
	// Engine owns the model and all the scheduling components and runs them
	// on one goroutine. Each loop iteration handles the pending messages and
	// then ticks every Looper with a single reading of the clock.
	Engine struct {
		Model       *Model
		Arpeggiator *Arpeggiator
		Patterns    *PatternSequencer
		Pad         *ControlPad

		clock        padseq.Clock
		instruments  Instruments
		broker       *Broker
		tickInterval time.Duration
		heldKeys     []NoteOn       // keys held for the arpeggiator, last pressed last
		directKeys   map[int]string // keys playing their own note, to their instrument
	}
)

// MIDIVoiceID is the arpeggiator voice played from a MIDI keyboard.
const MIDIVoiceID = "midi"

// midiKeyA4 is the MIDI key of pitch 0.
const midiKeyA4 = 69

func NewEngine(model *Model, clock padseq.Clock, instruments Instruments, broker *Broker, p Preferences) *Engine {
	lookahead := p.Lookahead
	if lookahead <= 0 {
		lookahead = DefaultLookahead
	}
	interval := p.TickInterval
	if interval <= 0 {
		interval = 25 * time.Millisecond
	}
	arp := NewArpeggiator(model, clock, instruments, broker, lookahead)
	return &Engine{
		Model:        model,
		Arpeggiator:  arp,
		Patterns:     NewPatternSequencer(model, clock, instruments, broker, lookahead),
		Pad:          NewControlPad(model, instruments, arp, broker),
		clock:        clock,
		instruments:  instruments,
		broker:       broker,
		tickInterval: interval,
		directKeys:   map[int]string{},
	}
}

// Run handles messages from the broker and ticks the schedulers until ctx is
// done or CloseEngine receives a value. All sounding notes are stopped before
// Run returns.
func (e *Engine) Run(ctx context.Context) {
	defer close(e.broker.FinishedEngine)
	ticker := time.NewTicker(e.tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			e.StopAll()
			return
		case <-e.broker.CloseEngine:
			e.StopAll()
			return
		case msg := <-e.broker.ToEngine:
			e.Handle(msg)
		case <-ticker.C:
		}
		e.Tick()
	}
}

// Tick reads the clock once and fires everything that is due.
func (e *Engine) Tick() {
	now := e.clock.Now()
	e.Arpeggiator.Tick(now)
	e.Patterns.Tick(now)
}

// StopAll stops the pad, the arpeggios and all patterns.
func (e *Engine) StopAll() {
	now := e.clock.Now()
	e.Pad.InputEnd(now)
	e.stopKeys(now)
	e.Arpeggiator.Stop()
	e.Patterns.StopAll()
}

// Handle applies one message. Errors are reported as alerts.
func (e *Engine) Handle(msg any) {
	now := e.clock.Now()
	var err error
	switch m := msg.(type) {
	case PadInput:
		e.Pad.Input(m.XRatio, m.YRatio, now)
	case PadInputEnd:
		e.Pad.InputEnd(now)
	case NoteOn:
		e.noteOn(m, now)
	case NoteOff:
		e.noteOff(m, now)
	case ToggleCell:
		var p *Pattern
		if p, err = e.Model.Patterns.Get(m.PatternID); err == nil {
			p.Toggle(m.PatternID, Cell{m.X, m.Y})
		}
	case PlayPattern:
		t := m.CurrentTime
		if t == 0 {
			t = now
		}
		err = e.Patterns.Play(m.PatternID, t)
	case StopPattern:
		err = e.Patterns.Stop(m.PatternID)
	case StopAllPatterns:
		e.Patterns.StopAll()
	case DeletePattern:
		err = e.Patterns.Delete(m.PatternID)
	case AddPattern:
		if m.Beat {
			e.Model.Patterns.AddBeat()
		} else {
			e.Model.Patterns.AddSynth()
		}
	case SetMarker:
		var p *Pattern
		if p, err = e.Model.Patterns.Get(m.PatternID); err == nil {
			p.SetMarker(m.Value)
		}
	case SetPatternInstrument:
		var p *Pattern
		if p, err = e.Model.Patterns.Get(m.PatternID); err == nil {
			p.Instrument = m.Instrument
		}
	case SetPatternVolume:
		var p *Pattern
		if p, err = e.Model.Patterns.Get(m.PatternID); err == nil {
			p.Volume = m.Volume
		}
	case SetPatternXLength:
		var p *Pattern
		if p, err = e.Model.Patterns.Get(m.PatternID); err == nil {
			err = p.SetXLength(m.XLength)
		}
	case SetActiveNotes:
		var p *Pattern
		if p, err = e.Model.Patterns.Get(m.PatternID); err == nil {
			p.ActiveNotes = slices.Clone(m.Notes)
		}
	case SetBPM:
		if !(m.BPM > 0) || math.IsInf(m.BPM, 1) {
			err = fmt.Errorf("invalid tempo %v", m.BPM)
		} else {
			e.Model.BPM = m.BPM
		}
	case SetScale:
		if _, ok := padseq.Scales[m.Scale]; !ok {
			err = fmt.Errorf("unknown scale %q", m.Scale)
		} else {
			e.Model.Scale = m.Scale
		}
	case SetRootNote:
		e.Model.RootNote = m.RootNote
	case SetPad:
		e.Model.Pad = m.Pad
	case SetInstrument:
		e.Model.Pad.Instrument = m.Instrument
	default:
		err = fmt.Errorf("unknown message %T", msg)
	}
	if err != nil {
		e.broker.SendAlert("EngineError", err.Error(), Warning)
	}
}

// noteOn plays a MIDI key. With the arpeggiator on, the most recently pressed
// held key is arpeggiated; otherwise every key plays its own note.
func (e *Engine) noteOn(m NoteOn, now float64) {
	if m.Velocity == 0 {
		e.noteOff(NoteOff{Channel: m.Channel, Key: m.Key}, now)
		return
	}
	if e.Model.Pad.Arpeggiator {
		e.heldKeys = append(e.heldKeys, m)
		e.Arpeggiator.NoteOn(MIDIVoiceID, e.keyPitch(m.Key), velocityModulation(m.Velocity))
		return
	}
	name := e.Model.Pad.Instrument
	pitch := float64(m.Key - midiKeyA4)
	inst, ok := e.instruments.Instrument(name)
	if !ok {
		e.broker.SendAlert("UnknownInstrument", fmt.Sprintf("cannot play %s: no instrument %q", padseq.NoteName(m.Key-midiKeyA4), name), Warning)
		return
	}
	inst.InputNoteStart(padseq.NoteStart{
		ID:         midiNoteID(m.Key),
		Pitch:      pitch,
		Frequency:  padseq.PitchToFrequency(pitch),
		Gain:       float64(m.Velocity) / 254,
		Instrument: name,
		StartTime:  now,
		StopTime:   padseq.Held,
	})
	e.directKeys[m.Key] = name
}

func (e *Engine) noteOff(m NoteOff, now float64) {
	if name, ok := e.directKeys[m.Key]; ok {
		delete(e.directKeys, m.Key)
		if inst, ok := e.instruments.Instrument(name); ok {
			inst.InputNoteStop(padseq.NoteStop{ID: midiNoteID(m.Key), Time: now})
		}
		return
	}
	i := slices.IndexFunc(e.heldKeys, func(n NoteOn) bool { return n.Key == m.Key })
	if i < 0 {
		return
	}
	e.heldKeys = slices.Delete(e.heldKeys, i, i+1)
	if len(e.heldKeys) == 0 {
		e.Arpeggiator.NoteOff(MIDIVoiceID)
		return
	}
	last := e.heldKeys[len(e.heldKeys)-1]
	e.Arpeggiator.NoteOn(MIDIVoiceID, e.keyPitch(last.Key), velocityModulation(last.Velocity))
}

// stopKeys releases every held MIDI key.
func (e *Engine) stopKeys(now float64) {
	for key := range e.directKeys {
		e.noteOff(NoteOff{Key: key}, now)
	}
	e.heldKeys = e.heldKeys[:0]
	e.Arpeggiator.NoteOff(MIDIVoiceID)
}

// keyPitch is the pitch of a key relative to the octave and root note that
// the arpeggiator adds back.
func (e *Engine) keyPitch(key int) float64 {
	return float64(key - midiKeyA4 - 12*e.Model.Pad.Octave - e.Model.RootNote)
}

func velocityModulation(velocity int) float64 {
	return 1 - float64(velocity)/127
}

func midiNoteID(key int) string {
	return fmt.Sprintf("midi-%d", key)
}
