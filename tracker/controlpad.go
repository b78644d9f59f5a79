package tracker

import (
	"math"

	"github.com/padseq/padseq"
)

type (
	// ControlPad plays the pitch pad: the horizontal position selects the
	// pitch, the vertical position the loudness, top being loudest. With the
	// arpeggiator on, the touch arpeggiates; otherwise it plays one held note
	// that follows the touch.
	ControlPad struct {
		model       *Model
		instruments Instruments
		arpeggiator *Arpeggiator
		broker      *Broker

		sounding   bool
		pitch      float64
		instrument string
	}

	// PadNote is a position on the pad resolved into a pitch relative to the
	// pad's octave and the root note, and a modulation in [0, 1).
	PadNote struct {
		Pitch      float64
		Modulation float64
	}
)

// ControlPadID is the voice id of the notes played from the pad.
const ControlPadID = "controlPad"

func NewControlPad(model *Model, instruments Instruments, arpeggiator *Arpeggiator, broker *Broker) *ControlPad {
	return &ControlPad{model: model, instruments: instruments, arpeggiator: arpeggiator, broker: broker}
}

func clampRatio(r float64) float64 {
	// largest float64 below 1
	return math.Max(0, math.Min(r, math.Nextafter(1, 0)))
}

// Note maps pad ratios into a note. The ratios are clamped to [0, 1).
func (c *ControlPad) Note(xRatio, yRatio float64) (PadNote, error) {
	x, y := clampRatio(xRatio), clampRatio(yRatio)
	if c.model.Pad.NoScale {
		return PadNote{Pitch: 12 * c.model.Pad.Range * x, Modulation: y}, nil
	}
	p, err := padseq.PitchFromRatio(c.model.ScaleDegrees(), c.model.Pad.Range*x)
	return PadNote{Pitch: float64(p), Modulation: y}, err
}

// Input handles a touch or a move on the pad at time now.
func (c *ControlPad) Input(xRatio, yRatio, now float64) {
	n, err := c.Note(xRatio, yRatio)
	if err != nil {
		c.broker.SendAlert("ControlPadError", err.Error(), Error)
		return
	}
	if c.model.Pad.Arpeggiator {
		c.stopDirect(now)
		c.arpeggiator.NoteOn(ControlPadID, n.Pitch, n.Modulation)
		return
	}
	c.arpeggiator.NoteOff(ControlPadID)
	pitch := n.Pitch + float64(12*c.model.Pad.Octave+c.model.RootNote)
	start := padseq.NoteStart{
		ID:         ControlPadID,
		Pitch:      pitch,
		Frequency:  padseq.PitchToFrequency(pitch),
		Gain:       padseq.ModulationGain(n.Modulation),
		Instrument: c.model.Pad.Instrument,
		StartTime:  now,
		StopTime:   padseq.Held,
	}
	if c.sounding && c.instrument == start.Instrument {
		changed := pitch != c.pitch
		retarget := !changed || (c.model.Pad.Portamento || c.model.Pad.NoScale)
		if retarget && c.update(start) {
			c.pitch = pitch
			return
		}
		if !changed {
			return
		}
	}
	c.stopDirect(now)
	inst, ok := c.instruments.Instrument(start.Instrument)
	if !ok {
		c.broker.SendAlert("UnknownInstrument", "no instrument "+start.Instrument, Warning)
		return
	}
	inst.InputNoteStart(start)
	c.sounding, c.pitch, c.instrument = true, pitch, start.Instrument
}

func (c *ControlPad) update(n padseq.NoteStart) bool {
	inst, ok := c.instruments.Instrument(n.Instrument)
	if !ok {
		return false
	}
	u, ok := inst.(padseq.NoteUpdater)
	return ok && u.InputNoteUpdate(n)
}

// InputEnd handles the touch being lifted: the arpeggio and the held note
// stop.
func (c *ControlPad) InputEnd(now float64) {
	c.arpeggiator.NoteOff(ControlPadID)
	c.stopDirect(now)
}

func (c *ControlPad) stopDirect(now float64) {
	if !c.sounding {
		return
	}
	c.sounding = false
	if inst, ok := c.instruments.Instrument(c.instrument); ok {
		inst.InputNoteStop(padseq.NoteStop{ID: ControlPadID, Time: now})
	}
}

// Sounding reports if the pad is holding a note without the arpeggiator.
func (c *ControlPad) Sounding() bool { return c.sounding }
