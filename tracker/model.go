package tracker

import (
	"github.com/padseq/padseq"
)

type (
	// Model is the musical state shared by the engine components: tempo,
	// key, the control pad settings and the patterns. It is owned by the
	// engine goroutine; the scheduling components read it when events fire,
	// so changes take effect at the next event.
	Model struct {
		BPM      float64
		Scale    string
		RootNote int
		Pad      PadSettings
		Patterns Patterns
	}

	PadSettings struct {
		Instrument         string
		Octave             int
		Range              float64 // in octaves
		Arpeggiator        bool
		ArpeggiatorPattern string
		NoScale            bool
		Portamento         bool
	}
)

// DefaultScale is used when the model names a scale that does not exist.
const DefaultScale = "major"

func NewModel(p Preferences) *Model {
	m := &Model{
		BPM:      p.BPM,
		Scale:    p.Scale,
		RootNote: p.RootNote,
		Pad: PadSettings{
			Instrument:         p.Instrument,
			Octave:             p.Octave,
			Range:              p.Range,
			Arpeggiator:        p.Arpeggiator,
			ArpeggiatorPattern: p.ArpeggiatorPattern,
			NoScale:            p.NoScale,
			Portamento:         p.Portamento,
		},
	}
	if m.BPM <= 0 {
		m.BPM = 120
	}
	if m.Pad.Range <= 0 {
		m.Pad.Range = 1
	}
	m.Patterns.AddSynth()
	return m
}

// ScaleDegrees returns the current scale.
func (m *Model) ScaleDegrees() padseq.Scale {
	if s, ok := padseq.Scales[m.Scale]; ok {
		return s
	}
	return padseq.Scales[DefaultScale]
}

// NoteDuration is the length of a sixteenth note at the current tempo.
func (m *Model) NoteDuration() float64 {
	return NoteDuration(m.BPM)
}
