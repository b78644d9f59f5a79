package padseq

import "math"

type (
	// NoteEvent is one scheduled note, as produced by the lazy event streams
	// of the arpeggiator and the pattern sequencer. ID joins a start with its
	// matching stop. Index is the position of the event in its stream.
	NoteEvent struct {
		ID         string
		Pitch      int
		Modulation float64
		StartTime  float64
		StopTime   float64
		Instrument string
		Index      int
	}

	// NoteStart is the payload given to an instrument when a note begins.
	// StopTime is the natural end of the note, or +Inf if the note is held
	// until an explicit stop.
	NoteStart struct {
		ID         string
		Pitch      float64
		Frequency  float64
		Gain       float64
		Instrument string
		StartTime  float64
		StopTime   float64
	}

	// NoteStop releases the note started with the same ID. Time is when the
	// release should happen; times in the past mean "now".
	NoteStop struct {
		ID   string
		Time float64
	}

	// Instrument is implemented by the plugin instruments. An instrument owns
	// the processing resources it allocates for a note and must ignore stops
	// for ids it does not know.
	Instrument interface {
		InputNoteStart(note NoteStart)
		InputNoteStop(note NoteStop)
	}

	// NoteUpdater is optionally implemented by instruments that can change the
	// frequency and gain of a sounding note in place, without retriggering it.
	NoteUpdater interface {
		InputNoteUpdate(note NoteStart) bool
	}
)

// Held is the StopTime of notes that last until they are explicitly stopped.
var Held = math.Inf(1)

// ModulationGain converts a normalized modulation value into output gain: the top of the
// pad (modulation 0) is loudest.
func ModulationGain(modulation float64) float64 {
	return (1 - modulation) / 2
}
