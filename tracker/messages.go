package tracker

type (
	// PadInput is a touch or a move on the control pad. The ratios are the
	// position relative to the pad size, from the top left corner.
	PadInput struct{ XRatio, YRatio float64 }

	// PadInputEnd is sent when the touch is lifted.
	PadInputEnd struct{}

	// NoteOn and NoteOff are note messages from a MIDI keyboard. Key 69 is A4.
	NoteOn struct {
		Channel  int
		Key      int
		Velocity int
	}

	NoteOff struct {
		Channel int
		Key     int
	}

	ToggleCell struct {
		PatternID int
		X, Y      int
	}

	// PlayPattern starts a pattern. A zero CurrentTime means the clock time
	// when the message is handled.
	PlayPattern struct {
		PatternID   int
		CurrentTime float64
	}

	StopPattern     struct{ PatternID int }
	StopAllPatterns struct{}
	DeletePattern   struct{ PatternID int }

	// AddPattern adds a synth pattern, or a beat pattern if Beat is set.
	AddPattern struct{ Beat bool }

	SetMarker struct {
		PatternID int
		Value     int
	}

	SetPatternInstrument struct {
		PatternID  int
		Instrument string
	}

	SetPatternVolume struct {
		PatternID int
		Volume    float64
	}

	SetPatternXLength struct {
		PatternID int
		XLength   int
	}

	// SetActiveNotes replaces the active notes of a pattern, e.g. when a
	// pattern is restored.
	SetActiveNotes struct {
		PatternID int
		Notes     []ActiveNote
	}

	SetBPM        struct{ BPM float64 }
	SetScale      struct{ Scale string }
	SetRootNote   struct{ RootNote int }
	SetPad        struct{ Pad PadSettings }
	SetInstrument struct{ Instrument string }
)
