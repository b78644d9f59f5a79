package tracker

import (
	"errors"
	"strings"

	"gitlab.com/gomidi/midi/v2"
)

type (
	// MIDIContext lists the MIDI input devices of a driver. Opened devices
	// send NoteOn and NoteOff messages to the engine.
	MIDIContext interface {
		Inputs(yield func(input MIDIInputDevice) bool)
		Close()
		Support() MIDISupport
	}

	MIDIInputDevice interface {
		Open() error
		Close() error
		IsOpen() bool
		String() string
	}

	MIDISupport int

	// NullMIDIContext is used when the program is built without MIDI.
	NullMIDIContext struct{}
)

const (
	MIDISupportNotCompiled MIDISupport = iota
	MIDISupportNoDriver
	MIDISupported
)

var ErrNoMIDIInput = errors.New("no matching MIDI input")

func (NullMIDIContext) Inputs(yield func(input MIDIInputDevice) bool) {}
func (NullMIDIContext) Close()                                        {}
func (NullMIDIContext) Support() MIDISupport                          { return MIDISupportNotCompiled }

// ConvertMIDI converts a MIDI message into an engine message. Messages other
// than note on and note off return false.
func ConvertMIDI(msg midi.Message) (any, bool) {
	var channel, key, velocity uint8
	switch {
	case msg.GetNoteOn(&channel, &key, &velocity):
		return NoteOn{Channel: int(channel), Key: int(key), Velocity: int(velocity)}, true
	case msg.GetNoteOff(&channel, &key, &velocity):
		return NoteOff{Channel: int(channel), Key: int(key)}, true
	}
	return nil, false
}

// OpenMIDIInput opens the first input whose name starts with prefix. An empty
// prefix opens the first input.
func OpenMIDIInput(ctx MIDIContext, prefix string) (MIDIInputDevice, error) {
	for input := range ctx.Inputs {
		if strings.HasPrefix(input.String(), prefix) {
			if err := input.Open(); err != nil {
				return nil, err
			}
			return input, nil
		}
	}
	return nil, ErrNoMIDIInput
}
