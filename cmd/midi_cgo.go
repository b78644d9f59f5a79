//go:build cgo

package cmd

import (
	"github.com/padseq/padseq/tracker"
	"github.com/padseq/padseq/tracker/gomidi"
)

func NewMidiContext(broker *tracker.Broker) tracker.MIDIContext {
	return gomidi.NewContext(broker)
}
