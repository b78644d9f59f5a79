package gomidi

import (
	"errors"
	"fmt"

	"github.com/padseq/padseq/tracker"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

type (
	// RTMIDIContext sends the note messages of the open input device to the
	// engine.
	RTMIDIContext struct {
		driver    *rtmididrv.Driver
		currentIn drivers.In
		stop      func()
		broker    *tracker.Broker
	}

	RTMIDIDevice struct {
		context *RTMIDIContext
		in      drivers.In
	}
)

// NewContext opens the driver. If that fails, the context has no inputs and
// Support reports MIDISupportNoDriver.
func NewContext(broker *tracker.Broker) *RTMIDIContext {
	m := RTMIDIContext{broker: broker}
	// there's not much we can do if this fails, so just use m.driver = nil to
	// indicate no driver available
	m.driver, _ = rtmididrv.New()
	return &m
}

func (m *RTMIDIContext) Inputs(yield func(tracker.MIDIInputDevice) bool) {
	if m.driver == nil {
		return
	}
	ins, err := m.driver.Ins()
	if err != nil {
		return
	}
	for _, in := range ins {
		if !yield(RTMIDIDevice{context: m, in: in}) {
			break
		}
	}
}

func (m *RTMIDIContext) Support() tracker.MIDISupport {
	if m.driver == nil {
		return tracker.MIDISupportNoDriver
	}
	return tracker.MIDISupported
}

// Open an input device while closing the currently open if necessary.
func (d RTMIDIDevice) Open() error {
	c := d.context
	if c.currentIn == d.in {
		return nil
	}
	if c.driver == nil {
		return errors.New("no driver available")
	}
	c.closeCurrent()
	if err := d.in.Open(); err != nil {
		return fmt.Errorf("opening MIDI input failed: %w", err)
	}
	stop, err := midi.ListenTo(d.in, c.handleMessage)
	if err != nil {
		d.in.Close()
		return fmt.Errorf("listening to MIDI input failed: %w", err)
	}
	c.currentIn, c.stop = d.in, stop
	return nil
}

func (d RTMIDIDevice) Close() error {
	if d.context.currentIn != d.in {
		return nil
	}
	d.context.closeCurrent()
	return nil
}

func (d RTMIDIDevice) IsOpen() bool { return d.in.IsOpen() }

func (d RTMIDIDevice) String() string { return d.in.String() }

func (c *RTMIDIContext) closeCurrent() {
	if c.stop != nil {
		c.stop()
		c.stop = nil
	}
	if c.currentIn != nil && c.currentIn.IsOpen() {
		c.currentIn.Close()
	}
	c.currentIn = nil
}

func (c *RTMIDIContext) Close() {
	if c.driver == nil {
		return
	}
	c.closeCurrent()
	c.driver.Close()
}

func (c *RTMIDIContext) handleMessage(msg midi.Message, timestampms int32) {
	if m, ok := tracker.ConvertMIDI(msg); ok {
		// if the channel is full, just drop the message
		tracker.TrySend[any](c.broker.ToEngine, m)
	}
}
