package tracker

import (
	"fmt"
	"time"
)

type (
	// Broker is the message broker between the engine and the rest of the
	// program. Inputs (pad, MIDI, pattern actions) are sent to the engine via
	// ToEngine. The engine reports alerts and state changes via ToModel.
	//
	// For closing the engine, CloseEngine has a capacity of 1, so you can
	// always send struct{}{} to it without blocking; if it is full, someone has
	// already requested the closure. FinishedEngine is closed when the engine
	// goroutine has returned.
	Broker struct {
		ToEngine chan any
		ToModel  chan MsgToModel

		CloseEngine    chan struct{}
		FinishedEngine chan struct{}
	}

	// MsgToModel is a message from the engine. Alerts are not boxed; all the
	// other messages, e.g. MarkerMoved, are in Data.
	MsgToModel struct {
		HasAlert bool
		Alert    Alert

		Data any
	}

	// MarkerMoved is sent when the playhead of a pattern advances.
	MarkerMoved struct {
		PatternID int
		Position  int
	}
)

func NewBroker() *Broker {
	return &Broker{
		ToEngine:       make(chan any, 1024),
		ToModel:        make(chan MsgToModel, 1024),
		CloseEngine:    make(chan struct{}, 1),
		FinishedEngine: make(chan struct{}),
	}
}

// SendAlert queues an alert without blocking; if nobody is draining ToModel,
// the alert is dropped. Calling SendAlert on a nil Broker does nothing.
func (b *Broker) SendAlert(name, message string, priority AlertPriority) {
	TrySend(b.toModel(), MsgToModel{HasAlert: true, Alert: Alert{Name: name, Message: message, Priority: priority}})
}

// toModel returns nil for a nil Broker; sends to it never succeed.
func (b *Broker) toModel() chan MsgToModel {
	if b == nil {
		return nil
	}
	return b.ToModel
}

func (b *Broker) Warningf(format string, args ...any) {
	b.SendAlert("InstrumentWarning", fmt.Sprintf(format, args...), Warning)
}

func (b *Broker) Errorf(format string, args ...any) {
	b.SendAlert("InstrumentError", fmt.Sprintf(format, args...), Error)
}

// TrySend is a helper function to send a value to a channel if it is not full.
// It is guaranteed to be non-blocking. Return true if the value was sent, false
// otherwise.
func TrySend[T any](c chan<- T, v T) bool {
	select {
	case c <- v:
	default:
		return false
	}
	return true
}

// TimeoutReceive is a helper function to block until a value is received from a
// channel, or timing out after t. ok will be false if the timeout occurred or
// if the channel is closed.
func TimeoutReceive[T any](c <-chan T, t time.Duration) (v T, ok bool) {
	select {
	case v, ok = <-c:
		return v, ok
	case <-time.After(t):
		return v, false
	}
}
