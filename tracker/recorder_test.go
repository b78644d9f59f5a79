package tracker_test

import (
	"github.com/padseq/padseq"
	"github.com/padseq/padseq/tracker"
)

type recInstrument struct {
	starts   []padseq.NoteStart
	stops    []padseq.NoteStop
	updates  []padseq.NoteStart
	noUpdate bool
}

type recInstruments map[string]*recInstrument

func (r *recInstrument) InputNoteStart(n padseq.NoteStart) { r.starts = append(r.starts, n) }
func (r *recInstrument) InputNoteStop(n padseq.NoteStop)   { r.stops = append(r.stops, n) }

func (r *recInstrument) InputNoteUpdate(n padseq.NoteStart) bool {
	if r.noUpdate {
		return false
	}
	r.updates = append(r.updates, n)
	return true
}

func (r recInstruments) Instrument(name string) (padseq.Instrument, bool) {
	i, ok := r[name]
	if !ok {
		return nil, false
	}
	return i, true
}

func testModel() *tracker.Model {
	m := &tracker.Model{
		BPM:   120,
		Scale: "major",
		Pad: tracker.PadSettings{
			Instrument:         "fm",
			Range:              1,
			ArpeggiatorPattern: padseq.ArpeggioUp,
		},
	}
	m.Patterns.AddSynth()
	return m
}

// drainAlerts returns the names of the alerts queued in the broker.
func drainAlerts(b *tracker.Broker) []string {
	var ret []string
	for {
		select {
		case msg := <-b.ToModel:
			if msg.HasAlert {
				ret = append(ret, msg.Alert.Name)
			}
		default:
			return ret
		}
	}
}
