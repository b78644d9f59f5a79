// Package instrument implements the plugin instruments: each note is compiled
// from a node graph into its own vm.Graph, which lives until the note has been
// released and its sources have stopped.
package instrument

import (
	"math"
	"sync"

	"github.com/padseq/padseq"
	"github.com/padseq/padseq/vm"
)

type (
	// Reporter receives problems that do not stop the instrument from
	// playing, such as a stop for an unknown note or a note whose graph failed
	// to compile.
	Reporter interface {
		Warningf(format string, args ...any)
		Errorf(format string, args ...any)
	}

	// Synth is a polyphonic instrument playing one node graph. Notes are
	// started and stopped from the scheduling goroutine while Render is called
	// from the audio goroutine.
	Synth struct {
		name       string
		spec       padseq.NodeGraphSpec
		sampleRate int
		report     Reporter

		mu     sync.Mutex
		voices map[string]*voice
		graphs []*vm.Graph // every graph still producing sound, also released ones
		frame  int64       // the frame after the last rendered one
	}

	voice struct {
		graph *vm.Graph // nil if the graph failed to compile
	}
)

// pruneAfter is how long a voice that has finished on its own is remembered,
// so that the matching stop does not cause a warning.
const pruneAfter = 1.0

func NewSynth(name string, spec padseq.NodeGraphSpec, sampleRate int, report Reporter) *Synth {
	return &Synth{
		name:       name,
		spec:       spec,
		sampleRate: sampleRate,
		report:     report,
		voices:     map[string]*voice{},
	}
}

func (s *Synth) Name() string { return s.name }

func (s *Synth) now() float64 { return float64(s.frame) / float64(s.sampleRate) }

func bindings(n padseq.NoteStart) vm.Bindings {
	return vm.Bindings{
		"frequency": n.Frequency,
		"gain":      n.Gain,
		"pitch":     n.Pitch,
		"startTime": n.StartTime,
		"stopTime":  n.StopTime,
	}
}

// InputNoteStart compiles a new graph for the note. A note with an id that is
// already sounding releases the previous graph first.
func (s *Synth) InputNoteStart(n padseq.NoteStart) {
	if math.IsNaN(n.StopTime) {
		n.StopTime = padseq.Held
	}
	g, err := vm.Compile(s.spec, bindings(n), s.sampleRate)
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.voices[n.ID]; ok && old.graph != nil {
		old.graph.Release(math.Max(n.StartTime, s.now()))
	}
	s.voices[n.ID] = &voice{graph: g}
	if err != nil {
		s.reportf(true, "instrument %s: note %s plays no sound: %v", s.name, n.ID, err)
		return
	}
	s.graphs = append(s.graphs, g)
}

// InputNoteStop releases the note at n.Time, or immediately if that has
// already passed. Unknown ids are reported and otherwise ignored.
func (s *Synth) InputNoteStop(n padseq.NoteStop) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.voices[n.ID]
	if !ok {
		s.reportf(false, "instrument %s: stop for unknown note %s", s.name, n.ID)
		return
	}
	delete(s.voices, n.ID)
	if v.graph != nil {
		v.graph.Release(math.Max(n.Time, s.now()))
	}
}

// InputNoteUpdate changes the frequency and gain of a sounding note without
// retriggering it. It returns false if the note is not sounding.
func (s *Synth) InputNoteUpdate(n padseq.NoteStart) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.voices[n.ID]
	if !ok || v.graph == nil {
		return false
	}
	if err := v.graph.Update(bindings(n)); err != nil {
		s.reportf(true, "instrument %s: could not update note %s: %v", s.name, n.ID, err)
		return false
	}
	return true
}

// Sounding returns the number of graphs that are still producing sound.
func (s *Synth) Sounding() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.graphs)
}

// Render adds the output of all sounding notes into the interleaved stereo
// buffer dst, whose first frame is frame. Graphs that have finished are
// dropped afterwards.
func (s *Synth) Render(dst []float32, frame int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.graphs {
		g.Render(dst, frame)
	}
	s.frame = frame + int64(len(dst)/2)
	now := s.now()
	live := s.graphs[:0]
	for _, g := range s.graphs {
		if !g.Done(now) {
			live = append(live, g)
		}
	}
	clear(s.graphs[len(live):])
	s.graphs = live
	for id, v := range s.voices {
		if v.graph != nil && v.graph.Done(now) && v.graph.StopTime() < now-pruneAfter {
			delete(s.voices, id)
		}
	}
}

func (s *Synth) reportf(isError bool, format string, args ...any) {
	if s.report == nil {
		return
	}
	if isError {
		s.report.Errorf(format, args...)
		return
	}
	s.report.Warningf(format, args...)
}
