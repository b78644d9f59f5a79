package instrument

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/padseq/padseq"
)

// Rack holds the instruments available for playing and mixes them into one
// stereo stream. The frames rendered so far define the audio clock: Now is the
// time of the next frame to be rendered.
type Rack struct {
	sampleRate int
	report     Reporter

	mu     sync.RWMutex
	synths map[string]*Synth

	frame atomic.Int64
}

func NewRack(sampleRate int, report Reporter) *Rack {
	return &Rack{sampleRate: sampleRate, report: report, synths: map[string]*Synth{}}
}

// NewPresetRack returns a rack with one synth for every preset.
func NewPresetRack(sampleRate int, presets Presets, report Reporter) *Rack {
	r := NewRack(sampleRate, report)
	for name, spec := range presets {
		r.Add(NewSynth(name, spec, sampleRate, report))
	}
	return r
}

// Add adds a synth to the rack, replacing any synth with the same name.
func (r *Rack) Add(s *Synth) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.synths[s.Name()] = s
}

// Instrument returns the instrument with the given name.
func (r *Rack) Instrument(name string) (padseq.Instrument, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.synths[name]
	if !ok {
		return nil, false
	}
	return s, true
}

func (r *Rack) Synth(name string) (*Synth, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.synths[name]
	if !ok {
		return nil, fmt.Errorf("no instrument %q in the rack", name)
	}
	return s, nil
}

func (r *Rack) SampleRate() int { return r.sampleRate }

func (r *Rack) Now() float64 {
	return float64(r.frame.Load()) / float64(r.sampleRate)
}

// Process renders the next len(dst)/2 frames of all instruments into dst and
// advances the clock.
func (r *Rack) Process(dst []float32) {
	clear(dst)
	frame := r.frame.Load()
	r.mu.RLock()
	for _, s := range r.synths {
		s.Render(dst, frame)
	}
	r.mu.RUnlock()
	r.frame.Add(int64(len(dst) / 2))
}
