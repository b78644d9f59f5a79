package oto

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/padseq/padseq"
)

type (
	// Context plays padseq.AudioSources through the system audio device as
	// interleaved stereo float32.
	Context struct {
		context    *oto.Context
		sampleRate int
	}

	// StreamReader pulls audio from a source as 32-bit little-endian float
	// bytes. Reads after Close return io.EOF.
	StreamReader struct {
		mu     sync.Mutex
		source padseq.AudioSource
		buf    []float32
		closed bool
	}

	Player struct {
		player *oto.Player
		reader *StreamReader
	}
)

const otoBufferSize = 2048 // frames

// NewContext opens the audio device. Only one context may exist per process.
func NewContext(sampleRate int) (*Context, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   time.Duration(otoBufferSize) * time.Second / time.Duration(sampleRate),
	}
	context, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready
	return &Context{context: context, sampleRate: sampleRate}, nil
}

func (c *Context) SampleRate() int { return c.sampleRate }

// Play starts pulling audio from source until the returned player is closed.
func (c *Context) Play(source padseq.AudioSource) (padseq.AudioPlayer, error) {
	r := NewStreamReader(source)
	p := c.context.NewPlayer(r)
	p.Play()
	if err := p.Err(); err != nil {
		return nil, fmt.Errorf("cannot start oto player: %w", err)
	}
	return &Player{player: p, reader: r}, nil
}

// Close suspends the device; oto contexts cannot be disposed of.
func (c *Context) Close() error {
	if err := c.context.Suspend(); err != nil {
		return fmt.Errorf("cannot suspend oto context: %w", err)
	}
	return nil
}

func (p *Player) Close() error {
	p.player.Pause()
	return p.reader.Close()
}

func NewStreamReader(source padseq.AudioSource) *StreamReader {
	return &StreamReader{source: source}
}

func (r *StreamReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return 0, io.EOF
	}
	frames := len(p) / 8
	if frames == 0 {
		return 0, nil
	}
	need := frames * 2
	if cap(r.buf) < need {
		r.buf = make([]float32, need)
	}
	r.buf = r.buf[:need]
	r.source.Process(r.buf)
	FloatBufferToFloat32LE(p, r.buf)
	return frames * 8, nil
}

func (r *StreamReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}
