package oto_test

import (
	"encoding/binary"
	"io"
	"math"
	"testing"

	"github.com/padseq/padseq/oto"
)

type rampSource struct{ n float32 }

func (s *rampSource) Process(dst []float32) {
	for i := range dst {
		dst[i] = s.n
		s.n += 0.25
	}
}

func TestStreamReader(t *testing.T) {
	r := oto.NewStreamReader(&rampSource{})
	buf := make([]byte, 19) // two whole frames and change
	n, err := r.Read(buf)
	if err != nil || n != 16 {
		t.Fatalf("Read = %d, %v; want 16, nil", n, err)
	}
	for i, want := range []float32{0, 0.25, 0.5, 0.75} {
		if got := math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:])); got != want {
			t.Fatalf("sample %d = %v, want %v", i, got, want)
		}
	}
	if n, _ := r.Read(buf[:7]); n != 0 {
		t.Fatalf("reading less than a frame should return nothing, got %d bytes", n)
	}
	r.Close()
	if _, err := r.Read(buf); err != io.EOF {
		t.Fatalf("Read after Close = %v, want io.EOF", err)
	}
}
