package padseq

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Wav encodes an interleaved stereo buffer as a .wav file. With pcm16 the
// samples are clipped to [-1, 1] and stored as 16-bit integers, otherwise as
// 32-bit floats.
func Wav(buffer []float32, sampleRate int, pcm16 bool) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := writeWavHeader(buf, len(buffer), sampleRate, pcm16); err != nil {
		return nil, fmt.Errorf("Wav failed: %w", err)
	}
	if err := writeSamples(buf, buffer, pcm16); err != nil {
		return nil, fmt.Errorf("Wav failed: %w", err)
	}
	return buf.Bytes(), nil
}

// Raw encodes the buffer as headerless little endian samples.
func Raw(buffer []float32, pcm16 bool) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := writeSamples(buf, buffer, pcm16); err != nil {
		return nil, fmt.Errorf("Raw failed: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSamples(w io.Writer, data []float32, pcm16 bool) error {
	if !pcm16 {
		return binary.Write(w, binary.LittleEndian, data)
	}
	ints := make([]int16, len(data))
	for i, v := range data {
		ints[i] = int16(math.Round(math.Max(-1, math.Min(1, float64(v))) * math.MaxInt16))
	}
	return binary.Write(w, binary.LittleEndian, ints)
}

// writeWavHeader writes the RIFF header of a stereo file with samples values in
// total (L and R counted separately). Float files need the extended fmt chunk
// and a fact chunk.
func writeWavHeader(w io.Writer, samples, sampleRate int, pcm16 bool) error {
	const channels = 2
	bytesPerSample, fmtSize, format := 4, 18, 3 // IEEE float
	if pcm16 {
		bytesPerSample, fmtSize, format = 2, 16, 1 // PCM
	}
	dataSize := bytesPerSample * samples
	riffSize := 4 + (8 + fmtSize) + (8 + dataSize)
	if !pcm16 {
		riffSize += 12
	}
	fields := []any{
		[]byte("RIFF"), uint32(riffSize), []byte("WAVE"),
		[]byte("fmt "), uint32(fmtSize), uint16(format), uint16(channels),
		uint32(sampleRate), uint32(sampleRate * channels * bytesPerSample),
		uint16(channels * bytesPerSample), uint16(8 * bytesPerSample),
	}
	if !pcm16 {
		fields = append(fields, uint16(0), []byte("fact"), uint32(4), uint32(samples/channels))
	}
	fields = append(fields, []byte("data"), uint32(dataSize))
	for _, f := range fields {
		if err := binary.Write(w, binary.LittleEndian, f); err != nil {
			return err
		}
	}
	return nil
}
