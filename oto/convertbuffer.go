package oto

import (
	"encoding/binary"
	"math"
)

// FloatBufferToFloat32LE writes buff as 32-bit little-endian floats into dst,
// which must have room for 4*len(buff) bytes.
func FloatBufferToFloat32LE(dst []byte, buff []float32) {
	for i, v := range buff {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(v))
	}
}
