//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"math"
)

// packSamples serializes complex samples as little-endian f32 pairs, the
// layout of array<vec2<f32>> in the kernel. The f64 -> f32 narrowing is the
// marshalling counterpart of the device kernel running in f32.
func packSamples(samples []complex128) []byte {
	out := make([]byte, len(samples)*8)
	for i, c := range samples {
		binary.LittleEndian.PutUint32(out[i*8:], math.Float32bits(float32(real(c))))
		binary.LittleEndian.PutUint32(out[i*8+4:], math.Float32bits(float32(imag(c))))
	}
	return out
}

// packParams serializes the Params uniform. Padded to 16 bytes for uniform
// buffer alignment.
func packParams(count uint32) []byte {
	out := make([]byte, 16)
	binary.LittleEndian.PutUint32(out, count)
	return out
}

// unpackCounts decodes the little-endian u32 count buffer read back from
// the device.
func unpackCounts(raw []byte) []uint32 {
	counts := make([]uint32, len(raw)/4)
	for i := range counts {
		counts[i] = binary.LittleEndian.Uint32(raw[i*4:])
	}
	return counts
}
