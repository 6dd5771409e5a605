// ABOUTME: PCM byte packing helpers
// ABOUTME: Converts between little-endian PCM bytes and int16 samples
package audio

import "encoding/binary"

// Int16FromBytes unpacks little-endian PCM bytes of the given bit depth
// into 16-bit samples. 24-bit input is truncated to its upper 16 bits.
func Int16FromBytes(data []byte, bitDepth int) []int16 {
	if bitDepth == 24 {
		n := len(data) / 3
		out := make([]int16, n)
		for i := 0; i < n; i++ {
			s := SampleFrom24Bit([3]byte{data[i*3], data[i*3+1], data[i*3+2]})
			out[i] = SampleToInt16(s)
		}
		return out
	}

	n := len(data) / 2
	out := make([]int16, n)
	for i := 0; i < n; i++ {
		out[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return out
}

// Int16ToBytes packs 16-bit samples as little-endian bytes
func Int16ToBytes(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}
