// ABOUTME: PCM audio decoder
// ABOUTME: Unpacks 16-bit and 24-bit little-endian PCM into 24-bit range int32 samples
package decode

import (
	"encoding/binary"
	"fmt"

	"github.com/Sendspin/audiokit-go/pkg/audio"
)

// PCMDecoder unpacks interleaved PCM of one format
type PCMDecoder struct {
	bitDepth      int
	bytesPerFrame int
}

// NewPCM creates a decoder for format, which must be 16 or 24-bit linear PCM
func NewPCM(format audio.Format) (Decoder, error) {
	if format.Codec != audio.CodecPCM {
		return nil, fmt.Errorf("%w: pcm decoder cannot read %q", ErrInvalidConfig, format.Codec)
	}
	if format.BitDepth != 16 && format.BitDepth != 24 {
		return nil, fmt.Errorf("%w: unsupported bit depth %d (supported: 16, 24)", ErrInvalidConfig, format.BitDepth)
	}
	if format.Channels < 1 {
		return nil, fmt.Errorf("%w: channels must be positive, got %d", ErrInvalidConfig, format.Channels)
	}

	return &PCMDecoder{
		bitDepth:      format.BitDepth,
		bytesPerFrame: format.BytesPerFrame(),
	}, nil
}

// Decode unpacks whole sample frames. 16-bit samples are shifted up so
// every depth shares the 24-bit range.
func (d *PCMDecoder) Decode(data []byte) ([]int32, error) {
	if len(data)%d.bytesPerFrame != 0 {
		return nil, fmt.Errorf("pcm length %d is not a multiple of the %d byte frame", len(data), d.bytesPerFrame)
	}

	width := d.bitDepth / 8
	samples := make([]int32, len(data)/width)
	for i := range samples {
		off := i * width
		if width == 3 {
			samples[i] = audio.SampleFrom24Bit([3]byte{data[off], data[off+1], data[off+2]})
			continue
		}
		samples[i] = audio.SampleFromInt16(int16(binary.LittleEndian.Uint16(data[off:])))
	}
	return samples, nil
}

// Close releases resources
func (d *PCMDecoder) Close() error {
	return nil
}
