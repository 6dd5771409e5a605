// ABOUTME: PCM audio encoder
// ABOUTME: Repacks 16-bit samples as 16-bit or 24-bit little-endian PCM bytes
package encode

import (
	"fmt"

	"github.com/Sendspin/audiokit-go/pkg/audio"
)

// PCMEncoder encodes PCM audio
type PCMEncoder struct {
	bitDepth int
}

// NewPCM creates a new PCM encoder
func NewPCM(format audio.Format) (*PCMEncoder, error) {
	if format.Codec != audio.CodecPCM {
		return nil, fmt.Errorf("%w for PCM encoder: %s", ErrInvalidCodec, format.Codec)
	}

	if format.BitDepth != 16 && format.BitDepth != 24 {
		return nil, fmt.Errorf("unsupported bit depth: %d (supported: 16, 24)", format.BitDepth)
	}

	return &PCMEncoder{
		bitDepth: format.BitDepth,
	}, nil
}

// Name returns "pcm"
func (e *PCMEncoder) Name() string { return audio.CodecPCM }

// FrameSamples returns 1; PCM has no framing
func (e *PCMEncoder) FrameSamples() int { return 1 }

// Encode converts int16 samples to PCM bytes
func (e *PCMEncoder) Encode(samples []int16) ([]byte, error) {
	if e.bitDepth == 16 {
		return audio.Int16ToBytes(samples), nil
	}

	// 24-bit PCM: 3 bytes per sample
	output := make([]byte, len(samples)*3)
	for i, sample := range samples {
		b := audio.SampleTo24Bit(audio.SampleFromInt16(sample))
		output[i*3] = b[0]
		output[i*3+1] = b[1]
		output[i*3+2] = b[2]
	}
	return output, nil
}

// Flush returns nothing
func (e *PCMEncoder) Flush() ([]byte, error) {
	return nil, nil
}

// Close releases resources
func (e *PCMEncoder) Close() error {
	return nil
}
