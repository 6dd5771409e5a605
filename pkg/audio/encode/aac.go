// ABOUTME: AAC audio encoder
// ABOUTME: Encodes PCM frames to ADTS AAC-LC using vo-aacenc
package encode

import (
	"bytes"
	"fmt"

	"github.com/Sendspin/audiokit-go/pkg/audio"
	"github.com/gen2brain/aac-go"
)

// AACFrameSamples is the number of samples per channel in one AAC-LC frame
const AACFrameSamples = 1024

// DefaultAACBitRate returns 64 kbps per channel, capped at the highest
// rate vo-aacenc accepts for the stream (6 bits per sample)
func DefaultAACBitRate(sampleRate, channels int) int {
	return min(64000*channels, 6*sampleRate*channels)
}

// AACEncoder encodes AAC audio
type AACEncoder struct {
	encoder  *aac.Encoder
	out      *bytes.Buffer
	channels int
	bitRate  int
}

// NewAAC creates a new AAC encoder
func NewAAC(format audio.Format, bitRate int) (*AACEncoder, error) {
	if format.Codec != audio.CodecAAC {
		return nil, fmt.Errorf("%w for AAC encoder: %s", ErrInvalidCodec, format.Codec)
	}
	if format.Channels < 1 || format.Channels > 2 {
		return nil, fmt.Errorf("aac supports 1 or 2 channels, got %d", format.Channels)
	}

	if bitRate == 0 {
		bitRate = DefaultAACBitRate(format.SampleRate, format.Channels)
	}

	out := new(bytes.Buffer)
	encoder, err := aac.NewEncoder(out, &aac.Options{
		SampleRate:  format.SampleRate,
		NumChannels: format.Channels,
		BitRate:     bitRate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create aac encoder: %w", err)
	}

	return &AACEncoder{
		encoder:  encoder,
		out:      out,
		channels: format.Channels,
		bitRate:  bitRate,
	}, nil
}

// Name returns "aac"
func (e *AACEncoder) Name() string { return audio.CodecAAC }

// FrameSamples returns 1024
func (e *AACEncoder) FrameSamples() int { return AACFrameSamples }

// BitRate returns the configured target bitrate
func (e *AACEncoder) BitRate() int { return e.bitRate }

// Encode converts whole AAC frames of PCM to ADTS frames
func (e *AACEncoder) Encode(pcm []int16) ([]byte, error) {
	step := AACFrameSamples * e.channels
	if len(pcm)%step != 0 {
		return nil, &CodecError{
			Codec:   audio.CodecAAC,
			Code:    UnknownCode,
			Message: fmt.Sprintf("pcm length %d is not a multiple of frame size %d", len(pcm), step),
		}
	}

	e.out.Reset()
	if err := e.encoder.Encode(bytes.NewReader(audio.Int16ToBytes(pcm))); err != nil {
		return nil, codecError(audio.CodecAAC, UnknownCode, err)
	}
	return bytes.Clone(e.out.Bytes()), nil
}

// Flush returns nothing; each Encode call drains the encoder
func (e *AACEncoder) Flush() ([]byte, error) {
	return nil, nil
}

// Close releases the native encoder
func (e *AACEncoder) Close() error {
	if e.encoder == nil {
		return nil
	}
	err := e.encoder.Close()
	e.encoder = nil
	if err != nil {
		return fmt.Errorf("failed to close aac encoder: %w", err)
	}
	return nil
}
