// ABOUTME: MP3 audio encoder
// ABOUTME: Encodes PCM to MPEG layer III frames using libmp3lame
package encode

import (
	"bytes"
	"fmt"

	"github.com/Sendspin/audiokit-go/pkg/audio"
	lame "github.com/viert/go-lame"
)

// MP3FrameSamples returns samples per channel in one MP3 frame: 1152 for
// MPEG-1 rates, 576 for the MPEG-2/2.5 rates below 32 kHz
func MP3FrameSamples(sampleRate int) int {
	if sampleRate >= 32000 {
		return 1152
	}
	return 576
}

// DefaultMP3BitRate returns 128 kbps for stereo and 64 kbps for mono
func DefaultMP3BitRate(channels int) int {
	if channels == 1 {
		return 64000
	}
	return 128000
}

// MP3Encoder encodes MP3 audio
type MP3Encoder struct {
	encoder    *lame.Encoder
	out        *bytes.Buffer
	sampleRate int
	channels   int
	bitRate    int
	written    bool
	flushed    bool
}

// NewMP3 creates a new MP3 encoder
func NewMP3(format audio.Format, bitRate int) (*MP3Encoder, error) {
	if format.Codec != audio.CodecMP3 {
		return nil, fmt.Errorf("%w for MP3 encoder: %s", ErrInvalidCodec, format.Codec)
	}
	if format.Channels < 1 || format.Channels > 2 {
		return nil, fmt.Errorf("mp3 supports 1 or 2 channels, got %d", format.Channels)
	}
	if format.SampleRate > 48000 {
		return nil, fmt.Errorf("mp3 does not support sample rate %d", format.SampleRate)
	}

	if bitRate == 0 {
		bitRate = DefaultMP3BitRate(format.Channels)
	}

	out := new(bytes.Buffer)
	encoder := lame.NewEncoder(out)
	if err := encoder.SetInSamplerate(format.SampleRate); err != nil {
		encoder.Close()
		return nil, fmt.Errorf("failed to set mp3 sample rate: %w", err)
	}
	if err := encoder.SetNumChannels(format.Channels); err != nil {
		encoder.Close()
		return nil, fmt.Errorf("failed to set mp3 channels: %w", err)
	}
	// lame takes kbps
	if err := encoder.SetBitrate(bitRate / 1000); err != nil {
		encoder.Close()
		return nil, fmt.Errorf("failed to set mp3 bitrate %d: %w", bitRate, err)
	}

	return &MP3Encoder{
		encoder:    encoder,
		out:        out,
		sampleRate: format.SampleRate,
		channels:   format.Channels,
		bitRate:    bitRate,
	}, nil
}

// Name returns "mp3"
func (e *MP3Encoder) Name() string { return audio.CodecMP3 }

// FrameSamples returns samples per channel in one MP3 frame
func (e *MP3Encoder) FrameSamples() int { return MP3FrameSamples(e.sampleRate) }

// BitRate returns the configured target bitrate
func (e *MP3Encoder) BitRate() int { return e.bitRate }

// Encode feeds PCM to lame and returns whatever frames it completed.
// lame keeps an encoder delay, so early calls may return no bytes.
func (e *MP3Encoder) Encode(pcm []int16) ([]byte, error) {
	if e.flushed {
		return nil, &CodecError{Codec: audio.CodecMP3, Code: UnknownCode, Message: "encoder already flushed"}
	}

	e.out.Reset()
	if _, err := e.encoder.Write(audio.Int16ToBytes(pcm)); err != nil {
		return nil, codecError(audio.CodecMP3, UnknownCode, err)
	}
	e.written = true
	return bytes.Clone(e.out.Bytes()), nil
}

// Flush drains the frames lame still buffers. The encoder accepts no
// more input afterwards.
func (e *MP3Encoder) Flush() ([]byte, error) {
	if e.flushed {
		return nil, nil
	}
	e.flushed = true
	if !e.written {
		// lame is initialised on first write; nothing to drain
		return nil, nil
	}

	e.out.Reset()
	if _, err := e.encoder.Flush(); err != nil {
		return nil, codecError(audio.CodecMP3, UnknownCode, err)
	}
	return bytes.Clone(e.out.Bytes()), nil
}

// Close releases the native encoder
func (e *MP3Encoder) Close() error {
	if e.encoder == nil {
		return nil
	}
	e.encoder.Close()
	e.encoder = nil
	return nil
}
