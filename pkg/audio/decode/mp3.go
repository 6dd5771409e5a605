// ABOUTME: MP3 audio decoder
// ABOUTME: Decodes a complete MP3 stream to 16-bit stereo PCM
package decode

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/Sendspin/audiokit-go/pkg/audio"
	"github.com/hajimehoshi/go-mp3"
)

// MP3Decoder decodes MP3 audio from a stream. go-mp3 always produces
// 16-bit little-endian stereo, mono sources are duplicated to both channels.
type MP3Decoder struct {
	decoder *mp3.Decoder
	buf     []byte
}

// NewMP3 creates a decoder reading MP3 frames from r
func NewMP3(r io.Reader) (*MP3Decoder, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create mp3 decoder: %w", err)
	}
	return &MP3Decoder{
		decoder: dec,
		buf:     make([]byte, 8192),
	}, nil
}

// Format returns the PCM format Read produces
func (d *MP3Decoder) Format() audio.Format {
	return audio.LinearPCM16(d.decoder.SampleRate(), 2)
}

// Length returns the decoded stream size in bytes, or -1 if unknown
func (d *MP3Decoder) Length() int64 {
	return d.decoder.Length()
}

// Read reads decoded 16-bit PCM bytes, implementing io.Reader
func (d *MP3Decoder) Read(p []byte) (int, error) {
	return d.decoder.Read(p)
}

// ReadSamples decodes the next block of samples in 24-bit range. It
// returns io.EOF once the stream is exhausted.
func (d *MP3Decoder) ReadSamples() ([]int32, error) {
	n, err := io.ReadFull(d.decoder, d.buf)
	if n == 0 {
		if err == nil || errors.Is(err, io.ErrUnexpectedEOF) {
			err = io.EOF
		}
		return nil, err
	}
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("mp3 decode error: %w", err)
	}

	numSamples := n / 2
	samples := make([]int32, numSamples)
	for i := 0; i < numSamples; i++ {
		sample16 := int16(binary.LittleEndian.Uint16(d.buf[i*2:]))
		samples[i] = audio.SampleFromInt16(sample16)
	}
	return samples, nil
}

// Close releases decoder resources
func (d *MP3Decoder) Close() error {
	return nil
}
