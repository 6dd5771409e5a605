// ABOUTME: Test tone generator source
// ABOUTME: Generates a fixed-length sine wave as 16-bit PCM
package source

import (
	"io"
	"math"
	"time"

	"github.com/Sendspin/audiokit-go/pkg/audio"
)

// Tone generates a sine wave for a fixed duration
type Tone struct {
	format      audio.Format
	frequency   float64
	sampleIndex uint64
	total       uint64
}

// NewTone creates a 440Hz tone at half scale lasting d
func NewTone(sampleRate, channels int, d time.Duration) *Tone {
	format := audio.LinearPCM16(sampleRate, channels)
	return &Tone{
		format:    format,
		frequency: 440.0, // A4 note
		total:     uint64(format.FramesFor(d)),
	}
}

// SetFrequency changes the tone pitch
func (s *Tone) SetFrequency(hz float64) {
	s.frequency = hz
}

func (s *Tone) Read(p []byte) (int, error) {
	if s.sampleIndex >= s.total {
		return 0, io.EOF
	}

	channels := s.format.Channels
	frames := uint64(len(p) / s.format.BytesPerFrame())
	frames = min(frames, s.total-s.sampleIndex)

	samples := make([]int16, int(frames)*channels)
	for i := 0; i < int(frames); i++ {
		t := float64(s.sampleIndex+uint64(i)) / float64(s.format.SampleRate)
		sample := math.Sin(2 * math.Pi * s.frequency * t)

		pcmValue := int16(sample * 32767.0 * 0.5) // 50% volume
		for ch := 0; ch < channels; ch++ {
			samples[i*channels+ch] = pcmValue
		}
	}
	s.sampleIndex += frames

	return copy(p, audio.Int16ToBytes(samples)), nil
}

func (s *Tone) Format() audio.Format { return s.format }
func (s *Tone) Metadata() (string, string, string) {
	return "Test Tone", "audiokit", ""
}
func (s *Tone) Close() error { return nil }
