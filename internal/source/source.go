// ABOUTME: PCM producers for the conversion engine
// ABOUTME: Opens WAV, FLAC and MP3 files by extension and generates test tones
package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Sendspin/audiokit-go/pkg/audio"
)

// ErrUnsupportedFormat is returned by Open for unknown file types
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Source produces interleaved little-endian PCM in Format(). Read fills p
// with whole sample frames and returns io.EOF once the audio is exhausted.
type Source interface {
	Read(p []byte) (int, error)
	Format() audio.Format
	Metadata() (title, artist, album string)
	Close() error
}

// Open creates a source for a local file, chosen by extension
func Open(path string) (Source, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("audio file not found: %s", path)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav":
		return NewWAV(path)
	case ".flac":
		return NewFLAC(path)
	case ".mp3":
		return NewMP3(path)
	default:
		return nil, fmt.Errorf("%w: %s (supported: .wav, .flac, .mp3)", ErrUnsupportedFormat, ext)
	}
}

// titleFromPath uses the file name without extension as title
func titleFromPath(path string) string {
	filename := filepath.Base(path)
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}

// pcmFormat returns the source format for a native bit depth. Depths other
// than 16 are delivered as 24-bit.
func pcmFormat(sampleRate, channels, bitDepth int) audio.Format {
	f := audio.LinearPCM16(sampleRate, channels)
	if bitDepth != 16 {
		f.BitDepth = 24
	}
	return f
}

// to24Bit scales a sample of bitDepth bits to 24-bit range
func to24Bit(sample int32, bitDepth int) int32 {
	shift := bitDepth - 24
	if shift > 0 {
		return sample >> shift
	}
	return sample << -shift
}

// appendSample packs a 24-bit range sample at the given output depth
func appendSample(dst []byte, sample int32, bitDepth int) []byte {
	if bitDepth == 24 {
		b := audio.SampleTo24Bit(sample)
		return append(dst, b[:]...)
	}
	s := audio.SampleToInt16(sample)
	return append(dst, byte(s), byte(s>>8))
}

// pcmBuffer hands out decoded bytes in whole frames across Read calls
type pcmBuffer struct {
	pending []byte
	frame   int
}

// read copies whole frames from pending into p, calling fill whenever
// pending runs dry
func (b *pcmBuffer) read(p []byte, fill func() error) (int, error) {
	want := len(p) - len(p)%b.frame
	if want == 0 {
		return 0, fmt.Errorf("read buffer of %d bytes holds no whole %d byte frame", len(p), b.frame)
	}

	n := 0
	for n < want {
		if len(b.pending) == 0 {
			if err := fill(); err != nil {
				if n > 0 {
					return n, nil
				}
				return 0, err
			}
			continue
		}
		c := copy(p[n:want], b.pending)
		b.pending = b.pending[c:]
		n += c
	}
	return n, nil
}
