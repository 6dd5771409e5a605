// ABOUTME: WAV file source
// ABOUTME: Reads integer PCM WAV files with go-audio
package source

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/Sendspin/audiokit-go/pkg/audio"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WAVSource reads from a WAV file
type WAVSource struct {
	file     *os.File
	decoder  *wav.Decoder
	format   audio.Format
	bitDepth int
	title    string
	intBuf   *goaudio.IntBuffer
	buf      pcmBuffer
}

// NewWAV opens a WAV file
func NewWAV(filePath string) (*WAVSource, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open WAV file: %w", err)
	}

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		f.Close()
		return nil, fmt.Errorf("invalid WAV file: %s", filePath)
	}
	if decoder.WavAudioFormat != 1 {
		f.Close()
		return nil, fmt.Errorf("unsupported WAV encoding %d (only integer PCM)", decoder.WavAudioFormat)
	}

	sampleRate := int(decoder.SampleRate)
	channels := int(decoder.NumChans)
	bitDepth := int(decoder.BitDepth)
	format := pcmFormat(sampleRate, channels, bitDepth)
	title := titleFromPath(filePath)

	log.Printf("Loaded WAV: %s (sample rate: %d Hz, channels: %d, bit depth: %d)",
		title, sampleRate, channels, bitDepth)

	return &WAVSource{
		file:     f,
		decoder:  decoder,
		format:   format,
		bitDepth: bitDepth,
		title:    title,
		intBuf: &goaudio.IntBuffer{
			Data:   make([]int, 4096*channels),
			Format: &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		},
		buf: pcmBuffer{frame: format.BytesPerFrame()},
	}, nil
}

func (s *WAVSource) Read(p []byte) (int, error) {
	return s.buf.read(p, s.fill)
}

func (s *WAVSource) fill() error {
	n, err := s.decoder.PCMBuffer(s.intBuf)
	if n == 0 {
		if err != nil && err != io.EOF {
			return fmt.Errorf("wav decode error: %w", err)
		}
		return io.EOF
	}

	// go-audio may stop mid-frame at the end of a damaged file
	n -= n % s.format.Channels
	out := make([]byte, 0, n*s.format.BitDepth/8)
	for _, v := range s.intBuf.Data[:n] {
		out = appendSample(out, wavTo24Bit(v, s.bitDepth), s.format.BitDepth)
	}
	s.buf.pending = out
	return nil
}

// wavTo24Bit scales a WAV sample to 24-bit range. 8-bit WAV is unsigned.
func wavTo24Bit(v, bitDepth int) int32 {
	if bitDepth == 8 {
		return int32(v-128) << 16
	}
	return to24Bit(int32(v), bitDepth)
}

func (s *WAVSource) Format() audio.Format { return s.format }
func (s *WAVSource) Metadata() (string, string, string) {
	return s.title, "Unknown Artist", "Unknown Album"
}
func (s *WAVSource) Close() error {
	return s.file.Close()
}
