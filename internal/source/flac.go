// ABOUTME: FLAC file source
// ABOUTME: Decodes FLAC frames with mewkiz/flac
package source

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/Sendspin/audiokit-go/pkg/audio"
	"github.com/mewkiz/flac"
)

// FLACSource reads from a FLAC file
type FLACSource struct {
	file     *os.File
	stream   *flac.Stream
	format   audio.Format
	bitDepth int
	title    string
	buf      pcmBuffer
}

// NewFLAC opens a FLAC file
func NewFLAC(filePath string) (*FLACSource, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open FLAC file: %w", err)
	}

	stream, err := flac.New(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to decode FLAC: %w", err)
	}

	info := stream.Info
	sampleRate := int(info.SampleRate)
	channels := int(info.NChannels)
	bitDepth := int(info.BitsPerSample)
	format := pcmFormat(sampleRate, channels, bitDepth)
	title := titleFromPath(filePath)

	log.Printf("Loaded FLAC: %s (sample rate: %d Hz, channels: %d, bit depth: %d)",
		title, sampleRate, channels, bitDepth)

	return &FLACSource{
		file:     f,
		stream:   stream,
		format:   format,
		bitDepth: bitDepth,
		title:    title,
		buf:      pcmBuffer{frame: format.BytesPerFrame()},
	}, nil
}

func (s *FLACSource) Read(p []byte) (int, error) {
	return s.buf.read(p, s.fill)
}

func (s *FLACSource) fill() error {
	frame, err := s.stream.ParseNext()
	if err != nil {
		if err == io.EOF {
			return io.EOF
		}
		return fmt.Errorf("flac decode error: %w", err)
	}

	channels := s.format.Channels
	out := make([]byte, 0, int(frame.BlockSize)*s.format.BytesPerFrame())
	for i := 0; i < int(frame.BlockSize); i++ {
		for ch := 0; ch < channels; ch++ {
			sample := to24Bit(frame.Subframes[ch].Samples[i], s.bitDepth)
			out = appendSample(out, sample, s.format.BitDepth)
		}
	}
	s.buf.pending = out
	return nil
}

func (s *FLACSource) Format() audio.Format { return s.format }
func (s *FLACSource) Metadata() (string, string, string) {
	return s.title, "Unknown Artist", "Unknown Album"
}
func (s *FLACSource) Close() error {
	return s.file.Close()
}
