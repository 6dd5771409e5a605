// ABOUTME: MP3 file source
// ABOUTME: Streams 16-bit stereo PCM out of an MP3 file
package source

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/Sendspin/audiokit-go/pkg/audio"
	"github.com/Sendspin/audiokit-go/pkg/audio/decode"
)

// MP3Source reads from an MP3 file
type MP3Source struct {
	file    *os.File
	decoder *decode.MP3Decoder
	title   string
	buf     pcmBuffer
	chunk   []byte
}

// NewMP3 opens an MP3 file
func NewMP3(filePath string) (*MP3Source, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open MP3 file: %w", err)
	}

	decoder, err := decode.NewMP3(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	title := titleFromPath(filePath)
	log.Printf("Loaded MP3: %s (sample rate: %d Hz)", title, decoder.Format().SampleRate)

	return &MP3Source{
		file:    f,
		decoder: decoder,
		title:   title,
		buf:     pcmBuffer{frame: decoder.Format().BytesPerFrame()},
		chunk:   make([]byte, 8192),
	}, nil
}

func (s *MP3Source) Read(p []byte) (int, error) {
	return s.buf.read(p, s.fill)
}

func (s *MP3Source) fill() error {
	n, err := io.ReadFull(s.decoder, s.chunk)
	n -= n % s.buf.frame
	if n == 0 {
		if err == nil || err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		return err
	}
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return fmt.Errorf("mp3 decode error: %w", err)
	}
	s.buf.pending = append(s.buf.pending[:0], s.chunk[:n]...)
	return nil
}

func (s *MP3Source) Format() audio.Format { return s.decoder.Format() }
func (s *MP3Source) Metadata() (string, string, string) {
	return s.title, "Unknown Artist", "Unknown Album"
}
func (s *MP3Source) Close() error {
	s.decoder.Close()
	return s.file.Close()
}
