// ABOUTME: Output writers for converted chunks
// ABOUTME: Ogg Opus, WAV and raw elementary streams chosen by codec
package main

import (
	"fmt"
	"io"

	"github.com/Sendspin/audiokit-go/internal/oggopus"
	"github.com/Sendspin/audiokit-go/internal/version"
	"github.com/Sendspin/audiokit-go/pkg/audio"
	"github.com/Sendspin/audiokit-go/pkg/audio/output"
	"github.com/Sendspin/audiokit-go/pkg/convert"
)

// sink stores the chunks of one conversion
type sink interface {
	WriteChunk(chunk convert.ConvertedChunk) error
	Close() error
}

// newSink picks the container for format. It never closes w.
func newSink(w io.WriteSeeker, format audio.Format) (sink, error) {
	switch format.Codec {
	case audio.CodecOpus:
		head := oggopus.Head{
			Channels:        format.Channels,
			PreSkip:         oggopus.DefaultPreSkip,
			InputSampleRate: format.SampleRate,
		}
		ow, err := oggopus.NewWriter(w, head, format.SampleRate, version.Vendor())
		if err != nil {
			return nil, err
		}
		return &oggSink{w: ow, samples: format.FramesPerPacket}, nil
	case audio.CodecPCM:
		wav := output.NewWAV(w)
		if err := wav.Open(format); err != nil {
			return nil, err
		}
		return &wavSink{wav: wav}, nil
	case audio.CodecAAC, audio.CodecMP3:
		// ADTS and MPEG audio frames are self-delimiting
		return &rawSink{w: w}, nil
	}
	return nil, fmt.Errorf("no container for codec %q", format.Codec)
}

type oggSink struct {
	w       *oggopus.Writer
	samples int
}

func (s *oggSink) WriteChunk(chunk convert.ConvertedChunk) error {
	for _, packet := range chunk.Frames {
		if err := s.w.WritePacket(packet, s.samples); err != nil {
			return err
		}
	}
	return nil
}

func (s *oggSink) Close() error { return s.w.Close() }

type wavSink struct {
	wav *output.WAV
}

func (s *wavSink) WriteChunk(chunk convert.ConvertedChunk) error {
	return s.wav.Write(chunk.Data)
}

func (s *wavSink) Close() error { return s.wav.Close() }

type rawSink struct {
	w io.Writer
}

func (s *rawSink) WriteChunk(chunk convert.ConvertedChunk) error {
	_, err := s.w.Write(chunk.Data)
	return err
}

func (s *rawSink) Close() error { return nil }
