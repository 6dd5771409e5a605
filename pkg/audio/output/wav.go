// ABOUTME: WAV file output implementation
// ABOUTME: Writes decoded PCM into a RIFF/WAVE file using go-audio
package output

import (
	"fmt"
	"io"

	"github.com/Sendspin/audiokit-go/pkg/audio"
	"github.com/Sendspin/audiokit-go/pkg/audio/decode"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// wavFormatPCM is the WAVE format tag for integer PCM
const wavFormatPCM = 1

// WAV writes PCM to a seekable writer. The header is finalized on Close.
type WAV struct {
	w       io.WriteSeeker
	encoder *wav.Encoder
	decoder decode.Decoder
	format  audio.Format
	buf     *goaudio.IntBuffer
	frames  int64
}

// NewWAV creates a WAV sink writing to w
func NewWAV(w io.WriteSeeker) *WAV {
	return &WAV{w: w}
}

// Open writes the stream header for format (16 or 24-bit PCM)
func (o *WAV) Open(format audio.Format) error {
	if o.encoder != nil {
		return fmt.Errorf("wav output already open")
	}
	decoder, err := decode.NewPCM(format)
	if err != nil {
		return fmt.Errorf("unsupported wav format: %w", err)
	}

	o.decoder = decoder
	o.format = format
	o.encoder = wav.NewEncoder(o.w, format.SampleRate, format.BitDepth, format.Channels, wavFormatPCM)
	o.buf = &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: format.Channels,
			SampleRate:  format.SampleRate,
		},
		SourceBitDepth: format.BitDepth,
	}
	return nil
}

// Write appends PCM in the opened format
func (o *WAV) Write(pcm []byte) error {
	if o.encoder == nil {
		return fmt.Errorf("output not initialized")
	}
	if len(pcm)%o.format.BytesPerFrame() != 0 {
		return fmt.Errorf("pcm length %d is not a multiple of frame size %d", len(pcm), o.format.BytesPerFrame())
	}

	samples, err := o.decoder.Decode(pcm)
	if err != nil {
		return err
	}

	// decoded samples are in 24-bit range
	shift := 24 - o.format.BitDepth
	data := o.buf.Data[:0]
	for _, s := range samples {
		data = append(data, int(s>>shift))
	}
	o.buf.Data = data

	if err := o.encoder.Write(o.buf); err != nil {
		return fmt.Errorf("failed to write wav samples: %w", err)
	}
	o.frames += int64(len(pcm) / o.format.BytesPerFrame())
	return nil
}

// Frames returns the number of sample frames written so far
func (o *WAV) Frames() int64 {
	return o.frames
}

// Close finalizes the header. It does not close the underlying writer.
func (o *WAV) Close() error {
	if o.encoder == nil {
		return nil
	}
	err := o.encoder.Close()
	o.encoder = nil
	if err != nil {
		return fmt.Errorf("failed to finalize wav file: %w", err)
	}
	return nil
}
