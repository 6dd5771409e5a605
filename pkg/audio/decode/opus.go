// ABOUTME: Opus packet decoder
// ABOUTME: Decodes one Opus packet per call to 16-bit interleaved PCM
package decode

import (
	"fmt"
	"sync"
	"time"

	"github.com/Sendspin/audiokit-go/pkg/audio"
	"github.com/Sendspin/audiokit-go/pkg/audio/encode"
	"gopkg.in/hraban/opus.v2"
)

// OpusCallbacks receives decoder events. Both handlers are optional.
type OpusCallbacks struct {
	// OnDecoded receives 16-bit little-endian interleaved PCM
	OnDecoded func(pcm []byte)

	// OnError receives libopus failures with the library code verbatim
	OnError func(err *encode.CodecError)
}

// OpusDecoderConfig configures an OpusPacketDecoder
type OpusDecoderConfig struct {
	SampleRate     int
	Channels       int
	PacketDuration time.Duration
	Callbacks      OpusCallbacks
}

// OpusPacketDecoder decodes a stream of Opus packets. Packets must arrive
// in stream order; the decoder does not detect reordering.
type OpusPacketDecoder struct {
	sampleRate int
	channels   int
	frameSize  int // samples per channel per packet
	duration   time.Duration

	mu        sync.Mutex
	decoder   *opus.Decoder
	pcm       []int16
	callbacks OpusCallbacks
}

// NewOpusPacketDecoder validates cfg and opens a libopus decoder
func NewOpusPacketDecoder(cfg OpusDecoderConfig) (*OpusPacketDecoder, error) {
	if err := encode.ValidateOpusStream(cfg.SampleRate, cfg.Channels, cfg.PacketDuration); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	dec, err := opus.NewDecoder(cfg.SampleRate, cfg.Channels)
	if err != nil {
		return nil, fmt.Errorf("failed to create opus decoder: %w", err)
	}

	frameSize := int(int64(cfg.SampleRate) * int64(cfg.PacketDuration) / int64(time.Second))
	return &OpusPacketDecoder{
		sampleRate: cfg.SampleRate,
		channels:   cfg.Channels,
		frameSize:  frameSize,
		duration:   cfg.PacketDuration,
		decoder:    dec,
		pcm:        make([]int16, frameSize*cfg.Channels),
		callbacks:  cfg.Callbacks,
	}, nil
}

// Format returns the PCM format of decoded output
func (d *OpusPacketDecoder) Format() audio.Format {
	return audio.LinearPCM16(d.sampleRate, d.channels)
}

// FrameSamples returns samples per channel in one decoded packet
func (d *OpusPacketDecoder) FrameSamples() int { return d.frameSize }

// PacketDuration returns the configured packet duration
func (d *OpusPacketDecoder) PacketDuration() time.Duration { return d.duration }

// DecodePacket decodes one packet and returns its PCM. libopus failures
// are returned as *encode.CodecError.
func (d *OpusPacketDecoder) DecodePacket(packet []byte) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.decoder == nil {
		return nil, ErrClosed
	}

	n, err := d.decoder.Decode(packet, d.pcm)
	if err != nil {
		return nil, encode.OpusCodecError(err)
	}
	return audio.Int16ToBytes(d.pcm[:n*d.channels]), nil
}

// Decode decodes one packet and reports exactly one event: OnDecoded with
// the PCM or OnError with the failure. Decoding after Close reports a
// codec error wrapping ErrClosed.
func (d *OpusPacketDecoder) Decode(packet []byte) {
	pcm, err := d.DecodePacket(packet)

	d.mu.Lock()
	cb := d.callbacks
	d.mu.Unlock()

	if err != nil {
		if cb.OnError != nil {
			cb.OnError(encode.AsCodecError(audio.CodecOpus, err))
		}
		return
	}
	if cb.OnDecoded != nil {
		cb.OnDecoded(pcm)
	}
}

// SetCallbacks replaces the event handlers
func (d *OpusPacketDecoder) SetCallbacks(cb OpusCallbacks) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.callbacks = cb
}

// Close releases the decoder. Further decodes report ErrClosed.
func (d *OpusPacketDecoder) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	// opus.Decoder is released by the garbage collector
	d.decoder = nil
	d.pcm = nil
	return nil
}
