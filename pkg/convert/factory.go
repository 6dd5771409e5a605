// ABOUTME: Converter variant selection
// ABOUTME: Builds an Engine with the codec strategy matching the target format
package convert

import (
	"fmt"
	"time"

	"github.com/Sendspin/audiokit-go/pkg/audio"
	"github.com/Sendspin/audiokit-go/pkg/audio/encode"
)

// pcmChunkDuration batches repacked PCM so one event is not sent per frame
const pcmChunkDuration = 20 * time.Millisecond

// New creates an engine converting cfg.Input to codec (aac, mp3, opus or
// pcm). Configuration problems are reported here, before any data flows.
func New(codec string, cfg Config) (*Engine, error) {
	switch codec {
	case audio.CodecAAC:
		return NewAAC(cfg)
	case audio.CodecMP3:
		return NewMP3(cfg)
	case audio.CodecOpus:
		return NewOpus(cfg)
	case audio.CodecPCM:
		return NewPCM(cfg)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedCodec, codec)
}

// NewAAC creates an AAC-LC engine producing ADTS frames
func NewAAC(cfg Config) (*Engine, error) {
	out, err := prepare(audio.CodecAAC, &cfg)
	if err != nil {
		return nil, err
	}
	if cfg.MinChunkDuration == 0 {
		cfg.MinChunkDuration = DefaultMinChunkDuration
	}

	codec, err := encode.NewAAC(out, cfg.BitRate)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return newOwned(codec, cfg)
}

// NewMP3 creates an MP3 engine
func NewMP3(cfg Config) (*Engine, error) {
	out, err := prepare(audio.CodecMP3, &cfg)
	if err != nil {
		return nil, err
	}
	if cfg.MinChunkDuration == 0 {
		cfg.MinChunkDuration = DefaultMinChunkDuration
	}

	codec, err := encode.NewMP3(out, cfg.BitRate)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return newOwned(codec, cfg)
}

// NewOpus creates an Opus engine emitting one packet per PacketDuration
func NewOpus(cfg Config) (*Engine, error) {
	out, err := prepare(audio.CodecOpus, &cfg)
	if err != nil {
		return nil, err
	}
	d, err := cfg.opusPacketDuration(out)
	if err != nil {
		return nil, err
	}
	cfg.PacketDuration = d
	out.FramesPerPacket = out.FramesFor(d)
	cfg.Output = &out

	codec, err := encode.NewOpus(out, d, cfg.BitRate)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return newOwned(codec, cfg)
}

// NewPCM creates an engine that repacks PCM to the output bit depth
func NewPCM(cfg Config) (*Engine, error) {
	out, err := prepare(audio.CodecPCM, &cfg)
	if err != nil {
		return nil, err
	}
	if cfg.MinChunkDuration == 0 {
		cfg.MinChunkDuration = pcmChunkDuration
	}

	codec, err := encode.NewPCM(out)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return newOwned(codec, cfg)
}

// prepare validates cfg and pins the resolved output format into it
func prepare(codec string, cfg *Config) (audio.Format, error) {
	if err := cfg.validateInput(); err != nil {
		return audio.Format{}, err
	}
	out, err := cfg.resolveOutput(codec)
	if err != nil {
		return audio.Format{}, err
	}
	cfg.Output = &out
	return out, nil
}

// newOwned wraps codec in an engine, closing codec if that fails
func newOwned(codec encode.Codec, cfg Config) (*Engine, error) {
	e, err := NewEngine(codec, cfg)
	if err != nil {
		codec.Close()
		return nil, err
	}
	return e, nil
}
