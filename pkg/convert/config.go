// ABOUTME: Conversion engine configuration
// ABOUTME: Validates formats and resolves chunk sizing before a session starts
package convert

import (
	"fmt"
	"time"

	"github.com/Sendspin/audiokit-go/pkg/audio"
	"github.com/Sendspin/audiokit-go/pkg/audio/encode"
)

// DefaultMinChunkDuration is the smallest chunk AAC and MP3 are fed
const DefaultMinChunkDuration = 300 * time.Millisecond

// Config configures a conversion engine
type Config struct {
	// Input is the PCM format the producer delivers (required)
	Input audio.Format

	// Output is the target format. Nil derives one from Input that keeps
	// the sample rate and channel count.
	Output *audio.Format

	// BitRate in bits per second. Zero selects the codec default.
	BitRate int

	// PacketDuration is the Opus frame duration: 2.5, 5, 10, 20, 40 or
	// 60 ms. Required for Opus unless Output.FramesPerPacket is set.
	PacketDuration time.Duration

	// MinChunkDuration rounds the codec frame up to a chunk at least this
	// long. New applies DefaultMinChunkDuration for AAC and MP3.
	MinChunkDuration time.Duration

	// DropFinalFrame discards a trailing partial frame on stop instead of
	// zero-padding and encoding it
	DropFinalFrame bool

	// Callbacks receives events; all handlers are optional
	Callbacks Callbacks

	// Notify is where callbacks run. Nil creates a dedicated queue.
	Notify Dispatcher

	// Metrics records session metrics when set
	Metrics *Metrics
}

func (c *Config) validateInput() error {
	if !c.Input.IsPCM() {
		return fmt.Errorf("%w: source must be linear pcm, got %q", ErrInvalidConfig, c.Input.Codec)
	}
	if err := c.Input.Validate(); err != nil {
		return fmt.Errorf("%w: input: %w", ErrInvalidConfig, err)
	}
	if c.BitRate < 0 {
		return fmt.Errorf("%w: bit rate cannot be negative, got %d", ErrInvalidConfig, c.BitRate)
	}
	if c.MinChunkDuration < 0 {
		return fmt.Errorf("%w: min chunk duration cannot be negative", ErrInvalidConfig)
	}
	return nil
}

// resolveOutput returns the target format for codec, deriving it when
// Output is nil and rejecting outputs that would need resampling
func (c *Config) resolveOutput(codec string) (audio.Format, error) {
	if c.Output == nil {
		out := DefaultOutputFormat(codec, c.Input)
		if codec == audio.CodecOpus {
			// the duration is required for opus, not defaulted
			out.FramesPerPacket = out.FramesFor(c.PacketDuration)
		}
		return out, nil
	}

	out := *c.Output
	if out.Codec == "" {
		out.Codec = codec
	}
	if out.Codec != codec {
		return audio.Format{}, fmt.Errorf("%w: output codec %q does not match %q", ErrInvalidConfig, out.Codec, codec)
	}
	if out.SampleRate != c.Input.SampleRate {
		return audio.Format{}, fmt.Errorf("%w: output sample rate %d differs from input %d (resampling is not supported)",
			ErrInvalidConfig, out.SampleRate, c.Input.SampleRate)
	}
	if out.Channels != c.Input.Channels {
		return audio.Format{}, fmt.Errorf("%w: output channels %d differ from input %d",
			ErrInvalidConfig, out.Channels, c.Input.Channels)
	}
	if err := out.Validate(); err != nil {
		return audio.Format{}, fmt.Errorf("%w: output: %w", ErrInvalidConfig, err)
	}
	return out, nil
}

// opusPacketDuration picks the frame duration from the config or the
// output format and validates it
func (c *Config) opusPacketDuration(out audio.Format) (time.Duration, error) {
	d := c.PacketDuration
	if d == 0 {
		d = out.PacketDuration()
	}
	if d == 0 {
		return 0, fmt.Errorf("%w: opus requires a packet duration", ErrInvalidConfig)
	}
	if err := encode.ValidateOpusStream(out.SampleRate, out.Channels, d); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return d, nil
}

// chunkFrames rounds frameSamples up to the smallest multiple lasting at
// least minChunk at sampleRate
func chunkFrames(frameSamples, sampleRate int, minChunk time.Duration) int {
	minFrames := int((int64(minChunk)*int64(sampleRate) + int64(time.Second) - 1) / int64(time.Second))
	if minFrames <= frameSamples {
		return frameSamples
	}
	k := (minFrames + frameSamples - 1) / frameSamples
	return k * frameSamples
}

// DefaultOutputFormat returns the destination format for codec that keeps
// src's sample rate and channel count
func DefaultOutputFormat(codec string, src audio.Format) audio.Format {
	out := audio.Format{
		Codec:      codec,
		SampleRate: src.SampleRate,
		Channels:   src.Channels,
	}

	switch codec {
	case audio.CodecPCM:
		out.BitDepth = src.BitDepth
		out.Flags = audio.FlagSignedInteger | audio.FlagPacked
		out.FramesPerPacket = 1
	case audio.CodecAAC:
		out.FramesPerPacket = encode.AACFrameSamples
	case audio.CodecMP3:
		out.FramesPerPacket = encode.MP3FrameSamples(src.SampleRate)
	case audio.CodecOpus:
		out.FramesPerPacket = out.FramesFor(20 * time.Millisecond)
	}
	return out
}
