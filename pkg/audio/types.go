// ABOUTME: Audio type definitions
// ABOUTME: Defines stream format descriptors, format flags and sample helpers
package audio

import (
	"errors"
	"fmt"
	"time"
)

const (
	// 24-bit audio range constants
	Max24Bit = 8388607  // 2^23 - 1
	Min24Bit = -8388608 // -2^23
)

// Codec names understood by the encoders and decoders
const (
	CodecPCM  = "pcm"
	CodecAAC  = "aac"
	CodecMP3  = "mp3"
	CodecOpus = "opus"
)

// SampleRates lists the sample rates a stream descriptor may declare
var SampleRates = []int{
	96000, 88200, 64000, 48000, 44100, 32000, 24000,
	22050, 16000, 12000, 11025, 8000, 7350,
}

// ErrInvalidFormat is wrapped by every Format.Validate failure
var ErrInvalidFormat = errors.New("invalid audio format")

// FormatFlags describes sample encoding of a PCM stream
type FormatFlags uint32

const (
	FlagSignedInteger FormatFlags = 1 << iota
	FlagFloat
	FlagBigEndian
	FlagPacked
	FlagNonInterleaved
)

// Has reports whether all bits of f are set
func (flags FormatFlags) Has(f FormatFlags) bool {
	return flags&f == f
}

// Format describes audio stream format
type Format struct {
	Codec      string
	SampleRate int
	Channels   int
	BitDepth   int
	Flags      FormatFlags

	// FramesPerPacket is the number of sample frames one packet holds.
	// PCM streams use 1 when unset; Opus uses the frame duration.
	FramesPerPacket int

	CodecHeader []byte // For FLAC, Opus, etc.
}

// LinearPCM16 returns a signed 16-bit little-endian interleaved PCM format
func LinearPCM16(sampleRate, channels int) Format {
	return Format{
		Codec:           CodecPCM,
		SampleRate:      sampleRate,
		Channels:        channels,
		BitDepth:        16,
		Flags:           FlagSignedInteger | FlagPacked,
		FramesPerPacket: 1,
	}
}

// IsPCM reports whether the format carries uncompressed samples
func (f Format) IsPCM() bool {
	return f.Codec == CodecPCM
}

// BytesPerFrame returns the size of one interleaved sample frame.
// Compressed formats have no fixed frame size and return 0.
func (f Format) BytesPerFrame() int {
	if !f.IsPCM() {
		return 0
	}
	return f.Channels * (f.BitDepth / 8)
}

// BytesPerPacket returns BytesPerFrame * FramesPerPacket for PCM
func (f Format) BytesPerPacket() int {
	frames := f.FramesPerPacket
	if frames == 0 {
		frames = 1
	}
	return f.BytesPerFrame() * frames
}

// PacketDuration returns the time span of one packet, or 0 if unknown
func (f Format) PacketDuration() time.Duration {
	if f.SampleRate <= 0 || f.FramesPerPacket <= 0 {
		return 0
	}
	return time.Duration(f.FramesPerPacket) * time.Second / time.Duration(f.SampleRate)
}

// FramesFor returns the number of sample frames covering d at this rate
func (f Format) FramesFor(d time.Duration) int {
	return int(int64(d) * int64(f.SampleRate) / int64(time.Second))
}

// Validate checks the descriptor for values no codec can consume
func (f Format) Validate() error {
	if f.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive, got %d", ErrInvalidFormat, f.SampleRate)
	}
	if !IsStandardSampleRate(f.SampleRate) {
		return fmt.Errorf("%w: unsupported sample rate %d", ErrInvalidFormat, f.SampleRate)
	}
	if f.Channels < 1 {
		return fmt.Errorf("%w: channel count must be at least 1, got %d", ErrInvalidFormat, f.Channels)
	}
	if f.FramesPerPacket < 0 {
		return fmt.Errorf("%w: frames per packet cannot be negative", ErrInvalidFormat)
	}

	switch f.Codec {
	case CodecPCM:
		if f.BitDepth != 16 && f.BitDepth != 24 {
			return fmt.Errorf("%w: unsupported bit depth: %d (supported: 16, 24)", ErrInvalidFormat, f.BitDepth)
		}
		if f.Flags.Has(FlagFloat) {
			return fmt.Errorf("%w: float samples are not supported", ErrInvalidFormat)
		}
		if f.Flags.Has(FlagBigEndian) {
			return fmt.Errorf("%w: big-endian samples are not supported", ErrInvalidFormat)
		}
		if f.Flags.Has(FlagNonInterleaved) {
			return fmt.Errorf("%w: non-interleaved samples are not supported", ErrInvalidFormat)
		}
	case CodecAAC, CodecMP3, CodecOpus:
	default:
		return fmt.Errorf("%w: unknown codec %q", ErrInvalidFormat, f.Codec)
	}

	return nil
}

// IsStandardSampleRate reports whether rate is one of SampleRates
func IsStandardSampleRate(rate int) bool {
	for _, r := range SampleRates {
		if r == rate {
			return true
		}
	}
	return false
}

// String renders the format the way logs print it
func (f Format) String() string {
	if f.IsPCM() {
		return fmt.Sprintf("%s %dHz/%dbit/%dch", f.Codec, f.SampleRate, f.BitDepth, f.Channels)
	}
	return fmt.Sprintf("%s %dHz/%dch", f.Codec, f.SampleRate, f.Channels)
}

// Buffer represents decoded PCM audio
type Buffer struct {
	Timestamp int64     // Stream position (microseconds)
	PlayAt    time.Time // Local play time
	Samples   []int32   // PCM samples (int32 to support both 16-bit and 24-bit)
	Format    Format
}

// SampleToInt16 converts int32 sample to int16 (for 16-bit playback)
func SampleToInt16(sample int32) int16 {
	// Right-shift to convert 24-bit (or 16-bit) to 16-bit range
	return int16(sample >> 8)
}

// SampleFromInt16 converts int16 sample to int32 (left-justified in 24-bit)
func SampleFromInt16(sample int16) int32 {
	return int32(sample) << 8
}

// SampleTo24Bit converts int32 to 24-bit packed bytes (little-endian)
func SampleTo24Bit(sample int32) [3]byte {
	return [3]byte{
		byte(sample),
		byte(sample >> 8),
		byte(sample >> 16),
	}
}

// SampleFrom24Bit converts 24-bit packed bytes to int32 (little-endian)
func SampleFrom24Bit(b [3]byte) int32 {
	val := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
	// Sign extend from 24-bit to 32-bit
	if val&0x800000 != 0 {
		val |= ^0xFFFFFF
	}
	return val
}
