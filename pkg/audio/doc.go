// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format, Buffer types and sample conversion functions
// Package audio provides fundamental audio types shared by the encoders,
// decoders and the conversion engine.
//
// This package defines:
//   - Format: describes a PCM or compressed stream (codec, sample rate,
//     channels, bit depth, sample flags, frames per packet)
//   - Buffer: decoded PCM audio with timestamp information
//
// It also provides utilities for converting between sample representations:
//   - 16-bit ↔ 24-bit conversions
//   - little-endian PCM bytes ↔ int16 samples
//
// Example:
//
//	format := audio.LinearPCM16(16000, 1)
//	if err := format.Validate(); err != nil {
//	    return err
//	}
//	frame := format.BytesPerFrame() // 2
package audio
