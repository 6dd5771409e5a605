// ABOUTME: Audio encoder package for encoding PCM to various formats
// ABOUTME: Provides the Codec strategy interface and AAC, MP3, Opus, PCM encoders
// Package encode provides the codec strategies driven by the conversion
// engine in pkg/convert.
//
// Supports: AAC-LC (ADTS, vo-aacenc), MP3 (libmp3lame), Opus (libopus),
// PCM (16-bit and 24-bit)
//
// All encoders accept interleaved int16 samples and report failures as
// *CodecError carrying the codec's own error code where the library
// exposes one.
//
// Example:
//
//	enc, err := encode.NewOpus(format, 20*time.Millisecond, 0)
//	packet, err := enc.Encode(pcm) // len(pcm) == enc.FrameSamples()*channels
package encode
