// ABOUTME: Audio decoder package for multiple codec support
// ABOUTME: Provides the Opus packet decoder plus PCM and MP3 stream decoders
// Package decode provides audio decoders.
//
// OpusPacketDecoder turns Opus packets back into 16-bit interleaved PCM,
// one packet at a time, on the caller's goroutine. PCMDecoder unpacks
// 16-bit and 24-bit PCM to int32 samples in 24-bit range. MP3Decoder reads
// a complete MP3 stream.
//
// Example:
//
//	dec, err := decode.NewOpusPacketDecoder(decode.OpusDecoderConfig{
//		SampleRate:     48000,
//		Channels:       2,
//		PacketDuration: 20 * time.Millisecond,
//	})
//	pcm, err := dec.DecodePacket(packet)
package decode
