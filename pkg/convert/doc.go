// ABOUTME: Streaming PCM conversion package
// ABOUTME: Packs submitted PCM into codec frames and reports completion exactly once
// Package convert turns a stream of linear PCM into AAC, MP3, Opus or
// repacked PCM.
//
// A producer calls Submit with PCM packets as they arrive and RequestStop
// when the stream ends. The engine re-frames the data to the codec's frame
// size, encodes on its own worker goroutine and delivers each result
// through Callbacks. OnStopped fires exactly once, after every submitted
// packet has been converted or reported as failed.
//
// Codec failures do not end a session: they are reported through OnError
// and the affected packets still count as completed. A stop cannot be
// aborted once requested; callers that want to discard a session call
// Close and drop the engine.
//
// Example:
//
//	e, err := convert.New(audio.CodecAAC, convert.Config{
//		Input: audio.LinearPCM16(44100, 2),
//		Callbacks: convert.Callbacks{
//			OnConverted: func(c convert.ConvertedChunk) { out.Write(c.Data) },
//			OnStopped:   func() { log.Printf("done") },
//		},
//	})
//	e.Submit(pcm, packets)
//	e.RequestStop()
package convert
