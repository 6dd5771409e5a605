// ABOUTME: Event types delivered by the conversion engine
// ABOUTME: Callbacks set with independently optional handlers
package convert

import "github.com/Sendspin/audiokit-go/pkg/audio/encode"

// ConvertedChunk is one completed batch of encoded output
type ConvertedChunk struct {
	// Data is the encoded output, concatenated in stream order. It may be
	// empty when the codec is still holding samples back (MP3 delay).
	Data []byte

	// Frames holds the codec packets making up Data when the codec
	// exposes packet boundaries (Opus). Nil otherwise.
	Frames [][]byte

	// Packets is the number of submitted packets this chunk completes
	Packets int
}

// Callbacks receives engine events. Every field is optional.
type Callbacks struct {
	// OnConverted fires once per completed chunk
	OnConverted func(chunk ConvertedChunk)

	// OnError fires for each codec failure; conversion continues
	OnError func(err *encode.CodecError)

	// OnStopped fires exactly once, after the last OnConverted
	OnStopped func()
}
