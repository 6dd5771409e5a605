// ABOUTME: Audio output interface definition
// ABOUTME: Common interface for PCM sinks (playback devices and files)
package output

import "github.com/Sendspin/audiokit-go/pkg/audio"

// Output represents a destination for decoded PCM
type Output interface {
	// Open prepares the sink for PCM in format
	Open(format audio.Format) error

	// Write consumes little-endian interleaved PCM in the opened format
	Write(pcm []byte) error

	// Close flushes and releases output resources
	Close() error
}
