// ABOUTME: Decoder interface definition
// ABOUTME: Common interface and errors for all audio decoders
package decode

import "errors"

var (
	// ErrInvalidConfig wraps decoder construction failures
	ErrInvalidConfig = errors.New("invalid decoder configuration")

	// ErrClosed is returned when decoding after Close
	ErrClosed = errors.New("decoder is closed")
)

// Decoder decodes audio in various formats to PCM int32 samples
type Decoder interface {
	// Decode converts encoded audio data to PCM samples
	Decode(data []byte) ([]int32, error)

	// Close releases decoder resources
	Close() error
}
