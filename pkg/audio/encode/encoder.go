// ABOUTME: Codec strategy interface definition
// ABOUTME: Common interface and error type for all audio encoders
package encode

import (
	"errors"
	"fmt"
)

// ErrInvalidCodec is returned when a format names the wrong codec
var ErrInvalidCodec = errors.New("invalid codec")

// Codec encodes interleaved 16-bit PCM into a compressed format.
//
// A Codec is not safe for concurrent use. The conversion engine drives it
// from a single goroutine and always hands Encode exactly
// FrameSamples()*channels samples, or a whole multiple of that.
type Codec interface {
	// Name returns the codec identifier (aac, mp3, opus, pcm)
	Name() string

	// FrameSamples returns the samples per channel one encode unit needs
	FrameSamples() int

	// Encode converts PCM samples to encoded audio data
	Encode(pcm []int16) ([]byte, error)

	// Flush returns any output the encoder still holds back
	Flush() ([]byte, error)

	// Close releases encoder resources
	Close() error
}

// CodecError carries a codec-specific numeric code with its message
type CodecError struct {
	Codec   string
	Code    int
	Message string
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("%s codec error %d: %s", e.Codec, e.Code, e.Message)
}

// UnknownCode is used when a library reports failures without a code
const UnknownCode = -1

func codecError(codec string, code int, err error) *CodecError {
	var ce *CodecError
	if errors.As(err, &ce) {
		return ce
	}
	return &CodecError{Codec: codec, Code: code, Message: err.Error()}
}

// AsCodecError converts err into a CodecError for the named codec
func AsCodecError(codec string, err error) *CodecError {
	if err == nil {
		return nil
	}
	return codecError(codec, UnknownCode, err)
}
