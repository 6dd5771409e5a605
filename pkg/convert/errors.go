// ABOUTME: Sentinel errors for the conversion engine
// ABOUTME: Configuration, submission and lifecycle failures wrap these
package convert

import "errors"

var (
	// ErrInvalidConfig wraps every construction-time configuration failure
	ErrInvalidConfig = errors.New("invalid converter configuration")

	// ErrUnsupportedCodec is returned by New for unknown target codecs
	ErrUnsupportedCodec = errors.New("unsupported codec")

	// ErrMisalignedInput means the data does not hold whole sample frames
	ErrMisalignedInput = errors.New("pcm data is not frame aligned")

	// ErrPacketMismatch means the data cannot be split into the declared packets
	ErrPacketMismatch = errors.New("pcm data does not match packet count")

	// ErrClosed is returned by Submit after Close
	ErrClosed = errors.New("converter is closed")
)
