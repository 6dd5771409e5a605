// ABOUTME: Opus audio encoder
// ABOUTME: Wraps libopus to encode fixed-duration PCM frames to Opus packets
package encode

import (
	"errors"
	"fmt"
	"time"

	"github.com/Sendspin/audiokit-go/pkg/audio"
	"gopkg.in/hraban/opus.v2"
)

// maxOpusPacket is the largest packet libopus will produce
const maxOpusPacket = 4000

// OpusFrameDurations lists the frame durations libopus accepts
var OpusFrameDurations = []time.Duration{
	2500 * time.Microsecond,
	5 * time.Millisecond,
	10 * time.Millisecond,
	20 * time.Millisecond,
	40 * time.Millisecond,
	60 * time.Millisecond,
}

// OpusSampleRates lists the sample rates libopus accepts
var OpusSampleRates = []int{8000, 12000, 16000, 24000, 48000}

// ValidOpusFrameDuration reports whether d is an Opus frame duration
func ValidOpusFrameDuration(d time.Duration) bool {
	for _, v := range OpusFrameDurations {
		if v == d {
			return true
		}
	}
	return false
}

// ValidateOpusStream checks rate, channels and frame duration in one place
func ValidateOpusStream(sampleRate, channels int, frameDuration time.Duration) error {
	rateOK := false
	for _, r := range OpusSampleRates {
		if r == sampleRate {
			rateOK = true
			break
		}
	}
	if !rateOK {
		return fmt.Errorf("opus does not support sample rate %d (supported: 8000, 12000, 16000, 24000, 48000)", sampleRate)
	}
	if channels < 1 || channels > 2 {
		return fmt.Errorf("opus supports 1 or 2 channels, got %d", channels)
	}
	if !ValidOpusFrameDuration(frameDuration) {
		return fmt.Errorf("invalid opus packet duration %v (supported: 2.5, 5, 10, 20, 40, 60 ms)", frameDuration)
	}
	return nil
}

// DefaultOpusBitRate is the bitrate used when none is configured
func DefaultOpusBitRate(channels int) int {
	// 128 kbps for stereo, 64 kbps for mono
	return 64000 * channels
}

// OpusEncoder encodes Opus audio
type OpusEncoder struct {
	encoder    *opus.Encoder
	sampleRate int
	channels   int
	frameSize  int // samples per channel per frame
	bitRate    int
}

// NewOpus creates a new Opus encoder producing one packet per frameDuration
func NewOpus(format audio.Format, frameDuration time.Duration, bitRate int) (*OpusEncoder, error) {
	if format.Codec != audio.CodecOpus {
		return nil, fmt.Errorf("%w for Opus encoder: %s", ErrInvalidCodec, format.Codec)
	}
	if err := ValidateOpusStream(format.SampleRate, format.Channels, frameDuration); err != nil {
		return nil, err
	}

	encoder, err := opus.NewEncoder(format.SampleRate, format.Channels, opus.AppAudio)
	if err != nil {
		return nil, fmt.Errorf("failed to create opus encoder: %w", err)
	}

	if bitRate == 0 {
		bitRate = DefaultOpusBitRate(format.Channels)
	}
	if err := encoder.SetBitrate(bitRate); err != nil {
		return nil, fmt.Errorf("failed to set opus bitrate %d: %w", bitRate, err)
	}

	return &OpusEncoder{
		encoder:    encoder,
		sampleRate: format.SampleRate,
		channels:   format.Channels,
		frameSize:  format.FramesFor(frameDuration),
		bitRate:    bitRate,
	}, nil
}

// Name returns "opus"
func (e *OpusEncoder) Name() string { return audio.CodecOpus }

// FrameSamples returns samples per channel in one Opus packet
func (e *OpusEncoder) FrameSamples() int { return e.frameSize }

// BitRate returns the configured target bitrate
func (e *OpusEncoder) BitRate() int { return e.bitRate }

// Encode encodes one or more whole frames. Packets are concatenated in
// order; use EncodePackets to keep packet boundaries.
func (e *OpusEncoder) Encode(pcm []int16) ([]byte, error) {
	packets, err := e.EncodePackets(pcm)
	if err != nil {
		return nil, err
	}
	var out []byte
	for _, p := range packets {
		out = append(out, p...)
	}
	return out, nil
}

// EncodePackets encodes pcm frame by frame and returns one packet per frame
func (e *OpusEncoder) EncodePackets(pcm []int16) ([][]byte, error) {
	step := e.frameSize * e.channels
	if len(pcm)%step != 0 {
		return nil, &CodecError{
			Codec:   audio.CodecOpus,
			Code:    int(opus.ErrBadArg),
			Message: fmt.Sprintf("pcm length %d is not a multiple of frame size %d", len(pcm), step),
		}
	}

	packets := make([][]byte, 0, len(pcm)/step)
	for off := 0; off < len(pcm); off += step {
		// Opus can't exceed 4000 bytes per packet
		data := make([]byte, maxOpusPacket)
		n, err := e.encoder.Encode(pcm[off:off+step], data)
		if err != nil {
			return nil, OpusCodecError(err)
		}
		packets = append(packets, data[:n])
	}
	return packets, nil
}

// Flush returns nothing; Opus holds no packets back
func (e *OpusEncoder) Flush() ([]byte, error) {
	return nil, nil
}

// Close releases resources
func (e *OpusEncoder) Close() error {
	// opus.Encoder is released by the garbage collector
	e.encoder = nil
	return nil
}

// OpusCodecError surfaces the libopus error code of err verbatim
func OpusCodecError(err error) *CodecError {
	var oe opus.Error
	if errors.As(err, &oe) {
		return &CodecError{Codec: audio.CodecOpus, Code: int(oe), Message: oe.Error()}
	}
	return codecError(audio.CodecOpus, UnknownCode, err)
}
