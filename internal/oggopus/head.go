// ABOUTME: Ogg Opus identification and comment headers
// ABOUTME: Builds and parses the OpusHead and OpusTags packets
package oggopus

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	headMagic = "OpusHead"
	tagsMagic = "OpusTags"
	headSize  = 19

	// DefaultPreSkip is the libopus encoder lookahead at 48 kHz
	DefaultPreSkip = 312

	// granuleRate is the clock Ogg Opus granule positions count in
	granuleRate = 48000
)

// ErrNotOpus is returned for streams that do not start with OpusHead
var ErrNotOpus = errors.New("not an ogg opus stream")

// Head is the identification header of an Ogg Opus stream
type Head struct {
	Channels        int
	PreSkip         int
	InputSampleRate int
	OutputGain      int // Q7.8 dB
}

// MarshalBinary encodes h as an OpusHead packet (channel mapping family 0)
func (h Head) MarshalBinary() ([]byte, error) {
	if h.Channels < 1 || h.Channels > 2 {
		return nil, fmt.Errorf("mapping family 0 supports 1 or 2 channels, got %d", h.Channels)
	}

	b := make([]byte, headSize)
	copy(b, headMagic)
	b[8] = 1 // version
	b[9] = byte(h.Channels)
	binary.LittleEndian.PutUint16(b[10:], uint16(h.PreSkip))
	binary.LittleEndian.PutUint32(b[12:], uint32(h.InputSampleRate))
	binary.LittleEndian.PutUint16(b[16:], uint16(int16(h.OutputGain)))
	b[18] = 0 // mapping family
	return b, nil
}

// ParseHead decodes an OpusHead packet
func ParseHead(b []byte) (Head, error) {
	if len(b) < headSize || !bytes.HasPrefix(b, []byte(headMagic)) {
		return Head{}, ErrNotOpus
	}
	if b[8]>>4 != 0 {
		return Head{}, fmt.Errorf("unsupported opus head version %d", b[8])
	}
	if b[18] != 0 {
		return Head{}, fmt.Errorf("unsupported channel mapping family %d", b[18])
	}
	return Head{
		Channels:        int(b[9]),
		PreSkip:         int(binary.LittleEndian.Uint16(b[10:])),
		InputSampleRate: int(binary.LittleEndian.Uint32(b[12:])),
		OutputGain:      int(int16(binary.LittleEndian.Uint16(b[16:]))),
	}, nil
}

// tagsPacket builds an OpusTags packet with no user comments
func tagsPacket(vendor string) []byte {
	b := make([]byte, 0, len(tagsMagic)+8+len(vendor))
	b = append(b, tagsMagic...)
	b = binary.LittleEndian.AppendUint32(b, uint32(len(vendor)))
	b = append(b, vendor...)
	b = binary.LittleEndian.AppendUint32(b, 0)
	return b
}

// parseVendor returns the vendor string of an OpusTags packet
func parseVendor(b []byte) (string, error) {
	if len(b) < len(tagsMagic)+4 || !bytes.HasPrefix(b, []byte(tagsMagic)) {
		return "", fmt.Errorf("missing OpusTags header")
	}
	n := int(binary.LittleEndian.Uint32(b[len(tagsMagic):]))
	start := len(tagsMagic) + 4
	if n < 0 || start+n > len(b) {
		return "", fmt.Errorf("truncated OpusTags vendor string")
	}
	return string(b[start : start+n]), nil
}
