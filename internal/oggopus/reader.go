// ABOUTME: Ogg Opus stream reader
// ABOUTME: Parses the stream headers and yields raw Opus packets in order
package oggopus

import (
	"errors"
	"fmt"
	"io"

	"github.com/jonas747/ogg"
)

// Reader reads the packets of a single Ogg Opus stream
type Reader struct {
	dec    *ogg.PacketDecoder
	head   Head
	vendor string
}

// NewReader consumes the OpusHead and OpusTags packets from r
func NewReader(r io.Reader) (*Reader, error) {
	dec := ogg.NewPacketDecoder(ogg.NewDecoder(r))

	packet, _, err := dec.Decode()
	if err != nil {
		return nil, fmt.Errorf("failed to read OpusHead: %w", err)
	}
	head, err := ParseHead(packet)
	if err != nil {
		return nil, err
	}

	packet, _, err = dec.Decode()
	if err != nil {
		return nil, fmt.Errorf("failed to read OpusTags: %w", err)
	}
	vendor, err := parseVendor(packet)
	if err != nil {
		return nil, err
	}

	return &Reader{dec: dec, head: head, vendor: vendor}, nil
}

// Head returns the stream identification header
func (r *Reader) Head() Head { return r.head }

// Vendor returns the encoder vendor string from OpusTags
func (r *Reader) Vendor() string { return r.vendor }

// ReadPacket returns the next Opus packet, or io.EOF at end of stream
func (r *Reader) ReadPacket() ([]byte, error) {
	for {
		packet, _, err := r.dec.Decode()
		if err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, io.EOF
			}
			return nil, err
		}
		// an end-of-stream page may carry no data
		if len(packet) > 0 {
			return packet, nil
		}
	}
}
