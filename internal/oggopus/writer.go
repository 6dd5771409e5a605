// ABOUTME: Ogg Opus stream writer
// ABOUTME: Wraps raw Opus packets in Ogg pages with 48 kHz granule positions
package oggopus

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/jonas747/ogg"
)

// Writer writes an Ogg Opus stream, one packet per page
type Writer struct {
	enc        *ogg.Encoder
	sampleRate int
	granule    int64
	pending    []byte
	closed     bool
}

// NewWriter writes the OpusHead and OpusTags pages to w. sampleRate is the
// rate packets are encoded at; it scales packet durations to the 48 kHz
// granule clock.
func NewWriter(w io.Writer, head Head, sampleRate int, vendor string) (*Writer, error) {
	if sampleRate <= 0 || granuleRate%sampleRate != 0 {
		return nil, fmt.Errorf("opus sample rate %d does not divide 48000", sampleRate)
	}
	headPacket, err := head.MarshalBinary()
	if err != nil {
		return nil, err
	}

	enc := ogg.NewEncoder(uuid.New().ID(), w)
	if err := enc.EncodeBOS(0, [][]byte{headPacket}); err != nil {
		return nil, fmt.Errorf("failed to write OpusHead page: %w", err)
	}
	if err := enc.Encode(0, [][]byte{tagsPacket(vendor)}); err != nil {
		return nil, fmt.Errorf("failed to write OpusTags page: %w", err)
	}

	return &Writer{
		enc:        enc,
		sampleRate: sampleRate,
		granule:    int64(head.PreSkip),
	}, nil
}

// WritePacket appends one Opus packet covering samples samples per channel
// at the stream's sample rate. The last packet is held back so Close can
// mark it end of stream.
func (w *Writer) WritePacket(packet []byte, samples int) error {
	if w.closed {
		return fmt.Errorf("ogg opus writer is closed")
	}
	if w.pending != nil {
		if err := w.enc.Encode(w.granule, [][]byte{w.pending}); err != nil {
			return fmt.Errorf("failed to write ogg page: %w", err)
		}
	}
	w.granule += int64(samples) * int64(granuleRate/w.sampleRate)
	w.pending = append([]byte(nil), packet...)
	return nil
}

// Granule returns the granule position of the last written packet
func (w *Writer) Granule() int64 {
	return w.granule
}

// Close writes the final page with the end-of-stream flag. It does not close
// the underlying writer.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	var packets [][]byte
	if w.pending != nil {
		packets = [][]byte{w.pending}
		w.pending = nil
	}
	if err := w.enc.EncodeEOS(w.granule, packets); err != nil {
		return fmt.Errorf("failed to write final ogg page: %w", err)
	}
	return nil
}
