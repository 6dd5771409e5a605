// ABOUTME: Re-frames arbitrary PCM chunks into codec-sized frames
// ABOUTME: Attributes consumed bytes back to the packets they were submitted as
package convert

import "bytes"

// segment is one Submit call: packets of bytesPerPacket each, occupying
// [start, start+packets*bytesPerPacket) of the received byte stream
type segment struct {
	start          int64
	bytesPerPacket int
	packets        int
	done           int
}

// framer is the pending buffer. It is owned by the engine's worker.
type framer struct {
	chunkBytes int
	frameBytes int
	pending    []byte
	received   int64
	consumed   int64
	segments   []segment
}

// newFramer cuts chunks of chunkBytes, a multiple of the codec frame
// frameBytes
func newFramer(chunkBytes, frameBytes int) *framer {
	return &framer{chunkBytes: chunkBytes, frameBytes: frameBytes}
}

func (f *framer) push(data []byte, bytesPerPacket, packets int) {
	f.segments = append(f.segments, segment{
		start:          f.received,
		bytesPerPacket: bytesPerPacket,
		packets:        packets,
	})
	f.received += int64(len(data))
	f.pending = append(f.pending, data...)
}

// buffered returns the number of bytes waiting for a full chunk
func (f *framer) buffered() int {
	return len(f.pending)
}

// next takes one full chunk off the pending buffer. packets is the number
// of submitted packets whose last byte lies inside the chunk.
func (f *framer) next() (chunk []byte, packets int, ok bool) {
	if len(f.pending) < f.chunkBytes {
		return nil, 0, false
	}
	chunk = bytes.Clone(f.pending[:f.chunkBytes])
	f.pending = append(f.pending[:0], f.pending[f.chunkBytes:]...)
	return chunk, f.advance(f.chunkBytes), true
}

// drain empties the pending buffer. With pad the remainder is zero-filled
// up to the next codec frame and returned; without it whole frames are
// returned and a trailing partial frame is discarded. Either way every
// outstanding packet is reported complete.
func (f *framer) drain(pad bool) (chunk []byte, packets int) {
	n := len(f.pending)
	if n == 0 {
		return nil, f.advance(0)
	}
	size := n / f.frameBytes * f.frameBytes
	if pad && size < n {
		size += f.frameBytes
	}
	if size > 0 {
		chunk = make([]byte, size)
		copy(chunk, f.pending)
	}
	f.pending = nil
	return chunk, f.advance(n)
}

func (f *framer) advance(n int) int {
	f.consumed += int64(n)

	total := 0
	for len(f.segments) > 0 {
		s := &f.segments[0]
		completed := int((f.consumed - s.start) / int64(s.bytesPerPacket))
		completed = max(0, min(completed, s.packets))
		total += completed - s.done
		s.done = completed
		if s.done < s.packets {
			break
		}
		f.segments = f.segments[1:]
	}
	return total
}
