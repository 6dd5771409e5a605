// ABOUTME: Opus packet table-of-contents parsing
// ABOUTME: Derives the audio duration of a packet from its TOC byte
package oggopus

import (
	"fmt"
	"time"
)

// frameDurations indexed by TOC config (RFC 6716 section 3.1)
var frameDurations = [32]time.Duration{
	// SILK-only NB, MB, WB
	10 * time.Millisecond, 20 * time.Millisecond, 40 * time.Millisecond, 60 * time.Millisecond,
	10 * time.Millisecond, 20 * time.Millisecond, 40 * time.Millisecond, 60 * time.Millisecond,
	10 * time.Millisecond, 20 * time.Millisecond, 40 * time.Millisecond, 60 * time.Millisecond,
	// Hybrid SWB, FB
	10 * time.Millisecond, 20 * time.Millisecond,
	10 * time.Millisecond, 20 * time.Millisecond,
	// CELT-only NB, WB, SWB, FB
	2500 * time.Microsecond, 5 * time.Millisecond, 10 * time.Millisecond, 20 * time.Millisecond,
	2500 * time.Microsecond, 5 * time.Millisecond, 10 * time.Millisecond, 20 * time.Millisecond,
	2500 * time.Microsecond, 5 * time.Millisecond, 10 * time.Millisecond, 20 * time.Millisecond,
	2500 * time.Microsecond, 5 * time.Millisecond, 10 * time.Millisecond, 20 * time.Millisecond,
}

// PacketDuration returns the audio duration one Opus packet carries
func PacketDuration(packet []byte) (time.Duration, error) {
	if len(packet) == 0 {
		return 0, fmt.Errorf("empty opus packet")
	}
	toc := packet[0]
	frame := frameDurations[toc>>3]

	var frames int
	switch toc & 0x3 {
	case 0:
		frames = 1
	case 1, 2:
		frames = 2
	case 3:
		if len(packet) < 2 {
			return 0, fmt.Errorf("opus packet missing frame count byte")
		}
		frames = int(packet[1] & 0x3F)
		if frames == 0 {
			return 0, fmt.Errorf("opus packet declares zero frames")
		}
	}

	d := time.Duration(frames) * frame
	if d > 120*time.Millisecond {
		return 0, fmt.Errorf("opus packet duration %v exceeds 120ms", d)
	}
	return d, nil
}
