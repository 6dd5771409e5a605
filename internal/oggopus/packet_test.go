// ABOUTME: Tests for Opus TOC parsing
// ABOUTME: Checks packet durations across modes and frame count codes
package oggopus

import (
	"testing"
	"time"
)

func TestPacketDuration(t *testing.T) {
	tests := []struct {
		name    string
		packet  []byte
		want    time.Duration
		wantErr bool
	}{
		{"celt fb 20ms", []byte{0xF8, 0x00}, 20 * time.Millisecond, false},
		{"celt fb 2.5ms", []byte{0xE0}, 2500 * time.Microsecond, false},
		{"silk nb 60ms", []byte{0x18}, 60 * time.Millisecond, false},
		{"hybrid fb 10ms", []byte{0x70}, 10 * time.Millisecond, false},
		{"two frames", []byte{0xF9}, 40 * time.Millisecond, false},
		{"code 3 three frames", []byte{0xFB, 0x03}, 60 * time.Millisecond, false},
		{"code 3 too long", []byte{0xFB, 0x07}, 0, true},
		{"code 3 zero frames", []byte{0xFB, 0x00}, 0, true},
		{"code 3 truncated", []byte{0xFB}, 0, true},
		{"empty", nil, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PacketDuration(tt.packet)
			if (err != nil) != tt.wantErr {
				t.Fatalf("PacketDuration() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("PacketDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}
