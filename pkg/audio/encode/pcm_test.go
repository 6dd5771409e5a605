// ABOUTME: Unit tests for PCM encoder
// ABOUTME: Checks byte layout of 16-bit passthrough and 24-bit repacking
package encode

import (
	"errors"
	"strings"
	"testing"

	"github.com/Sendspin/audiokit-go/pkg/audio"
	"github.com/google/go-cmp/cmp"
)

func TestNewPCM_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		format  audio.Format
		wantIs  error
		wantMsg string
	}{
		{
			name:   "opus format",
			format: audio.Format{Codec: audio.CodecOpus, SampleRate: 48000, Channels: 2, BitDepth: 16},
			wantIs: ErrInvalidCodec,
		},
		{
			name:    "8-bit",
			format:  audio.Format{Codec: audio.CodecPCM, SampleRate: 8000, Channels: 1, BitDepth: 8},
			wantMsg: "unsupported bit depth: 8",
		},
		{
			name:    "32-bit",
			format:  audio.Format{Codec: audio.CodecPCM, SampleRate: 48000, Channels: 2, BitDepth: 32},
			wantMsg: "unsupported bit depth: 32",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := NewPCM(tt.format)
			if err == nil {
				t.Fatalf("NewPCM() = %v, want error", enc)
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Errorf("NewPCM() error = %v, want %v", err, tt.wantIs)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("NewPCM() error = %v, want it to mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestPCMEncoder_Repack(t *testing.T) {
	tests := []struct {
		name     string
		bitDepth int
		samples  []int16
		want     []byte
	}{
		{
			name:     "16-bit passthrough",
			bitDepth: 16,
			samples:  []int16{0, 0x1234, -2},
			want:     []byte{0x00, 0x00, 0x34, 0x12, 0xFE, 0xFF},
		},
		{
			name:     "24-bit widens into the high bytes",
			bitDepth: 24,
			samples:  []int16{0x1234},
			want:     []byte{0x00, 0x34, 0x12},
		},
		{
			name:     "24-bit keeps the sign",
			bitDepth: 24,
			samples:  []int16{-1, -32768},
			want:     []byte{0x00, 0xFF, 0xFF, 0x00, 0x00, 0x80},
		},
		{
			name:     "24-bit full scale",
			bitDepth: 24,
			samples:  []int16{32767, 0},
			want:     []byte{0x00, 0xFF, 0x7F, 0x00, 0x00, 0x00},
		},
		{
			name:     "empty input",
			bitDepth: 24,
			samples:  nil,
			want:     []byte{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := NewPCM(audio.Format{Codec: audio.CodecPCM, SampleRate: 48000, Channels: 1, BitDepth: tt.bitDepth})
			if err != nil {
				t.Fatalf("NewPCM() failed: %v", err)
			}
			defer enc.Close()

			got, err := enc.Encode(tt.samples)
			if err != nil {
				t.Fatalf("Encode() failed: %v", err)
			}
			if len(got) != len(tt.samples)*tt.bitDepth/8 {
				t.Errorf("Encode() produced %d bytes for %d samples", len(got), len(tt.samples))
			}
			if diff := cmp.Diff(tt.want, got, cmpEmptyBytes); diff != "" {
				t.Errorf("Encode() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// 24-bit output must round trip through the 24-bit reader back to 16 bits
func TestPCMEncoder_24BitRoundTrip(t *testing.T) {
	enc, err := NewPCM(audio.Format{Codec: audio.CodecPCM, SampleRate: 48000, Channels: 2, BitDepth: 24})
	if err != nil {
		t.Fatalf("NewPCM() failed: %v", err)
	}
	defer enc.Close()

	in := []int16{-32768, -300, -1, 0, 1, 300, 32767}
	out, err := enc.Encode(in)
	if err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}
	if diff := cmp.Diff(in, audio.Int16FromBytes(out, 24)); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestPCMEncoder_Framing(t *testing.T) {
	enc, err := NewPCM(audio.LinearPCM16(16000, 1))
	if err != nil {
		t.Fatalf("NewPCM() failed: %v", err)
	}

	if enc.Name() != audio.CodecPCM {
		t.Errorf("Name() = %q, want %q", enc.Name(), audio.CodecPCM)
	}
	if enc.FrameSamples() != 1 {
		t.Errorf("FrameSamples() = %d, want 1", enc.FrameSamples())
	}
	tail, err := enc.Flush()
	if err != nil || len(tail) != 0 {
		t.Errorf("Flush() = %v, %v; want empty, nil", tail, err)
	}
	if err := enc.Close(); err != nil {
		t.Errorf("Close() unexpected error = %v", err)
	}
}

var cmpEmptyBytes = cmp.Comparer(func(a, b []byte) bool {
	return string(a) == string(b)
})
