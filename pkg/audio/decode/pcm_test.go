// ABOUTME: Tests for PCM decoder
// ABOUTME: Tests 16-bit and 24-bit unpacking, frame alignment and config errors
package decode

import (
	"errors"
	"testing"

	"github.com/Sendspin/audiokit-go/pkg/audio"
	"github.com/google/go-cmp/cmp"
)

func TestPCMDecode(t *testing.T) {
	tests := []struct {
		name     string
		bitDepth int
		channels int
		input    []byte
		want     []int32
	}{
		{
			// 0x0100 = 256 (16-bit) -> 256<<8 (24-bit)
			name:     "16-bit stereo",
			bitDepth: 16,
			channels: 2,
			input:    []byte{0x00, 0x01, 0x02, 0x03},
			want:     []int32{256 << 8, 770 << 8},
		},
		{
			name:     "16-bit negative",
			bitDepth: 16,
			channels: 1,
			input:    []byte{0xFF, 0xFF},
			want:     []int32{-1 << 8},
		},
		{
			name:     "24-bit stereo",
			bitDepth: 24,
			channels: 2,
			input:    []byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05},
			want:     []int32{0x020100, 0x050403},
		},
		{
			name:     "empty",
			bitDepth: 16,
			channels: 2,
			input:    []byte{},
			want:     []int32{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			format := audio.Format{Codec: audio.CodecPCM, SampleRate: 48000, Channels: tt.channels, BitDepth: tt.bitDepth}
			decoder, err := NewPCM(format)
			if err != nil {
				t.Fatalf("failed to create decoder: %v", err)
			}

			got, err := decoder.Decode(tt.input)
			if err != nil {
				t.Fatalf("decode failed: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("samples mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPCMDecode_PartialFrame(t *testing.T) {
	decoder, err := NewPCM(audio.LinearPCM16(48000, 2))
	if err != nil {
		t.Fatalf("failed to create decoder: %v", err)
	}

	// 3 bytes is neither a whole sample nor a whole frame
	if _, err := decoder.Decode([]byte{1, 2, 3}); err == nil {
		t.Error("expected error for partial frame")
	}
	if _, err := decoder.Decode([]byte{1, 2}); err == nil {
		t.Error("expected error for a single sample of a stereo frame")
	}
}

func TestNewPCM_Errors(t *testing.T) {
	tests := []struct {
		name   string
		format audio.Format
	}{
		{"opus codec", audio.Format{Codec: audio.CodecOpus, SampleRate: 48000, Channels: 2, BitDepth: 16}},
		{"32-bit", audio.Format{Codec: audio.CodecPCM, SampleRate: 48000, Channels: 2, BitDepth: 32}},
		{"no channels", audio.Format{Codec: audio.CodecPCM, SampleRate: 48000, BitDepth: 16}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoder, err := NewPCM(tt.format)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
			if decoder != nil {
				t.Error("expected nil decoder on error")
			}
		})
	}
}
