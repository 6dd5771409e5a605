// ABOUTME: Unit tests for AAC encoder
// ABOUTME: Tests AAC frame handling, ADTS output and defaults
package encode

import (
	"errors"
	"strings"
	"testing"

	"github.com/Sendspin/audiokit-go/pkg/audio"
)

func aacFormat(rate, channels int) audio.Format {
	return audio.Format{Codec: audio.CodecAAC, SampleRate: rate, Channels: channels}
}

func TestNewAAC(t *testing.T) {
	tests := []struct {
		name        string
		format      audio.Format
		wantErr     bool
		errContains string
	}{
		{"16kHz mono", aacFormat(16000, 1), false, ""},
		{"44.1kHz stereo", aacFormat(44100, 2), false, ""},
		{"invalid codec", audio.Format{Codec: "mp3", SampleRate: 44100, Channels: 2}, true, "invalid codec"},
		{"too many channels", aacFormat(44100, 6), true, "channels"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoder, err := NewAAC(tt.format, 0)
			if tt.wantErr {
				if err == nil {
					t.Fatal("NewAAC() expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("NewAAC() error = %v, want error containing %v", err, tt.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewAAC() unexpected error = %v", err)
			}
			defer encoder.Close()

			if encoder.FrameSamples() != AACFrameSamples {
				t.Errorf("FrameSamples() = %d, want %d", encoder.FrameSamples(), AACFrameSamples)
			}
		})
	}
}

func TestDefaultAACBitRate(t *testing.T) {
	tests := []struct {
		rate, channels, want int
	}{
		{44100, 2, 128000},
		{16000, 1, 64000},
		{8000, 1, 48000},
	}
	for _, tt := range tests {
		if got := DefaultAACBitRate(tt.rate, tt.channels); got != tt.want {
			t.Errorf("DefaultAACBitRate(%d, %d) = %d, want %d", tt.rate, tt.channels, got, tt.want)
		}
	}
}

func TestAACEncoder_EncodeProducesADTS(t *testing.T) {
	encoder, err := NewAAC(aacFormat(44100, 2), 0)
	if err != nil {
		t.Fatalf("NewAAC() failed: %v", err)
	}
	defer encoder.Close()

	pcm := make([]int16, 4*AACFrameSamples*2)
	for i := range pcm {
		pcm[i] = int16((i % 200) * 100)
	}

	var out []byte
	for i := 0; i < 3; i++ {
		data, err := encoder.Encode(pcm)
		if err != nil {
			t.Fatalf("Encode() failed: %v", err)
		}
		out = append(out, data...)
	}

	// ADTS sync word 0xFFF
	if len(out) < 2 || out[0] != 0xFF || out[1]&0xF0 != 0xF0 {
		t.Fatalf("expected ADTS sync word, got % x", out[:min(len(out), 4)])
	}
}

func TestAACEncoder_PartialFrame(t *testing.T) {
	encoder, err := NewAAC(aacFormat(16000, 1), 0)
	if err != nil {
		t.Fatalf("NewAAC() failed: %v", err)
	}
	defer encoder.Close()

	_, err = encoder.Encode(make([]int16, 1000))
	var ce *CodecError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *CodecError, got %v", err)
	}
}

func TestAACEncoder_CloseTwice(t *testing.T) {
	encoder, err := NewAAC(aacFormat(16000, 1), 0)
	if err != nil {
		t.Fatalf("NewAAC() failed: %v", err)
	}
	if err := encoder.Close(); err != nil {
		t.Errorf("Close() unexpected error = %v", err)
	}
	if err := encoder.Close(); err != nil {
		t.Errorf("second Close() unexpected error = %v", err)
	}
}
