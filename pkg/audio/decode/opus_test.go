// ABOUTME: Tests for Opus packet decoder
// ABOUTME: Tests validation, decoding, error events and determinism
package decode

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/Sendspin/audiokit-go/pkg/audio"
	"github.com/Sendspin/audiokit-go/pkg/audio/encode"
	"github.com/google/go-cmp/cmp"
	"gopkg.in/hraban/opus.v2"
)

// encodePackets produces count Opus packets of a 440Hz tone
func encodePackets(t *testing.T, rate, channels int, d time.Duration, count int) [][]byte {
	t.Helper()
	format := audio.Format{Codec: audio.CodecOpus, SampleRate: rate, Channels: channels}
	enc, err := encode.NewOpus(format, d, 0)
	if err != nil {
		t.Fatalf("failed to create encoder: %v", err)
	}
	defer enc.Close()

	frames := enc.FrameSamples() * count
	pcm := make([]int16, frames*channels)
	for i := 0; i < frames; i++ {
		v := int16(math.Sin(2*math.Pi*440*float64(i)/float64(rate)) * 12000)
		for ch := 0; ch < channels; ch++ {
			pcm[i*channels+ch] = v
		}
	}

	packets, err := enc.EncodePackets(pcm)
	if err != nil {
		t.Fatalf("failed to encode: %v", err)
	}
	return packets
}

func TestNewOpusPacketDecoder(t *testing.T) {
	tests := []struct {
		name    string
		cfg     OpusDecoderConfig
		wantErr bool
	}{
		{"48kHz stereo 20ms", OpusDecoderConfig{SampleRate: 48000, Channels: 2, PacketDuration: 20 * time.Millisecond}, false},
		{"16kHz mono 60ms", OpusDecoderConfig{SampleRate: 16000, Channels: 1, PacketDuration: 60 * time.Millisecond}, false},
		{"8kHz mono 2.5ms", OpusDecoderConfig{SampleRate: 8000, Channels: 1, PacketDuration: 2500 * time.Microsecond}, false},
		{"44.1kHz", OpusDecoderConfig{SampleRate: 44100, Channels: 2, PacketDuration: 20 * time.Millisecond}, true},
		{"three channels", OpusDecoderConfig{SampleRate: 48000, Channels: 3, PacketDuration: 20 * time.Millisecond}, true},
		{"no channels", OpusDecoderConfig{SampleRate: 48000, Channels: 0, PacketDuration: 20 * time.Millisecond}, true},
		{"30ms", OpusDecoderConfig{SampleRate: 48000, Channels: 2, PacketDuration: 30 * time.Millisecond}, true},
		{"no duration", OpusDecoderConfig{SampleRate: 48000, Channels: 2}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec, err := NewOpusPacketDecoder(tt.cfg)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got %v", err)
				}
				if dec != nil {
					t.Error("expected nil decoder on error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewOpusPacketDecoder() unexpected error = %v", err)
			}
			defer dec.Close()

			want := int(int64(tt.cfg.SampleRate) * int64(tt.cfg.PacketDuration) / int64(time.Second))
			if dec.FrameSamples() != want {
				t.Errorf("FrameSamples() = %d, want %d", dec.FrameSamples(), want)
			}
		})
	}
}

func TestOpusPacketDecoder_Decode(t *testing.T) {
	packets := encodePackets(t, 48000, 2, 20*time.Millisecond, 5)

	var decoded [][]byte
	var failures int
	dec, err := NewOpusPacketDecoder(OpusDecoderConfig{
		SampleRate:     48000,
		Channels:       2,
		PacketDuration: 20 * time.Millisecond,
		Callbacks: OpusCallbacks{
			OnDecoded: func(pcm []byte) { decoded = append(decoded, pcm) },
			OnError:   func(err *encode.CodecError) { failures++ },
		},
	})
	if err != nil {
		t.Fatalf("failed to create decoder: %v", err)
	}
	defer dec.Close()

	for _, p := range packets {
		dec.Decode(p)
	}

	if failures != 0 {
		t.Errorf("expected no failures, got %d", failures)
	}
	if len(decoded) != len(packets) {
		t.Fatalf("expected one event per packet, got %d for %d", len(decoded), len(packets))
	}
	// 48000 * 0.020 * 2 channels * 2 bytes
	for i, pcm := range decoded {
		if len(pcm) != 3840 {
			t.Errorf("packet %d: expected 3840 bytes, got %d", i, len(pcm))
		}
	}

	if got := dec.Format(); got != audio.LinearPCM16(48000, 2) {
		t.Errorf("unexpected output format %v", got)
	}
}

func TestOpusPacketDecoder_Deterministic(t *testing.T) {
	packets := encodePackets(t, 16000, 1, 10*time.Millisecond, 20)

	cfg := OpusDecoderConfig{SampleRate: 16000, Channels: 1, PacketDuration: 10 * time.Millisecond}
	a, err := NewOpusPacketDecoder(cfg)
	if err != nil {
		t.Fatalf("failed to create decoder: %v", err)
	}
	defer a.Close()
	b, err := NewOpusPacketDecoder(cfg)
	if err != nil {
		t.Fatalf("failed to create decoder: %v", err)
	}
	defer b.Close()

	for i, p := range packets {
		pa, err := a.DecodePacket(p)
		if err != nil {
			t.Fatalf("packet %d: decoder a failed: %v", i, err)
		}
		pb, err := b.DecodePacket(p)
		if err != nil {
			t.Fatalf("packet %d: decoder b failed: %v", i, err)
		}
		if diff := cmp.Diff(pa, pb); diff != "" {
			t.Fatalf("packet %d: decoders disagree (-a +b):\n%s", i, diff)
		}
	}
}

func TestOpusPacketDecoder_ErrorCode(t *testing.T) {
	// a 20ms packet does not fit the 10ms decode buffer
	packets := encodePackets(t, 48000, 1, 20*time.Millisecond, 1)

	var got *encode.CodecError
	decodedEvents := 0
	dec, err := NewOpusPacketDecoder(OpusDecoderConfig{
		SampleRate:     48000,
		Channels:       1,
		PacketDuration: 10 * time.Millisecond,
		Callbacks: OpusCallbacks{
			OnDecoded: func(pcm []byte) { decodedEvents++ },
			OnError:   func(err *encode.CodecError) { got = err },
		},
	})
	if err != nil {
		t.Fatalf("failed to create decoder: %v", err)
	}
	defer dec.Close()

	dec.Decode(packets[0])

	if decodedEvents != 0 {
		t.Errorf("expected no decoded event, got %d", decodedEvents)
	}
	if got == nil {
		t.Fatal("expected an error event")
	}
	if got.Codec != audio.CodecOpus || got.Code != int(opus.ErrBufferTooSmall) {
		t.Errorf("expected libopus buffer-too-small code %d, got %+v", int(opus.ErrBufferTooSmall), got)
	}
}

func TestOpusPacketDecoder_EmptyPacket(t *testing.T) {
	dec, err := NewOpusPacketDecoder(OpusDecoderConfig{SampleRate: 48000, Channels: 2, PacketDuration: 20 * time.Millisecond})
	if err != nil {
		t.Fatalf("failed to create decoder: %v", err)
	}
	defer dec.Close()

	_, err = dec.DecodePacket(nil)
	var ce *encode.CodecError
	if !errors.As(err, &ce) {
		t.Fatalf("expected CodecError, got %v", err)
	}
}

func TestOpusPacketDecoder_Close(t *testing.T) {
	dec, err := NewOpusPacketDecoder(OpusDecoderConfig{SampleRate: 48000, Channels: 2, PacketDuration: 20 * time.Millisecond})
	if err != nil {
		t.Fatalf("failed to create decoder: %v", err)
	}

	if err := dec.Close(); err != nil {
		t.Errorf("expected Close to succeed, got error: %v", err)
	}
	if err := dec.Close(); err != nil {
		t.Errorf("expected second Close to succeed, got error: %v", err)
	}

	if _, err := dec.DecodePacket([]byte{0xF8, 0xFF, 0xFE}); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}

	var reported *encode.CodecError
	dec.SetCallbacks(OpusCallbacks{OnError: func(err *encode.CodecError) { reported = err }})
	dec.Decode([]byte{0xF8, 0xFF, 0xFE})
	if reported == nil {
		t.Error("expected an error event after Close")
	}
}
