// ABOUTME: Tests for the Ogg Opus container
// ABOUTME: Round-trips headers and packets through the writer and reader
package oggopus

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestHeadRoundTrip(t *testing.T) {
	want := Head{Channels: 2, PreSkip: DefaultPreSkip, InputSampleRate: 44100, OutputGain: -256}

	b, err := want.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary() failed: %v", err)
	}
	if len(b) != headSize || string(b[:8]) != "OpusHead" {
		t.Fatalf("unexpected head packet % x", b)
	}

	got, err := ParseHead(b)
	if err != nil {
		t.Fatalf("ParseHead() failed: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("head mismatch (-want +got):\n%s", diff)
	}
}

func TestHeadErrors(t *testing.T) {
	if _, err := (Head{Channels: 3}).MarshalBinary(); err == nil {
		t.Error("expected error for 3 channels")
	}
	if _, err := ParseHead([]byte("OpusTags")); !errors.Is(err, ErrNotOpus) {
		t.Errorf("expected ErrNotOpus, got %v", err)
	}

	b, _ := Head{Channels: 1}.MarshalBinary()
	b[18] = 1
	if _, err := ParseHead(b); err == nil {
		t.Error("expected error for mapping family 1")
	}
}

func TestTagsVendor(t *testing.T) {
	vendor, err := parseVendor(tagsPacket("audiokit"))
	if err != nil {
		t.Fatalf("parseVendor() failed: %v", err)
	}
	if vendor != "audiokit" {
		t.Errorf("expected vendor audiokit, got %q", vendor)
	}

	if _, err := parseVendor([]byte("OpusTags\xff\x00\x00\x00")); err == nil {
		t.Error("expected error for truncated vendor")
	}
}

func TestWriterReaderRoundTrip(t *testing.T) {
	packets := [][]byte{
		{0xF8, 0x01, 0x02},
		{0xF8, 0x03},
		bytes.Repeat([]byte{0xAB}, 300),
		{0xF8, 0x04, 0x05, 0x06},
	}

	var buf bytes.Buffer
	w, err := NewWriter(&buf, Head{Channels: 2, PreSkip: DefaultPreSkip, InputSampleRate: 16000}, 16000, "audiokit-test")
	if err != nil {
		t.Fatalf("NewWriter() failed: %v", err)
	}
	for _, p := range packets {
		// 20ms at 16kHz
		if err := w.WritePacket(p, 320); err != nil {
			t.Fatalf("WritePacket() failed: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if err := w.WritePacket([]byte{1}, 320); err == nil {
		t.Error("expected error writing after Close")
	}

	// 4 packets of 960 granules after the pre-skip
	if got := w.Granule(); got != DefaultPreSkip+4*960 {
		t.Errorf("Granule() = %d, want %d", got, DefaultPreSkip+4*960)
	}

	r, err := NewReader(&buf)
	if err != nil {
		t.Fatalf("NewReader() failed: %v", err)
	}
	if r.Head().Channels != 2 || r.Head().InputSampleRate != 16000 {
		t.Errorf("unexpected head %+v", r.Head())
	}
	if r.Vendor() != "audiokit-test" {
		t.Errorf("unexpected vendor %q", r.Vendor())
	}

	var got [][]byte
	for {
		p, err := r.ReadPacket()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("ReadPacket() failed: %v", err)
		}
		got = append(got, p)
	}
	if diff := cmp.Diff(packets, got); diff != "" {
		t.Errorf("packets mismatch (-want +got):\n%s", diff)
	}
}

func TestNewWriter_InvalidRate(t *testing.T) {
	if _, err := NewWriter(io.Discard, Head{Channels: 1}, 44100, "x"); err == nil {
		t.Error("expected error for 44.1kHz")
	}
}

func TestNewReader_NotOgg(t *testing.T) {
	if _, err := NewReader(bytes.NewReader([]byte("definitely not ogg data at all"))); err == nil {
		t.Error("expected error for non-ogg input")
	}
}
