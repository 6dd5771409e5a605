// ABOUTME: decode and play subcommands
// ABOUTME: Reads Ogg Opus packets through the packet decoder into WAV or speakers
package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/Sendspin/audiokit-go/internal/oggopus"
	"github.com/Sendspin/audiokit-go/pkg/audio/decode"
	"github.com/Sendspin/audiokit-go/pkg/audio/encode"
	"github.com/Sendspin/audiokit-go/pkg/audio/output"
	"github.com/urfave/cli/v2"
)

// defaultDecodeRate is used when the stream's original rate is not one
// libopus decodes at
const defaultDecodeRate = 48000

func decodeFlags(play bool) []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{Name: "in", Usage: "Input Ogg Opus file", Required: true},
		&cli.IntFlag{Name: "rate", Usage: "Decode sample rate: 8000, 12000, 16000, 24000 or 48000 (default: stream rate)"},
		&cli.StringFlag{Name: "log-file", Usage: "Log file path", Value: "audiokit.log"},
	}
	if play {
		return append(flags, &cli.IntFlag{Name: "volume", Usage: "Playback volume 0-100", Value: 100})
	}
	return append(flags, &cli.StringFlag{Name: "out", Usage: "Output WAV file", Required: true})
}

func runDecode(c *cli.Context, play bool) error {
	closeLog, err := setupLogging(c.String("log-file"), false)
	if err != nil {
		return err
	}
	defer closeLog()

	f, err := os.Open(c.String("in"))
	if err != nil {
		return fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	reader, err := oggopus.NewReader(f)
	if err != nil {
		return err
	}
	head := reader.Head()
	log.Printf("Ogg Opus stream: %d channels, original rate %d Hz, vendor %q",
		head.Channels, head.InputSampleRate, reader.Vendor())

	first, err := reader.ReadPacket()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("stream has no audio packets")
		}
		return err
	}
	duration, err := oggopus.PacketDuration(first)
	if err != nil {
		return err
	}

	sampleRate := c.Int("rate")
	if sampleRate == 0 {
		sampleRate = decodeRate(head.InputSampleRate, head.Channels)
	}
	dec, err := decode.NewOpusPacketDecoder(decode.OpusDecoderConfig{
		SampleRate:     sampleRate,
		Channels:       head.Channels,
		PacketDuration: duration,
	})
	if err != nil {
		return err
	}
	defer dec.Close()

	var dst output.Output
	if play {
		player := output.NewOto()
		player.SetVolume(c.Int("volume"))
		dst = player
	} else {
		of, err := os.Create(c.String("out"))
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer of.Close()
		dst = output.NewWAV(of)
	}
	if err := dst.Open(dec.Format()); err != nil {
		return err
	}

	skip := newPreSkipper(head.PreSkip, sampleRate, dec.Format().BytesPerFrame())
	var (
		packets, failures int
		writeErr          error
	)
	dec.SetCallbacks(decode.OpusCallbacks{
		OnDecoded: func(pcm []byte) {
			if writeErr != nil {
				return
			}
			writeErr = dst.Write(skip.apply(pcm))
		},
		OnError: func(err *encode.CodecError) {
			failures++
			log.Printf("Packet %d: %v", packets, err)
		},
	})

	for packet := first; ; {
		dec.Decode(packet)
		packets++
		if writeErr != nil {
			break
		}

		packet, err = reader.ReadPacket()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			dst.Close()
			return fmt.Errorf("failed to read packet %d: %w", packets, err)
		}
	}

	if err := dst.Close(); err != nil && writeErr == nil {
		writeErr = err
	}
	log.Printf("Decoded %d packets of %v at %d Hz (%d failed)", packets, duration, sampleRate, failures)
	return writeErr
}

// decodeRate picks the sample rate to decode at
func decodeRate(inputRate, channels int) int {
	if encode.ValidateOpusStream(inputRate, channels, 20*time.Millisecond) == nil {
		return inputRate
	}
	return defaultDecodeRate
}

// preSkipper discards the encoder lookahead at the start of the stream
type preSkipper struct {
	remaining int // bytes
}

// newPreSkipper converts preSkip, counted at 48 kHz, to bytes at sampleRate
func newPreSkipper(preSkip, sampleRate, bytesPerFrame int) *preSkipper {
	frames := preSkip * sampleRate / 48000
	return &preSkipper{remaining: frames * bytesPerFrame}
}

func (p *preSkipper) apply(pcm []byte) []byte {
	if p.remaining == 0 {
		return pcm
	}
	if len(pcm) <= p.remaining {
		p.remaining -= len(pcm)
		return nil
	}
	pcm = pcm[p.remaining:]
	p.remaining = 0
	return pcm
}
