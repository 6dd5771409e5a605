// ABOUTME: encode subcommand
// ABOUTME: Streams a source file through the conversion engine into a container
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/Sendspin/audiokit-go/internal/config"
	"github.com/Sendspin/audiokit-go/internal/source"
	"github.com/Sendspin/audiokit-go/internal/ui"
	"github.com/Sendspin/audiokit-go/pkg/audio/encode"
	"github.com/Sendspin/audiokit-go/pkg/convert"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
)

const (
	// readDuration is how much audio one submission carries
	readDuration = 100 * time.Millisecond

	// maxBacklog bounds how far reading may run ahead of the codec
	maxBacklog = 5 * time.Second

	toneChannels   = 2
	toneSampleRate = 48000
)

func encodeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Usage: "YAML job file"},
		&cli.StringFlag{Name: "in", Usage: "Input file (.wav, .flac, .mp3) or tone:<duration>"},
		&cli.StringFlag{Name: "out", Usage: "Output file"},
		&cli.StringFlag{Name: "codec", Usage: "Target codec: opus, aac, mp3 or pcm (default opus)"},
		&cli.IntFlag{Name: "bitrate", Usage: "Bit rate in bits per second (default: codec specific)"},
		&cli.Float64Flag{Name: "packet-ms", Usage: "Opus packet duration in milliseconds (default 20)"},
		&cli.IntFlag{Name: "min-chunk-ms", Usage: "Minimum chunk fed to the codec in milliseconds"},
		&cli.BoolFlag{Name: "drop-final-frame", Usage: "Drop a trailing partial frame instead of padding it"},
		&cli.StringFlag{Name: "log-file", Usage: "Log file path (default audiokit.log)"},
		&cli.BoolFlag{Name: "no-tui", Usage: "Disable TUI, use streaming logs instead"},
		&cli.StringFlag{Name: "metrics-addr", Usage: "Serve Prometheus metrics on this address"},
	}
}

func runEncode(c *cli.Context) error {
	cfg, err := config.Load(c.Context, c.String("config"))
	if err != nil {
		return err
	}
	applyEncodeFlags(c, cfg)

	if err := cfg.Validate(); err != nil {
		return err
	}

	useTUI := !cfg.Logging.NoTUI
	closeLog, err := setupLogging(cfg.Logging.File, useTUI)
	if err != nil {
		return err
	}
	defer closeLog()

	var metrics *convert.Metrics
	if cfg.Metrics.Addr != "" {
		reg := prometheus.NewRegistry()
		metrics = convert.NewMetrics(reg)
		serveMetrics(cfg.Metrics.Addr, reg)
	}

	return encodeJob(cfg, metrics, useTUI)
}

// applyEncodeFlags gives explicit flags precedence over the job file and
// environment
func applyEncodeFlags(c *cli.Context, cfg *config.Config) {
	if c.IsSet("in") {
		cfg.Job.Input = c.String("in")
	}
	if c.IsSet("out") {
		cfg.Job.Output = c.String("out")
	}
	if c.IsSet("codec") {
		cfg.Encoder.Codec = c.String("codec")
	}
	if c.IsSet("bitrate") {
		cfg.Encoder.BitRate = c.Int("bitrate")
	}
	if c.IsSet("packet-ms") {
		cfg.Encoder.PacketDurationMs = c.Float64("packet-ms")
	}
	if c.IsSet("min-chunk-ms") {
		cfg.Encoder.MinChunkMs = c.Int("min-chunk-ms")
	}
	if c.IsSet("drop-final-frame") {
		cfg.Encoder.DropFinalFrame = c.Bool("drop-final-frame")
	}
	if c.IsSet("log-file") {
		cfg.Logging.File = c.String("log-file")
	}
	if c.IsSet("no-tui") {
		cfg.Logging.NoTUI = c.Bool("no-tui")
	}
	if c.IsSet("metrics-addr") {
		cfg.Metrics.Addr = c.String("metrics-addr")
	}
}

// openSource opens a file or, for tone:<duration>, a generated tone
func openSource(input string) (source.Source, error) {
	if spec, ok := strings.CutPrefix(input, "tone:"); ok {
		d, err := time.ParseDuration(spec)
		if err != nil {
			return nil, fmt.Errorf("invalid tone duration %q: %w", spec, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("tone duration must be positive, got %v", d)
		}
		return source.NewTone(toneSampleRate, toneChannels, d), nil
	}
	return source.Open(input)
}

func encodeJob(cfg *config.Config, metrics *convert.Metrics, useTUI bool) error {
	src, err := openSource(cfg.Job.Input)
	if err != nil {
		return err
	}
	defer src.Close()

	engine, err := convert.New(cfg.Encoder.Codec, convert.Config{
		Input:            src.Format(),
		BitRate:          cfg.Encoder.BitRate,
		PacketDuration:   cfg.Encoder.PacketDuration(),
		MinChunkDuration: cfg.Encoder.MinChunkDuration(),
		DropFinalFrame:   cfg.Encoder.DropFinalFrame,
		Metrics:          metrics,
	})
	if err != nil {
		return err
	}
	defer engine.Close()

	f, err := os.Create(cfg.Job.Output)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	defer f.Close()

	out, err := newSink(f, engine.OutputFormat())
	if err != nil {
		return err
	}

	title, artist, _ := src.Metadata()
	log.Printf("Encoding %s (%s) -> %s as %s @ %d bps",
		cfg.Job.Input, src.Format(), cfg.Job.Output, engine.OutputFormat(), engine.BitRate())

	// TUI setup
	var tuiProg *tea.Program
	var controls *ui.Controls
	if useTUI {
		controls = ui.NewControls()
		tuiProg, err = ui.Run(controls)
		if err != nil {
			return fmt.Errorf("failed to start TUI: %w", err)
		}
		go tuiProg.Run()
		defer tuiProg.Quit()
	}

	// Helper to update TUI
	updateTUI := func(msg tea.Msg) {
		if tuiProg != nil {
			tuiProg.Send(msg)
		}
	}
	updateTUI(ui.StatusMsg{
		Input:   cfg.Job.Input,
		Output:  cfg.Job.Output,
		Title:   title,
		Artist:  artist,
		Codec:   engine.OutputFormat().Codec,
		BitRate: engine.BitRate(),
		Format:  src.Format().String(),
		State:   engine.Status().String(),
	})

	var (
		bytesOut atomic.Int64
		// guards out, outClosed and writeErr
		outMu     sync.Mutex
		outClosed bool
		writeErr  error
	)
	engine.SetCallbacks(convert.Callbacks{
		OnConverted: func(chunk convert.ConvertedChunk) {
			outMu.Lock()
			defer outMu.Unlock()
			if outClosed || writeErr != nil {
				return
			}
			if err := out.WriteChunk(chunk); err != nil {
				writeErr = err
				log.Printf("Failed to write output: %v", err)
				return
			}
			bytesOut.Add(int64(len(chunk.Data)))
		},
		OnError: func(err *encode.CodecError) {
			updateTUI(ui.StatusMsg{LastError: err.Error()})
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	start := time.Now()
	pumpDone := make(chan error, 1)
	go func() { pumpDone <- pump(ctx, src, engine) }()

	if tuiProg != nil {
		go progressLoop(ctx, engine, src.Format().SampleRate, start, &bytesOut, updateTUI)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	var stopCh <-chan ui.StopMsg
	var quitCh <-chan ui.QuitMsg
	if controls != nil {
		stopCh = controls.Stop
		quitCh = controls.Quit
	}

	aborted := false
wait:
	for {
		select {
		case err := <-pumpDone:
			pumpDone = nil
			if err != nil {
				log.Printf("Source error: %v", err)
			}
			engine.RequestStop()
		case <-stopCh:
			log.Printf("Stop requested from TUI")
			cancel()
			engine.RequestStop()
		case <-sigChan:
			log.Printf("Shutdown signal received")
			cancel()
			engine.RequestStop()
		case <-quitCh:
			log.Printf("Received quit signal from TUI")
			aborted = true
			break wait
		case <-engine.Done():
			break wait
		}
	}

	cancel()
	if aborted {
		engine.Detach()
		engine.Close()
	}

	stats := engine.Stats()
	outMu.Lock()
	outClosed = true
	closeErr := out.Close()
	outMu.Unlock()
	if closeErr != nil {
		return fmt.Errorf("failed to finalize output: %w", closeErr)
	}
	log.Printf("Converted %d/%d packets into %d bytes in %v (%d codec errors)",
		stats.Converted, stats.Submitted, bytesOut.Load(), time.Since(start).Round(time.Millisecond), stats.Errors)

	if !aborted {
		updateTUI(ui.StatusMsg{
			Submitted: stats.Submitted,
			Converted: stats.Converted,
			Errors:    stats.Errors,
			BytesOut:  bytesOut.Load(),
			Elapsed:   time.Since(start),
		})
		updateTUI(ui.DoneMsg{})
		if quitCh != nil {
			<-quitCh
		}
	}

	outMu.Lock()
	defer outMu.Unlock()
	return writeErr
}

// pump reads src and submits whole frames until EOF or ctx is cancelled
func pump(ctx context.Context, src source.Source, engine *convert.Engine) error {
	format := src.Format()
	frame := format.BytesPerFrame()
	buf := make([]byte, format.FramesFor(readDuration)*frame)
	backlog := int64(format.FramesFor(maxBacklog))

	for {
		if ctx.Err() != nil {
			return nil
		}
		for engine.Stats().Outstanding() > backlog {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(10 * time.Millisecond):
			}
		}

		n, err := src.Read(buf)
		if n > 0 {
			if err := engine.Submit(buf[:n], n/frame); err != nil {
				return err
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read source: %w", err)
		}
	}
}

// progressLoop periodically updates TUI with conversion statistics
func progressLoop(ctx context.Context, engine *convert.Engine, sampleRate int, start time.Time, bytesOut *atomic.Int64, updateTUI func(tea.Msg)) {
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-engine.Done():
			return
		case <-ticker.C:
			stats := engine.Stats()
			updateTUI(ui.StatusMsg{
				State:     stats.Status.String(),
				Submitted: stats.Submitted,
				Converted: stats.Converted,
				Errors:    stats.Errors,
				BytesOut:  bytesOut.Load(),
				Elapsed:   time.Since(start),
				Encoded:   time.Duration(stats.Converted) * time.Second / time.Duration(sampleRate),
			})
		}
	}
}
