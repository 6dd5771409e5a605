// ABOUTME: Entry point for the audiokit CLI
// ABOUTME: Dispatches the encode, decode and play subcommands
package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/Sendspin/audiokit-go/internal/version"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
)

func newApp() *cli.App {
	return &cli.App{
		Name:    version.Product,
		Usage:   "Streaming PCM to AAC, MP3 and Opus conversion",
		Version: version.Version,
		Commands: []*cli.Command{
			{
				Name:      "encode",
				Usage:     "Convert a WAV, FLAC or MP3 file (or a test tone) to another codec",
				UsageText: "audiokit encode --in <file|tone:5s> --out <file> [--codec opus|aac|mp3|pcm]",
				Flags:     encodeFlags(),
				Action:    runEncode,
			},
			{
				Name:   "decode",
				Usage:  "Decode an Ogg Opus file to WAV",
				Flags:  decodeFlags(false),
				Action: func(c *cli.Context) error { return runDecode(c, false) },
			},
			{
				Name:   "play",
				Usage:  "Decode an Ogg Opus file and play it",
				Flags:  decodeFlags(true),
				Action: func(c *cli.Context) error { return runDecode(c, true) },
			},
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatalf("audiokit: %v", err)
	}
}

// setupLogging sends logs to the file only when the TUI owns the terminal,
// and to both stdout and the file otherwise
func setupLogging(path string, useTUI bool) (func(), error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return nil, fmt.Errorf("error opening log file: %w", err)
	}

	if useTUI {
		// TUI mode: log only to file
		log.SetOutput(f)
	} else {
		// Streaming logs mode: log to both stdout and file
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}
	return func() { _ = f.Close() }, nil
}

// serveMetrics exposes reg on addr until the process exits
func serveMetrics(addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	go func() {
		log.Printf("Serving metrics on %s/metrics", addr)
		if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Metrics server error: %v", err)
		}
	}()
}
