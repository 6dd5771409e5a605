// ABOUTME: CLI job configuration
// ABOUTME: Loads a YAML job file, applies .env and environment overrides, validates
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"
)

// Config is a complete conversion job
type Config struct {
	Job     JobConfig     `yaml:"job"`
	Encoder EncoderConfig `yaml:"encoder"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// JobConfig names the files a job reads and writes
type JobConfig struct {
	Input  string `yaml:"input" env:"AUDIOKIT_INPUT, overwrite"`
	Output string `yaml:"output" env:"AUDIOKIT_OUTPUT, overwrite"`
}

// EncoderConfig selects the codec and its parameters
type EncoderConfig struct {
	Codec            string  `yaml:"codec" env:"AUDIOKIT_CODEC, overwrite, default=opus"`
	BitRate          int     `yaml:"bit_rate" env:"AUDIOKIT_BIT_RATE, overwrite"`
	PacketDurationMs float64 `yaml:"packet_duration_ms" env:"AUDIOKIT_PACKET_DURATION_MS, overwrite, default=20"`
	MinChunkMs       int     `yaml:"min_chunk_ms" env:"AUDIOKIT_MIN_CHUNK_MS, overwrite"`
	DropFinalFrame   bool    `yaml:"drop_final_frame" env:"AUDIOKIT_DROP_FINAL_FRAME, overwrite"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	File  string `yaml:"file" env:"AUDIOKIT_LOG_FILE, overwrite, default=audiokit.log"`
	NoTUI bool   `yaml:"no_tui" env:"AUDIOKIT_NO_TUI, overwrite"`
}

// MetricsConfig contains the Prometheus endpoint configuration
type MetricsConfig struct {
	Addr string `yaml:"addr" env:"AUDIOKIT_METRICS_ADDR, overwrite"`
}

// PacketDuration returns the Opus packet duration
func (c EncoderConfig) PacketDuration() time.Duration {
	return time.Duration(c.PacketDurationMs * float64(time.Millisecond))
}

// MinChunkDuration returns the minimum chunk duration, zero for the codec default
func (c EncoderConfig) MinChunkDuration() time.Duration {
	return time.Duration(c.MinChunkMs) * time.Millisecond
}

// Load builds a job from the YAML file at path (optional, "" skips it), a
// .env file in the working directory and the process environment.
// Environment values win over the file.
func Load(ctx context.Context, path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return LoadWith(ctx, path, envconfig.OsLookuper())
}

// LoadWith is Load with an explicit environment source and no .env loading
func LoadWith(ctx context.Context, path string, env envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: env,
	}); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	return &cfg, nil
}

// Validate performs comprehensive validation of the configuration
func (c *Config) Validate() error {
	if err := c.Job.Validate(); err != nil {
		return fmt.Errorf("job config: %w", err)
	}

	if err := c.Encoder.Validate(); err != nil {
		return fmt.Errorf("encoder config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates job configuration
func (c *JobConfig) Validate() error {
	if c.Input == "" {
		return fmt.Errorf("input is required")
	}
	if c.Output == "" {
		return fmt.Errorf("output is required")
	}
	if c.Input == c.Output {
		return fmt.Errorf("input and output must differ")
	}
	return nil
}

// Validate validates encoder configuration
func (c *EncoderConfig) Validate() error {
	switch c.Codec {
	case "aac", "mp3", "opus", "pcm":
	default:
		return fmt.Errorf("unsupported codec %q", c.Codec)
	}
	if c.BitRate < 0 {
		return fmt.Errorf("bit rate cannot be negative, got %d", c.BitRate)
	}
	if c.PacketDurationMs < 0 {
		return fmt.Errorf("packet duration cannot be negative, got %v", c.PacketDurationMs)
	}
	if c.MinChunkMs < 0 {
		return fmt.Errorf("min chunk cannot be negative, got %d", c.MinChunkMs)
	}
	return nil
}

// Validate validates logging configuration
func (c *LoggingConfig) Validate() error {
	if c.File == "" {
		return fmt.Errorf("log file is required")
	}
	return nil
}
