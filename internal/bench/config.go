// File: internal/bench/config.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package bench

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/momentics/hioload-objpool/api"
	"github.com/momentics/hioload-objpool/pool"
)

// Payload classes select the pooled object type.
const (
	PayloadSmall  = "small"  // 512 B
	PayloadMedium = "medium" // 32 KiB
	PayloadLarge  = "large"  // 4 MiB
	PayloadHuge   = "huge"   // 32 MiB, 4M float64 values
)

// Allocator names accepted by Config.Allocator.
const (
	AllocatorHeap = "heap"
	AllocatorMmap = "mmap"
)

// Config drives a benchmark run. Zero fields fall back to Default().
type Config struct {
	Iterations       int    `yaml:"iterations" json:"iterations"`
	Workers          int    `yaml:"workers" json:"workers"`
	Payload          string `yaml:"payload" json:"payload"`
	Order            string `yaml:"order" json:"order"`
	Allocator        string `yaml:"allocator" json:"allocator"`
	InitialChunkSize int    `yaml:"initial_chunk_size" json:"initial_chunk_size"`
	GrowthFactor     int    `yaml:"growth_factor" json:"growth_factor"`
	Hold             int    `yaml:"hold" json:"hold"`
	MetricsAddr      string `yaml:"metrics_addr" json:"metrics_addr,omitempty"`
	LogLevel         string `yaml:"log_level" json:"log_level"`
	LogFormat        string `yaml:"log_format" json:"log_format"`
}

// Default mirrors the classic object-pool demo: one worker, 500k cycles.
func Default() Config {
	return Config{
		Iterations:       500_000,
		Workers:          1,
		Payload:          PayloadSmall,
		Order:            pool.LIFO.String(),
		Allocator:        AllocatorHeap,
		InitialChunkSize: pool.DefaultInitialChunkSize,
		GrowthFactor:     pool.DefaultGrowthFactor,
		Hold:             1,
		LogLevel:         "info",
		LogFormat:        "text",
	}
}

// Load reads a YAML file over Default(). An empty path returns Default().
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read bench config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse bench config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects settings the runner cannot honour.
func (c Config) Validate() error {
	invalid := func(field string, v any) error {
		return api.NewError(api.ErrCodeInvalidArgument, "invalid bench setting").
			WithContext("field", field).
			WithContext("value", v)
	}
	switch {
	case c.Iterations < 1:
		return invalid("iterations", c.Iterations)
	case c.Workers < 1:
		return invalid("workers", c.Workers)
	case c.InitialChunkSize < 1:
		return invalid("initial_chunk_size", c.InitialChunkSize)
	case c.GrowthFactor < 2:
		return invalid("growth_factor", c.GrowthFactor)
	case c.Hold < 1:
		return invalid("hold", c.Hold)
	}
	switch c.Payload {
	case PayloadSmall, PayloadMedium, PayloadLarge, PayloadHuge:
	default:
		return invalid("payload", c.Payload)
	}
	switch c.Allocator {
	case AllocatorHeap, AllocatorMmap:
	default:
		return invalid("allocator", c.Allocator)
	}
	if _, err := pool.ParseFreeOrder(c.Order); err != nil {
		return err
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return invalid("log_format", c.LogFormat)
	}
	return nil
}

// ParseLevel maps debug/info/warn/error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return l, api.NewError(api.ErrCodeInvalidArgument, "invalid log level").WithContext("level", s)
	}
	return l, nil
}

// NewLogger builds the process logger described by c.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
