// File: pool/options.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/momentics/hioload-objpool/api"
)

const (
	// DefaultInitialChunkSize is the slot count of the first chunk.
	DefaultInitialChunkSize = 5
	// DefaultGrowthFactor multiplies the chunk size after every growth event.
	DefaultGrowthFactor = 2
)

// FreeOrder selects which free slot Acquire hands out next.
type FreeOrder int

const (
	// LIFO reuses the most recently released slot first.
	LIFO FreeOrder = iota
	// FIFO reuses the least recently released slot first.
	FIFO
)

func (o FreeOrder) String() string {
	switch o {
	case LIFO:
		return "lifo"
	case FIFO:
		return "fifo"
	default:
		return fmt.Sprintf("FreeOrder(%d)", int(o))
	}
}

// ParseFreeOrder maps "lifo"/"fifo" (any case) to a FreeOrder.
func ParseFreeOrder(s string) (FreeOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lifo":
		return LIFO, nil
	case "fifo":
		return FIFO, nil
	}
	return LIFO, api.NewError(api.ErrCodeInvalidArgument, "unknown free order").WithContext("order", s)
}

type config[T any] struct {
	name       string
	alloc      api.Allocator[T]
	initial    int
	factor     int
	order      FreeOrder
	destroy    func(*T)
	log        *slog.Logger
	trackLeaks bool
}

func (c *config[T]) normalize() {
	if c.alloc == nil {
		c.alloc = HeapAllocator[T]{}
	}
	if c.initial == 0 {
		c.initial = DefaultInitialChunkSize
	}
	if c.factor == 0 {
		c.factor = DefaultGrowthFactor
	}
	if c.log == nil {
		c.log = slog.New(slog.DiscardHandler)
	}
	if c.name == "" {
		var zero T
		c.name = fmt.Sprintf("%T", zero)
	}
}

// Option configures a Pool at construction time.
type Option[T any] func(*config[T])

// WithName labels the pool in logs, errors and metrics.
func WithName[T any](name string) Option[T] {
	return func(c *config[T]) { c.name = name }
}

// WithAllocator sets the raw-memory provider. Defaults to HeapAllocator.
func WithAllocator[T any](a api.Allocator[T]) Option[T] {
	return func(c *config[T]) { c.alloc = a }
}

// WithInitialChunkSize sets the slot count of the first chunk. Must be >= 1.
func WithInitialChunkSize[T any](n int) Option[T] {
	if n < 1 {
		panic(fmt.Sprintf("pool: initial chunk size must be positive, got %d", n))
	}
	return func(c *config[T]) { c.initial = n }
}

// WithGrowthFactor sets the chunk size multiplier. Must be >= 2.
func WithGrowthFactor[T any](f int) Option[T] {
	if f < 2 {
		panic(fmt.Sprintf("pool: growth factor must be at least 2, got %d", f))
	}
	return func(c *config[T]) { c.factor = f }
}

// WithFreeOrder selects the slot reuse order. Defaults to LIFO.
func WithFreeOrder[T any](o FreeOrder) Option[T] {
	if o != LIFO && o != FIFO {
		panic(fmt.Sprintf("pool: unknown free order %d", int(o)))
	}
	return func(c *config[T]) { c.order = o }
}

// WithDestructor runs fn on a value before its slot is recycled.
// It takes precedence over a Destroyer implementation on *T.
func WithDestructor[T any](fn func(*T)) Option[T] {
	return func(c *config[T]) { c.destroy = fn }
}

// WithLogger routes pool diagnostics to l.
func WithLogger[T any](l *slog.Logger) Option[T] {
	return func(c *config[T]) { c.log = l }
}

// WithLeakTracking reports handles that become unreachable while still owned.
func WithLeakTracking[T any]() Option[T] {
	return func(c *config[T]) { c.trackLeaks = true }
}
