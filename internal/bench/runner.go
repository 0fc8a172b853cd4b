// File: internal/bench/runner.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Timing loops comparing pooled acquisition against plain heap allocation.
// Every worker owns its own pool; pools are never shared across goroutines.

package bench

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	conc "github.com/sourcegraph/conc/pool"

	"github.com/momentics/hioload-objpool/api"
	"github.com/momentics/hioload-objpool/control"
	"github.com/momentics/hioload-objpool/pool"
)

type smallObject struct{ data [64]float64 }
type mediumObject struct{ data [4 * 1024]float64 }
type largeObject struct{ data [512 * 1024]float64 }
type hugeObject struct{ data [4 * 1024 * 1024]float64 }

// Mode names a timing loop.
const (
	ModePool = "pool"
	ModeHeap = "heap"
)

const ctxCheckEvery = 1024

// Result is the outcome of one timing loop on one worker.
type Result struct {
	Worker  int            `json:"worker"`
	Mode    string         `json:"mode"`
	Cycles  int            `json:"cycles"`
	Elapsed time.Duration  `json:"elapsed_ns"`
	Pool    *api.PoolStats `json:"pool,omitempty"`
}

// Millis reports Elapsed in fractional milliseconds.
func (r Result) Millis() float64 {
	return float64(r.Elapsed) / float64(time.Millisecond)
}

// Report aggregates a whole run.
type Report struct {
	Config  Config        `json:"config"`
	Results []Result      `json:"results"`
	Pool    time.Duration `json:"pool_total_ns"`
	Heap    time.Duration `json:"heap_total_ns"`
}

// Speedup is heap time over pool time; above 1 means the pool was faster.
func (r *Report) Speedup() float64 {
	if r.Pool == 0 {
		return 0
	}
	return float64(r.Heap) / float64(r.Pool)
}

// Runner executes the configured benchmark.
type Runner struct {
	cfg    Config
	log    *slog.Logger
	reg    prometheus.Registerer
	probes *control.DebugProbes
}

// NewRunner wires a runner. reg and probes may be nil.
func NewRunner(cfg Config, log *slog.Logger, reg prometheus.Registerer, probes *control.DebugProbes) *Runner {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Runner{cfg: cfg, log: log, reg: reg, probes: probes}
}

// Run executes every worker and returns the collected report.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	if err := r.cfg.Validate(); err != nil {
		return nil, err
	}
	switch r.cfg.Payload {
	case PayloadMedium:
		return runPayload[mediumObject](ctx, r)
	case PayloadLarge:
		return runPayload[largeObject](ctx, r)
	case PayloadHuge:
		return runPayload[hugeObject](ctx, r)
	default:
		return runPayload[smallObject](ctx, r)
	}
}

func runPayload[T any](ctx context.Context, r *Runner) (*Report, error) {
	workers := conc.NewWithResults[[]Result]().WithContext(ctx).WithCancelOnError()
	for w := 0; w < r.cfg.Workers; w++ {
		workers.Go(func(ctx context.Context) ([]Result, error) {
			return runWorker[T](ctx, r, w)
		})
	}
	perWorker, err := workers.Wait()
	if err != nil {
		return nil, err
	}

	report := &Report{Config: r.cfg}
	for _, results := range perWorker {
		for _, res := range results {
			switch res.Mode {
			case ModePool:
				report.Pool += res.Elapsed
			case ModeHeap:
				report.Heap += res.Elapsed
			}
			report.Results = append(report.Results, res)
		}
	}
	return report, nil
}

func runWorker[T any](ctx context.Context, r *Runner, worker int) ([]Result, error) {
	p, err := buildPool[T](r, worker)
	if err != nil {
		return nil, err
	}
	log := r.log.With("worker", worker)

	log.Info("starting loop using pool", "cycles", r.cfg.Iterations, "hold", r.cfg.Hold)
	pooled, err := cyclePool(ctx, p, r.cfg.Iterations, r.cfg.Hold)
	if err != nil {
		// cyclePool releases everything it holds before returning.
		if cerr := p.Close(); cerr != nil {
			log.Error("close after failed loop", "error", cerr)
		}
		return nil, err
	}
	stats := p.Stats()
	pooled.Worker, pooled.Pool = worker, &stats
	if err := p.Close(); err != nil {
		return nil, fmt.Errorf("worker %d: %w", worker, err)
	}
	log.Info("pool loop finished", "elapsed_ms", pooled.Millis(), "chunks", stats.Chunks, "capacity", stats.Capacity)

	log.Info("starting loop using plain allocation", "cycles", r.cfg.Iterations)
	plain, err := cycleHeap[T](ctx, r.cfg.Iterations, r.cfg.Hold)
	if err != nil {
		return nil, err
	}
	plain.Worker = worker
	log.Info("plain loop finished", "elapsed_ms", plain.Millis())

	return []Result{pooled, plain}, nil
}

func buildPool[T any](r *Runner, worker int) (*pool.Pool[T], error) {
	order, err := pool.ParseFreeOrder(r.cfg.Order)
	if err != nil {
		return nil, err
	}
	name := fmt.Sprintf("worker-%d", worker)
	opts := []pool.Option[T]{
		pool.WithName[T](name),
		pool.WithFreeOrder[T](order),
		pool.WithInitialChunkSize[T](r.cfg.InitialChunkSize),
		pool.WithGrowthFactor[T](r.cfg.GrowthFactor),
		pool.WithLogger[T](r.log.With("pool", name)),
	}
	if r.cfg.Allocator == AllocatorMmap {
		alloc, err := pool.NewMmapAllocator[T]()
		if err != nil {
			return nil, err
		}
		opts = append(opts, pool.WithAllocator[T](alloc))
	}
	p := pool.New(opts...)

	if r.reg != nil {
		if err := r.reg.Register(pool.NewCollector(name, p)); err != nil {
			return nil, fmt.Errorf("register metrics for %s: %w", name, err)
		}
	}
	if r.probes != nil {
		r.probes.RegisterPool(name, p)
	}
	return p, nil
}

func touch[T any](obj *T, seq int) {
	switch o := any(obj).(type) {
	case *smallObject:
		o.data[0] = float64(seq)
	case *mediumObject:
		o.data[0] = float64(seq)
	case *largeObject:
		o.data[0] = float64(seq)
	case *hugeObject:
		o.data[0] = float64(seq)
	}
}

func cyclePool[T any](ctx context.Context, p *pool.Pool[T], cycles, hold int) (Result, error) {
	held := make([]*pool.Handle[T], hold)
	start := time.Now()
	for i := 0; i < cycles; i++ {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return Result{}, err
			}
		}
		for j := range held {
			h, err := p.Acquire(func(obj *T) error {
				touch(obj, i)
				return nil
			})
			if err != nil {
				for _, prev := range held[:j] {
					prev.Release()
				}
				return Result{}, err
			}
			held[j] = h
		}
		for j, h := range held {
			h.Release()
			held[j] = nil
		}
	}
	return Result{Mode: ModePool, Cycles: cycles, Elapsed: time.Since(start)}, nil
}

//go:noinline
func allocPlain[T any]() *T { return new(T) }

func cycleHeap[T any](ctx context.Context, cycles, hold int) (Result, error) {
	held := make([]*T, hold)
	start := time.Now()
	for i := 0; i < cycles; i++ {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return Result{}, err
			}
		}
		for j := range held {
			held[j] = allocPlain[T]()
			touch(held[j], i)
		}
		clear(held)
	}
	return Result{Mode: ModeHeap, Cycles: cycles, Elapsed: time.Since(start)}, nil
}
