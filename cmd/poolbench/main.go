// File: cmd/poolbench/main.go
// Author: momentics <momentics@gmail.com>
//
// Compares pooled acquisition against plain allocation for a fixed number of
// cycles and prints the elapsed time of both loops.
//
// Usage:
//
//	poolbench -config bench.yaml -iterations 500000 -workers 4 -payload huge -json
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sourcegraph/conc"

	"github.com/momentics/hioload-objpool/control"
	"github.com/momentics/hioload-objpool/internal/bench"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfgPath := flag.String("config", "", "path to YAML bench configuration")
	iterations := flag.Int("iterations", 0, "acquire/release cycles per worker")
	workers := flag.Int("workers", 0, "parallel workers, each with its own pool")
	payload := flag.String("payload", "", "object size class: small, medium, large, huge")
	order := flag.String("order", "", "free slot order: lifo, fifo")
	allocator := flag.String("allocator", "", "raw memory provider: heap, mmap")
	hold := flag.Int("hold", 0, "objects held at once per cycle")
	metricsAddr := flag.String("metrics-addr", "", "serve prometheus metrics on this address")
	logLevel := flag.String("log-level", "", "debug, info, warn, error")
	jsonOut := flag.Bool("json", false, "write the report as JSON to stdout")
	dump := flag.Bool("dump", false, "write pool probe state as JSON to stdout")
	flag.Parse()

	cfg, err := bench.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "iterations":
			cfg.Iterations = *iterations
		case "workers":
			cfg.Workers = *workers
		case "payload":
			cfg.Payload = *payload
		case "order":
			cfg.Order = *order
		case "allocator":
			cfg.Allocator = *allocator
		case "hold":
			cfg.Hold = *hold
		case "metrics-addr":
			cfg.MetricsAddr = *metricsAddr
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := cfg.NewLogger(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	probes := control.NewDebugProbes()
	probes.RegisterPlatformProbes()

	var lifecycle conc.WaitGroup
	srv := startMetricsServer(&lifecycle, logger, cfg.MetricsAddr, reg)

	report, runErr := bench.NewRunner(cfg, logger, reg, probes).Run(ctx)
	if runErr == nil {
		logger.Info("benchmark finished",
			"pool_ms", float64(report.Pool)/float64(time.Millisecond),
			"heap_ms", float64(report.Heap)/float64(time.Millisecond),
			"speedup", report.Speedup())
		if *jsonOut {
			if err := bench.WriteJSON(os.Stdout, report); err != nil {
				logger.Error("write report", "error", err)
			}
		}
		if *dump {
			if err := bench.WriteJSON(os.Stdout, probes.DumpState()); err != nil {
				logger.Error("write probe state", "error", err)
			}
		}
		if srv != nil {
			logger.Info("serving metrics until interrupted", "addr", cfg.MetricsAddr)
			<-ctx.Done()
		}
	}

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown", "error", err)
		}
		cancel()
	}
	lifecycle.Wait()

	if runErr != nil {
		logger.Error("benchmark failed", "error", runErr)
		os.Exit(1)
	}
}

func startMetricsServer(lifecycle *conc.WaitGroup, logger *slog.Logger, addr string, reg *prometheus.Registry) *http.Server {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	lifecycle.Go(func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", "error", err)
		}
	})
	return srv
}
