// File: pool/leak.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

import (
	"log/slog"
	"runtime"
	"sync/atomic"
)

// leakTracker counts handles collected by the GC while still owned.
// Cleanups run on a runtime goroutine, so it only touches atomics and the
// logger, never the pool's free list.
type leakTracker struct {
	name  string
	log   *slog.Logger
	count atomic.Int64
}

type leakRecord struct {
	tracker *leakTracker
	slot    uintptr
}

func reportLeak(r leakRecord) {
	r.tracker.count.Add(1)
	r.tracker.log.Warn("pooled object leaked without release",
		"pool", r.tracker.name,
		"slot", r.slot)
}

func watchHandle[T any](lt *leakTracker, h *Handle[T], slot uintptr) runtime.Cleanup {
	return runtime.AddCleanup(h, reportLeak, leakRecord{tracker: lt, slot: slot})
}

func (lt *leakTracker) leaked() int64 {
	if lt == nil {
		return 0
	}
	return lt.count.Load()
}
