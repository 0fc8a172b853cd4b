// File: pool/chunk.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Pool state, chunk growth and slot reclamation. Single-threaded: only the
// counters are atomic so Stats may be read from another goroutine.

package pool

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	"github.com/momentics/hioload-objpool/api"
)

// chunk remembers the capacity it was allocated with; Deallocate must see
// the same value.
type chunk[T any] struct {
	slots    []T
	capacity int
}

type counters struct {
	chunks        atomic.Int64
	capacity      atomic.Int64
	free          atomic.Int64
	live          atomic.Int64
	nextSize      atomic.Int64
	growths       atomic.Int64
	acquires      atomic.Int64
	releases      atomic.Int64
	ctorFailures  atomic.Int64
	allocFailures atomic.Int64
}

type state[T any] struct {
	cfg      config[T]
	chunks   []chunk[T]
	free     freeList[T]
	capacity int
	nextSize int
	closed   bool

	leaks *leakTracker
	debug *debugState
	stats counters
}

func newState[T any](cfg config[T]) *state[T] {
	s := &state[T]{
		cfg:      cfg,
		free:     newFreeList[T](cfg.order),
		nextSize: cfg.initial,
		debug:    newDebugState(),
	}
	if cfg.trackLeaks {
		s.leaks = &leakTracker{name: cfg.name, log: cfg.log}
	}
	s.stats.nextSize.Store(int64(s.nextSize))
	return s
}

// grow allocates one chunk of nextSize slots and pushes every slot onto the
// free list. Nothing is recorded if the allocator fails.
func (s *state[T]) grow() error {
	n := s.nextSize
	s.cfg.log.Debug("allocating new chunk", "pool", s.cfg.name, "slots", n, "chunk", len(s.chunks)+1)
	slots, err := s.cfg.alloc.Allocate(n)
	if err == nil && len(slots) != n {
		err = api.NewError(api.ErrCodeInvariantViolation, "allocator returned wrong chunk size").
			WithContext("requested", n).
			WithContext("got", len(slots))
	}
	if err != nil {
		s.stats.allocFailures.Add(1)
		s.cfg.log.Error("chunk allocation failed", "pool", s.cfg.name, "slots", n, "error", err)
		if api.CodeOf(err) == api.ErrCodeOutOfMemory {
			return err
		}
		return api.NewError(api.ErrCodeOutOfMemory, "chunk allocation failed").
			WithContext("pool", s.cfg.name).
			WithContext("slots", n).
			WithCause(err)
	}

	s.chunks = append(s.chunks, chunk[T]{slots: slots, capacity: n})
	for i := range slots {
		s.free.push(&slots[i])
	}
	s.capacity += n
	s.nextSize = n * s.cfg.factor

	s.stats.chunks.Add(1)
	s.stats.capacity.Add(int64(n))
	s.stats.free.Add(int64(n))
	s.stats.growths.Add(1)
	s.stats.nextSize.Store(int64(s.nextSize))
	return nil
}

// construct runs ctor on a slot already popped from the free list. If ctor
// fails or panics the slot is zeroed and restored to the front of the list;
// a panic keeps propagating.
func (s *state[T]) construct(slot *T, ctor Constructor[T]) error {
	if ctor == nil {
		return nil
	}
	done := false
	defer func() {
		if !done {
			var zero T
			*slot = zero
			s.free.restore(slot)
			s.stats.ctorFailures.Add(1)
		}
	}()
	if err := ctor(slot); err != nil {
		return api.NewError(api.ErrCodeConstructionFailed, "constructor returned error").
			WithContext("pool", s.cfg.name).
			WithCause(err)
	}
	done = true
	return nil
}

// reclaim destroys the value in slot and returns the slot to the free list.
// The slot is returned even when the destructor panics.
func (s *state[T]) reclaim(slot *T) {
	if s.closed {
		panic(api.NewError(api.ErrCodeInvariantViolation, "handle released after pool close").
			WithContext("pool", s.cfg.name))
	}
	defer func() {
		var zero T
		*slot = zero
		s.free.push(slot)
		s.debug.recordRelease(slotAddr(slot))

		s.stats.live.Add(-1)
		s.stats.free.Add(1)
		s.stats.releases.Add(1)
	}()
	switch {
	case s.cfg.destroy != nil:
		s.cfg.destroy(slot)
	default:
		if d, ok := any(slot).(Destroyer); ok {
			d.Destroy()
		}
	}
}

// expectedChunkSize is the capacity of the i-th chunk (0-based) under the
// growth recurrence c(0) = initial, c(i) = c(i-1) * factor.
func (s *state[T]) expectedChunkSize(i int) int {
	size := s.cfg.initial
	for ; i > 0; i-- {
		size *= s.cfg.factor
	}
	return size
}

// release hands every chunk back to the allocator in allocation order.
func (s *state[T]) release() {
	size := s.cfg.initial
	for i, c := range s.chunks {
		if c.capacity != size || len(c.slots) != c.capacity {
			panic(fmt.Sprintf("pool %s: chunk %d has capacity %d, expected %d", s.cfg.name, i, c.capacity, size))
		}
		s.cfg.alloc.Deallocate(c.slots, c.capacity)
		size *= s.cfg.factor
	}
	s.chunks = nil
	s.free.reset()
	s.capacity = 0
	s.closed = true

	s.stats.chunks.Store(0)
	s.stats.capacity.Store(0)
	s.stats.free.Store(0)
}

func (s *state[T]) snapshot() api.PoolStats {
	return api.PoolStats{
		Chunks:             s.stats.chunks.Load(),
		Capacity:           s.stats.capacity.Load(),
		Free:               s.stats.free.Load(),
		Live:               s.stats.live.Load(),
		NextChunkSize:      s.stats.nextSize.Load(),
		Growths:            s.stats.growths.Load(),
		Acquires:           s.stats.acquires.Load(),
		Releases:           s.stats.releases.Load(),
		ConstructFailures:  s.stats.ctorFailures.Load(),
		AllocationFailures: s.stats.allocFailures.Load(),
		Leaked:             s.leaks.leaked(),
	}
}

func slotAddr[T any](slot *T) uintptr { return uintptr(unsafe.Pointer(slot)) }
