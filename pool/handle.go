// File: pool/handle.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

import (
	"runtime"
	"sync/atomic"

	"github.com/momentics/hioload-objpool/api"
)

// Handle is a reference-counted owner of one pooled value.
// The slot returns to the pool when the last owner calls Release.
type Handle[T any] struct {
	obj     *T
	st      *state[T]
	refs    atomic.Int32
	cleanup runtime.Cleanup
	watched bool
}

func newHandle[T any](st *state[T], slot *T, addr uintptr) *Handle[T] {
	h := &Handle[T]{obj: slot, st: st}
	h.refs.Store(1)
	if st.leaks != nil {
		h.cleanup = watchHandle(st.leaks, h, addr)
		h.watched = true
	}
	return h
}

// Get returns the pooled value. It panics once the handle is fully released.
func (h *Handle[T]) Get() *T {
	if h.refs.Load() <= 0 {
		panic(api.NewError(api.ErrCodeInvariantViolation, "use of released handle"))
	}
	return h.obj
}

// Retain registers another owner and returns h.
func (h *Handle[T]) Retain() *Handle[T] {
	for {
		n := h.refs.Load()
		if n <= 0 {
			panic(api.NewError(api.ErrCodeInvariantViolation, "retain of released handle"))
		}
		if h.refs.CompareAndSwap(n, n+1) {
			return h
		}
	}
}

// Release drops one owner. The last Release destroys the value and returns
// its slot to the pool exactly once; releasing more than owned panics.
func (h *Handle[T]) Release() {
	n := h.refs.Add(-1)
	switch {
	case n > 0:
		return
	case n < 0:
		panic(api.NewError(api.ErrCodeInvariantViolation, "handle released more times than retained"))
	}
	if h.watched {
		h.cleanup.Stop()
	}
	slot := h.obj
	h.obj = nil
	h.st.reclaim(slot)
}

// Refs reports the current number of owners.
func (h *Handle[T]) Refs() int32 { return h.refs.Load() }
