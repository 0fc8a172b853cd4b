// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: Apache-2.0

package pool

import (
	"fmt"
	"sync/atomic"

	"github.com/momentics/hioload-objpool/api"
)

// Constructor initializes a value in place. The slot it receives is zeroed.
type Constructor[T any] func(obj *T) error

// Bind forwards one argument to an in-place initializer.
func Bind[T, A any](init func(*T, A) error, a A) Constructor[T] {
	return func(obj *T) error { return init(obj, a) }
}

// Bind2 forwards two arguments to an in-place initializer.
func Bind2[T, A, B any](init func(*T, A, B) error, a A, b B) Constructor[T] {
	return func(obj *T) error { return init(obj, a, b) }
}

// Bind3 forwards three arguments to an in-place initializer.
func Bind3[T, A, B, C any](init func(*T, A, B, C) error, a A, b B, c C) Constructor[T] {
	return func(obj *T) error { return init(obj, a, b, c) }
}

// Destroyer is implemented by pooled types that hold resources which must be
// released before their slot is reused.
type Destroyer interface {
	Destroy()
}

// noCopy trips go vet's copylocks check when a Pool is copied by value.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Pool is a fixed-type object pool. Storage is obtained in chunks whose size
// grows geometrically, and released slots are recycled through a free list.
//
// A Pool is not safe for concurrent use; Stats is the only exception.
// It must not be copied: use Move to transfer ownership.
type Pool[T any] struct {
	_    noCopy
	addr *Pool[T]
	cfg  config[T]
	st   atomic.Pointer[state[T]]
}

// New creates an empty pool. No storage is allocated until the first Acquire.
func New[T any](opts ...Option[T]) *Pool[T] {
	p := &Pool[T]{}
	p.addr = p
	for _, opt := range opts {
		if opt != nil {
			opt(&p.cfg)
		}
	}
	p.cfg.normalize()
	p.st.Store(newState(p.cfg))
	return p
}

func (p *Pool[T]) copyCheck() {
	if p.addr == nil {
		p.addr = p
	} else if p.addr != p {
		panic("pool: illegal use of Pool copied by value")
	}
}

func (p *Pool[T]) state() *state[T] {
	p.copyCheck()
	st := p.st.Load()
	if st == nil {
		p.cfg.normalize()
		st = newState(p.cfg)
		p.st.Store(st)
	}
	return st
}

// Name returns the pool label used in logs and metrics.
func (p *Pool[T]) Name() string {
	return p.state().cfg.name
}

// Acquire takes a free slot, growing the pool by one chunk when none is left,
// and constructs a value in it with ctor. A nil ctor yields the zero value.
//
// Allocation failure returns an error matching api.ErrOutOfMemory and leaves
// the pool unchanged. A constructor error returns an error matching
// api.ErrConstructionFailed; the slot stays free either way.
func (p *Pool[T]) Acquire(ctor Constructor[T]) (*Handle[T], error) {
	st := p.state()
	if st.closed {
		return nil, api.NewError(api.ErrCodePoolClosed, "acquire on closed pool").WithContext("pool", st.cfg.name)
	}
	if st.free.len() == 0 {
		if err := st.grow(); err != nil {
			return nil, err
		}
	}

	slot := st.free.pop()
	if err := st.construct(slot, ctor); err != nil {
		return nil, err
	}

	addr := slotAddr(slot)
	st.debug.recordAcquire(addr)
	st.stats.free.Add(-1)
	st.stats.live.Add(1)
	st.stats.acquires.Add(1)
	return newHandle(st, slot, addr), nil
}

// MustAcquire is like Acquire but panics on error.
func (p *Pool[T]) MustAcquire(ctor Constructor[T]) *Handle[T] {
	h, err := p.Acquire(ctor)
	if err != nil {
		panic(err)
	}
	return h
}

// Stats returns a snapshot of pool accounting. Safe for concurrent use.
func (p *Pool[T]) Stats() api.PoolStats {
	st := p.st.Load()
	if st == nil {
		return api.PoolStats{NextChunkSize: DefaultInitialChunkSize}
	}
	return st.snapshot()
}

// Close releases every chunk back to the allocator, in allocation order and
// with the size each chunk was allocated with.
//
// All handles must have been released. Otherwise Close returns an error
// matching api.ErrInvariantViolation and the pool is left untouched.
// Closing a closed pool is a no-op.
func (p *Pool[T]) Close() error {
	st := p.state()
	if st.closed {
		return nil
	}
	expected := 0
	for i := range st.chunks {
		expected += st.expectedChunkSize(i)
	}
	if st.capacity != expected {
		panic(fmt.Sprintf("pool %s: capacity %d does not match %d chunks grown from %d by %d",
			st.cfg.name, st.capacity, len(st.chunks), st.cfg.initial, st.cfg.factor))
	}
	if free := st.free.len(); free != st.capacity {
		err := api.NewError(api.ErrCodeInvariantViolation, "pool closed with outstanding handles").
			WithContext("pool", st.cfg.name).
			WithContext("live", st.capacity-free).
			WithContext("capacity", st.capacity)
		if stacks := st.debug.activeStacks(); len(stacks) > 0 {
			err.WithContext("stacks", stacks)
		}
		st.cfg.log.Error("close refused", "pool", st.cfg.name, "live", st.capacity-free)
		return err
	}
	st.cfg.log.Debug("releasing pool", "pool", st.cfg.name, "chunks", len(st.chunks), "capacity", st.capacity)
	st.release()
	return nil
}

// Move transfers chunks, free slots, growth state and accounting to a new
// Pool. p is left empty with its growth reset and remains usable.
// Outstanding handles release into the returned pool.
func (p *Pool[T]) Move() *Pool[T] {
	st := p.state()
	dst := &Pool[T]{cfg: p.cfg}
	dst.addr = dst
	dst.st.Store(st)
	p.st.Store(newState(p.cfg))
	return dst
}
