// File: pool/allocator.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Platform-neutral raw-memory providers. Platform-specific mappings reside
// in allocator_mmap_unix.go and allocator_mmap_stub.go.

package pool

import (
	"fmt"
	"reflect"

	"github.com/momentics/hioload-objpool/api"
)

// HeapAllocator serves chunks from the Go heap.
type HeapAllocator[T any] struct{}

// Allocate returns n zeroed slots. A request the runtime cannot satisfy
// is reported as api.ErrOutOfMemory instead of crashing.
func (HeapAllocator[T]) Allocate(n int) (chunk []T, err error) {
	if n < 1 {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "chunk size must be positive").WithContext("slots", n)
	}
	defer func() {
		if r := recover(); r != nil {
			chunk = nil
			err = api.NewError(api.ErrCodeOutOfMemory, "heap allocation failed").
				WithContext("slots", n).
				WithCause(fmt.Errorf("%v", r))
		}
	}()
	return make([]T, n), nil
}

// Deallocate clears the chunk so stale references do not pin other memory.
func (HeapAllocator[T]) Deallocate(chunk []T, n int) {
	if len(chunk) != n {
		panic(fmt.Sprintf("pool: heap chunk of %d slots released as %d", len(chunk), n))
	}
	clear(chunk)
}

// LimitedAllocator caps the number of slots another allocator may hand out.
type LimitedAllocator[T any] struct {
	next  api.Allocator[T]
	limit int
	used  int
}

// NewLimitedAllocator wraps next with a budget of limit slots.
// A nil next uses HeapAllocator.
func NewLimitedAllocator[T any](next api.Allocator[T], limit int) *LimitedAllocator[T] {
	if next == nil {
		next = HeapAllocator[T]{}
	}
	return &LimitedAllocator[T]{next: next, limit: limit}
}

func (a *LimitedAllocator[T]) Allocate(n int) ([]T, error) {
	if a.used+n > a.limit {
		return nil, api.NewError(api.ErrCodeOutOfMemory, "slot budget exhausted").
			WithContext("requested", n).
			WithContext("used", a.used).
			WithContext("limit", a.limit)
	}
	chunk, err := a.next.Allocate(n)
	if err != nil {
		return nil, err
	}
	a.used += n
	return chunk, nil
}

func (a *LimitedAllocator[T]) Deallocate(chunk []T, n int) {
	a.next.Deallocate(chunk, n)
	a.used -= n
}

// InUse reports the slots currently handed out.
func (a *LimitedAllocator[T]) InUse() int { return a.used }

// hasPointers reports whether values of t may hold Go pointers,
// which must never live in memory the garbage collector does not scan.
func hasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return false
	case reflect.Array:
		return t.Len() > 0 && hasPointers(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if hasPointers(t.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		return true
	}
}

var (
	_ api.Allocator[int] = HeapAllocator[int]{}
	_ api.Allocator[int] = (*LimitedAllocator[int])(nil)
)
