//go:build linux || darwin || freebsd || netbsd || openbsd
// +build linux darwin freebsd netbsd openbsd

// File: pool/allocator_mmap_unix.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Anonymous-mapping chunk provider. Chunks live outside the Go heap, so only
// pointer-free element types are accepted.

package pool

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/momentics/hioload-objpool/api"
	"golang.org/x/sys/unix"
)

// MmapAllocator maps every chunk with mmap(MAP_ANON|MAP_PRIVATE).
type MmapAllocator[T any] struct {
	elem     int
	mappings map[uintptr][]byte
}

// NewMmapAllocator returns api.ErrNotSupported when T is zero-sized or holds pointers.
func NewMmapAllocator[T any]() (*MmapAllocator[T], error) {
	var zero T
	t := reflect.TypeOf(&zero).Elem()
	size := int(unsafe.Sizeof(zero))
	if size == 0 || hasPointers(t) {
		return nil, api.NewError(api.ErrCodeNotSupported, "type cannot live in mapped memory").
			WithContext("type", t.String())
	}
	return &MmapAllocator[T]{
		elem:     size,
		mappings: make(map[uintptr][]byte),
	}, nil
}

func (a *MmapAllocator[T]) Allocate(n int) ([]T, error) {
	if n < 1 {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "chunk size must be positive").WithContext("slots", n)
	}
	length := n * a.elem
	if length/a.elem != n {
		return nil, api.NewError(api.ErrCodeOutOfMemory, "chunk length overflows").WithContext("slots", n)
	}
	data, err := unix.Mmap(-1, 0, length, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, api.NewError(api.ErrCodeOutOfMemory, "mmap failed").
			WithContext("bytes", length).
			WithCause(err)
	}
	base := unsafe.Pointer(unsafe.SliceData(data))
	a.mappings[uintptr(base)] = data
	return unsafe.Slice((*T)(base), n), nil
}

func (a *MmapAllocator[T]) Deallocate(chunk []T, n int) {
	key := uintptr(unsafe.Pointer(unsafe.SliceData(chunk)))
	data, ok := a.mappings[key]
	if !ok {
		panic(fmt.Sprintf("pool: chunk %#x was not mapped by this allocator", key))
	}
	if len(data) != n*a.elem {
		panic(fmt.Sprintf("pool: mapped chunk of %d bytes released as %d slots", len(data), n))
	}
	delete(a.mappings, key)
	if err := unix.Munmap(data); err != nil {
		panic(fmt.Sprintf("pool: munmap: %v", err))
	}
}

// Mappings reports the number of live mappings.
func (a *MmapAllocator[T]) Mappings() int { return len(a.mappings) }
