//go:build windows

// File: pool/allocator_mmap_windows.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// VirtualAlloc-backed chunk provider, the Windows counterpart of the mmap
// allocator. Only pointer-free element types are accepted.

package pool

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/momentics/hioload-objpool/api"
	"golang.org/x/sys/windows"
)

// MmapAllocator commits every chunk with VirtualAlloc.
type MmapAllocator[T any] struct {
	elem     int
	mappings map[uintptr]int
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
	return &MmapAllocator[T]{elem: size, mappings: make(map[uintptr]int)}, nil
}

func (a *MmapAllocator[T]) Allocate(n int) ([]T, error) {
	if n < 1 {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "chunk size must be positive").WithContext("slots", n)
	}
	length := n * a.elem
	if length/a.elem != n {
		return nil, api.NewError(api.ErrCodeOutOfMemory, "chunk length overflows").WithContext("slots", n)
	}
	addr, err := windows.VirtualAlloc(0, uintptr(length), windows.MEM_RESERVE|windows.MEM_COMMIT, windows.PAGE_READWRITE)
	if err != nil || addr == 0 {
		return nil, api.NewError(api.ErrCodeOutOfMemory, "VirtualAlloc failed").
			WithContext("bytes", length).
			WithCause(err)
	}
	a.mappings[addr] = length
	return unsafe.Slice((*T)(unsafe.Pointer(addr)), n), nil
}

func (a *MmapAllocator[T]) Deallocate(chunk []T, n int) {
	addr := uintptr(unsafe.Pointer(unsafe.SliceData(chunk)))
	length, ok := a.mappings[addr]
	if !ok {
		panic(fmt.Sprintf("pool: chunk %#x was not committed by this allocator", addr))
	}
	if length != n*a.elem {
		panic(fmt.Sprintf("pool: committed chunk of %d bytes released as %d slots", length, n))
	}
	delete(a.mappings, addr)
	if err := windows.VirtualFree(addr, 0, windows.MEM_RELEASE); err != nil {
		panic(fmt.Sprintf("pool: VirtualFree: %v", err))
	}
}

// Mappings reports the number of live commitments.
func (a *MmapAllocator[T]) Mappings() int { return len(a.mappings) }
