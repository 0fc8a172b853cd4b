//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd && !windows
// +build !linux,!darwin,!freebsd,!netbsd,!openbsd,!windows

// File: pool/allocator_mmap_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub mapping allocator for unsupported platforms.

package pool

import "github.com/momentics/hioload-objpool/api"

// MmapAllocator is unavailable on this platform.
type MmapAllocator[T any] struct{}

// NewMmapAllocator always returns api.ErrNotSupported here.
func NewMmapAllocator[T any]() (*MmapAllocator[T], error) {
	return nil, api.NewError(api.ErrCodeNotSupported, "mmap allocator not available on this platform")
}

func (a *MmapAllocator[T]) Allocate(int) ([]T, error) {
	return nil, api.ErrNotSupported
}

func (a *MmapAllocator[T]) Deallocate([]T, int) {}

func (a *MmapAllocator[T]) Mappings() int { return 0 }
