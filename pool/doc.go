// Package pool
// Author: momentics <momentics@gmail.com>
//
// Fixed-type object pooling for hioload-objpool.
//
// A Pool[T] obtains storage for T in chunks from a raw-memory provider
// (Go heap, a budgeted wrapper, or anonymous mmap for pointer-free types).
// The first chunk holds 5 slots by default and every later chunk is twice
// the size of the previous one. Released slots go back on a free list and
// are reused most-recently-freed first unless FIFO order is selected.
//
// Acquire constructs a value in place and returns a reference-counted
// Handle; the last Release destroys the value and recycles its slot.
// Pools are single-threaded. See objpool.go, handle.go, chunk.go for
// implementation details.
package pool
