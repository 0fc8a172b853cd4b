// File: api/pool.go
// Author: momentics <momentics@gmail.com>
//
// Defines abstract pooling APIs: raw-memory providers and pool accounting.

package api

// Allocator is a raw-memory provider for chunks of T.
// It hands out storage, it never constructs or destroys values.
type Allocator[T any] interface {
	// Allocate returns storage for exactly n values of T.
	// Failure must leave no partial allocation behind.
	Allocate(n int) ([]T, error)

	// Deallocate releases a chunk obtained from Allocate.
	// n must equal the size the chunk was allocated with.
	Deallocate(chunk []T, n int)
}

// PoolStats aggregates object pool accounting.
// Capacity == Free + Live holds for every snapshot.
type PoolStats struct {
	Chunks             int64 `json:"chunks"`
	Capacity           int64 `json:"capacity"`
	Free               int64 `json:"free"`
	Live               int64 `json:"live"`
	NextChunkSize      int64 `json:"next_chunk_size"`
	Growths            int64 `json:"growths"`
	Acquires           int64 `json:"acquires"`
	Releases           int64 `json:"releases"`
	ConstructFailures  int64 `json:"construct_failures"`
	AllocationFailures int64 `json:"allocation_failures"`
	Leaked             int64 `json:"leaked"`
}

// StatsSource exposes pool accounting to observers running on other goroutines.
type StatsSource interface {
	Stats() PoolStats
}
