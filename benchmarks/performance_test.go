// Package benchmarks
// Author: momentics <momentics@gmail.com>
//
// Performance benchmarks for hioload-objpool components.

package benchmarks

import (
	"testing"

	"github.com/momentics/hioload-objpool/pool"
)

type expensiveObject struct {
	data [32 * 1024]float64
}

var sink *expensiveObject

// BenchmarkPoolAcquireRelease measures a steady-state acquire/release cycle.
func BenchmarkPoolAcquireRelease(b *testing.B) {
	p := pool.New[expensiveObject]()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		h := p.MustAcquire(nil)
		h.Release()
	}
	b.StopTimer()
	if err := p.Close(); err != nil {
		b.Fatal(err)
	}
}

// BenchmarkPoolAcquireReleaseFIFO is the same cycle with FIFO slot reuse.
func BenchmarkPoolAcquireReleaseFIFO(b *testing.B) {
	p := pool.New(pool.WithFreeOrder[expensiveObject](pool.FIFO))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		h := p.MustAcquire(nil)
		h.Release()
	}
	b.StopTimer()
	if err := p.Close(); err != nil {
		b.Fatal(err)
	}
}

// BenchmarkPoolMmapAcquireRelease backs the pool with mapped chunks.
func BenchmarkPoolMmapAcquireRelease(b *testing.B) {
	alloc, err := pool.NewMmapAllocator[expensiveObject]()
	if err != nil {
		b.Skip(err)
	}
	p := pool.New(pool.WithAllocator[expensiveObject](alloc))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		h := p.MustAcquire(nil)
		h.Release()
	}
	b.StopTimer()
	if err := p.Close(); err != nil {
		b.Fatal(err)
	}
}

// BenchmarkHeapAlloc is the plain allocation baseline.
func BenchmarkHeapAlloc(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		sink = new(expensiveObject)
	}
	sink = nil
}

// BenchmarkPoolGrowth measures acquisition while the pool keeps growing.
func BenchmarkPoolGrowth(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		p := pool.New[[64]byte]()
		hs := make([]*pool.Handle[[64]byte], 0, 1024)
		for j := 0; j < 1024; j++ {
			hs = append(hs, p.MustAcquire(nil))
		}
		for _, h := range hs {
			h.Release()
		}
		if err := p.Close(); err != nil {
			b.Fatal(err)
		}
	}
}
