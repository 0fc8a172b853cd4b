package pool_test

import (
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-objpool/pool"
)

type session struct {
	id     int
	closed *int
}

func (s *session) Destroy() { *s.closed++ }

func TestHandleSharedOwnership(t *testing.T) {
	p := pool.New[widget]()
	h := p.MustAcquire(pool.Bind2(initWidget, 1, "shared"))
	owner2 := h.Retain()
	owner3 := h.Retain()
	assert.Equal(t, int32(3), h.Refs())

	h.Release()
	owner2.Release()
	assert.Equal(t, int64(1), p.Stats().Live, "slot stays live while an owner remains")
	assert.Equal(t, "shared", owner3.Get().name)

	owner3.Release()
	s := p.Stats()
	assert.Equal(t, int64(0), s.Live)
	assert.Equal(t, int64(1), s.Releases)
	require.NoError(t, p.Close())
}

func TestHandleConcurrentOwnersReclaimOnce(t *testing.T) {
	p := pool.New[widget]()
	h := p.MustAcquire(nil)
	const owners = 32
	for i := 1; i < owners; i++ {
		h.Retain()
	}

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < owners; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			h.Release()
		}()
	}
	close(start)
	wg.Wait()

	s := p.Stats()
	assert.Equal(t, int64(1), s.Releases)
	assert.Equal(t, int64(5), s.Free)
	require.NoError(t, p.Close())
}

func TestHandleOverReleasePanics(t *testing.T) {
	p := pool.New[widget]()
	h := p.MustAcquire(nil)
	h.Release()
	assert.Panics(t, func() { h.Release() })
	assert.Panics(t, func() { h.Get() })
	assert.Panics(t, func() { h.Retain() })
	assert.Equal(t, int64(1), p.Stats().Releases, "slot was not pushed twice")
}

func TestHandleDestroyerRunsOnLastRelease(t *testing.T) {
	closed := 0
	p := pool.New[session]()
	h := p.MustAcquire(func(s *session) error {
		s.id = 3
		s.closed = &closed
		return nil
	})
	h.Retain()
	h.Release()
	assert.Equal(t, 0, closed)
	h.Release()
	assert.Equal(t, 1, closed)

	again := p.MustAcquire(nil)
	assert.Equal(t, session{}, *again.Get(), "recycled slot is zeroed")
	again.Release()
	require.NoError(t, p.Close())
}

func TestHandleDestructorOptionWins(t *testing.T) {
	closed, custom := 0, 0
	p := pool.New(pool.WithDestructor(func(s *session) { custom++ }))
	h := p.MustAcquire(func(s *session) error {
		s.closed = &closed
		return nil
	})
	h.Release()
	assert.Equal(t, 1, custom)
	assert.Equal(t, 0, closed)
	require.NoError(t, p.Close())
}

func TestHandleDestructorPanicReturnsSlot(t *testing.T) {
	p := pool.New(pool.WithDestructor(func(s *session) { panic("destroy") }))
	h := p.MustAcquire(func(s *session) error {
		s.id = 9
		return nil
	})
	slot := h.Get()
	assert.PanicsWithValue(t, "destroy", func() { h.Release() })

	s := p.Stats()
	assert.Equal(t, int64(0), s.Live)
	assert.Equal(t, int64(5), s.Free)
	assert.Equal(t, session{}, *slot, "slot is zeroed despite the panic")
	require.NoError(t, p.Close())
}

func TestHandleFreeOrder(t *testing.T) {
	lifo := pool.New[widget]()
	fifo := pool.New(pool.WithFreeOrder[widget](pool.FIFO))
	for _, p := range []*pool.Pool[widget]{lifo, fifo} {
		hs := acquireN(t, p, 5)
		a, b := hs[0].Get(), hs[1].Get()
		hs[0].Release()
		hs[1].Release()
		h := p.MustAcquire(nil)
		if p == lifo {
			assert.Same(t, b, h.Get(), "lifo reuses the most recently released slot")
		} else {
			assert.Same(t, a, h.Get(), "fifo reuses the oldest released slot")
		}
		h.Release()
		releaseAll(hs[2:])
		require.NoError(t, p.Close())
	}
}

func TestHandleLeakTracking(t *testing.T) {
	p := pool.New(pool.WithLeakTracking[widget]())

	released := p.MustAcquire(nil)
	released.Release()
	func() {
		_ = p.MustAcquire(nil) // dropped without Release
	}()

	assert.Eventually(t, func() bool {
		runtime.GC()
		return p.Stats().Leaked == 1
	}, 5*time.Second, 10*time.Millisecond)

	runtime.GC()
	assert.Equal(t, int64(1), p.Stats().Leaked, "released handles are not reported")
	assert.Equal(t, int64(1), p.Stats().Live)
}
