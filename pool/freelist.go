// File: pool/freelist.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Free-slot lists. Not thread-safe, owned by a single pool state.

package pool

import "github.com/eapache/queue"

type freeList[T any] interface {
	push(slot *T)
	pop() *T
	// restore puts back a slot taken by the last pop still outstanding, so
	// it is handed out next.
	restore(slot *T)
	len() int
	reset()
}

func newFreeList[T any](o FreeOrder) freeList[T] {
	if o == FIFO {
		return &fifoList[T]{q: queue.New()}
	}
	return &lifoList[T]{}
}

// lifoList hands out the most recently pushed slot.
type lifoList[T any] struct {
	slots []*T
}

func (l *lifoList[T]) push(slot *T) { l.slots = append(l.slots, slot) }

func (l *lifoList[T]) pop() *T {
	n := len(l.slots) - 1
	slot := l.slots[n]
	l.slots[n] = nil
	l.slots = l.slots[:n]
	return slot
}

func (l *lifoList[T]) restore(slot *T) { l.push(slot) }

func (l *lifoList[T]) len() int { return len(l.slots) }

func (l *lifoList[T]) reset() { l.slots = nil }

// fifoList hands out the oldest pushed slot, backed by a ring queue.
// Restored slots sit on a small stack in front of the queue.
type fifoList[T any] struct {
	q     *queue.Queue
	front []*T
}

func (l *fifoList[T]) push(slot *T) { l.q.Add(slot) }

func (l *fifoList[T]) pop() *T {
	if n := len(l.front) - 1; n >= 0 {
		slot := l.front[n]
		l.front[n] = nil
		l.front = l.front[:n]
		return slot
	}
	return l.q.Remove().(*T)
}

func (l *fifoList[T]) restore(slot *T) { l.front = append(l.front, slot) }

func (l *fifoList[T]) len() int { return len(l.front) + l.q.Length() }

func (l *fifoList[T]) reset() {
	l.q = queue.New()
	l.front = nil
}
