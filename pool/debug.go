//go:build debug

// File: pool/debug.go
// Author: momentics <momentics@gmail.com>
//
// Records the acquisition stack of every live handle so Close can point at
// the code that still owns a slot.

package pool

import (
	"runtime/debug"
	"sync"
)

type debugState struct {
	mu     sync.Mutex
	stacks map[uintptr]string
}

func newDebugState() *debugState {
	return &debugState{stacks: make(map[uintptr]string)}
}

func (d *debugState) recordAcquire(slot uintptr) {
	if d == nil {
		return
	}
	stack := string(debug.Stack())
	d.mu.Lock()
	d.stacks[slot] = stack
	d.mu.Unlock()
}

func (d *debugState) recordRelease(slot uintptr) {
	if d == nil {
		return
	}
	d.mu.Lock()
	delete(d.stacks, slot)
	d.mu.Unlock()
}

func (d *debugState) activeStacks() []string {
	if d == nil {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.stacks) == 0 {
		return nil
	}
	out := make([]string, 0, len(d.stacks))
	for _, stack := range d.stacks {
		out = append(out, stack)
	}
	return out
}
