//go:build !debug

package pool

type debugState struct{}

func newDebugState() *debugState { return nil }

func (d *debugState) recordAcquire(uintptr) {}

func (d *debugState) recordRelease(uintptr) {}

func (d *debugState) activeStacks() []string { return nil }
