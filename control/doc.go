// Package control
// Author: momentics <momentics@gmail.com>
//
// Debug introspection layer for hioload-objpool.
//
// Provides a concurrent-safe probe registry that snapshots pool accounting
// and host facts on demand. Probes must only read state that is safe to
// observe from another goroutine, such as api.PoolStats.
package control
