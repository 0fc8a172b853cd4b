package control_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-objpool/api"
	"github.com/momentics/hioload-objpool/control"
	"github.com/momentics/hioload-objpool/pool"
)

func TestDebugProbesDumpPoolState(t *testing.T) {
	p := pool.New[[64]byte]()
	h := p.MustAcquire(nil)

	dp := control.NewDebugProbes()
	dp.RegisterPool("frames", p)
	dp.RegisterPlatformProbes()
	assert.Equal(t, []string{"platform.arch", "platform.cpus", "platform.pagesize", "pool.frames"}, dp.Names())

	state := dp.DumpState()
	stats, ok := state["pool.frames"].(api.PoolStats)
	require.True(t, ok)
	assert.Equal(t, int64(1), stats.Live)
	assert.Equal(t, int64(4), stats.Free)
	assert.Positive(t, state["platform.cpus"])

	h.Release()
	require.NoError(t, p.Close())
	assert.Equal(t, int64(0), dp.DumpState()["pool.frames"].(api.PoolStats).Capacity)
}
