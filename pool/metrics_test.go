package pool_test

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-objpool/pool"
)

func TestCollectorExportsStats(t *testing.T) {
	p := pool.New(pool.WithName[widget]("widgets"))
	hs := acquireN(t, p, 7)
	hs[0].Release()

	c := pool.NewCollector(p.Name(), p)
	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(c))

	assert.Equal(t, 10, testutil.CollectAndCount(c))

	const want = `
# HELP hioload_objpool_capacity_slots Total slots across all chunks.
# TYPE hioload_objpool_capacity_slots gauge
hioload_objpool_capacity_slots{pool="widgets"} 15
# HELP hioload_objpool_live_objects Objects currently handed out.
# TYPE hioload_objpool_live_objects gauge
hioload_objpool_live_objects{pool="widgets"} 6
# HELP hioload_objpool_releases_total Objects returned to the pool.
# TYPE hioload_objpool_releases_total counter
hioload_objpool_releases_total{pool="widgets"} 1
`
	err := testutil.GatherAndCompare(reg, strings.NewReader(want),
		"hioload_objpool_capacity_slots",
		"hioload_objpool_live_objects",
		"hioload_objpool_releases_total")
	require.NoError(t, err)

	releaseAll(hs[1:])
	require.NoError(t, p.Close())
}
