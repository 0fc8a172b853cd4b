// File: pool/metrics.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

import (
	"github.com/momentics/hioload-objpool/api"
	"github.com/prometheus/client_golang/prometheus"
)

// Collector exports PoolStats as prometheus metrics labelled by pool name.
// It reads atomic snapshots, so it may be scraped while the pool is in use.
type Collector struct {
	src api.StatsSource

	chunks   *prometheus.Desc
	capacity *prometheus.Desc
	free     *prometheus.Desc
	live     *prometheus.Desc
	growths  *prometheus.Desc
	acquires *prometheus.Desc
	releases *prometheus.Desc
	failures *prometheus.Desc
	leaked   *prometheus.Desc
}

// NewCollector builds a collector for src. Register it with a prometheus.Registerer.
func NewCollector(name string, src api.StatsSource) *Collector {
	labels := prometheus.Labels{"pool": name}
	desc := func(metric, help string, variable ...string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName("hioload", "objpool", metric), help, variable, labels)
	}
	return &Collector{
		src:      src,
		chunks:   desc("chunks", "Number of chunks owned by the pool."),
		capacity: desc("capacity_slots", "Total slots across all chunks."),
		free:     desc("free_slots", "Slots available for reuse."),
		live:     desc("live_objects", "Objects currently handed out."),
		growths:  desc("growths_total", "Chunk allocations performed."),
		acquires: desc("acquires_total", "Successful acquisitions."),
		releases: desc("releases_total", "Objects returned to the pool."),
		failures: desc("failures_total", "Failed acquisitions by cause.", "cause"),
		leaked:   desc("leaked_total", "Handles collected without release."),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.chunks
	ch <- c.capacity
	ch <- c.free
	ch <- c.live
	ch <- c.growths
	ch <- c.acquires
	ch <- c.releases
	ch <- c.failures
	ch <- c.leaked
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.src.Stats()
	ch <- prometheus.MustNewConstMetric(c.chunks, prometheus.GaugeValue, float64(s.Chunks))
	ch <- prometheus.MustNewConstMetric(c.capacity, prometheus.GaugeValue, float64(s.Capacity))
	ch <- prometheus.MustNewConstMetric(c.free, prometheus.GaugeValue, float64(s.Free))
	ch <- prometheus.MustNewConstMetric(c.live, prometheus.GaugeValue, float64(s.Live))
	ch <- prometheus.MustNewConstMetric(c.growths, prometheus.CounterValue, float64(s.Growths))
	ch <- prometheus.MustNewConstMetric(c.acquires, prometheus.CounterValue, float64(s.Acquires))
	ch <- prometheus.MustNewConstMetric(c.releases, prometheus.CounterValue, float64(s.Releases))
	ch <- prometheus.MustNewConstMetric(c.failures, prometheus.CounterValue, float64(s.ConstructFailures), "construct")
	ch <- prometheus.MustNewConstMetric(c.failures, prometheus.CounterValue, float64(s.AllocationFailures), "allocate")
	ch <- prometheus.MustNewConstMetric(c.leaked, prometheus.CounterValue, float64(s.Leaked))
}

var _ prometheus.Collector = (*Collector)(nil)
