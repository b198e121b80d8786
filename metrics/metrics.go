// Package metrics exports stackpool statistics to Prometheus.
//
// Pools are single-threaded, so the collector never reads a pool directly.
// The goroutine owning a pool publishes snapshots with Update and scrapes
// read the last published snapshot:
//
//	c := metrics.NewPoolCollector("stackpool")
//	prometheus.MustRegister(c)
//	...
//	c.Update("shard-0", total.Add(pool.Stats()))
//
// Counter series are only monotonic if the published Stats are cumulative.
// Pool counters restart on Release, so owners that release pools should
// publish running totals.
package metrics

import (
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"stackpool/stackpool"
)

type statDesc struct {
	desc    *prometheus.Desc
	valType prometheus.ValueType
	value   func(stackpool.Stats) float64
}

// PoolCollector implements prometheus.Collector over published
// stackpool.Stats, one label value per pool name.
type PoolCollector struct {
	mu    sync.RWMutex
	pools map[string]stackpool.Stats
	descs []statDesc
}

// NewPoolCollector creates a collector whose series are prefixed with
// namespace.
func NewPoolCollector(namespace string) *PoolCollector {
	labels := []string{"pool"}
	gauge := func(name, help string, f func(stackpool.Stats) float64) statDesc {
		return statDesc{
			desc:    prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, labels, nil),
			valType: prometheus.GaugeValue,
			value:   f,
		}
	}
	counter := func(name, help string, f func(stackpool.Stats) uint64) statDesc {
		return statDesc{
			desc:    prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, labels, nil),
			valType: prometheus.CounterValue,
			value:   func(s stackpool.Stats) float64 { return float64(f(s)) },
		}
	}

	return &PoolCollector{
		pools: make(map[string]stackpool.Stats),
		descs: []statDesc{
			gauge("nodes", "Allocated node slots, live or free.",
				func(s stackpool.Stats) float64 { return float64(s.Nodes) }),
			gauge("capacity", "Node slots the storage holds without growing.",
				func(s stackpool.Stats) float64 { return float64(s.Capacity) }),
			gauge("free_nodes", "Node slots on the free list.",
				func(s stackpool.Stats) float64 { return float64(s.Free) }),
			gauge("live_nodes", "Node slots owned by a stack.",
				func(s stackpool.Stats) float64 { return float64(s.Live) }),
			counter("pushes_total", "Push calls.",
				func(s stackpool.Stats) uint64 { return s.Pushes }),
			counter("pops_total", "Pop calls.",
				func(s stackpool.Stats) uint64 { return s.Pops }),
			counter("reused_total", "Pushes served from the free list.",
				func(s stackpool.Stats) uint64 { return s.Reused }),
			counter("grows_total", "Storage growths.",
				func(s stackpool.Stats) uint64 { return s.Grows }),
			counter("stacks_freed_total", "FreeStack calls on non-empty stacks.",
				func(s stackpool.Stats) uint64 { return s.StacksFreed }),
			counter("nodes_freed_total", "Nodes returned by FreeStack.",
				func(s stackpool.Stats) uint64 { return s.NodesFreed }),
		},
	}
}

// Update publishes the stats of pool, replacing the previous snapshot.
func (c *PoolCollector) Update(pool string, s stackpool.Stats) {
	c.mu.Lock()
	c.pools[pool] = s
	c.mu.Unlock()
}

// Forget drops the series of pool.
func (c *PoolCollector) Forget(pool string) {
	c.mu.Lock()
	delete(c.pools, pool)
	c.mu.Unlock()
}

// Pools returns the published pool names in order.
func (c *PoolCollector) Pools() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.pools))
	for name := range c.pools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe implements prometheus.Collector.
func (c *PoolCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range c.descs {
		ch <- d.desc
	}
}

// Collect implements prometheus.Collector.
func (c *PoolCollector) Collect(ch chan<- prometheus.Metric) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for name, s := range c.pools {
		for _, d := range c.descs {
			ch <- prometheus.MustNewConstMetric(d.desc, d.valType, d.value(s), name)
		}
	}
}
