// Package metrics exports heap counters to Prometheus.
//
// The collector holds no state of its own: every scrape reads Stats from the
// heap, so counters can never drift from what the allocator reports.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/joshuapare/heapkit/arena/alloc"
)

// StatsSource is anything that reports allocator counters. Both *alloc.Heap
// and *alloc.Locked qualify; only Locked is safe to scrape while other
// goroutines use the heap.
type StatsSource interface {
	Stats() alloc.Stats
}

// Inspector is optionally implemented by a StatsSource. When present, the
// collector also exports the largest free region and fragmentation, which
// need a list walk.
type Inspector interface {
	Inspect() (alloc.Report, error)
}

// Collector implements prometheus.Collector over a StatsSource.
type Collector struct {
	src StatsSource

	capacity    *prometheus.Desc
	inUse       *prometheus.Desc
	free        *prometheus.Desc
	overhead    *prometheus.Desc
	liveBlocks  *prometheus.Desc
	freeNodes   *prometheus.Desc
	allocs      *prometheus.Desc
	frees       *prometheus.Desc
	merges      *prometheus.Desc
	served      *prometheus.Desc
	largestFree *prometheus.Desc
	fragment    *prometheus.Desc
}

// NewCollector returns a collector for src. constLabels are attached to every
// metric, which lets one registry carry several heaps.
func NewCollector(src StatsSource, constLabels prometheus.Labels) *Collector {
	desc := func(name, help string, labels ...string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName("heapkit", "", name), help, labels, constLabels)
	}
	return &Collector{
		src:         src,
		capacity:    desc("capacity_bytes", "Size of the arena in bytes."),
		inUse:       desc("in_use_bytes", "Payload bytes held by live allocations."),
		free:        desc("free_bytes", "Usable bytes across all free nodes."),
		overhead:    desc("overhead_bytes", "Bytes spent on headers and free-list descriptors."),
		liveBlocks:  desc("live_blocks", "Allocations not yet released."),
		freeNodes:   desc("free_nodes", "Nodes on the free list."),
		allocs:      desc("allocs_total", "Alloc calls by result.", "result"),
		frees:       desc("frees_total", "Free calls by result.", "result"),
		merges:      desc("merges_total", "Successful releases by coalescing rule.", "rule"),
		served:      desc("served_bytes_total", "Payload bytes handed out by Alloc."),
		largestFree: desc("largest_free_bytes", "Size of the largest free node."),
		fragment:    desc("fragmentation_ratio", "One minus largest free node over total free bytes."),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{
		c.capacity, c.inUse, c.free, c.overhead, c.liveBlocks, c.freeNodes,
		c.allocs, c.frees, c.merges, c.served,
	} {
		ch <- d
	}
	if _, ok := c.src.(Inspector); ok {
		ch <- c.largestFree
		ch <- c.fragment
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.src.Stats()

	gauge := func(d *prometheus.Desc, v float64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v, labels...)
	}
	counter := func(d *prometheus.Desc, v float64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, v, labels...)
	}

	gauge(c.capacity, float64(s.Capacity))
	gauge(c.inUse, float64(s.BytesInUse))
	gauge(c.free, float64(s.FreeBytes))
	gauge(c.overhead, float64(s.Overhead))
	gauge(c.liveBlocks, float64(s.LiveBlocks))
	gauge(c.freeNodes, float64(s.FreeNodes))

	// Calls that reached Alloc but hit a corrupt list fall under "error".
	allocErr := s.AllocCalls - s.AllocOK - s.OutOfMemory - s.BadSize
	counter(c.allocs, float64(s.AllocOK), "ok")
	counter(c.allocs, float64(s.OutOfMemory), "out_of_memory")
	counter(c.allocs, float64(s.BadSize), "bad_size")
	counter(c.allocs, float64(allocErr), "error")

	counter(c.frees, float64(s.FreeOK), "ok")
	counter(c.frees, float64(s.FreeRejected), "rejected")

	counter(c.merges, float64(s.MergeIsolated), alloc.MergeIsolated.String())
	counter(c.merges, float64(s.MergeLeft), alloc.MergeLeft.String())
	counter(c.merges, float64(s.MergeBoth), alloc.MergeBoth.String())
	counter(c.merges, float64(s.MergeRight), alloc.MergeRight.String())

	counter(c.served, float64(s.BytesServed))

	insp, ok := c.src.(Inspector)
	if !ok {
		return
	}
	r, err := insp.Inspect()
	if err != nil {
		ch <- prometheus.NewInvalidMetric(c.largestFree, err)
		return
	}
	gauge(c.largestFree, float64(r.LargestFree))
	gauge(c.fragment, r.Fragmentation)
}

// Register adds a collector for src to reg.
func Register(reg prometheus.Registerer, src StatsSource, constLabels prometheus.Labels) (*Collector, error) {
	c := NewCollector(src, constLabels)
	if err := reg.Register(c); err != nil {
		return nil, err
	}
	return c, nil
}
