package printer

import (
	"encoding/json"
	"fmt"

	"github.com/joshuapare/heapkit/arena/alloc"
)

// jsonReport is the JSON shape of a report. Allocated extents are only
// included when ShowGaps is set.
type jsonReport struct {
	Capacity      int                     `json:"capacity"`
	Nodes         []alloc.FreeRegion      `json:"nodes"`
	Allocated     []alloc.AllocatedExtent `json:"allocated,omitempty"`
	FreeBytes     uint64                  `json:"free_bytes"`
	LargestFree   uint64                  `json:"largest_free"`
	Fragmentation float64                 `json:"fragmentation"`
}

func (p *Printer) printReportJSON(r alloc.Report) error {
	out := jsonReport{
		Capacity:      r.Capacity,
		Nodes:         r.Nodes,
		FreeBytes:     r.FreeBytes,
		LargestFree:   r.LargestFree,
		Fragmentation: r.Fragmentation,
	}
	if out.Nodes == nil {
		out.Nodes = []alloc.FreeRegion{}
	}
	if p.opts.ShowGaps {
		out.Allocated = r.Allocated
	}
	return p.writeJSON(out)
}

func (p *Printer) printStatsJSON(s alloc.Stats) error {
	return p.writeJSON(s)
}

func (p *Printer) writeJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(p.writer, "%s\n", data)
	return err
}
