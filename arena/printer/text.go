package printer

import (
	"fmt"
	"strings"

	"github.com/joshuapare/heapkit/arena/alloc"
)

const separator = "-----------------------------"

// printReportText writes the node listing: the head line, then for each
// following node the allocated extent before it and the node itself.
func (p *Printer) printReportText(r alloc.Report) error {
	var sb strings.Builder

	for i, n := range r.Nodes {
		if i == 0 {
			fmt.Fprintf(&sb, "HEAD: %s END: %s SIZE: %s\n", p.n(uint64(n.Offset)), p.n(n.End), p.n(n.Size))
			continue
		}
		gap := uint64(n.Offset) - r.Nodes[i-1].End
		p.writeGap(&sb, gap)
		fmt.Fprintf(&sb, "START: %s END: %s SIZE: %s\n", p.n(uint64(n.Offset)), p.n(n.End), p.n(n.Size))
	}

	if p.opts.ShowGaps && len(r.Nodes) > 0 {
		last := r.Nodes[len(r.Nodes)-1]
		if tail := uint64(r.Capacity) - last.End; tail > 0 {
			p.writeGap(&sb, tail)
		}
	}
	sb.WriteString("\n")

	if p.opts.Summary {
		fmt.Fprintf(&sb, "free: %s bytes in %d nodes, largest %s, fragmentation %.1f%%\n",
			p.n(r.FreeBytes), len(r.Nodes), p.n(r.LargestFree), r.Fragmentation*100)
	}

	_, err := fmt.Fprint(p.writer, sb.String())
	return err
}

func (p *Printer) writeGap(sb *strings.Builder, size uint64) {
	sb.WriteString(separator + "\n\n")
	fmt.Fprintf(sb, "ALLOCATED BLOCK OF SIZE: %s\n\n", p.n(size))
	sb.WriteString(separator + "\n")
}

func (p *Printer) printStatsText(s alloc.Stats) error {
	rows := []struct {
		label string
		value string
	}{
		{"Capacity", p.n(uint64(s.Capacity))},
		{"Live blocks", fmt.Sprintf("%d", s.LiveBlocks)},
		{"Bytes in use", p.n(s.BytesInUse)},
		{"Free nodes", fmt.Sprintf("%d", s.FreeNodes)},
		{"Free bytes", p.n(s.FreeBytes)},
		{"Overhead", p.n(s.Overhead)},
		{"Bytes served", p.n(s.BytesServed)},
		{"Alloc calls", fmt.Sprintf("%d (ok %d, out of memory %d, bad size %d)",
			s.AllocCalls, s.AllocOK, s.OutOfMemory, s.BadSize)},
		{"Free calls", fmt.Sprintf("%d (ok %d, rejected %d)", s.FreeCalls, s.FreeOK, s.FreeRejected)},
		{"Merges", fmt.Sprintf("isolated %d, left %d, both %d, right %d",
			s.MergeIsolated, s.MergeLeft, s.MergeBoth, s.MergeRight)},
	}

	for _, row := range rows {
		if _, err := fmt.Fprintf(p.writer, "%-14s %s\n", row.label+":", row.value); err != nil {
			return err
		}
	}
	return nil
}
