// Package printer renders heap reports and counters for humans and tools.
package printer

import (
	"fmt"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/heapkit/arena/alloc"
)

// Format specifies the output format for printing.
type Format string

const (
	// FormatText outputs the free-list dump layout.
	FormatText Format = "text"

	// FormatJSON outputs JSON format.
	FormatJSON Format = "json"
)

// ParseFormat maps a flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatText, "":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text or json)", s)
	}
}

// Options controls printing behavior.
type Options struct {
	// Format specifies output format (text, json).
	// Default: FormatText
	Format Format

	// ShowGaps also reports the allocated extent after the last free node.
	// The classic dump only shows extents between nodes.
	// Default: false
	ShowGaps bool

	// Grouping formats byte counts with thousands separators (text format only).
	// Default: false
	Grouping bool

	// Summary appends totals and fragmentation after the node listing.
	// Default: false
	Summary bool
}

// DefaultOptions returns the classic dump layout.
func DefaultOptions() Options {
	return Options{
		Format:   FormatText,
		ShowGaps: false,
		Grouping: false,
		Summary:  false,
	}
}

// Printer writes reports to a writer.
type Printer struct {
	opts   Options
	writer io.Writer
	num    *message.Printer
}

// New creates a new Printer.
//
// Example:
//
//	r, _ := heap.Inspect()
//	p := printer.New(os.Stdout, printer.DefaultOptions())
//	p.Print(r)
func New(w io.Writer, opts Options) *Printer {
	p := &Printer{writer: w, opts: opts}
	if opts.Grouping {
		p.num = message.NewPrinter(language.English)
	}
	return p
}

// Print writes a free-list report.
func (p *Printer) Print(r alloc.Report) error {
	switch p.opts.Format {
	case FormatJSON:
		return p.printReportJSON(r)
	case FormatText, "":
		return p.printReportText(r)
	default:
		return fmt.Errorf("unsupported format: %s", p.opts.Format)
	}
}

// PrintStats writes allocator counters.
func (p *Printer) PrintStats(s alloc.Stats) error {
	switch p.opts.Format {
	case FormatJSON:
		return p.printStatsJSON(s)
	case FormatText, "":
		return p.printStatsText(s)
	default:
		return fmt.Errorf("unsupported format: %s", p.opts.Format)
	}
}

// n formats a byte count or offset, grouped when requested.
func (p *Printer) n(v uint64) string {
	if p.num != nil {
		return p.num.Sprintf("%d", v)
	}
	return fmt.Sprintf("%d", v)
}
