package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/arena/alloc"
	"github.com/joshuapare/heapkit/arena/printer"
	"github.com/joshuapare/heapkit/arena/verify"
)

func init() {
	rootCmd.AddCommand(newDemoCmd())
}

func newDemoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo [scenario...]",
		Short: "Replay the demonstration scenarios",
		Long: `The demo command replays allocation scenarios on a fresh heap each,
dumping the free list after every step.

Scenarios:
  reuse     a released block is handed out again
  split     blocks are split off one node and coalesce back into it
  worstfit  the largest free region serves a request

Example:
  heapctl demo
  heapctl demo split
  heapctl demo worstfit --json`,
		ValidArgs: scenarioNames(),
		Args:      cobra.OnlyValidArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(args)
		},
	}
	return cmd
}

type scenario struct {
	name  string
	title string
	run   func(d *demo) error
}

var scenarios = []scenario{
	{"reuse", "Free blocks are reused", demoReuse},
	{"split", "Blocks are split and freed correctly", demoSplit},
	{"worstfit", "Worst fit", demoWorstFit},
}

func scenarioNames() []string {
	names := make([]string, 0, len(scenarios))
	for _, s := range scenarios {
		names = append(names, s.name)
	}
	return names
}

// demoStep is one dump in JSON output.
type demoStep struct {
	Scenario string       `json:"scenario"`
	Step     string       `json:"step"`
	Report   alloc.Report `json:"report"`
}

// demo runs one scenario against its own heap.
type demo struct {
	h     *alloc.Heap
	p     *printer.Printer
	name  string
	steps []demoStep
}

func (d *demo) alloc(n int) (alloc.Ptr, error) {
	p, err := d.h.Alloc(n)
	if err != nil {
		return 0, fmt.Errorf("%s: alloc %d: %w", d.name, n, err)
	}
	printVerbose("alloc %d -> 0x%X\n", n, uint32(p))
	return p, nil
}

func (d *demo) free(ps ...alloc.Ptr) error {
	for _, p := range ps {
		if err := d.h.Free(p); err != nil {
			return fmt.Errorf("%s: free 0x%X: %w", d.name, uint32(p), err)
		}
		printVerbose("free 0x%X\n", uint32(p))
	}
	return nil
}

// dump records the free list after a step and checks the arena.
func (d *demo) dump(step string) error {
	if err := verify.AllInvariants(d.h.Arena().Bytes()); err != nil {
		return fmt.Errorf("%s: %s: %w", d.name, step, err)
	}
	r, err := d.h.Inspect()
	if err != nil {
		return err
	}
	if jsonOut {
		d.steps = append(d.steps, demoStep{Scenario: d.name, Step: step, Report: r})
		return nil
	}
	if quiet {
		return nil
	}
	printInfo("%s\n", step)
	return d.p.Print(r)
}

func runDemo(args []string) error {
	selected := scenarios
	if len(args) > 0 {
		selected = nil
		for _, s := range scenarios {
			if slices.Contains(args, s.name) {
				selected = append(selected, s)
			}
		}
	}

	var steps []demoStep
	for i, s := range selected {
		h, err := openHeap()
		if err != nil {
			return err
		}
		d := &demo{h: h, p: newPrinter(), name: s.name}

		if !jsonOut {
			printInfo("TEST %d: %s\n\n", i+1, s.title)
		}
		if err := s.run(d); err != nil {
			return err
		}
		if !jsonOut {
			printInfo("%s\n\n\n", strings.Repeat("~", 55))
		}
		steps = append(steps, d.steps...)
	}

	if jsonOut {
		return printJSON(steps)
	}
	return nil
}

func demoReuse(d *demo) error {
	if err := d.dump("Free list before allocation"); err != nil {
		return err
	}
	a, err := d.alloc(8)
	if err != nil {
		return err
	}
	if err := d.dump("Free list after allocating a block of size 8"); err != nil {
		return err
	}
	if err := d.free(a); err != nil {
		return err
	}
	if err := d.dump("Free list after freeing the previous block"); err != nil {
		return err
	}
	b, err := d.alloc(8)
	if err != nil {
		return err
	}
	if b != a {
		return fmt.Errorf("%s: released block 0x%X was not reused (got 0x%X)", d.name, uint32(a), uint32(b))
	}
	return d.dump("Free list after reallocating a block of size 8")
}

func demoSplit(d *demo) error {
	if err := d.dump("Free list before allocation"); err != nil {
		return err
	}
	var ptrs [4]alloc.Ptr
	for i := range ptrs {
		p, err := d.alloc(8)
		if err != nil {
			return err
		}
		ptrs[i] = p
	}
	a, b, c, last := ptrs[0], ptrs[1], ptrs[2], ptrs[3]
	if err := d.dump("Free list after allocating 4 blocks of size 8"); err != nil {
		return err
	}

	if err := d.free(a, c); err != nil {
		return err
	}
	if err := d.dump("Free list after freeing 2 blocks of size 8, showing 3 nodes on the free list"); err != nil {
		return err
	}

	if err := d.free(b); err != nil {
		return err
	}
	if err := d.dump("Free list after freeing the block between them, leaving 2 nodes on the free list"); err != nil {
		return err
	}

	if err := d.free(last); err != nil {
		return err
	}
	return d.dump("Free list after freeing the last block, leaving 1 node on the free list")
}

func demoWorstFit(d *demo) error {
	var ptrs []alloc.Ptr
	for _, n := range []int{500, 8, 2000, 8} {
		p, err := d.alloc(n)
		if err != nil {
			return err
		}
		ptrs = append(ptrs, p)
	}
	if err := d.free(ptrs[0], ptrs[2]); err != nil {
		return err
	}
	if err := d.dump("Free list after segmenting into 3 regions of various sizes"); err != nil {
		return err
	}

	if _, err := d.alloc(64); err != nil {
		return err
	}
	return d.dump("Free list after allocating a block of size 64")
}
