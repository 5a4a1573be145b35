package main

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/joshuapare/heapkit/arena/alloc"
	"github.com/joshuapare/heapkit/arena/metrics"
	"github.com/joshuapare/heapkit/arena/verify"
	"github.com/joshuapare/heapkit/internal/logger"
)

var (
	stressWorkers int
	stressOps     int
	stressMaxSize int
	stressSeed    int64
	stressMetrics bool
)

func init() {
	cmd := newStressCmd()
	cmd.Flags().IntVarP(&stressWorkers, "workers", "w", 4, "Concurrent workers")
	cmd.Flags().IntVarP(&stressOps, "ops", "n", 10000, "Operations per worker")
	cmd.Flags().IntVar(&stressMaxSize, "max-size", 256, "Largest request in bytes")
	cmd.Flags().Int64Var(&stressSeed, "seed", 1, "Random seed")
	cmd.Flags().BoolVar(&stressMetrics, "metrics", false, "Print Prometheus metrics after the run")
	rootCmd.AddCommand(cmd)
}

func newStressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Hammer a shared heap with concurrent workers",
		Long: `The stress command runs workers that randomly allocate and release blocks
on one serialized heap. Every payload is filled with random bytes and
checksummed; a block whose checksum changes before release means two
allocations overlapped. When the workers finish, every block is released
and the arena must be back to a single free node.

Example:
  heapctl stress
  heapctl stress --workers 16 --ops 50000 --capacity 1048576
  heapctl stress --metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStress()
		},
	}
	return cmd
}

// held is a block owned by one worker and the checksum of its payload.
type held struct {
	p   alloc.Ptr
	sum uint64
}

// StressResult summarizes a stress run.
type StressResult struct {
	Workers  int         `json:"workers"`
	Ops      int         `json:"ops"`
	Duration string      `json:"duration"`
	Stats    alloc.Stats `json:"stats"`
}

func runStress() error {
	if stressWorkers < 1 || stressOps < 0 || stressMaxSize < 1 {
		return errors.New("workers and max-size must be positive, ops non-negative")
	}

	h, err := openHeap()
	if err != nil {
		return err
	}
	l := alloc.NewLocked(h)

	reg := prometheus.NewRegistry()
	if _, err := metrics.Register(reg, l, prometheus.Labels{"heap": "stress"}); err != nil {
		return err
	}

	start := time.Now()
	var g errgroup.Group
	for w := range stressWorkers {
		g.Go(func() error {
			return stressWorker(l, rand.New(rand.NewSource(stressSeed+int64(w))))
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	elapsed := time.Since(start)
	logger.Info("stress run finished", "workers", stressWorkers, "ops", stressWorkers*stressOps, "elapsed", elapsed)

	if err := l.Do(func(h *alloc.Heap) error {
		return verify.AllInvariants(h.Arena().Bytes())
	}); err != nil {
		return fmt.Errorf("arena inconsistent after run: %w", err)
	}
	s := l.Stats()
	if s.LiveBlocks != 0 || s.FreeNodes != 1 {
		return fmt.Errorf("arena not restored: %d live blocks, %d free nodes", s.LiveBlocks, s.FreeNodes)
	}

	if jsonOut {
		if err := printJSON(StressResult{
			Workers:  stressWorkers,
			Ops:      stressWorkers * stressOps,
			Duration: elapsed.String(),
			Stats:    s,
		}); err != nil {
			return err
		}
	} else {
		printInfo("%d workers, %d ops in %s\n", stressWorkers, stressWorkers*stressOps, elapsed.Round(time.Microsecond))
		if !quiet {
			if err := newPrinter().PrintStats(s); err != nil {
				return err
			}
		}
	}

	if stressMetrics {
		families, err := reg.Gather()
		if err != nil {
			return err
		}
		for _, mf := range families {
			if _, err := expfmt.MetricFamilyToText(os.Stdout, mf); err != nil {
				return err
			}
		}
	}
	return nil
}

func stressWorker(l *alloc.Locked, rng *rand.Rand) error {
	var mine []held

	release := func(i int) error {
		b := mine[i]
		buf, err := l.Bytes(b.p)
		if err != nil {
			return err
		}
		if got := xxhash.Sum64(buf); got != b.sum {
			return fmt.Errorf("payload at 0x%X changed while held: checksum %016x, want %016x", uint32(b.p), got, b.sum)
		}
		if err := l.Free(b.p); err != nil {
			return err
		}
		mine[i] = mine[len(mine)-1]
		mine = mine[:len(mine)-1]
		return nil
	}

	for range stressOps {
		if len(mine) > 0 && rng.Intn(2) == 0 {
			if err := release(rng.Intn(len(mine))); err != nil {
				return err
			}
			continue
		}

		p, err := l.Alloc(1 + rng.Intn(stressMaxSize))
		if errors.Is(err, alloc.ErrOutOfMemory) {
			continue
		}
		if err != nil {
			return err
		}
		buf, err := l.Bytes(p)
		if err != nil {
			return err
		}
		rng.Read(buf)
		mine = append(mine, held{p: p, sum: xxhash.Sum64(buf)})
	}

	for len(mine) > 0 {
		if err := release(len(mine) - 1); err != nil {
			return err
		}
	}
	return nil
}
