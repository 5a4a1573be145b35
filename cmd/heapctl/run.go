package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/arena/alloc"
	"github.com/joshuapare/heapkit/arena/printer"
	"github.com/joshuapare/heapkit/arena/verify"
	"github.com/joshuapare/heapkit/internal/format"
	"github.com/joshuapare/heapkit/internal/logger"
)

var runStrict bool

func init() {
	cmd := newRunCmd()
	cmd.Flags().BoolVar(&runStrict, "strict", false, "Stop at the first failed alloc or free")
	rootCmd.AddCommand(cmd)
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <script>",
		Short: "Execute an allocation script",
		Long: `The run command drives a fresh heap from a script, one command per line.
Blank lines and lines starting with # are ignored. Use - to read stdin.

Commands:
  alloc NAME SIZE   allocate SIZE bytes and bind the pointer to NAME
  free NAME         release the block bound to NAME
  write NAME BYTE   fill NAME's payload with BYTE (decimal or 0x hex)
  expect NAME BYTE  fail unless every payload byte of NAME equals BYTE
  corrupt NAME      overwrite NAME's header tag, as a stray write would
  dump              print the free list
  check             verify the arena invariants
  stats             print allocator counters

Failed allocs and rejected frees are reported and the script continues,
unless --strict is set.

Example:
  heapctl run session.txt
  heapctl run - --capacity 65536 < session.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScript(args)
		},
	}
	return cmd
}

// errScript marks a malformed script line.
var errScript = errors.New("script error")

// session holds the state of one script run.
type session struct {
	h      *alloc.Heap
	p      *printer.Printer
	names  map[string]alloc.Ptr
	strict bool
	failed int // allocs and frees that returned an error
}

func runScript(args []string) error {
	var r io.Reader = os.Stdin
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open script: %w", err)
		}
		defer f.Close()
		r = f
	}

	h, err := openHeap()
	if err != nil {
		return err
	}
	s := &session{h: h, p: newPrinter(), names: make(map[string]alloc.Ptr), strict: runStrict}

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := s.exec(strings.Fields(line)); err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}

	printVerbose("%d line(s), %d failed operation(s)\n", lineNo, s.failed)
	return nil
}

func (s *session) exec(f []string) error {
	switch f[0] {
	case "alloc":
		if len(f) != 3 {
			return fmt.Errorf("%w: usage: alloc NAME SIZE", errScript)
		}
		n, err := strconv.Atoi(f[2])
		if err != nil {
			return fmt.Errorf("%w: bad size %q", errScript, f[2])
		}
		p, err := s.h.Alloc(n)
		if err != nil {
			return s.fail("alloc %s %d: %v\n", err, f[1], n, err)
		}
		s.names[f[1]] = p
		printInfo("%s = 0x%X (%d bytes)\n", f[1], uint32(p), format.Align8(n))
		return nil

	case "free":
		if len(f) != 2 {
			return fmt.Errorf("%w: usage: free NAME", errScript)
		}
		p, err := s.lookup(f[1])
		if err != nil {
			return err
		}
		if err := s.h.Free(p); err != nil {
			return s.fail("free %s: %v\n", err, f[1], err)
		}
		printInfo("freed %s\n", f[1])
		return nil

	case "write", "expect":
		if len(f) != 3 {
			return fmt.Errorf("%w: usage: %s NAME BYTE", errScript, f[0])
		}
		buf, err := s.payload(f[1])
		if err != nil {
			return err
		}
		v, err := strconv.ParseUint(f[2], 0, 8)
		if err != nil {
			return fmt.Errorf("%w: bad byte %q", errScript, f[2])
		}
		if f[0] == "write" {
			for i := range buf {
				buf[i] = byte(v)
			}
			return nil
		}
		for i, c := range buf {
			if c != byte(v) {
				return fmt.Errorf("expect %s: byte %d is 0x%02X, want 0x%02X", f[1], i, c, v)
			}
		}
		return nil

	case "corrupt":
		if len(f) != 2 {
			return fmt.Errorf("%w: usage: corrupt NAME", errScript)
		}
		p, err := s.lookup(f[1])
		if err != nil {
			return err
		}
		hdr := int(p) - format.HeaderSize
		format.PutU32(s.h.Arena().Bytes(), hdr+format.SlotKindOffset, 0xDEADBEEF)
		printInfo("corrupted header of %s at 0x%X\n", f[1], hdr)
		return nil

	case "dump":
		r, err := s.h.Inspect()
		if err != nil {
			return err
		}
		return s.p.Print(r)

	case "check":
		if err := verify.AllInvariants(s.h.Arena().Bytes()); err != nil {
			printInfo("check: %v\n", err)
			if s.strict {
				return err
			}
			return nil
		}
		printInfo("check: ok\n")
		return nil

	case "stats":
		return s.p.PrintStats(s.h.Stats())

	default:
		return fmt.Errorf("%w: unknown command %q", errScript, f[0])
	}
}

// fail reports a failed operation, and aborts the script in strict mode.
func (s *session) fail(msg string, err error, args ...any) error {
	s.failed++
	logger.Warn("script operation failed", "error", err)
	if s.strict {
		return err
	}
	printInfo(msg, args...)
	return nil
}

func (s *session) lookup(name string) (alloc.Ptr, error) {
	p, ok := s.names[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s was never allocated", errScript, name)
	}
	return p, nil
}

func (s *session) payload(name string) ([]byte, error) {
	p, err := s.lookup(name)
	if err != nil {
		return nil, err
	}
	return s.h.Bytes(p)
}
