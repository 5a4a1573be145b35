package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/arena"
	"github.com/joshuapare/heapkit/arena/alloc"
	"github.com/joshuapare/heapkit/arena/printer"
	"github.com/joshuapare/heapkit/internal/logger"
)

const defaultCapacity = 4096

var (
	// Global flags
	verbose    bool
	quiet      bool
	jsonOut    bool
	capacity   int
	sourceName string
	logLevel   string
	grouping   bool
)

var rootCmd = &cobra.Command{
	Use:   "heapctl",
	Short: "Drive and inspect a worst-fit heap",
	Long: `heapctl runs a worst-fit free-list heap over a single fixed arena.
It replays the classic demonstration scenarios, executes allocation scripts,
and stress-tests the allocator with concurrent workers, printing the free list
and allocator counters as it goes.`,
	Version:           "0.1.0",
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().
		IntVarP(&capacity, "capacity", "c", defaultCapacity, "Arena size in bytes")
	rootCmd.PersistentFlags().
		StringVar(&sourceName, "source", "auto", "Arena source (auto, mmap, heap)")
	rootCmd.PersistentFlags().
		StringVar(&logLevel, "log-level", "", "Log allocator events to stderr at this level (debug, info, warn, error)")
	rootCmd.PersistentFlags().
		BoolVar(&grouping, "group-digits", false, "Print byte counts with thousands separators")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setupLogging enables the process logger when --log-level is given.
// --verbose alone turns it on at info level.
func setupLogging(_ *cobra.Command, _ []string) error {
	if logLevel == "" && !verbose {
		return nil
	}
	lvl, err := logger.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	format := logger.FormatText
	if jsonOut {
		format = logger.FormatJSON
	}
	logger.Init(logger.Options{Enabled: true, Level: lvl, Format: format, Writer: os.Stderr})
	return nil
}

// openHeap opens a heap with the global capacity and source flags.
func openHeap() (*alloc.Heap, error) {
	src, err := arena.ParseSource(sourceName)
	if err != nil {
		return nil, err
	}
	h, err := alloc.Open(capacity, &alloc.Options{Source: src, Logger: logger.L})
	if err != nil {
		return nil, err
	}
	printVerbose("Opened %d-byte heap (%s)\n", h.Capacity(), h.Arena().Source())
	return h, nil
}

// newPrinter returns a printer writing to stdout in the global output format.
func newPrinter() *printer.Printer {
	opts := printer.DefaultOptions()
	if jsonOut {
		opts.Format = printer.FormatJSON
	}
	opts.Grouping = grouping
	return printer.New(os.Stdout, opts)
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
