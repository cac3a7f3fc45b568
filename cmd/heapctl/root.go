package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/memlib"
	"github.com/joshuapare/heapkit/heap/trace"
	"github.com/joshuapare/heapkit/internal/logger"
)

var (
	// Global flags
	verbose bool
	quiet   bool
	jsonOut bool
	noColor bool

	// Arena flags
	chunkSize int
	maxHeap   int
	useMmap   bool
	strict    bool

	// Logging flags
	logEnabled bool
	logDir     string
	logJSON    bool

	closeLog = func() error { return nil }
)

var rootCmd = &cobra.Command{
	Use:   "heapctl",
	Short: "Replay and check allocation traces",
	Long: `heapctl drives the heapkit segregated free-list allocator with
malloc-lab style traces. It reports space utilization and throughput,
validates every pointer the allocator hands out, and can run the full heap
checker after each request.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		c, err := logger.Init(logger.Options{
			Enabled: logEnabled,
			LogDir:  logDir,
			JSON:    logJSON,
			Level:   level,
		})
		if err != nil {
			return fmt.Errorf("init logging: %w", err)
		}
		closeLog = c
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeLog()
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.PersistentFlags().IntVar(&chunkSize, "chunk", 0, "Minimum heap extension in bytes (default 4096)")
	rootCmd.PersistentFlags().
		IntVar(&maxHeap, "max-heap", 0, "Arena reservation in bytes (default 20 MiB)")
	rootCmd.PersistentFlags().BoolVar(&useMmap, "mmap", false, "Back the heap with an mmap arena")
	rootCmd.PersistentFlags().
		BoolVar(&strict, "strict", false, "Confirm every freed pointer by heap walk")

	rootCmd.PersistentFlags().BoolVar(&logEnabled, "log", false, "Write a debug log")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "Log directory (default ~/.heapctl/logs)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Write log records as JSON")
}

func execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError("%v\n", err)
		stop()
		os.Exit(1)
	}
}

// factory builds allocators from the arena flags.
func factory() trace.Factory {
	return trace.NewFactory(
		memlib.Config{MaxHeap: maxHeap, Mapped: useMmap},
		&alloc.Options{ChunkSize: chunkSize, Strict: strict, Logger: logger.L},
	)
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
