package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/trace"
)

var (
	replayCheck bool
	replayStats bool
)

func init() {
	cmd := newReplayCmd()
	cmd.Flags().BoolVar(&replayCheck, "check", false, "Run the heap checker after every request")
	cmd.Flags().BoolVar(&replayStats, "stats", false, "Print allocator counters for each trace")
	rootCmd.AddCommand(cmd)
}

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <trace>...",
		Short: "Replay traces and report utilization and throughput",
		Long: `The replay command runs each trace against a fresh allocator,
validating alignment, bounds, overlap and payload contents, and prints
utilization (peak live payload / heap size) and requests per second.

Example:
  heapctl replay testdata/traces/short1.rep
  heapctl replay traces/*.rep --check --json
  heapctl replay big.rep --mmap --max-heap 104857600`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd.Context(), args, replayCheck)
		},
	}
	return cmd
}

// replayReport is the JSON form of one replay.
type replayReport struct {
	Trace       string      `json:"trace"`
	Ops         int         `json:"ops"`
	PeakPayload int64       `json:"peak_payload"`
	HeapSize    int         `json:"heap_size"`
	Utilization float64     `json:"utilization"`
	OpsPerSec   float64     `json:"ops_per_sec"`
	ElapsedNS   int64       `json:"elapsed_ns"`
	Stats       alloc.Stats `json:"stats"`
}

func runReplay(ctx context.Context, paths []string, check bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	results, err := replayAll(ctx, paths, check)
	if err != nil {
		return err
	}

	if jsonOut {
		reports := make([]replayReport, 0, len(results))
		for _, r := range results {
			reports = append(reports, replayReport{
				Trace:       r.Name,
				Ops:         r.Ops,
				PeakPayload: r.PeakPayload,
				HeapSize:    r.HeapSize,
				Utilization: r.Utilization(),
				OpsPerSec:   r.OpsPerSec(),
				ElapsedNS:   r.Elapsed.Nanoseconds(),
				Stats:       r.Stats,
			})
		}
		return printJSON(reports)
	}

	if quiet {
		return nil
	}
	if noColor {
		if err := trace.Report(os.Stdout, results, language.English); err != nil {
			return err
		}
	} else {
		p := message.NewPrinter(language.English)
		fmt.Fprintln(os.Stdout, renderTable(p, results))
		s := trace.Summarize(results)
		p.Fprintf(os.Stdout, "%d traces, %d ops, mean utilization %.1f%%, %.0f ops/sec\n",
			s.Traces, s.Ops, 100*s.MeanUtilization, s.OpsPerSec())
	}

	if replayStats {
		for _, r := range results {
			fmt.Fprintf(os.Stdout, "\n%s\n", r.Name)
			r.Stats.Print(os.Stdout)
			r.Usage.Print(os.Stdout)
		}
	}
	return nil
}

func replayAll(ctx context.Context, paths []string, check bool) ([]*trace.Result, error) {
	newAlloc := factory()
	results := make([]*trace.Result, 0, len(paths))
	for _, path := range paths {
		printVerbose("Replaying %s\n", path)
		tr, err := trace.ParseFile(path)
		if err != nil {
			return nil, err
		}
		res, err := trace.Replay(ctx, tr, newAlloc, &trace.Options{CheckHeap: check})
		if err != nil {
			return nil, err
		}
		printVerbose("  %d ops in %v\n", res.Ops, res.Elapsed)
		results = append(results, res)
	}
	return results, nil
}

func renderTable(p *message.Printer, results []*trace.Result) string {
	header := lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(lipgloss.Color("12"))
	cell := lipgloss.NewStyle().Padding(0, 1)
	border := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(border).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := cell
			if row == table.HeaderRow {
				s = header
			}
			if col > 0 {
				s = s.Align(lipgloss.Right)
			}
			return s
		}).
		Headers(trace.Columns...)
	for _, r := range results {
		t.Row(r.Row(p)...)
	}
	return t.String()
}
