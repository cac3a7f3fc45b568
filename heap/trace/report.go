package trace

import (
	"io"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Columns names the fields of Row.
var Columns = []string{"trace", "ops", "peak payload", "heap", "util", "ops/sec"}

// Row formats r for a report table, grouping digits the way p's language does.
func (r *Result) Row(p *message.Printer) []string {
	return []string{
		r.Name,
		p.Sprintf("%d", r.Ops),
		p.Sprintf("%d", r.PeakPayload),
		p.Sprintf("%d", r.HeapSize),
		p.Sprintf("%.1f%%", 100*r.Utilization()),
		p.Sprintf("%.0f", r.OpsPerSec()),
	}
}

// Summary aggregates a set of replays.
type Summary struct {
	Traces          int
	Ops             int
	Elapsed         time.Duration
	MeanUtilization float64
}

// OpsPerSec is the throughput over all traces.
func (s Summary) OpsPerSec() float64 {
	secs := s.Elapsed.Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(s.Ops) / secs
}

// Summarize totals results.
func Summarize(results []*Result) Summary {
	var s Summary
	var util float64
	for _, r := range results {
		s.Traces++
		s.Ops += r.Ops
		s.Elapsed += r.Elapsed
		util += r.Utilization()
	}
	if s.Traces > 0 {
		s.MeanUtilization = util / float64(s.Traces)
	}
	return s
}

// Report writes a plain-text table of results followed by a totals line.
func Report(w io.Writer, results []*Result, tag language.Tag) error {
	p := message.NewPrinter(tag)
	const row = "%-20s %12s %14s %14s %8s %12s\n"
	if _, err := p.Fprintf(w, row, anySlice(Columns)...); err != nil {
		return err
	}
	for _, r := range results {
		if _, err := p.Fprintf(w, row, anySlice(r.Row(p))...); err != nil {
			return err
		}
	}
	s := Summarize(results)
	_, err := p.Fprintf(w, "Total: %d traces, %d ops, mean util %.1f%%, %.0f ops/sec\n",
		s.Traces, s.Ops, 100*s.MeanUtilization, s.OpsPerSec())
	return err
}

func anySlice(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
