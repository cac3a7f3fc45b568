package main

import (
	"context"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newCheckCmd())
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <trace>...",
		Short: "Replay traces with the heap checker after every request",
		Long: `The check command replays each trace in strict mode and runs the full
heap consistency check after every request. It stops at the first broken
invariant and reports the request that caused it.

Example:
  heapctl check testdata/traces/coalescing.rep`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), args)
		},
	}
	return cmd
}

func runCheck(ctx context.Context, paths []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	prevStrict := strict
	strict = true
	defer func() { strict = prevStrict }()

	results, err := replayAll(ctx, paths, true)
	if err != nil {
		return err
	}
	if jsonOut {
		type checkReport struct {
			Trace string `json:"trace"`
			Ops   int    `json:"ops"`
			OK    bool   `json:"ok"`
		}
		out := make([]checkReport, 0, len(results))
		for _, r := range results {
			out = append(out, checkReport{Trace: r.Name, Ops: r.Ops, OK: true})
		}
		return printJSON(out)
	}
	for _, r := range results {
		printInfo("OK %s (%d ops)\n", r.Name, r.Ops)
	}
	return nil
}
