package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/trace"
)

var (
	genOps     int
	genSeed    int64
	genMaxSize int
	genOutput  string
)

func init() {
	cmd := newGenCmd()
	cmd.Flags().IntVar(&genOps, "ops", 1000, "Number of requests")
	cmd.Flags().Int64Var(&genSeed, "seed", 1, "Random seed")
	cmd.Flags().IntVar(&genMaxSize, "max-size", 4096, "Largest request in bytes")
	cmd.Flags().StringVarP(&genOutput, "output", "o", "", "Write to file instead of stdout")
	rootCmd.AddCommand(cmd)
}

func newGenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate a random trace",
		Long: `The gen command writes a random, well-formed trace. Every block it
allocates is freed before the trace ends. The same seed always produces the
same trace.

Example:
  heapctl gen --ops 5000 --seed 7 -o random7.rep
  heapctl gen --max-size 64 | heapctl replay /dev/stdin`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGen()
		},
	}
	return cmd
}

func runGen() error {
	tr, err := trace.Generate(genSeed, genOps, genMaxSize)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if genOutput != "" {
		f, err := os.Create(genOutput)
		if err != nil {
			return fmt.Errorf("create %s: %w", genOutput, err)
		}
		defer f.Close()
		w = f
	}
	if _, err := tr.WriteTo(w); err != nil {
		return fmt.Errorf("write trace: %w", err)
	}
	if genOutput != "" {
		printVerbose("Wrote %d requests over %d ids to %s\n", len(tr.Ops), tr.NumIDs, genOutput)
	}
	return nil
}
