package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joshuapare/heapkit/heap/trace"
)

func TestReplayCommand(t *testing.T) {
	tests := []struct {
		name        string
		traces      []string
		check       bool
		wantJSON    bool
		wantErr     bool
		wantContain []string
	}{
		{
			name:        "single trace table",
			traces:      []string{"short1.rep"},
			wantContain: []string{"short1.rep", "peak payload", "8,144", "1 traces, 12 ops"},
		},
		{
			name:        "several traces with check",
			traces:      []string{"short1.rep", "coalescing.rep", "realloc.rep"},
			check:       true,
			wantContain: []string{"coalescing.rep", "realloc.rep", "3 traces"},
		},
		{
			name:        "json",
			traces:      []string{"realloc.rep"},
			wantJSON:    true,
			wantContain: []string{`"trace": "realloc.rep"`, `"ops": 10`, `"ReallocCalls": 4`},
		},
		{
			name:    "malformed trace",
			traces:  []string{"bad-free.rep"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			jsonOut = tt.wantJSON

			paths := make([]string, len(tt.traces))
			for i, name := range tt.traces {
				paths[i] = tracePath(t, name)
			}

			output, err := captureOutput(t, func() error {
				return runReplay(context.Background(), paths, tt.check)
			})
			if (err != nil) != tt.wantErr {
				t.Fatalf("runReplay() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if tt.wantJSON {
				assertJSON(t, output)
			}
			assertContains(t, output, tt.wantContain)
		})
	}
}

func TestReplayCommand_ColorTableAndStats(t *testing.T) {
	resetFlags()
	noColor = false
	replayStats = true

	output, err := captureOutput(t, func() error {
		return runReplay(context.Background(), []string{tracePath(t, "short1.rep")}, false)
	})
	if err != nil {
		t.Fatalf("runReplay() error = %v", err)
	}
	assertContains(t, output, []string{
		"short1.rep",
		"8,144",
		"1 traces, 12 ops, mean utilization",
		"Alloc calls:        6",
		"Free calls:         6",
		"Allocated:          0 blocks",
	})
	if strings.Contains(output, "Total:") {
		t.Errorf("color output used the plain report\nGot: %s", output)
	}
}

func TestReplayCommand_JSONShape(t *testing.T) {
	resetFlags()
	jsonOut = true

	output, err := captureOutput(t, func() error {
		return runReplay(context.Background(), []string{tracePath(t, "short1.rep")}, false)
	})
	if err != nil {
		t.Fatalf("runReplay() error = %v", err)
	}

	var reports []replayReport
	if err := json.Unmarshal([]byte(output), &reports); err != nil {
		t.Fatalf("decode: %v\n%s", err, output)
	}
	if len(reports) != 1 {
		t.Fatalf("got %d reports, want 1", len(reports))
	}
	r := reports[0]
	if r.PeakPayload != 8144 || r.Ops != 12 {
		t.Errorf("got peak %d ops %d, want 8144 and 12", r.PeakPayload, r.Ops)
	}
	if r.Utilization <= 0 || r.Utilization > 1 {
		t.Errorf("utilization %v outside (0, 1]", r.Utilization)
	}
}

func TestReplayCommand_Mmap(t *testing.T) {
	resetFlags()
	useMmap = true
	maxHeap = 1 << 20
	quiet = true

	output, err := captureOutput(t, func() error {
		return runReplay(context.Background(), []string{tracePath(t, "short1.rep")}, true)
	})
	if err != nil {
		t.Fatalf("runReplay() error = %v", err)
	}
	if output != "" {
		t.Errorf("quiet replay printed %q", output)
	}
}

func TestCheckCommand(t *testing.T) {
	resetFlags()

	output, err := captureOutput(t, func() error {
		return runCheck(context.Background(), []string{tracePath(t, "coalescing.rep")})
	})
	if err != nil {
		t.Fatalf("runCheck() error = %v", err)
	}
	assertContains(t, output, []string{"OK coalescing.rep (12 ops)"})
	if strict {
		t.Error("check left strict mode enabled")
	}
}

func TestGenCommand(t *testing.T) {
	resetFlags()
	genOps = 300
	genSeed = 4
	genMaxSize = 128
	genOutput = filepath.Join(t.TempDir(), "gen.rep")

	if _, err := captureOutput(t, runGen); err != nil {
		t.Fatalf("runGen() error = %v", err)
	}

	tr, err := trace.ParseFile(genOutput)
	if err != nil {
		t.Fatalf("generated trace does not parse: %v", err)
	}
	if len(tr.Ops) != 300 {
		t.Errorf("got %d ops, want 300", len(tr.Ops))
	}

	output, err := captureOutput(t, func() error {
		return runReplay(context.Background(), []string{genOutput}, true)
	})
	if err != nil {
		t.Fatalf("replaying generated trace: %v", err)
	}
	assertContains(t, output, []string{"gen.rep", "300 ops"})
}

func TestGenCommand_Stdout(t *testing.T) {
	resetFlags()
	genOps = 4

	output, err := captureOutput(t, runGen)
	if err != nil {
		t.Fatalf("runGen() error = %v", err)
	}
	if _, err := trace.Parse(strings.NewReader(output)); err != nil {
		t.Fatalf("stdout trace does not parse: %v\n%s", err, output)
	}
}

func TestVersionCommand(t *testing.T) {
	output, err := captureOutput(t, func() error {
		versionCmd.Run(versionCmd, nil)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	assertContains(t, output, []string{"heapctl dev", "commit: none"})
}

func TestMain(m *testing.M) {
	resetFlags()
	os.Exit(m.Run())
}
