package trace

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// Kind is the request type of one trace line.
type Kind byte

const (
	Alloc   Kind = 'a'
	Realloc Kind = 'r'
	Free    Kind = 'f'
)

func (k Kind) String() string {
	switch k {
	case Alloc:
		return "alloc"
	case Realloc:
		return "realloc"
	case Free:
		return "free"
	default:
		return fmt.Sprintf("Kind(%q)", byte(k))
	}
}

// Op is one request. Size is unused for Free.
type Op struct {
	Kind Kind
	ID   int
	Size int
}

// Trace is a parsed request sequence.
type Trace struct {
	Name          string
	SuggestedHeap int
	NumIDs        int
	Weight        int
	Ops           []Op
}

// ParseFile reads and parses the trace at path. The trace is named after the
// file's base name.
func ParseFile(path string) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open trace %s", path)
	}
	defer f.Close()

	tr, err := Parse(f)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	tr.Name = filepath.Base(path)
	return tr, nil
}

// Parse reads a trace from r and checks that the request sequence is
// consistent: ids are in range, alloc only names a dead id, realloc and free
// only name a live one, and the request count matches the header.
func Parse(r io.Reader) (*Trace, error) {
	sc := bufio.NewScanner(r)
	tr := &Trace{}
	var numOps int
	header := []*int{&tr.SuggestedHeap, &tr.NumIDs, &numOps, &tr.Weight}

	lineNo := 0
	fields := func() ([]string, bool) {
		for sc.Scan() {
			lineNo++
			line := strings.TrimSpace(sc.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			return strings.Fields(line), true
		}
		return nil, false
	}

	for i, dst := range header {
		f, ok := fields()
		if !ok {
			if err := sc.Err(); err != nil {
				return nil, errors.Wrap(err, "read trace")
			}
			return nil, malformed(lineNo, "header truncated after %d of 4 fields", i)
		}
		if len(f) != 1 {
			return nil, malformed(lineNo, "header field %d: expected one number, got %q", i, strings.Join(f, " "))
		}
		v, err := strconv.Atoi(f[0])
		if err != nil || v < 0 {
			return nil, malformed(lineNo, "header field %d: bad number %q", i, f[0])
		}
		*dst = v
	}

	live := make([]bool, tr.NumIDs)
	tr.Ops = make([]Op, 0, min(numOps, 1<<20))
	for {
		f, ok := fields()
		if !ok {
			break
		}
		op, err := parseOp(f, tr.NumIDs)
		if err != nil {
			return nil, malformed(lineNo, "%v", err)
		}
		switch op.Kind {
		case Alloc:
			if live[op.ID] {
				return nil, malformed(lineNo, "alloc of live id %d", op.ID)
			}
			live[op.ID] = true
		case Realloc, Free:
			if !live[op.ID] {
				return nil, malformed(lineNo, "%s of dead id %d", op.Kind, op.ID)
			}
			live[op.ID] = op.Kind == Realloc
		}
		tr.Ops = append(tr.Ops, op)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "read trace")
	}
	if len(tr.Ops) != numOps {
		return nil, malformed(lineNo, "header declares %d requests, found %d", numOps, len(tr.Ops))
	}
	return tr, nil
}

func parseOp(f []string, numIDs int) (Op, error) {
	if len(f[0]) != 1 {
		return Op{}, errors.Newf("unknown request %q", f[0])
	}
	op := Op{Kind: Kind(f[0][0])}
	want := 3
	switch op.Kind {
	case Alloc, Realloc:
	case Free:
		want = 2
	default:
		return Op{}, errors.Newf("unknown request %q", f[0])
	}
	if len(f) != want {
		return Op{}, errors.Newf("%s takes %d fields, got %d", op.Kind, want-1, len(f)-1)
	}

	id, err := strconv.Atoi(f[1])
	if err != nil || id < 0 || id >= numIDs {
		return Op{}, errors.Newf("id %q outside [0, %d)", f[1], numIDs)
	}
	op.ID = id
	if want == 3 {
		size, err := strconv.Atoi(f[2])
		if err != nil || size < 0 {
			return Op{}, errors.Newf("bad size %q", f[2])
		}
		op.Size = size
	}
	return op, nil
}

// WriteTo writes the trace in the text format Parse reads.
func (tr *Trace) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	cw := &countingWriter{w: bw}
	fmt.Fprintf(cw, "%d\n%d\n%d\n%d\n", tr.SuggestedHeap, tr.NumIDs, len(tr.Ops), tr.Weight)
	for _, op := range tr.Ops {
		if op.Kind == Free {
			fmt.Fprintf(cw, "f %d\n", op.ID)
			continue
		}
		fmt.Fprintf(cw, "%c %d %d\n", byte(op.Kind), op.ID, op.Size)
	}
	if cw.err != nil {
		return cw.n, cw.err
	}
	return cw.n, bw.Flush()
}

type countingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (c *countingWriter) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err := c.w.Write(p)
	c.n += int64(n)
	c.err = err
	return n, err
}
