package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/arena/alloc"
)

func init() {
	rootCmd.AddCommand(newReplayCmd())
}

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <trace>",
		Short: "Replay an allocation trace",
		Long: `The replay command executes an allocation trace against a fresh
allocator, checks the allocator invariants, and prints statistics.

Each trace line is one operation on a named block:

  alloc   NAME SIZE
  calloc  NAME COUNT SIZE
  realloc NAME SIZE
  free    NAME
  write   NAME BYTE     fill the block with BYTE
  check   NAME BYTE [N] fail unless every byte (or the first N) equals BYTE

Blank lines and lines starting with # are ignored. Use - to read stdin.

Example:
  heapctl replay workload.trace
  heapctl replay workload.trace --policy address --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd.Context(), args)
		},
	}
	return cmd
}

// opKind is a trace operation.
type opKind string

const (
	opAlloc   opKind = "alloc"
	opCalloc  opKind = "calloc"
	opRealloc opKind = "realloc"
	opFree    opKind = "free"
	opWrite   opKind = "write"
	opCheck   opKind = "check"
)

// arity is the minimum and maximum number of integer arguments each
// operation takes after NAME.
var arity = map[opKind][2]int{
	opAlloc:   {1, 1},
	opCalloc:  {2, 2},
	opRealloc: {1, 1},
	opFree:    {0, 0},
	opWrite:   {1, 1},
	opCheck:   {1, 2},
}

// traceOp is one parsed trace line.
type traceOp struct {
	Line int
	Kind opKind
	Name string
	Args []int
}

// errCheckFailed indicates a check line saw unexpected contents.
var errCheckFailed = errors.New("check failed")

// parseTrace reads trace operations from r.
func parseTrace(r io.Reader) ([]traceOp, error) {
	var ops []traceOp
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		fields := strings.Fields(text)
		kind := opKind(strings.ToLower(fields[0]))
		n, ok := arity[kind]
		if !ok {
			return nil, fmt.Errorf("line %d: unknown operation %q", line, fields[0])
		}
		if got := len(fields) - 2; got < n[0] || got > n[1] {
			if n[0] == n[1] {
				return nil, fmt.Errorf("line %d: %s takes a name and %d argument(s)", line, kind, n[0])
			}
			return nil, fmt.Errorf("line %d: %s takes a name and %d to %d arguments", line, kind, n[0], n[1])
		}

		op := traceOp{Line: line, Kind: kind, Name: fields[1]}
		for _, f := range fields[2:] {
			v, err := strconv.Atoi(f)
			if err != nil {
				return nil, fmt.Errorf("line %d: bad number %q: %w", line, f, err)
			}
			op.Args = append(op.Args, v)
		}
		if (kind == opWrite || kind == opCheck) && (op.Args[0] < 0 || op.Args[0] > 0xFF) {
			return nil, fmt.Errorf("line %d: byte value %d out of range", line, op.Args[0])
		}
		if kind == opCheck && len(op.Args) == 2 && op.Args[1] < 0 {
			return nil, fmt.Errorf("line %d: negative check length %d", line, op.Args[1])
		}
		ops = append(ops, op)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read trace: %w", err)
	}
	return ops, nil
}

// replayResult summarizes a replay.
type replayResult struct {
	Ops    int         `json:"ops"`
	Live   int         `json:"live"`
	Policy string      `json:"policy"`
	Stats  alloc.Stats `json:"stats"`
}

// replay executes ops against al. Names map to the most recent pointer
// assigned to them.
func replay(al *alloc.Allocator, ops []traceOp) (map[string]alloc.Ptr, error) {
	names := make(map[string]alloc.Ptr)

	lookup := func(op traceOp) (alloc.Ptr, error) {
		p, ok := names[op.Name]
		if !ok {
			return alloc.Nil, fmt.Errorf("line %d: %s: unknown block %q", op.Line, op.Kind, op.Name)
		}
		return p, nil
	}

	for _, op := range ops {
		var err error
		switch op.Kind {
		case opAlloc:
			names[op.Name], err = al.Allocate(op.Args[0])

		case opCalloc:
			names[op.Name], err = al.ZeroAllocate(op.Args[0], op.Args[1])

		case opRealloc:
			// realloc of an unknown name starts from Nil, like a fresh pointer.
			p := names[op.Name]
			var np alloc.Ptr
			np, err = al.Resize(p, op.Args[0])
			if err == nil {
				if np == alloc.Nil {
					delete(names, op.Name)
				} else {
					names[op.Name] = np
				}
			}

		case opFree:
			var p alloc.Ptr
			if p, err = lookup(op); err != nil {
				return names, err
			}
			err = al.Release(p)
			delete(names, op.Name)

		case opWrite, opCheck:
			var p alloc.Ptr
			if p, err = lookup(op); err != nil {
				return names, err
			}
			var buf []byte
			if buf, err = al.Bytes(p); err != nil {
				break
			}
			want := byte(op.Args[0])
			if op.Kind == opWrite {
				for i := range buf {
					buf[i] = want
				}
				err = al.Touch(p)
				break
			}
			if len(op.Args) == 2 {
				if op.Args[1] > len(buf) {
					err = fmt.Errorf("%w: block holds %d bytes, want at least %d", errCheckFailed, len(buf), op.Args[1])
					break
				}
				buf = buf[:op.Args[1]]
			}
			for i, b := range buf {
				if b != want {
					err = fmt.Errorf("%w: byte %d is 0x%02X, want 0x%02X", errCheckFailed, i, b, want)
					break
				}
			}
		}
		if err != nil {
			return names, fmt.Errorf("line %d: %s %s: %w", op.Line, op.Kind, op.Name, err)
		}
		printVerbose("line %d: %s %s %v\n", op.Line, op.Kind, op.Name, op.Args)
	}
	return names, nil
}

func runReplay(ctx context.Context, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	tracePath := args[0]

	var r io.Reader = os.Stdin
	if tracePath != "-" {
		f, err := os.Open(tracePath)
		if err != nil {
			return fmt.Errorf("failed to open trace: %w", err)
		}
		defer f.Close()
		r = f
	}

	ops, err := parseTrace(r)
	if err != nil {
		return err
	}
	printVerbose("Parsed %d operations from %s\n", len(ops), tracePath)

	s, err := openSession()
	if err != nil {
		return err
	}

	names, runErr := replay(s.al, ops)
	if runErr == nil {
		if verr := s.al.Verify(); verr != nil {
			runErr = fmt.Errorf("invariant check failed after replay: %w", verr)
		}
	}
	if cerr := s.Close(ctx); runErr == nil {
		runErr = cerr
	}
	if runErr != nil {
		return runErr
	}

	if jsonOut {
		return printJSON(replayResult{
			Ops:    len(ops),
			Live:   len(names),
			Policy: s.al.Config().Policy.String(),
			Stats:  s.al.Stats(),
		})
	}
	printInfo("Replayed %d operations, %d blocks live\n", len(ops), len(names))
	return printStats(s.al)
}
