package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/arena/alloc"
)

var (
	fuzzOps     int
	fuzzSeed    int64
	fuzzMaxSize int
)

func init() {
	cmd := newFuzzCmd()
	cmd.Flags().IntVar(&fuzzOps, "ops", 10000, "Number of random operations")
	cmd.Flags().Int64Var(&fuzzSeed, "seed", 1, "Random seed")
	cmd.Flags().IntVar(&fuzzMaxSize, "max-size", 1024, "Largest request size")
	rootCmd.AddCommand(cmd)
}

func newFuzzCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fuzz",
		Short: "Run a randomized workload with content checks",
		Long: `The fuzz command drives the allocator with random allocate, zero-allocate,
resize and release calls. Every live block carries a known byte pattern that
is checked before it is resized or released, and the allocator invariants are
verified after every operation.

Example:
  heapctl fuzz --ops 100000 --seed 7
  heapctl fuzz --policy address --limit 1048576`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFuzz(cmd.Context())
		},
	}
	return cmd
}

// fuzzResult summarizes a fuzz run.
type fuzzResult struct {
	Ops    int         `json:"ops"`
	Seed   int64       `json:"seed"`
	OOM    int         `json:"oom"`
	Live   int         `json:"live"`
	Policy string      `json:"policy"`
	Stats  alloc.Stats `json:"stats"`
}

// liveBlock is the fuzzer's record of a block it owns.
type liveBlock struct {
	p    alloc.Ptr
	fill byte
}

// fuzzer holds one randomized run.
type fuzzer struct {
	al      *alloc.Allocator
	rng     *rand.Rand
	maxSize int
	live    []liveBlock
	oom     int
}

func (f *fuzzer) fill(p alloc.Ptr, b byte) error {
	buf, err := f.al.Bytes(p)
	if err != nil {
		return err
	}
	for i := range buf {
		buf[i] = b
	}
	return f.al.Touch(p)
}

func (f *fuzzer) check(lb liveBlock, n int) error {
	buf, err := f.al.Bytes(lb.p)
	if err != nil {
		return err
	}
	for i, b := range buf[:min(n, len(buf))] {
		if b != lb.fill {
			return fmt.Errorf("block 0x%X corrupted at byte %d: 0x%02X, want 0x%02X", lb.p, i, b, lb.fill)
		}
	}
	return nil
}

// step performs one random operation. Out-of-memory is counted, not fatal.
func (f *fuzzer) step(i int) error {
	fill := byte(i)
	switch op := f.rng.Intn(10); {
	case op < 4 || len(f.live) == 0:
		p, err := f.al.Allocate(f.rng.Intn(f.maxSize + 1))
		if err != nil {
			return f.tolerate(err)
		}
		f.live = append(f.live, liveBlock{p: p, fill: fill})
		return f.fill(p, fill)

	case op < 5:
		count := f.rng.Intn(16)
		size := f.rng.Intn(f.maxSize/16 + 1)
		p, err := f.al.ZeroAllocate(count, size)
		if err != nil {
			return f.tolerate(err)
		}
		lb := liveBlock{p: p, fill: 0}
		if err := f.check(lb, count*size); err != nil {
			return fmt.Errorf("calloc not zeroed: %w", err)
		}
		f.live = append(f.live, lb)
		return nil

	case op < 7:
		idx := f.rng.Intn(len(f.live))
		lb := f.live[idx]
		if err := f.check(lb, f.maxSize); err != nil {
			return err
		}
		oldSize, err := f.al.Size(lb.p)
		if err != nil {
			return err
		}
		newSize := f.rng.Intn(f.maxSize + 1)
		np, err := f.al.Resize(lb.p, newSize)
		if err != nil {
			return f.tolerate(err)
		}
		if np == alloc.Nil {
			f.remove(idx)
			return nil
		}
		moved := liveBlock{p: np, fill: lb.fill}
		if err := f.check(moved, min(oldSize, newSize)); err != nil {
			return fmt.Errorf("resize lost data: %w", err)
		}
		f.live[idx] = moved
		return f.fill(np, lb.fill)

	default:
		idx := f.rng.Intn(len(f.live))
		lb := f.live[idx]
		if err := f.check(lb, f.maxSize); err != nil {
			return err
		}
		f.remove(idx)
		return f.al.Release(lb.p)
	}
}

func (f *fuzzer) remove(idx int) {
	last := len(f.live) - 1
	f.live[idx] = f.live[last]
	f.live = f.live[:last]
}

func (f *fuzzer) tolerate(err error) error {
	if errors.Is(err, alloc.ErrOutOfMemory) {
		f.oom++
		return nil
	}
	return err
}

func runFuzz(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if fuzzOps < 0 || fuzzMaxSize < 0 {
		return errors.New("--ops and --max-size must not be negative")
	}

	s, err := openSession()
	if err != nil {
		return err
	}

	f := &fuzzer{
		al:      s.al,
		rng:     rand.New(rand.NewSource(fuzzSeed)),
		maxSize: fuzzMaxSize,
	}

	var out io.Writer = os.Stderr
	if quiet || jsonOut {
		out = io.Discard
	}
	bar := progressbar.NewOptions(fuzzOps,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription("fuzz"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	var runErr error
	for i := range fuzzOps {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		if err := f.step(i); err != nil {
			runErr = fmt.Errorf("op %d: %w", i, err)
			break
		}
		if err := s.al.Verify(); err != nil {
			runErr = fmt.Errorf("op %d: %w", i, err)
			break
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	if cerr := s.Close(ctx); runErr == nil {
		runErr = cerr
	}
	if runErr != nil {
		return runErr
	}

	if jsonOut {
		return printJSON(fuzzResult{
			Ops:    fuzzOps,
			Seed:   fuzzSeed,
			OOM:    f.oom,
			Live:   len(f.live),
			Policy: s.al.Config().Policy.String(),
			Stats:  s.al.Stats(),
		})
	}
	printInfo("Completed %d operations (seed %d, %d out-of-memory), %d blocks live\n",
		fuzzOps, fuzzSeed, f.oom, len(f.live))
	return printStats(s.al)
}
