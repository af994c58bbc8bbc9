// Package mpi is an in-process stand-in for a true MPI binding: it
// realizes the "externally supplied write(bytes)/write_at(offset,
// bytes) operations" contract a parallel writer needs, coordinating
// goroutines with golang.org/x/sync/errgroup the way the teacher's
// build steps coordinate with errgroup.Group rather than raw channels.
package mpi

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/rtsoliday/sds"
)

// RankPlan is the contiguous row range one rank owns within the page
// currently being written.
type RankPlan struct {
	First, Last int
}

// SplitRows divides n rows into ranks contiguous, near-equal chunks in
// row order, so that concatenating each rank's chunk reproduces the
// original row order.
func SplitRows(n, ranks int) []RankPlan {
	if ranks <= 0 {
		ranks = 1
	}
	plans := make([]RankPlan, ranks)
	base, rem := n/ranks, n%ranks
	pos := 0
	for r := 0; r < ranks; r++ {
		count := base
		if r < rem {
			count++
		}
		plans[r] = RankPlan{First: pos, Last: pos + count}
		pos += count
	}
	return plans
}

// ColumnRowBytes returns, for each column of ds's working layout in
// definition order, its fixed on-disk byte width. A TString column has
// no fixed width; its entry is -1 and a rank plan spanning it cannot use
// WriteAt offsets computed from RowByteWidth.
func ColumnRowBytes(ds *sds.Dataset) []int {
	cols := ds.Layout().Columns
	out := make([]int, len(cols))
	for i, c := range cols {
		out[i] = c.Type.Size()
	}
	return out
}

// RowByteWidth sums ColumnRowBytes, the fixed stride between consecutive
// rows in a row-major binary column table. It returns (0, false) if any
// column is variable-width (TString), since no fixed stride exists.
func RowByteWidth(ds *sds.Dataset) (int64, bool) {
	var total int64
	for _, sz := range ColumnRowBytes(ds) {
		if sz < 0 {
			return 0, false
		}
		total += int64(sz)
	}
	return total, true
}

// Writer is the externally supplied sink a rank writes its row range
// into: sequential Write for rank 0's header, random-access WriteAt for
// every rank's row data once header length and row stride are known.
type Writer interface {
	Write(p []byte) (int, error)
	WriteAt(offset int64, p []byte) (int, error)
}

// Coordinator runs one header function (conventionally rank 0, ahead of
// everyone else) followed by one function per rank, all racing
// concurrently against a shared errgroup.Group: the first rank function
// to fail cancels the context passed to the rest.
type Coordinator struct {
	ranks int
}

// NewCoordinator returns a Coordinator driving the given rank count.
func NewCoordinator(ranks int) *Coordinator {
	if ranks <= 0 {
		ranks = 1
	}
	return &Coordinator{ranks: ranks}
}

// Ranks reports the configured rank count.
func (c *Coordinator) Ranks() int { return c.ranks }

// Run executes header synchronously, then fans rankFn out over every
// rank concurrently, returning the first error encountered (if any).
func (c *Coordinator) Run(ctx context.Context, header func(ctx context.Context) error, rankFn func(ctx context.Context, rank int) error) error {
	if header != nil {
		if err := header(ctx); err != nil {
			return err
		}
	}
	g, gctx := errgroup.WithContext(ctx)
	for r := 0; r < c.ranks; r++ {
		rank := r
		g.Go(func() error {
			return rankFn(gctx, rank)
		})
	}
	return g.Wait()
}
