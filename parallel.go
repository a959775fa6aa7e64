package mandelbench

import (
	"fmt"

	"github.com/gogpu/mandelbench/internal/parallel"
)

// ParallelEvaluator fans the sample slice out over a fixed worker pool and
// blocks until every partition has completed. Each partition writes into its
// own disjoint range of the shared result slice, so the gather is stable:
// result order matches input order regardless of worker completion order.
//
// The kernel is pure and cannot fail, so a partition never produces a
// partial result; Evaluate either returns the full vector or not at all.
type ParallelEvaluator struct {
	pool *parallel.WorkerPool
}

// NewParallelEvaluator creates an evaluator backed by its own worker pool.
// If workers is 0 or negative, GOMAXPROCS is used. Call Close when done to
// release the pool's goroutines.
func NewParallelEvaluator(workers int) *ParallelEvaluator {
	return &ParallelEvaluator{pool: parallel.NewWorkerPool(workers)}
}

// Label implements Evaluator.
func (e *ParallelEvaluator) Label() string {
	return fmt.Sprintf("Multi-threaded CPU (%d workers)", e.pool.Workers())
}

// Evaluate implements Evaluator.
func (e *ParallelEvaluator) Evaluate(samples []complex128) ([]uint32, error) {
	counts := make([]uint32, len(samples))
	if len(samples) == 0 {
		return counts, nil
	}

	// Several chunks per worker smooths out the uneven per-sample cost:
	// in-set samples run the full iteration bound, escaped ones exit early.
	ranges := parallel.ChunkRanges(len(samples), e.pool.Workers()*4)
	work := make([]func(), len(ranges))
	for i, r := range ranges {
		lo, hi := r.Lo, r.Hi
		work[i] = func() {
			for j := lo; j < hi; j++ {
				counts[j] = EscapeCount(samples[j])
			}
		}
	}
	e.pool.ExecuteAll(work)
	return counts, nil
}

// Workers returns the size of the backing pool.
func (e *ParallelEvaluator) Workers() int { return e.pool.Workers() }

// Close shuts down the backing worker pool. The evaluator must not be used
// after Close.
func (e *ParallelEvaluator) Close() { e.pool.Close() }
