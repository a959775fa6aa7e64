package mandelbench

import "errors"

// ErrUnknownStrategy is returned by NewSession for a strategy value outside
// the defined enum.
var ErrUnknownStrategy = errors.New("mandelbench: unknown strategy")

// Strategy selects one of the three interchangeable execution models for
// evaluating the kernel over a sample grid.
type Strategy int

const (
	// Sequential evaluates the grid in order on the calling goroutine.
	// The single-threaded latency baseline.
	Sequential Strategy = iota

	// ParallelMap partitions the grid across a worker pool and blocks
	// until all partitions complete.
	ParallelMap

	// DeviceOffload marshals the samples to a GPU buffer and runs the
	// kernel as a bulk compute-shader transform.
	DeviceOffload
)

// String returns the strategy name.
func (s Strategy) String() string {
	switch s {
	case Sequential:
		return "Sequential"
	case ParallelMap:
		return "ParallelMap"
	case DeviceOffload:
		return "DeviceOffload"
	default:
		return "Unknown"
	}
}

// Evaluator computes escape counts for a sample slice. The result is
// index-aligned with the input: position i of the returned slice is the
// escape count of samples[i], regardless of how the work was scheduled
// internally.
//
// Implementations must not retain or mutate the sample slice.
type Evaluator interface {
	// Label returns a human-readable backend description, e.g.
	// "Single-threaded CPU" or the GPU adapter name.
	Label() string

	// Evaluate returns one escape count per input sample, same order.
	// Calling Evaluate twice on identical input yields identical results.
	Evaluate(samples []complex128) ([]uint32, error)
}
