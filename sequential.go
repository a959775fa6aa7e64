package mandelbench

// SequentialEvaluator evaluates the kernel for every sample in order on the
// calling goroutine. No parallelism, no failure modes.
type SequentialEvaluator struct{}

// Label implements Evaluator.
func (SequentialEvaluator) Label() string { return "Single-threaded CPU" }

// Evaluate implements Evaluator.
func (SequentialEvaluator) Evaluate(samples []complex128) ([]uint32, error) {
	counts := make([]uint32, len(samples))
	for i, c := range samples {
		counts[i] = EscapeCount(c)
	}
	return counts, nil
}
