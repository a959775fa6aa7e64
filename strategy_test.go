package mandelbench

import "testing"

func TestSequentialEvaluatorLabel(t *testing.T) {
	if got := (SequentialEvaluator{}).Label(); got != "Single-threaded CPU" {
		t.Errorf("Label() = %q, want %q", got, "Single-threaded CPU")
	}
}

func TestSequentialEvaluatorIndexAlignment(t *testing.T) {
	grid, err := NewGrid(16, ViewEntireSet)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	counts, err := (SequentialEvaluator{}).Evaluate(grid.Samples)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(counts) != grid.Len() {
		t.Fatalf("len(counts) = %d, want %d", len(counts), grid.Len())
	}
	for i, c := range grid.Samples {
		if counts[i] != EscapeCount(c) {
			t.Fatalf("counts[%d] = %d, want %d for sample %v", i, counts[i], EscapeCount(c), c)
		}
	}
}

func TestParallelEvaluatorLabel(t *testing.T) {
	eval := NewParallelEvaluator(4)
	defer eval.Close()

	if got := eval.Label(); got != "Multi-threaded CPU (4 workers)" {
		t.Errorf("Label() = %q, want %q", got, "Multi-threaded CPU (4 workers)")
	}
	if eval.Workers() != 4 {
		t.Errorf("Workers() = %d, want 4", eval.Workers())
	}
}

func TestParallelMatchesSequential(t *testing.T) {
	for _, view := range []View{ViewEntireSet, ViewLeftSpike} {
		grid, err := NewGrid(64, view)
		if err != nil {
			t.Fatalf("NewGrid: %v", err)
		}

		seq, err := (SequentialEvaluator{}).Evaluate(grid.Samples)
		if err != nil {
			t.Fatalf("sequential Evaluate: %v", err)
		}

		par := NewParallelEvaluator(8)
		got, err := par.Evaluate(grid.Samples)
		par.Close()
		if err != nil {
			t.Fatalf("parallel Evaluate: %v", err)
		}

		if len(got) != len(seq) {
			t.Fatalf("%v: len = %d, want %d", view, len(got), len(seq))
		}
		for i := range seq {
			if got[i] != seq[i] {
				t.Fatalf("%v: counts[%d] = %d, want %d", view, i, got[i], seq[i])
			}
		}
	}
}

func TestParallelEvaluatorIdempotent(t *testing.T) {
	grid, err := NewGrid(32, ViewEntireSet)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	eval := NewParallelEvaluator(0)
	defer eval.Close()

	first, err := eval.Evaluate(grid.Samples)
	if err != nil {
		t.Fatalf("first Evaluate: %v", err)
	}
	second, err := eval.Evaluate(grid.Samples)
	if err != nil {
		t.Fatalf("second Evaluate: %v", err)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("counts differ between runs at %d: %d vs %d", i, first[i], second[i])
		}
	}
}

func TestParallelEvaluatorEmptyInput(t *testing.T) {
	eval := NewParallelEvaluator(2)
	defer eval.Close()

	counts, err := eval.Evaluate(nil)
	if err != nil {
		t.Fatalf("Evaluate(nil): %v", err)
	}
	if len(counts) != 0 {
		t.Errorf("len(counts) = %d, want 0", len(counts))
	}
}

// TestEvaluate100x100 pins the reference scenario: a 100x100 entire-set
// grid yields 10000 counts and its first sample, (-2.5, -2.0), escapes
// before the first iteration.
func TestEvaluate100x100(t *testing.T) {
	grid, err := NewGrid(100, ViewEntireSet)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	counts, err := (SequentialEvaluator{}).Evaluate(grid.Samples)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(counts) != 10000 {
		t.Fatalf("len(counts) = %d, want 10000", len(counts))
	}
	if counts[0] != 1 {
		t.Errorf("counts[0] = %d, want 1", counts[0])
	}
}

func TestStrategyString(t *testing.T) {
	cases := []struct {
		s    Strategy
		want string
	}{
		{Sequential, "Sequential"},
		{ParallelMap, "ParallelMap"},
		{DeviceOffload, "DeviceOffload"},
		{Strategy(42), "Unknown"},
	}
	for _, tc := range cases {
		if got := tc.s.String(); got != tc.want {
			t.Errorf("Strategy(%d).String() = %q, want %q", int(tc.s), got, tc.want)
		}
	}
}

func BenchmarkSequentialEvaluate(b *testing.B) {
	grid, _ := NewGrid(256, ViewEntireSet)
	eval := SequentialEvaluator{}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := eval.Evaluate(grid.Samples); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParallelEvaluate(b *testing.B) {
	grid, _ := NewGrid(256, ViewEntireSet)
	eval := NewParallelEvaluator(0)
	defer eval.Close()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := eval.Evaluate(grid.Samples); err != nil {
			b.Fatal(err)
		}
	}
}
