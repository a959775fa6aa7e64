package mandelbench

import (
	"sync/atomic"
	"testing"
	"time"
)

// fakeEvaluator is a controllable Evaluator for session tests.
type fakeEvaluator struct {
	label  string
	err    error
	block  chan struct{} // when non-nil, Evaluate waits for it to close
	calls  atomic.Int32
	closed chan struct{}
}

func newFakeEvaluator(label string) *fakeEvaluator {
	return &fakeEvaluator{label: label, closed: make(chan struct{})}
}

func (f *fakeEvaluator) Label() string { return f.label }

func (f *fakeEvaluator) Evaluate(samples []complex128) ([]uint32, error) {
	f.calls.Add(1)
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return nil, f.err
	}
	counts := make([]uint32, len(samples))
	for i, c := range samples {
		counts[i] = EscapeCount(c)
	}
	return counts, nil
}

func (f *fakeEvaluator) Close() { close(f.closed) }

func TestSessionRenderCompletes(t *testing.T) {
	s, err := NewSession(Sequential, 16)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	defer s.Close()

	out := s.Render(ViewEntireSet).Wait()
	if out == nil {
		t.Fatal("Wait returned nil outcome")
	}
	if out.Strategy != Sequential {
		t.Errorf("Strategy = %v, want Sequential", out.Strategy)
	}
	if out.Label != "Single-threaded CPU" {
		t.Errorf("Label = %q", out.Label)
	}
	if out.Elapsed < 0 {
		t.Errorf("Elapsed = %v, want >= 0", out.Elapsed)
	}
	if out.Image.Width() != 16 || out.Image.Height() != 16 {
		t.Errorf("image is %dx%d, want 16x16", out.Image.Width(), out.Image.Height())
	}

	// Sample (0,0) is (-2.5,-2.0): count 1, which the Sequential palette
	// maps to (192,0,0).
	px := out.Image.RGBAt(0, 0)
	if px.R != 192 || px.G != 0 || px.B != 0 {
		t.Errorf("pixel (0,0) = (%d,%d,%d), want (192,0,0)", px.R, px.G, px.B)
	}

	if got := s.Outcome(); got != out {
		t.Error("Outcome() should return the published outcome")
	}
}

func TestSessionInvalidSize(t *testing.T) {
	if _, err := NewSession(Sequential, 0); err != ErrInvalidSize {
		t.Errorf("NewSession(size 0) error = %v, want ErrInvalidSize", err)
	}
}

func TestSessionUnknownStrategy(t *testing.T) {
	if _, err := NewSession(Strategy(42), 16); err != ErrUnknownStrategy {
		t.Errorf("NewSession(unknown) error = %v, want ErrUnknownStrategy", err)
	}
}

func TestSessionCompletionCallback(t *testing.T) {
	done := make(chan *Outcome, 1)
	s, err := NewSession(Sequential, 8, WithOnComplete(func(o *Outcome) {
		done <- o
	}))
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	defer s.Close()

	job := s.Render(ViewLeftSpike)
	select {
	case out := <-done:
		if out != job.Wait() {
			t.Error("callback outcome differs from Wait outcome")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("completion callback never fired")
	}
}

func TestSessionDeviceFailureProducesBlackImage(t *testing.T) {
	fake := newFakeEvaluator("Broken GPU")
	fake.err = &BackendError{
		Backend: "Broken GPU",
		Message: "kernel build failure",
		Log:     "error: expected ';'",
		Code:    7,
	}

	var diag BackendDiagnostic
	got := make(chan struct{})
	s, err := NewSession(DeviceOffload, 8,
		WithEvaluator(fake),
		WithOnDiagnostic(func(d BackendDiagnostic) {
			diag = d
			close(got)
		}),
	)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	defer s.Close()

	out := s.Render(ViewEntireSet).Wait()
	if out == nil {
		t.Fatal("failed render must still publish an outcome")
	}

	// Zero-filled counts: every pixel black.
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			px := out.Image.RGBAt(x, y)
			if px.R != 0 || px.G != 0 || px.B != 0 {
				t.Fatalf("pixel (%d,%d) = (%d,%d,%d), want black", x, y, px.R, px.G, px.B)
			}
		}
	}

	select {
	case <-got:
	case <-time.After(5 * time.Second):
		t.Fatal("diagnostic callback never fired")
	}
	if diag.Backend != "Broken GPU" || diag.Message == "" {
		t.Errorf("diagnostic = %+v, want backend and message set", diag)
	}
	if diag.Log != "error: expected ';'" {
		t.Errorf("diagnostic Log = %q, build log not preserved", diag.Log)
	}
	if diag.Code != 7 {
		t.Errorf("diagnostic Code = %d, want 7", diag.Code)
	}
}

func TestSessionPublishesLastSubmitted(t *testing.T) {
	fake := newFakeEvaluator("fake")
	s, err := NewSession(Sequential, 4, WithEvaluator(fake))
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	defer s.Close()

	first := s.Render(ViewEntireSet)
	second := s.Render(ViewLeftSpike)
	third := s.Render(ViewEntireSet)

	out := third.Wait()
	if s.Outcome() != out {
		t.Error("published outcome is not the last submitted render")
	}
	// Earlier jobs completed too, in order.
	select {
	case <-first.Done():
	default:
		t.Error("first job not done after third completed")
	}
	select {
	case <-second.Done():
	default:
		t.Error("second job not done after third completed")
	}
	if n := fake.calls.Load(); n != 3 {
		t.Errorf("evaluator ran %d times, want 3", n)
	}
}

func TestSessionRenderingLifecycle(t *testing.T) {
	fake := newFakeEvaluator("fake")
	fake.block = make(chan struct{})
	s, err := NewSession(Sequential, 4, WithEvaluator(fake))
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	defer s.Close()

	if s.Rendering() {
		t.Error("Rendering() true before any render")
	}
	job := s.Render(ViewEntireSet)
	if !s.Rendering() {
		t.Error("Rendering() false with a render outstanding")
	}
	close(fake.block)
	job.Wait()
	if s.Rendering() {
		t.Error("Rendering() true after the render completed")
	}
}

func TestSessionCloseReleasesEvaluator(t *testing.T) {
	fake := newFakeEvaluator("fake")
	s, err := NewSession(Sequential, 4, WithEvaluator(fake))
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	s.Render(ViewEntireSet).Wait()
	s.Close()
	s.Close() // idempotent

	select {
	case <-fake.closed:
	case <-time.After(5 * time.Second):
		t.Fatal("evaluator was not closed after session Close")
	}
}
