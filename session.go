package mandelbench

import (
	"errors"
	"sync/atomic"
	"time"
)

// Outcome is the published result of one completed render. It is replaced
// wholesale on the next render and is read-only to consumers: the image was
// rendered into a fresh buffer before publication, so a reader can never
// observe a partially written frame.
type Outcome struct {
	Strategy Strategy

	// Label is the human-readable backend description for display, e.g.
	// "Multi-threaded CPU (8 workers)" or the GPU adapter name.
	Label string

	// Elapsed covers exactly the Evaluate call: the timer starts after
	// grid generation and stops before color mapping, for all strategies.
	Elapsed time.Duration

	// Image is the color-mapped result, Size x Size pixels.
	Image *Pixmap
}

// BackendDiagnostic is the payload delivered on a device-offload failure.
// It is informational: the render that produced it still completes, with a
// zero-filled (all-black) image.
type BackendDiagnostic struct {
	Backend string
	Message string
	Log     string
	Code    int
}

// SessionOption configures a Session during creation.
type SessionOption func(*sessionOptions)

type sessionOptions struct {
	workers      int
	evaluator    Evaluator
	onComplete   func(*Outcome)
	onDiagnostic func(BackendDiagnostic)
}

// WithWorkers sets the worker count for the ParallelMap strategy.
// Ignored by the other strategies. Zero or negative means GOMAXPROCS.
func WithWorkers(n int) SessionOption {
	return func(o *sessionOptions) { o.workers = n }
}

// WithEvaluator injects a custom evaluator, overriding the one the strategy
// would normally construct. Intended for tests and custom backends.
func WithEvaluator(e Evaluator) SessionOption {
	return func(o *sessionOptions) { o.evaluator = e }
}

// WithOnComplete sets a callback invoked after each render publishes its
// outcome. The callback runs on the session's render goroutine; it must not
// block for long and must not submit renders to the same session.
func WithOnComplete(fn func(*Outcome)) SessionOption {
	return func(o *sessionOptions) { o.onComplete = fn }
}

// WithOnDiagnostic sets a callback invoked when the device-offload path
// fails. Same delivery rules as WithOnComplete.
func WithOnDiagnostic(fn func(BackendDiagnostic)) SessionOption {
	return func(o *sessionOptions) { o.onDiagnostic = fn }
}

// Session executes renders for one (strategy, viewport size) pair. It owns
// its output exclusively: no two sessions share a buffer, and within one
// session a new outcome is published only by an atomic pointer swap.
//
// Renders on one session are serialized in submission order by a dedicated
// render goroutine. Overlapping Render calls therefore cannot race: the
// outcome of the last submitted render is always the one left published,
// never a stale earlier one that happened to finish late.
type Session struct {
	strategy Strategy
	size     int
	eval     Evaluator
	palette  Palette

	onComplete   func(*Outcome)
	onDiagnostic func(BackendDiagnostic)

	jobs    chan *Job
	pending atomic.Int32
	outcome atomic.Pointer[Outcome]
	closed  atomic.Bool
}

// Job is a handle for one submitted render.
type Job struct {
	view    View
	done    chan struct{}
	outcome *Outcome
}

// Wait blocks until the render completes and returns its outcome.
func (j *Job) Wait() *Outcome {
	<-j.done
	return j.outcome
}

// Done returns a channel closed when the render completes.
func (j *Job) Done() <-chan struct{} { return j.done }

// sessionQueueDepth bounds the number of renders waiting per session.
// Render only blocks if the queue is full, which takes a caller submitting
// dozens of renders faster than any of them completes.
const sessionQueueDepth = 16

// NewSession creates a session for the given strategy and square viewport
// size. Size must be at least 1.
//
// The ParallelMap session owns a worker pool; call Close to release it and
// the session's render goroutine.
func NewSession(strategy Strategy, size int, opts ...SessionOption) (*Session, error) {
	if size < 1 {
		return nil, ErrInvalidSize
	}

	var o sessionOptions
	for _, opt := range opts {
		opt(&o)
	}

	eval := o.evaluator
	if eval == nil {
		switch strategy {
		case Sequential:
			eval = SequentialEvaluator{}
		case ParallelMap:
			eval = NewParallelEvaluator(o.workers)
		case DeviceOffload:
			eval = OffloadEvaluator{}
		default:
			return nil, ErrUnknownStrategy
		}
	}

	s := &Session{
		strategy:     strategy,
		size:         size,
		eval:         eval,
		palette:      PaletteFor(strategy),
		onComplete:   o.onComplete,
		onDiagnostic: o.onDiagnostic,
		jobs:         make(chan *Job, sessionQueueDepth),
	}
	go s.renderLoop()
	return s, nil
}

// Strategy returns the session's execution strategy.
func (s *Session) Strategy() Strategy { return s.strategy }

// Size returns the viewport size.
func (s *Session) Size() int { return s.size }

// Render submits an asynchronous render of the given view and returns
// immediately with a handle for it. Renders are executed one at a time in
// submission order.
//
// Render panics if the session has been closed.
func (s *Session) Render(view View) *Job {
	job := &Job{view: view, done: make(chan struct{})}
	s.pending.Add(1)
	s.jobs <- job
	return job
}

// Rendering reports whether any render submitted to this session is still
// outstanding.
func (s *Session) Rendering() bool { return s.pending.Load() > 0 }

// Outcome returns the most recently published outcome, or nil if no render
// has completed yet.
func (s *Session) Outcome() *Outcome { return s.outcome.Load() }

// Close stops the render goroutine after draining already-submitted jobs
// and releases the evaluator's resources. Close is safe to call once;
// Render must not be called afterwards.
func (s *Session) Close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	close(s.jobs)
}

func (s *Session) renderLoop() {
	for job := range s.jobs {
		s.run(job)
	}
	if c, ok := s.eval.(interface{ Close() }); ok {
		c.Close()
	}
}

func (s *Session) run(job *Job) {
	// Deferred calls run last-in-first-out: pending must hit zero before
	// job.done closes, so Rendering() is already false when Wait returns.
	defer close(job.done)
	defer s.pending.Add(-1)

	grid, err := NewGrid(s.size, job.view)
	if err != nil {
		// Size was validated at construction; only an invalid View
		// constant could end up here, and those map to ViewEntireSet.
		Logger().Warn("grid generation failed", "strategy", s.strategy, "err", err)
		return
	}

	start := time.Now()
	counts, err := s.eval.Evaluate(grid.Samples)
	elapsed := time.Since(start)

	if err != nil {
		s.reportFailure(err)
		// A failed Evaluate still completes the render: publish a
		// zero-filled result (all-black image).
		counts = make([]uint32, grid.Len())
	}

	img := NewPixmap(s.size, s.size)
	for i, n := range counts {
		r, g, b := s.palette.RGB(n)
		img.SetRGB(i/s.size, i%s.size, r, g, b)
	}

	out := &Outcome{
		Strategy: s.strategy,
		Label:    s.eval.Label(),
		Elapsed:  elapsed,
		Image:    img,
	}
	s.outcome.Store(out)
	job.outcome = out

	Logger().Info("render complete",
		"strategy", s.strategy, "view", grid.View,
		"size", s.size, "elapsed", elapsed)

	if s.onComplete != nil {
		s.onComplete(out)
	}
}

func (s *Session) reportFailure(err error) {
	diag := BackendDiagnostic{Backend: s.eval.Label(), Message: err.Error()}
	var be *BackendError
	if errors.As(err, &be) {
		diag.Backend = be.Backend
		diag.Message = be.Message
		diag.Log = be.Log
		diag.Code = be.Code
	}
	Logger().Warn("device offload failed",
		"backend", diag.Backend, "code", diag.Code, "err", err)
	if s.onDiagnostic != nil {
		s.onDiagnostic(diag)
	}
}
