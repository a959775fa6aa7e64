package mandelbench

import (
	"errors"
	"fmt"
	"sync"
)

// ErrNoOffloader indicates that DeviceOffload was requested but no device
// offloader has been registered (the gpu package was not imported, or its
// registration failed).
var ErrNoOffloader = errors.New("mandelbench: no device offloader registered")

// BackendError describes a failure on the device-offload path. It carries
// the diagnostic payload the session reports instead of propagating the
// failure: backend name, build log (for shader compilation failures),
// message, and a backend-specific error code.
type BackendError struct {
	// Backend is the failing backend's name, e.g. the adapter label or
	// the shader compiler.
	Backend string

	// Log holds the build log for shader compilation failures; empty
	// otherwise.
	Log string

	// Message is the human-readable failure description.
	Message string

	// Code is a backend-specific error code, 0 when the backend does not
	// provide one.
	Code int

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *BackendError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("mandelbench: %s: %s (code %d)", e.Backend, e.Message, e.Code)
	}
	return fmt.Sprintf("mandelbench: %s: %s", e.Backend, e.Message)
}

// Unwrap returns the underlying error.
func (e *BackendError) Unwrap() error { return e.Err }

// Offloader is an optional device-offload provider.
//
// When registered via RegisterOffloader, the DeviceOffload strategy submits
// sample grids to it as bulk transforms. Implementations are provided by
// device backend packages; users opt in via blank import:
//
//	import _ "github.com/gogpu/mandelbench/gpu" // enables wgpu offload
//
// Evaluate must honor the Evaluator contract (index-aligned counts, same
// kernel semantics as EscapeCount). Offloaders may be shared by several
// sessions concurrently and must serialize device access internally.
type Offloader interface {
	// Label returns the backend name, e.g. the GPU adapter description.
	Label() string

	// Init prepares the offloader. Called once during registration;
	// implementations may defer device acquisition to the first Evaluate.
	Init() error

	// Close releases device resources.
	Close()

	// Evaluate runs the kernel over all samples on the device.
	Evaluate(samples []complex128) ([]uint32, error)
}

var (
	offloadMu sync.RWMutex
	offloader Offloader
)

// RegisterOffloader registers a device offloader for the DeviceOffload
// strategy.
//
// Only one offloader can be registered; subsequent calls replace (and close)
// the previous one. The offloader's Init method is called during
// registration; if it fails the offloader is not registered and the error is
// returned.
func RegisterOffloader(o Offloader) error {
	if o == nil {
		return errors.New("mandelbench: offloader must not be nil")
	}
	propagateLogger(o, Logger())
	if err := o.Init(); err != nil {
		return err
	}
	offloadMu.Lock()
	old := offloader
	offloader = o
	offloadMu.Unlock()
	if old != nil {
		old.Close()
	}
	return nil
}

// RegisteredOffloader returns the currently registered offloader, or nil.
func RegisteredOffloader() Offloader {
	offloadMu.RLock()
	o := offloader
	offloadMu.RUnlock()
	return o
}

// OffloadEvaluator is the DeviceOffload strategy: it delegates evaluation to
// the process-wide registered Offloader. Every failure is surfaced as a
// *BackendError so the session can downgrade it to a diagnostic and publish
// a zero-filled result instead of crashing.
type OffloadEvaluator struct{}

// Label implements Evaluator.
func (OffloadEvaluator) Label() string {
	if o := RegisteredOffloader(); o != nil {
		return o.Label()
	}
	return "Device offload (unavailable)"
}

// Evaluate implements Evaluator.
func (OffloadEvaluator) Evaluate(samples []complex128) ([]uint32, error) {
	o := RegisteredOffloader()
	if o == nil {
		return nil, &BackendError{
			Backend: "offload",
			Message: "no device offloader registered",
			Err:     ErrNoOffloader,
		}
	}
	counts, err := o.Evaluate(samples)
	if err != nil {
		var be *BackendError
		if errors.As(err, &be) {
			return nil, be
		}
		return nil, &BackendError{Backend: o.Label(), Message: err.Error(), Err: err}
	}
	if len(counts) != len(samples) {
		return nil, &BackendError{
			Backend: o.Label(),
			Message: fmt.Sprintf("result length %d does not match grid length %d", len(counts), len(samples)),
		}
	}
	return counts, nil
}
