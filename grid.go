package mandelbench

import "errors"

// ErrInvalidSize is returned when a viewport size smaller than one pixel is
// requested. The size appears in denominators of the view mapping, so zero
// is rejected rather than producing NaN samples.
var ErrInvalidSize = errors.New("mandelbench: viewport size must be at least 1")

// View selects the region of the complex plane mapped onto the viewport.
type View int

const (
	// ViewEntireSet frames the whole Mandelbrot set:
	// real in [-2.5, 1.5), imaginary in [-2.0, 2.0).
	ViewEntireSet View = iota

	// ViewLeftSpike zooms in on the spike extending left of the main body:
	// real in [-1.7, -1.45), imaginary in [-0.125, 0.125).
	ViewLeftSpike
)

// String returns the view name.
func (v View) String() string {
	switch v {
	case ViewEntireSet:
		return "EntireSet"
	case ViewLeftSpike:
		return "LeftSpike"
	default:
		return "Unknown"
	}
}

// Grid is the full set of complex-plane samples for one render, one sample
// per output pixel, in row-major order (row varies slowest). The sample for
// pixel (row, col) sits at index row*Size + col; results are matched back to
// pixels by index, so this ordering must be preserved end to end.
//
// A Grid is generated fresh per render and never mutated afterwards.
type Grid struct {
	Size    int
	View    View
	Samples []complex128
}

// NewGrid generates the sample grid for a size x size viewport of the given
// view. The mapping from pixel coordinate to complex sample is a pure affine
// function of (row, col, size, view); two calls with equal arguments produce
// equal grids.
func NewGrid(size int, view View) (*Grid, error) {
	if size < 1 {
		return nil, ErrInvalidSize
	}

	g := &Grid{
		Size:    size,
		View:    view,
		Samples: make([]complex128, size*size),
	}

	n := float64(size)
	i := 0
	for row := 0; row < size; row++ {
		for col := 0; col < size; col++ {
			switch view {
			case ViewLeftSpike:
				g.Samples[i] = complex(
					-1.7+0.25*float64(row)/n,
					-0.125+0.25*float64(col)/n,
				)
			default:
				g.Samples[i] = complex(
					-2.5+4.0*float64(row)/n,
					-2.0+4.0*float64(col)/n,
				)
			}
			i++
		}
	}
	return g, nil
}

// Len returns the number of samples (Size squared).
func (g *Grid) Len() int { return len(g.Samples) }

// At returns the sample for pixel (row, col).
func (g *Grid) At(row, col int) complex128 {
	return g.Samples[row*g.Size+col]
}
