package mandelbench

// IterationBound is the shared iteration limit for the escape test.
// Every execution backend must use this exact bound; the WGSL kernel in
// internal/gpu carries the same constant. Changing it for one backend and
// not the others breaks benchmark comparability.
const IterationBound = 100

// EscapeCount returns the escape iteration for one complex sample c under
// the orbit z <- z*z + c.
//
// Samples outside radius 2 always escape on the first iteration, so the
// loop is skipped and 1 is returned immediately. Otherwise the orbit is
// iterated up to IterationBound times; if |z|^2 exceeds 4 at 0-indexed step
// i the result is i+1. A sample whose orbit stays bounded for the full run
// is considered inside the set and the result is 0.
//
// The escape test uses the squared magnitude everywhere (|z|^2 > 4 is
// equivalent to |z| > 2) so the identical formulation is expressible in
// WGSL without a sqrt.
//
// EscapeCount is pure and safe to call concurrently from any number of
// goroutines.
func EscapeCount(c complex128) uint32 {
	cr, ci := real(c), imag(c)
	if cr*cr+ci*ci > 4 {
		return 1
	}
	zr, zi := cr, ci
	for i := 0; i < IterationBound; i++ {
		zr, zi = zr*zr-zi*zi+cr, 2*zr*zi+ci
		if zr*zr+zi*zi > 4 {
			return uint32(i + 1)
		}
	}
	return 0
}
