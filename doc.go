// Package mandelbench benchmarks three interchangeable execution strategies
// against one identical workload: the Mandelbrot escape-iteration count for
// every pixel of a square viewport.
//
// # Overview
//
// The same numerical kernel runs under three execution models:
//
//   - Sequential: one goroutine, in-order evaluation. The latency baseline.
//   - ParallelMap: the sample grid fanned out over a fixed worker pool,
//     joined before results are published.
//   - DeviceOffload: a bulk element-wise transform on the GPU via
//     gogpu/wgpu compute shaders.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/mandelbench"
//	    _ "github.com/gogpu/mandelbench/gpu" // enable device offload
//	)
//
//	s, _ := mandelbench.NewSession(mandelbench.ParallelMap, 800)
//	out := s.Render(mandelbench.ViewEntireSet).Wait()
//	fmt.Println(out.Label, out.Elapsed)
//	out.Image.SavePNG("mandel.png")
//
// # Comparability
//
// Benchmark fairness depends on every backend evaluating the exact same
// kernel: same iteration bound, same squared-radius escape test, same
// first-iteration shortcut for samples outside radius 2. The kernel lives in
// EscapeCount; the device backend carries the same formulation in WGSL.
//
// # Failure model
//
// CPU strategies cannot fail: the kernel is pure arithmetic. The device
// path can (no adapter, shader build failure, device lost); those errors are
// caught at the session boundary, reported through the diagnostic callback,
// and the render still completes with a zero-filled (all-black) result.
package mandelbench

// Version is the current version of the library.
const Version = "0.1.0"
