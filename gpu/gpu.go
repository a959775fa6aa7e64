//go:build !nogpu

// Package gpu registers the wgpu compute engine as the device offloader for
// the DeviceOffload strategy.
//
// Import this package to enable GPU offload:
//
//	import _ "github.com/gogpu/mandelbench/gpu"
//
// Device initialization is deferred until the first render. If it fails
// (no Vulkan available, no adapters, kernel build failure), the render
// still completes with a black image and the failure is reported through
// the session's diagnostic channel; a failed device never crashes the
// program.
package gpu

import (
	"github.com/gogpu/mandelbench"
	gpuimpl "github.com/gogpu/mandelbench/internal/gpu"
)

func init() {
	if err := mandelbench.RegisterOffloader(gpuimpl.NewEngine()); err != nil {
		mandelbench.Logger().Warn("device offloader not available", "err", err)
	}
}
