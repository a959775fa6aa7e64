//go:build !nogpu

// Package gpu implements the DeviceOffload backend: the Mandelbrot kernel
// as a wgpu/hal compute shader, dispatched as one bulk element-wise
// transform per Evaluate call.
package gpu

import (
	_ "embed"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"

	"github.com/gogpu/mandelbench"
)

//go:embed shaders/mandelbrot.wgsl
var mandelbrotWGSL string

// evaluateTimeout bounds the fence wait for one dispatch. A full 4096x4096
// grid finishes in well under a second on any adapter that gets this far.
const evaluateTimeout = 10 * time.Second

// Engine runs the escape-iteration kernel on a GPU via wgpu/hal compute.
// It implements the mandelbench.Offloader interface.
//
// The device is acquired and the compute pipeline compiled lazily on the
// first Evaluate call; each Evaluate call creates
// its own buffers and bind group, dispatches a single compute pass, and
// reads the counts back through a staging buffer. The device handle is
// shared by all sessions; Evaluate serializes device access internally.
type Engine struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.ComputePipeline

	adapterName string
	ready       bool
}

var _ mandelbench.Offloader = (*Engine)(nil)

// NewEngine creates an engine. No device resources are acquired until Init.
func NewEngine() *Engine { return &Engine{} }

// Label returns the selected adapter's name, or a generic label before Init.
func (e *Engine) Label() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.adapterName != "" {
		return e.adapterName
	}
	return "wgpu compute"
}

// SetLogger sets the logger for the engine and this package.
// Called by mandelbench.SetLogger to propagate logging configuration.
func (e *Engine) SetLogger(l *slog.Logger) { setLogger(l) }

// Init registers the engine. Device initialization is deferred until the
// first Evaluate call so that a missing or broken GPU surfaces through the
// session's diagnostic channel during a render rather than failing the
// registration at import time.
func (e *Engine) Init() error { return nil }

// initLocked acquires the GPU: Vulkan instance, adapter (discrete
// preferred, then integrated), device and queue, then builds the compute
// pipeline. A shader build failure is returned as a
// *mandelbench.BackendError carrying the compiler diagnostic as the build
// log. Called with e.mu held.
func (e *Engine) initLocked() error {
	if e.ready {
		return nil
	}

	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return &mandelbench.BackendError{
			Backend: "wgpu",
			Message: "vulkan backend not available",
		}
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return &mandelbench.BackendError{
			Backend: "wgpu",
			Message: "create instance failed",
			Err:     err,
		}
	}
	e.instance = instance

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		e.instance.Destroy()
		e.instance = nil
		return &mandelbench.BackendError{
			Backend: "wgpu",
			Message: "no GPU adapters found",
		}
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		e.instance.Destroy()
		e.instance = nil
		return &mandelbench.BackendError{
			Backend: selected.Info.Name,
			Message: "open device failed",
			Err:     err,
		}
	}
	e.device = openDev.Device
	e.queue = openDev.Queue
	e.adapterName = selected.Info.Name

	if err := e.createPipeline(); err != nil {
		e.device.Destroy()
		e.device = nil
		e.queue = nil
		e.instance.Destroy()
		e.instance = nil
		return err
	}

	e.ready = true
	slogger().Info("offload engine initialized", "adapter", e.adapterName)
	return nil
}

// createPipeline compiles the WGSL kernel to SPIR-V and builds the compute
// pipeline. Called with e.mu held.
func (e *Engine) createPipeline() error {
	spirvBytes, err := naga.Compile(mandelbrotWGSL)
	if err != nil {
		// The build log is the diagnostic users need to see; keep it
		// intact instead of flattening it into the message.
		return &mandelbench.BackendError{
			Backend: "naga",
			Message: "kernel build failure",
			Log:     err.Error(),
			Err:     err,
		}
	}
	spirv := make([]uint32, len(spirvBytes)/4)
	for i := range spirv {
		spirv[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}

	shader, err := e.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "mandelbrot_kernel",
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return &mandelbench.BackendError{
			Backend: e.adapterName,
			Message: "create shader module failed",
			Err:     err,
		}
	}
	e.shader = shader

	bindLayout, err := e.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "mandelbrot_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
			{Binding: 1, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
			{Binding: 2, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: create bind group layout: %w", err)
	}
	e.bindLayout = bindLayout

	pipeLayout, err := e.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "mandelbrot_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{e.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("gpu: create pipeline layout: %w", err)
	}
	e.pipeLayout = pipeLayout

	pipeline, err := e.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:   "mandelbrot_pipeline",
		Layout:  e.pipeLayout,
		Compute: hal.ComputeState{Module: e.shader, EntryPoint: "main"},
	})
	if err != nil {
		return fmt.Errorf("gpu: create compute pipeline: %w", err)
	}
	e.pipeline = pipeline
	return nil
}

// Close releases all device resources. The engine must not be used after
// Close.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.destroyPipeline()
	if e.device != nil {
		e.device.Destroy()
		e.device = nil
	}
	if e.instance != nil {
		e.instance.Destroy()
		e.instance = nil
	}
	e.queue = nil
	e.ready = false
}

func (e *Engine) destroyPipeline() {
	if e.device == nil {
		return
	}
	if e.pipeline != nil {
		e.device.DestroyComputePipeline(e.pipeline)
		e.pipeline = nil
	}
	if e.pipeLayout != nil {
		e.device.DestroyPipelineLayout(e.pipeLayout)
		e.pipeLayout = nil
	}
	if e.bindLayout != nil {
		e.device.DestroyBindGroupLayout(e.bindLayout)
		e.bindLayout = nil
	}
	if e.shader != nil {
		e.device.DestroyShaderModule(e.shader)
		e.shader = nil
	}
}

// Evaluate implements mandelbench.Offloader. It marshals the samples into a
// device storage buffer, dispatches one compute pass over all of them, and
// reads the counts back through a MapRead staging buffer.
func (e *Engine) Evaluate(samples []complex128) ([]uint32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.initLocked(); err != nil {
		return nil, err
	}
	n := len(samples)
	if n == 0 {
		return []uint32{}, nil
	}

	sampleBytes := packSamples(samples)
	countSize := uint64(n) * 4

	samplesBuf, err := e.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "mandelbrot_samples", Size: uint64(len(sampleBytes)),
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, e.backendErr("create samples buffer", err)
	}
	defer e.device.DestroyBuffer(samplesBuf)

	countsBuf, err := e.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "mandelbrot_counts", Size: countSize,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc,
	})
	if err != nil {
		return nil, e.backendErr("create counts buffer", err)
	}
	defer e.device.DestroyBuffer(countsBuf)

	stagingBuf, err := e.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "mandelbrot_staging", Size: countSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, e.backendErr("create staging buffer", err)
	}
	defer e.device.DestroyBuffer(stagingBuf)

	paramBytes := packParams(uint32(n))
	paramsBuf, err := e.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "mandelbrot_params", Size: uint64(len(paramBytes)),
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, e.backendErr("create params buffer", err)
	}
	defer e.device.DestroyBuffer(paramsBuf)

	e.queue.WriteBuffer(paramsBuf, 0, paramBytes)
	e.queue.WriteBuffer(samplesBuf, 0, sampleBytes)

	bindGroup, err := e.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "mandelbrot_bind",
		Layout: e.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: paramsBuf.NativeHandle(), Offset: 0, Size: uint64(len(paramBytes))}},
			{Binding: 1, Resource: gputypes.BufferBinding{Buffer: samplesBuf.NativeHandle(), Offset: 0, Size: uint64(len(sampleBytes))}},
			{Binding: 2, Resource: gputypes.BufferBinding{Buffer: countsBuf.NativeHandle(), Offset: 0, Size: countSize}},
		},
	})
	if err != nil {
		return nil, e.backendErr("create bind group", err)
	}
	defer e.device.DestroyBindGroup(bindGroup)

	encoder, err := e.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "mandelbrot_encoder"})
	if err != nil {
		return nil, e.backendErr("create command encoder", err)
	}
	if err := encoder.BeginEncoding("mandelbrot"); err != nil {
		return nil, e.backendErr("begin encoding", err)
	}

	groups := (uint32(n) + 63) / 64
	slogger().Debug("dispatching kernel",
		"samples", n, "workgroups", groups, "adapter", e.adapterName)

	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "mandelbrot_pass"})
	pass.SetPipeline(e.pipeline)
	pass.SetBindGroup(0, bindGroup, nil)
	pass.Dispatch(groups, 1, 1)
	pass.End()

	encoder.CopyBufferToBuffer(countsBuf, stagingBuf, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: countSize},
	})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, e.backendErr("end encoding", err)
	}
	defer e.device.FreeCommandBuffer(cmdBuf)

	fence, err := e.device.CreateFence()
	if err != nil {
		return nil, e.backendErr("create fence", err)
	}
	defer e.device.DestroyFence(fence)
	if err := e.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return nil, e.backendErr("submit", err)
	}
	fenceOK, err := e.device.Wait(fence, 1, evaluateTimeout)
	if err != nil {
		return nil, e.backendErr("wait for device", err)
	}
	if !fenceOK {
		return nil, &mandelbench.BackendError{
			Backend: e.adapterName,
			Message: fmt.Sprintf("device did not signal within %s", evaluateTimeout),
		}
	}

	readback := make([]byte, countSize)
	if err := e.queue.ReadBuffer(stagingBuf, 0, readback); err != nil {
		return nil, e.backendErr("readback", err)
	}
	return unpackCounts(readback), nil
}

// labelLocked is Label without re-acquiring e.mu.
func (e *Engine) labelLocked() string {
	if e.adapterName != "" {
		return e.adapterName
	}
	return "wgpu compute"
}

func (e *Engine) backendErr(op string, err error) *mandelbench.BackendError {
	return &mandelbench.BackendError{
		Backend: e.labelLocked(),
		Message: op + " failed",
		Err:     err,
	}
}
