//go:build !nogpu

package main

// Importing the gpu package registers the wgpu compute engine as the
// device-offload backend. Build with -tags nogpu to produce a CPU-only
// binary; the device strategy then reports "no device offloader
// registered" and renders black.
import _ "github.com/gogpu/mandelbench/gpu"
