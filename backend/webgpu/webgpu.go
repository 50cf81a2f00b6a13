// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

//go:build windows

// Package webgpu exposes the GPU execution path for kern kernels.
//
// The backend compiles the kernels to WGSL compute shaders and dispatches
// them through go-webgpu. Float32 only; hosts needing fp16 storage stage
// through kernel.HalfToFloat32 / kernel.Float32ToHalf.
//
// Example:
//
//	backend, err := webgpu.New()
//	if err != nil {
//	    // no adapter or native library on this system
//	}
//	defer backend.Release()
//	out, err := backend.LeakyReLUForward([]float32{-2, 3}, 0.1)
package webgpu

import (
	internalwebgpu "github.com/born-ml/kern/internal/backend/webgpu"
)

// Backend dispatches kern kernels as WebGPU compute passes.
type Backend = internalwebgpu.Backend

// New creates a WebGPU backend, or an error when WebGPU is unavailable.
func New() (*Backend, error) {
	return internalwebgpu.New()
}
