// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package kernel provides the device-side compute kernels for tensor
// autograd engines.
//
// # Overview
//
// This package covers the kernels a host tensor library launches:
//   - Strided index mapping between logical views and physical buffers
//   - Chunked max reduction (forward) with its gradient scatter (backward)
//   - A generic elementwise forward/backward kernel family for unary and
//     binary ops (leaky-ReLU, PReLU) over float32 and float64
//   - Atomic float max/add primitives, a fill utility, and fp16 staging
//
// The host computes all shape metadata (dims, strides, chunk length) and
// owns every buffer; kernels only read and write within the bounds the
// metadata implies.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/kern/device"
//	    "github.com/born-ml/kern/kernel"
//	)
//
//	cfg := device.DefaultConfig()
//	inp := []float32{1, 5, 5, 2}
//	out := make([]float32, 1)
//	kernel.Fill(out, kernel.NegInf[float32](), len(out))
//	kernel.MaxToForward(4, 4, inp, []int{4}, []int{1}, out, cfg)
//	// out[0] == 5
//
// # Gradient Semantics
//
// Backward kernels always accumulate (+=) into gradient buffers, never
// overwrite, so multiple contributing call sites per backward pass sum.
// The max backward is tie-inclusive: every position equal to the chunk
// maximum receives the full gradient share, with no division by tie count.
//
// # Concurrency
//
// Forward reduction combines partial block results through an atomic
// compare-and-swap max; gradient accumulation uses atomic adds. Results are
// independent of the block-size choice in device.Config.
package kernel
