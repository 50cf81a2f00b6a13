// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package device provides the data-parallel execution model for kern.
//
// # Overview
//
// Kernels in this module are written against a GPU-shaped scheduling model:
//   - Execution units are grouped into fixed-size blocks
//   - Each block has a barrier visible only to its own lanes
//   - Blocks coordinate only through atomics on shared buffers
//
// On CPU, lanes are goroutines and the barrier is a generation-counted
// condition variable. Two entry points cover the two kernel shapes:
//
//   - For: independent per-index work (elementwise ops, gradient scatter)
//   - LaunchBlocks: cooperative per-block work (shared-memory reductions)
//
// # Basic Usage
//
//	import "github.com/born-ml/kern/device"
//
//	cfg := device.DefaultConfig()
//	device.For(len(data), func(i int) {
//	    data[i] *= 2
//	}, cfg)
//
// # Barrier Discipline
//
// Inside LaunchBlocks, every lane of a block must execute the same sequence
// of Thread.Sync calls. A lane that skips a barrier other lanes wait on
// deadlocks its block; a lane that skips a combine step but still calls Sync
// is fine. Kernels therefore derive their step counts from values uniform
// across the block.
package device
