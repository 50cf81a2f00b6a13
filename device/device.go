// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package device

import (
	internaldevice "github.com/born-ml/kern/internal/device"
)

// Config controls kernel execution behavior.
type Config = internaldevice.Config

// Block is one group of cooperating lanes sharing block-local state and a
// barrier.
type Block = internaldevice.Block

// Thread identifies one execution unit within a launch.
type Thread = internaldevice.Thread

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	return internaldevice.DefaultConfig()
}

// For executes f(i) for i in [0, n) with optional parallelism and no
// intra-block cooperation.
func For(n int, f func(i int), cfg Config) {
	internaldevice.For(n, f, cfg)
}

// LaunchBlocks partitions [0, n) into blocks of cfg.BlockSize cooperating
// lanes; the block hook allocates block-local state and returns the lane
// body.
func LaunchBlocks(n int, cfg Config, block func(b *Block) func(t *Thread)) {
	internaldevice.LaunchBlocks(n, cfg, block)
}
