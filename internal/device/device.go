// Package device provides the data-parallel execution model for kern kernels.
//
// Work is scheduled the way a GPU schedules it: execution units are grouped
// into fixed-size blocks, each block has a barrier visible only to its own
// lanes, and cross-block coordination happens only through atomics. On CPU
// the lanes of a block are goroutines and the barrier is a generation-counted
// condition variable.
package device

import "runtime"

// Config controls kernel execution behavior.
type Config struct {
	Enabled      bool // Whether blocks run in parallel.
	NumWorkers   int  // Number of worker goroutines scheduling blocks.
	MinChunkSize int  // Minimum items per goroutine in For to avoid overhead.
	BlockSize    int  // Execution units per block in LaunchBlocks.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 64, // Typical cache line aware chunk.
		BlockSize:    256,
	}
}

func (cfg Config) blockSize() int {
	if cfg.BlockSize > 0 {
		return cfg.BlockSize
	}
	return 256
}

func (cfg Config) workers() int {
	if cfg.NumWorkers > 0 {
		return cfg.NumWorkers
	}
	return runtime.NumCPU()
}
