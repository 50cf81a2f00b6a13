package device

import (
	"sync"

	"k8s.io/klog/v2"
)

// Block is one group of cooperating lanes. Lanes of the same block share
// whatever state the kernel's block hook allocates, and synchronize through
// Thread.Sync. Blocks never synchronize with each other.
type Block struct {
	id    int
	start int // global index of the block's first lane
	size  int // number of lanes (the last block may be short)
	bar   *barrier
}

// ID returns the block's index within the launch grid.
func (b *Block) ID() int { return b.id }

// Start returns the global index of the block's first lane.
func (b *Block) Start() int { return b.start }

// Len returns the number of lanes in this block.
func (b *Block) Len() int { return b.size }

// Thread identifies one execution unit within a launch.
type Thread struct {
	ID   int // global index in [0, n)
	Lane int // index within the block, in [0, Block().Len())
	blk  *Block
}

// Block returns the block this thread belongs to.
func (t *Thread) Block() *Block { return t.blk }

// Sync blocks until every lane of the block has called Sync.
//
// Every lane of a block must execute the same sequence of Sync calls:
// a lane that returns early while others still wait on the barrier
// deadlocks the block. Kernels keep step counts uniform across the block
// for exactly this reason.
func (t *Thread) Sync() { t.blk.bar.await() }

// LaunchBlocks partitions [0, n) into blocks of cfg.BlockSize lanes and runs
// them, multiple blocks in parallel when cfg.Enabled.
//
// The block hook runs once per block before its lanes start; it allocates any
// block-local (shared) state and returns the lane body. Lanes run as
// goroutines so barriers inside the body are real synchronization points.
// The final block is sized to the remaining elements, so every spawned lane
// holds a valid index and participates in every barrier.
func LaunchBlocks(n int, cfg Config, block func(b *Block) func(t *Thread)) {
	if n <= 0 {
		return
	}
	bs := cfg.blockSize()
	numBlocks := (n + bs - 1) / bs

	if klog.V(2).Enabled() {
		klog.Infof("device: launch n=%d blockSize=%d blocks=%d parallel=%v", n, bs, numBlocks, cfg.Enabled)
	}

	runBlock := func(id int) {
		start := id * bs
		size := min(bs, n-start)
		blk := &Block{id: id, start: start, size: size, bar: newBarrier(size)}
		body := block(blk)

		var wg sync.WaitGroup
		wg.Add(size)
		for lane := 0; lane < size; lane++ {
			go func(lane int) {
				defer wg.Done()
				body(&Thread{ID: start + lane, Lane: lane, blk: blk})
			}(lane)
		}
		wg.Wait()
	}

	if !cfg.Enabled || numBlocks == 1 {
		for id := 0; id < numBlocks; id++ {
			runBlock(id)
		}
		return
	}

	// Distribute blocks over workers, same chunking as For.
	var wg sync.WaitGroup
	chunk := max((numBlocks+cfg.workers()-1)/cfg.workers(), 1)
	for s := 0; s < numBlocks; s += chunk {
		e := min(s+chunk, numBlocks)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for id := s; id < e; id++ {
				runBlock(id)
			}
		}(s, e)
	}
	wg.Wait()
}
