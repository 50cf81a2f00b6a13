package kernel

import (
	"fmt"

	"github.com/born-ml/kern/internal/device"
)

// MaxToForward reduces every contiguous run of chunkLen logical elements of
// inp to its maximum: out[k] = max over chunk k.
//
// numel is the logical element count; dims/strides describe how logical
// indices map into inp (stride 0 = broadcast axis). out must hold
// numel/chunkLen slots and must be pre-filled with NegInf by the caller —
// this kernel only ever raises output values, it never initializes them,
// which is what lets partial results from different blocks combine through
// the atomic max.
func MaxToForward[T Float](numel, chunkLen int, inp []T, dims, strides []int, out []T, cfg device.Config) {
	if chunkLen <= 0 || numel%chunkLen != 0 {
		panic(fmt.Sprintf("maxto: chunk length %d does not divide element count %d", chunkLen, numel))
	}
	if len(out) < numel/chunkLen {
		panic(fmt.Sprintf("maxto: output has %d slots, need %d", len(out), numel/chunkLen))
	}

	device.LaunchBlocks(numel, cfg, func(b *device.Block) func(*device.Thread) {
		shared := make([]T, b.Len())
		return func(t *device.Thread) {
			v := inp[ToPhysical(t.ID, dims, strides)]
			blockChunkMax(t, shared, chunkLen, v, out)
		}
	})
}

// blockChunkMax cooperatively reduces the fragment of a chunk resident in
// this thread's block and publishes the partial maximum into out[chunk].
//
// Chunks need not align to block boundaries, so a block may hold fragments
// of several chunks and a chunk may span several blocks. The tree reduction
// runs over the contiguous sub-range of the shared buffer belonging to this
// thread's chunk, using sequential-addressing halving steps. The step count
// depends only on chunkLen and the block length, both uniform across the
// block, so every lane reaches every barrier: lanes outside a combine step
// skip the combine, never the Sync.
func blockChunkMax[T Float](t *device.Thread, shared []T, chunkLen int, val T, out []T) {
	lane := t.Lane
	shared[lane] = val

	blockStart := t.Block().Start()
	blockLen := t.Block().Len()
	chunk := t.ID / chunkLen

	// Sub-range [begin, end) of shared holding this chunk's fragment.
	begin := max(chunk*chunkLen-blockStart, 0)
	end := min((chunk+1)*chunkLen-blockStart, blockLen)
	r := lane - begin

	for stride := nextPow2(min(chunkLen, blockLen)) >> 1; stride > 0; stride >>= 1 {
		t.Sync() // writes of the previous step must be visible before reading
		if r < stride && lane+stride < end {
			shared[lane] = max(shared[lane], shared[lane+stride])
		}
	}

	// Other blocks may hold other fragments of this chunk; combining through
	// the atomic max keeps them from clobbering each other.
	if r == 0 {
		AtomicMax(&out[chunk], shared[lane])
	}
}

// MaxToBackward scatters output gradient back to every input position that
// attained its chunk's maximum.
//
// numel is the physical element count of the (possibly broadcast) input.
// Each position is inverse-mapped to its logical index through inpStrides,
// then forward-mapped through outStrides to find its reduction slot. The
// equality test is tie-inclusive: every position exactly equal to the
// recorded maximum receives gradOut[outI] * elemsPerThread, with no division
// by the tie count — the conventional subgradient choice for max, kept as
// fixed behavior. elemsPerThread folds in how many times each element is
// logically replicated under broadcasting (it can be fractional).
//
// gradInp is accumulated into, never reset: repeated launches and ties sum.
func MaxToBackward[T Float](
	numel int,
	elemsPerThread T,
	dims []int,
	inp, gradInp []T,
	inpStrides []int,
	out, gradOut []T,
	outStrides []int,
	cfg device.Config,
) {
	if len(gradInp) < numel {
		panic(fmt.Sprintf("maxto: gradient buffer has %d slots, need %d", len(gradInp), numel))
	}

	device.For(numel, func(i int) {
		logical := ToLogical(i, dims, inpStrides)
		outI := ToPhysical(logical, dims, outStrides)
		if inp[i] == out[outI] {
			AtomicAdd(&gradInp[i], gradOut[outI]*elemsPerThread)
		}
	}, cfg)
}

// nextPow2 returns the smallest power of two >= n.
func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
