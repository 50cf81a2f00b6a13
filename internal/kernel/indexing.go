package kernel

// ToPhysical maps a logical row-major index into an N-D view onto the linear
// offset of the backing buffer described by dims and strides.
//
// Axes are decoded last-to-first so the fastest-varying axis comes out of the
// remainder first. A stride of 0 marks a broadcast axis: every coordinate on
// that axis lands on the same physical slot.
func ToPhysical(logical int, dims, strides []int) int {
	physical := 0
	for d := len(dims) - 1; d >= 0; d-- {
		coord := logical % dims[d]
		logical /= dims[d]
		physical += coord * strides[d]
	}
	return physical
}

// ToLogical recovers the logical row-major index for a physical buffer
// offset. Axes are decoded first-to-last (largest stride first).
//
// A zero-stride (broadcast) axis carries no information about the physical
// offset, so it contributes coordinate 0; dividing by the stride there would
// be both a crash and the wrong answer.
func ToLogical(physical int, dims, strides []int) int {
	logical := 0
	for d := 0; d < len(dims); d++ {
		coord := 0
		if strides[d] != 0 {
			coord = physical / strides[d]
			physical %= strides[d]
		}
		logical = logical*dims[d] + coord
	}
	return logical
}
