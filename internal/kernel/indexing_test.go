package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToPhysical_Contiguous(t *testing.T) {
	dims := []int{2, 3}
	strides := []int{3, 1} // row-major contiguous

	// Contiguous layout: logical and physical coincide.
	for i := 0; i < 6; i++ {
		assert.Equal(t, i, ToPhysical(i, dims, strides))
	}
}

func TestToPhysical_Transposed(t *testing.T) {
	// A 2x3 view over a column-major (transposed) buffer.
	dims := []int{2, 3}
	strides := []int{1, 2}

	expected := []int{0, 2, 4, 1, 3, 5}
	for i, want := range expected {
		assert.Equal(t, want, ToPhysical(i, dims, strides))
	}
}

func TestToPhysical_Broadcast(t *testing.T) {
	// First axis broadcast: both rows alias the same three slots.
	dims := []int{2, 3}
	strides := []int{0, 1}

	expected := []int{0, 1, 2, 0, 1, 2}
	for i, want := range expected {
		assert.Equal(t, want, ToPhysical(i, dims, strides))
	}
}

func TestToLogical_RoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		dims    []int
		strides []int
	}{
		{"1d", []int{7}, []int{1}},
		{"2d", []int{3, 4}, []int{4, 1}},
		{"3d", []int{2, 3, 4}, []int{12, 4, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := 1
			for _, d := range tt.dims {
				n *= d
			}
			for i := 0; i < n; i++ {
				assert.Equal(t, i, ToLogical(ToPhysical(i, tt.dims, tt.strides), tt.dims, tt.strides))
			}
		})
	}
}

func TestToLogical_BroadcastAxisIsZero(t *testing.T) {
	// A zero-stride axis must come back as coordinate 0 for any offset,
	// and must not be divided by.
	dims := []int{4, 3}
	strides := []int{0, 1}

	for offset := 0; offset < 3; offset++ {
		// Logical index with first coordinate 0: offset itself.
		assert.Equal(t, offset, ToLogical(offset, dims, strides))
	}
}

func TestToLogical_MiddleBroadcastAxis(t *testing.T) {
	// dims [2,3,2], middle axis broadcast: physical layout is [2,2].
	dims := []int{2, 3, 2}
	strides := []int{2, 0, 1}

	// physical 3 = coords (1, _, 1) -> logical with middle coord 0 = 1*6 + 0*2 + 1.
	assert.Equal(t, 7, ToLogical(3, dims, strides))
}
