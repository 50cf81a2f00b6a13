// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package kernel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/kern/device"
	"github.com/born-ml/kern/kernel"
)

// TestMaxPoolingRoundTrip drives the public API the way a host tensor
// library would: reduce, then scatter gradient back.
func TestMaxPoolingRoundTrip(t *testing.T) {
	cfg := device.DefaultConfig()

	// A [2,4] batch reduced over the last axis.
	inp := []float32{1, 5, 5, 2, -1, -7, -3, -2}
	dims := []int{2, 4}
	strides := []int{4, 1}

	out := make([]float32, 2)
	kernel.Fill(out, kernel.NegInf[float32](), 2)
	kernel.MaxToForward(8, 4, inp, dims, strides, out, cfg)
	require.Equal(t, []float32{5, -1}, out)

	gradOut := []float32{1, 2}
	gradInp := make([]float32, 8)
	kernel.MaxToBackward(8, 1, dims, inp, gradInp, strides, out, gradOut, []int{1, 0}, cfg)
	assert.Equal(t, []float32{0, 1, 1, 0, 2, 0, 0, 0}, gradInp)
}

// TestActivationPipeline chains elementwise forward and backward through a
// leaky-ReLU the way an autograd tape replays it.
func TestActivationPipeline(t *testing.T) {
	cfg := device.DefaultConfig()
	op := kernel.LeakyReLU[float32]{Alpha: 0.1}

	inp := []float32{-2, 3}
	out := make([]float32, 2)
	kernel.ForwardUnary[float32](op, 2, inp, out, cfg)
	assert.InDeltaSlice(t, []float32{-0.2, 3}, out, 1e-6)

	gradOut := []float32{1, 1}
	gradInp := make([]float32, 2)
	kernel.BackwardUnary[float32](op, 2, inp, gradInp, gradOut, cfg)
	assert.InDeltaSlice(t, []float32{0.1, 1}, gradInp, 1e-6)
}

func TestIndexMapping(t *testing.T) {
	dims := []int{2, 3}
	strides := []int{3, 1}
	for i := 0; i < 6; i++ {
		assert.Equal(t, i, kernel.ToLogical(kernel.ToPhysical(i, dims, strides), dims, strides))
	}
}
