// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package kernel

import (
	"github.com/x448/float16"

	"github.com/born-ml/kern/device"
	internalkernel "github.com/born-ml/kern/internal/kernel"
)

// Float is the constraint for supported kernel precisions.
type Float = internalkernel.Float

// UnaryOp is a scalar operation with one input and its derivative.
type UnaryOp[T Float] = internalkernel.UnaryOp[T]

// BinaryOp is a scalar operation with two inputs and one partial derivative
// per input.
type BinaryOp[T Float] = internalkernel.BinaryOp[T]

// LeakyReLU is the leaky-ReLU op descriptor; Alpha is the negative slope.
type LeakyReLU[T Float] = internalkernel.LeakyReLU[T]

// PReLU is the parametric-ReLU op descriptor; the slope is the second input.
type PReLU[T Float] = internalkernel.PReLU[T]

// ToPhysical maps a logical row-major index to a strided buffer offset.
func ToPhysical(logical int, dims, strides []int) int {
	return internalkernel.ToPhysical(logical, dims, strides)
}

// ToLogical recovers the logical index for a physical buffer offset;
// zero-stride (broadcast) axes contribute coordinate 0.
func ToLogical(physical int, dims, strides []int) int {
	return internalkernel.ToLogical(physical, dims, strides)
}

// AtomicMax atomically raises *addr to max(*addr, val), returning the
// previous value.
func AtomicMax[T Float](addr *T, val T) T {
	return internalkernel.AtomicMax(addr, val)
}

// AtomicAdd atomically performs *addr += delta, returning the previous
// value.
func AtomicAdd[T Float](addr *T, delta T) T {
	return internalkernel.AtomicAdd(addr, delta)
}

// Fill writes val into the first n slots of buf.
func Fill[T Float](buf []T, val T, n int) {
	internalkernel.Fill(buf, val, n)
}

// NegInf returns the max-reduction identity in precision T.
func NegInf[T Float]() T {
	return internalkernel.NegInf[T]()
}

// MaxToForward reduces each run of chunkLen logical elements of inp to its
// maximum in out. out must be pre-filled with NegInf.
func MaxToForward[T Float](numel, chunkLen int, inp []T, dims, strides []int, out []T, cfg device.Config) {
	internalkernel.MaxToForward(numel, chunkLen, inp, dims, strides, out, cfg)
}

// MaxToBackward scatters output gradient back to every input position that
// attained its chunk's maximum, accumulating into gradInp.
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
	internalkernel.MaxToBackward(numel, elemsPerThread, dims, inp, gradInp, inpStrides, out, gradOut, outStrides, cfg)
}

// ForwardUnary applies op elementwise: out[i] = op.Forward(inp[i]).
func ForwardUnary[T Float](op UnaryOp[T], n int, inp, out []T, cfg device.Config) {
	internalkernel.ForwardUnary(op, n, inp, out, cfg)
}

// BackwardUnary accumulates gradInp[i] += gradOut[i]*op.Derivative(inp[i]).
func BackwardUnary[T Float](op UnaryOp[T], n int, inp, gradInp, gradOut []T, cfg device.Config) {
	internalkernel.BackwardUnary(op, n, inp, gradInp, gradOut, cfg)
}

// ForwardBinary applies op elementwise over two co-indexed inputs.
func ForwardBinary[T Float](op BinaryOp[T], n int, lhs, rhs, out []T, cfg device.Config) {
	internalkernel.ForwardBinary(op, n, lhs, rhs, out, cfg)
}

// BackwardBinaryLhs accumulates the left operand's gradient.
func BackwardBinaryLhs[T Float](op BinaryOp[T], n int, lhs, rhs, gradLhs, gradOut []T, cfg device.Config) {
	internalkernel.BackwardBinaryLhs(op, n, lhs, rhs, gradLhs, gradOut, cfg)
}

// BackwardBinaryRhs accumulates the right operand's gradient.
func BackwardBinaryRhs[T Float](op BinaryOp[T], n int, lhs, rhs, gradRhs, gradOut []T, cfg device.Config) {
	internalkernel.BackwardBinaryRhs(op, n, lhs, rhs, gradRhs, gradOut, cfg)
}

// HalfToFloat32 widens an fp16 buffer into a float32 staging buffer.
func HalfToFloat32(dst []float32, src []float16.Float16) error {
	return internalkernel.HalfToFloat32(dst, src)
}

// Float32ToHalf narrows a float32 buffer into fp16 storage.
func Float32ToHalf(dst []float16.Float16, src []float32) error {
	return internalkernel.Float32ToHalf(dst, src)
}

// HalfToFloat64 widens an fp16 buffer into a float64 staging buffer.
func HalfToFloat64(dst []float64, src []float16.Float16) error {
	return internalkernel.HalfToFloat64(dst, src)
}

// Float64ToHalf narrows a float64 buffer into fp16 storage.
func Float64ToHalf(dst []float16.Float16, src []float64) error {
	return internalkernel.Float64ToHalf(dst, src)
}
