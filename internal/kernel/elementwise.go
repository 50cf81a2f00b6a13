package kernel

import "github.com/born-ml/kern/internal/device"

// UnaryOp is a scalar operation with one input, carried by value into the
// elementwise kernels. Implementations are small parameter carriers (an op
// descriptor), immutable for the duration of a launch.
type UnaryOp[T Float] interface {
	// Forward evaluates f(x).
	Forward(x T) T
	// Derivative evaluates df/dx at x.
	Derivative(x T) T
}

// BinaryOp is a scalar operation with two co-indexed inputs and one partial
// derivative per input.
type BinaryOp[T Float] interface {
	// Forward evaluates f(x, y).
	Forward(x, y T) T
	// DLhs evaluates df/dx at (x, y).
	DLhs(x, y T) T
	// DRhs evaluates df/dy at (x, y).
	DRhs(x, y T) T
}

// ForwardUnary applies op elementwise: out[i] = op.Forward(inp[i]) for
// i in [0, n). All buffers are addressed by the same linear index; any
// broadcasting has been resolved by the caller before this layer.
func ForwardUnary[T Float](op UnaryOp[T], n int, inp, out []T, cfg device.Config) {
	device.For(n, func(i int) {
		out[i] = op.Forward(inp[i])
	}, cfg)
}

// BackwardUnary accumulates gradInp[i] += gradOut[i] * op.Derivative(inp[i]).
// Accumulation is additive and atomic so multiple contributing call sites in
// a backward pass sum instead of overwriting.
func BackwardUnary[T Float](op UnaryOp[T], n int, inp, gradInp, gradOut []T, cfg device.Config) {
	device.For(n, func(i int) {
		AtomicAdd(&gradInp[i], gradOut[i]*op.Derivative(inp[i]))
	}, cfg)
}

// ForwardBinary applies op elementwise over two co-indexed inputs:
// out[i] = op.Forward(lhs[i], rhs[i]).
func ForwardBinary[T Float](op BinaryOp[T], n int, lhs, rhs, out []T, cfg device.Config) {
	device.For(n, func(i int) {
		out[i] = op.Forward(lhs[i], rhs[i])
	}, cfg)
}

// BackwardBinaryLhs accumulates the left operand's gradient:
// gradLhs[i] += gradOut[i] * op.DLhs(lhs[i], rhs[i]).
func BackwardBinaryLhs[T Float](op BinaryOp[T], n int, lhs, rhs, gradLhs, gradOut []T, cfg device.Config) {
	device.For(n, func(i int) {
		AtomicAdd(&gradLhs[i], gradOut[i]*op.DLhs(lhs[i], rhs[i]))
	}, cfg)
}

// BackwardBinaryRhs accumulates the right operand's gradient:
// gradRhs[i] += gradOut[i] * op.DRhs(lhs[i], rhs[i]).
func BackwardBinaryRhs[T Float](op BinaryOp[T], n int, lhs, rhs, gradRhs, gradOut []T, cfg device.Config) {
	device.For(n, func(i int) {
		AtomicAdd(&gradRhs[i], gradOut[i]*op.DRhs(lhs[i], rhs[i]))
	}, cfg)
}
