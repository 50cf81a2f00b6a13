// Package kernel implements the device-side compute kernels backing tensor
// autograd: the strided max-reduction pair (forward chunk reduction, backward
// gradient scatter) and the generic elementwise forward/backward kernel
// family used by activation ops.
//
// Kernels operate on flat buffers the host allocates and sizes; shape
// metadata (dims, strides, chunk length) is computed by the host tensor
// layer. Preconditions that are cheap to check panic with a descriptive
// message; everything else is a contract with the caller.
package kernel

// Float is the constraint for supported kernel precisions.
type Float interface {
	~float32 | ~float64
}
