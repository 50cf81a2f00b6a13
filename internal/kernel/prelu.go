package kernel

// PReLU is the op descriptor for parametric ReLU. It has the same piecewise
// form as LeakyReLU but the slope is a second input tensor rather than a
// scalar parameter, so the slope itself receives gradient.
type PReLU[T Float] struct{}

// Forward evaluates f(x, alpha) = x for x >= 0, x*alpha otherwise.
func (PReLU[T]) Forward(x, alpha T) T {
	if x < 0 {
		return x * alpha
	}
	return x
}

// DLhs is df/dx: alpha on the negative side, 1 elsewhere.
func (PReLU[T]) DLhs(x, alpha T) T {
	if x < 0 {
		return alpha
	}
	return 1
}

// DRhs is df/dalpha: x on the negative side, 0 elsewhere.
func (PReLU[T]) DRhs(x, _ T) T {
	if x < 0 {
		return x
	}
	return 0
}
