package kernel

// LeakyReLU is the op descriptor for leaky-ReLU:
// f(x) = x for x >= 0, alpha*x otherwise.
type LeakyReLU[T Float] struct {
	Alpha T // negative-slope coefficient
}

// Forward evaluates the activation.
func (op LeakyReLU[T]) Forward(x T) T {
	if x < 0 {
		return x * op.Alpha
	}
	return x
}

// Derivative is alpha on the negative side, 1 elsewhere.
func (op LeakyReLU[T]) Derivative(x T) T {
	if x < 0 {
		return op.Alpha
	}
	return 1
}
