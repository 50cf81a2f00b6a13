package kernel

import "math"

// Fill writes val into the first n slots of buf.
func Fill[T Float](buf []T, val T, n int) {
	for i := 0; i < n; i++ {
		buf[i] = val
	}
}

// NegInf returns negative infinity in precision T, the identity of the max
// reduction. Callers must fill reduction outputs with it before MaxToForward.
func NegInf[T Float]() T {
	return T(math.Inf(-1))
}
