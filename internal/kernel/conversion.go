package kernel

import (
	"github.com/pkg/errors"
	"github.com/x448/float16"
)

// Half-precision staging conversions. Kernels compute in float32/float64;
// hosts that store parameters or activations in fp16 widen into a staging
// buffer before a launch and narrow results back afterwards.

// HalfToFloat32 widens src into dst. dst and src must have equal length.
func HalfToFloat32(dst []float32, src []float16.Float16) error {
	if len(dst) != len(src) {
		return errors.Errorf("half: length mismatch: dst %d, src %d", len(dst), len(src))
	}
	for i, h := range src {
		dst[i] = h.Float32()
	}
	return nil
}

// Float32ToHalf narrows src into dst with IEEE round-to-nearest-even.
func Float32ToHalf(dst []float16.Float16, src []float32) error {
	if len(dst) != len(src) {
		return errors.Errorf("half: length mismatch: dst %d, src %d", len(dst), len(src))
	}
	for i, v := range src {
		dst[i] = float16.Fromfloat32(v)
	}
	return nil
}

// HalfToFloat64 widens src into dst.
func HalfToFloat64(dst []float64, src []float16.Float16) error {
	if len(dst) != len(src) {
		return errors.Errorf("half: length mismatch: dst %d, src %d", len(dst), len(src))
	}
	for i, h := range src {
		dst[i] = float64(h.Float32())
	}
	return nil
}

// Float64ToHalf narrows src into dst, rounding through float32.
func Float64ToHalf(dst []float16.Float16, src []float64) error {
	if len(dst) != len(src) {
		return errors.Errorf("half: length mismatch: dst %d, src %d", len(dst), len(src))
	}
	for i, v := range src {
		dst[i] = float16.Fromfloat32(float32(v))
	}
	return nil
}
