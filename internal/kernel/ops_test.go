package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLeakyReLU_Forward(t *testing.T) {
	op := LeakyReLU[float32]{Alpha: 0.1}
	inp := []float32{-2, 0, 3}
	out := make([]float32, 3)

	ForwardUnary[float32](op, 3, inp, out, testConfig())

	assert.InDeltaSlice(t, []float32{-0.2, 0, 3}, out, 1e-6)
}

func TestLeakyReLU_Backward(t *testing.T) {
	op := LeakyReLU[float32]{Alpha: 0.1}
	inp := []float32{-2, 0, 3}
	gradOut := []float32{1, 1, 2}
	gradInp := []float32{10, 10, 10} // accumulated, not overwritten

	BackwardUnary[float32](op, 3, inp, gradInp, gradOut, testConfig())

	assert.InDeltaSlice(t, []float32{10.1, 11, 12}, gradInp, 1e-5)
}

func TestLeakyReLU_Float64(t *testing.T) {
	op := LeakyReLU[float64]{Alpha: 0.5}
	inp := []float64{-2, -1, 1, 2}
	out := make([]float64, 4)

	ForwardUnary[float64](op, 4, inp, out, testConfig())
	assert.Equal(t, []float64{-1, -0.5, 1, 2}, out)

	gradInp := make([]float64, 4)
	gradOut := []float64{1, 1, 1, 1}
	BackwardUnary[float64](op, 4, inp, gradInp, gradOut, testConfig())
	assert.Equal(t, []float64{0.5, 0.5, 1, 1}, gradInp)
}

func TestPReLU_Forward(t *testing.T) {
	op := PReLU[float32]{}
	lhs := []float32{-1, 2, -4}
	rhs := []float32{0.5, 0.5, 0.25} // per-element slope
	out := make([]float32, 3)

	ForwardBinary[float32](op, 3, lhs, rhs, out, testConfig())

	assert.InDeltaSlice(t, []float32{-0.5, 2, -1}, out, 1e-6)
}

func TestPReLU_BackwardLhs(t *testing.T) {
	op := PReLU[float32]{}
	lhs := []float32{-1, 2}
	rhs := []float32{0.5, 0.5}
	gradOut := []float32{1, 1}
	gradLhs := make([]float32, 2)

	BackwardBinaryLhs[float32](op, 2, lhs, rhs, gradLhs, gradOut, testConfig())

	// d/dx = alpha where x < 0, else 1.
	assert.InDeltaSlice(t, []float32{0.5, 1}, gradLhs, 1e-6)
}

func TestPReLU_BackwardRhs(t *testing.T) {
	op := PReLU[float32]{}
	lhs := []float32{-1, 2}
	rhs := []float32{0.5, 0.5}
	gradOut := []float32{1, 1}
	gradRhs := make([]float32, 2)

	BackwardBinaryRhs[float32](op, 2, lhs, rhs, gradRhs, gradOut, testConfig())

	// d/dalpha = x where x < 0, else 0.
	assert.InDeltaSlice(t, []float32{-1, 0}, gradRhs, 1e-6)
}

func TestPReLU_BackwardAccumulates(t *testing.T) {
	op := PReLU[float64]{}
	lhs := []float64{-3}
	rhs := []float64{2}
	gradOut := []float64{1}
	gradRhs := []float64{5}

	BackwardBinaryRhs[float64](op, 1, lhs, rhs, gradRhs, gradOut, testConfig())
	BackwardBinaryRhs[float64](op, 1, lhs, rhs, gradRhs, gradOut, testConfig())

	assert.Equal(t, []float64{-1}, gradRhs)
}

func TestFill(t *testing.T) {
	buf := []float32{1, 2, 3, 4}
	Fill(buf, 9, 3)
	assert.Equal(t, []float32{9, 9, 9, 4}, buf)
}

func TestNegInf(t *testing.T) {
	// Anything beats the identity.
	assert.Less(t, NegInf[float64](), -1e308)
	assert.Less(t, float64(NegInf[float32]()), -1e38)
}
