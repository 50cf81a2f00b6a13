//go:build windows

package webgpu

import (
	"math"
	"strings"
	"testing"
)

func TestShaderGeneration(t *testing.T) {
	fwd := unaryForwardShader(leakyReluFwdExpr)
	if !strings.Contains(fwd, "select(x, x * params.alpha, x < 0.0)") {
		t.Error("forward shader missing op expression")
	}
	if !strings.Contains(fwd, "@workgroup_size(256)") {
		t.Error("forward shader missing workgroup size")
	}

	bwd := binaryBackwardShader(preluBwdRhsExpr)
	if !strings.Contains(bwd, "grad[i] = grad[i] + grad_out[i]") {
		t.Error("backward shader must accumulate, not overwrite")
	}
}

func TestOrderKeyDecode(t *testing.T) {
	// The shader's monotonic mapping must invert cleanly on the host.
	values := []float32{0, 1, -1, 3.5, -3.5, 1e30, -1e30}
	for _, v := range values {
		key := hostOrderKey(v)
		if got := decodeOrderKey(key); got != v {
			t.Errorf("decodeOrderKey(orderKey(%v)) = %v", v, got)
		}
	}

	// Keys must order like the floats they encode.
	if hostOrderKey(-5) >= hostOrderKey(-1) {
		t.Error("negative ordering broken")
	}
	if hostOrderKey(-1) >= hostOrderKey(0) {
		t.Error("sign boundary ordering broken")
	}
	if hostOrderKey(1) >= hostOrderKey(2) {
		t.Error("positive ordering broken")
	}
}

func TestNew(t *testing.T) {
	backend, err := New()
	if err != nil {
		t.Logf("WebGPU not available: %v", err)
		t.Skip("WebGPU not available on this system")
	}
	defer backend.Release()

	if backend.Name() == "" {
		t.Error("Backend name should not be empty")
	}
}

func TestGPULeakyReLU(t *testing.T) {
	backend, err := New()
	if err != nil {
		t.Skip("WebGPU not available on this system")
	}
	defer backend.Release()

	out, err := backend.LeakyReLUForward([]float32{-2, 0, 3}, 0.1)
	if err != nil {
		t.Fatalf("forward failed: %v", err)
	}
	want := []float32{-0.2, 0, 3}
	for i, w := range want {
		if diff := out[i] - w; diff > 1e-6 || diff < -1e-6 {
			t.Errorf("out[%d] = %v, expected %v", i, out[i], w)
		}
	}

	grad, err := backend.LeakyReLUBackward([]float32{-2, 0, 3}, []float32{10, 10, 10}, []float32{1, 1, 2}, 0.1)
	if err != nil {
		t.Fatalf("backward failed: %v", err)
	}
	wantGrad := []float32{10.1, 11, 12}
	for i, w := range wantGrad {
		if diff := grad[i] - w; diff > 1e-5 || diff < -1e-5 {
			t.Errorf("grad[%d] = %v, expected %v", i, grad[i], w)
		}
	}
}

func TestGPUMaxToForward(t *testing.T) {
	backend, err := New()
	if err != nil {
		t.Skip("WebGPU not available on this system")
	}
	defer backend.Release()

	out, err := backend.MaxToForward([]float32{1, 5, 5, 2, -7, -3, -9, -4}, []int{2, 4}, []int{4, 1}, 4)
	if err != nil {
		t.Fatalf("maxto failed: %v", err)
	}
	if len(out) != 2 || out[0] != 5 || out[1] != -3 {
		t.Errorf("out = %v, expected [5 -3]", out)
	}
}

// hostOrderKey mirrors the WGSL order_key function for tests.
func hostOrderKey(v float32) uint32 {
	bits := math.Float32bits(v)
	if bits>>31 == 1 {
		return ^bits
	}
	return bits | 0x80000000
}
