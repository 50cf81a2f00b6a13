//go:build windows

package webgpu

import (
	"encoding/binary"
	"math"
	"sync"
	"unsafe"

	"github.com/go-webgpu/webgpu/wgpu"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Backend dispatches kern kernels as WebGPU compute passes. Shader modules
// and pipelines are compiled once and cached per kernel name.
//
// The GPU path is float32 only: WGSL storage buffers carry f32, and the
// reduction's atomic combine works on u32 order keys.
type Backend struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	shaders   map[string]*wgpu.ShaderModule
	pipelines map[string]*wgpu.ComputePipeline
	mu        sync.RWMutex
}

// New creates a WebGPU backend, or an error when no adapter or native
// library is available on this system.
func New() (backend *Backend, err error) {
	// Recover from panic if the wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			backend = nil
			err = errors.Errorf("webgpu: native library not available: %v", r)
		}
	}()

	instance, _ := wgpu.CreateInstance(nil)
	adapter, adapterErr := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if adapterErr != nil {
		instance.Release()
		return nil, errors.Wrap(adapterErr, "webgpu: failed to request adapter")
	}

	device, deviceErr := adapter.RequestDevice(nil)
	if deviceErr != nil {
		adapter.Release()
		instance.Release()
		return nil, errors.Wrap(deviceErr, "webgpu: failed to request device")
	}

	queue := device.GetQueue()
	if queue == nil {
		device.Release()
		adapter.Release()
		instance.Release()
		return nil, errors.New("webgpu: failed to get queue")
	}

	info, _ := adapter.GetInfo()
	klog.V(1).Infof("webgpu: using adapter %q (%s)", info.Device, info.Vendor)

	return &Backend{
		instance:  instance,
		adapter:   adapter,
		device:    device,
		queue:     queue,
		shaders:   make(map[string]*wgpu.ShaderModule),
		pipelines: make(map[string]*wgpu.ComputePipeline),
	}, nil
}

// Name returns the backend name.
func (b *Backend) Name() string { return "WebGPU" }

// Release frees all GPU resources held by the backend.
func (b *Backend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range b.pipelines {
		p.Release()
	}
	for _, s := range b.shaders {
		s.Release()
	}
	b.queue.Release()
	b.device.Release()
	b.adapter.Release()
	b.instance.Release()
}

// getOrCreatePipeline compiles (once) and returns the pipeline for a kernel.
func (b *Backend) getOrCreatePipeline(name, code string) *wgpu.ComputePipeline {
	b.mu.RLock()
	if pipeline, ok := b.pipelines[name]; ok {
		b.mu.RUnlock()
		return pipeline
	}
	b.mu.RUnlock()

	shader := b.device.CreateShaderModuleWGSL(code)
	pipeline := b.device.CreateComputePipelineSimple(nil, shader, "main")

	b.mu.Lock()
	b.shaders[name] = shader
	b.pipelines[name] = pipeline
	b.mu.Unlock()

	return pipeline
}

// createBuffer creates a storage buffer and uploads data.
func (b *Backend) createBuffer(data []byte, usage wgpu.BufferUsage) *wgpu.Buffer {
	size := uint64(len(data))
	buffer := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            usage,
		Size:             size,
		MappedAtCreation: wgpu.True,
	})
	mapped := unsafe.Slice((*byte)(buffer.GetMappedRange(0, size)), size)
	copy(mapped, data)
	buffer.Unmap()
	return buffer
}

// createUniformBuffer creates a 16-byte aligned uniform buffer.
func (b *Backend) createUniformBuffer(data []byte) *wgpu.Buffer {
	size := uint64(len(data))
	alignedSize := (size + 15) &^ 15
	buffer := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		Size:             alignedSize,
		MappedAtCreation: wgpu.True,
	})
	mapped := unsafe.Slice((*byte)(buffer.GetMappedRange(0, alignedSize)), alignedSize)
	copy(mapped, data)
	buffer.Unmap()
	return buffer
}

// readBuffer copies a GPU buffer back to host memory through a staging
// buffer, since storage buffers cannot be mapped directly.
func (b *Backend) readBuffer(src *wgpu.Buffer, size uint64) ([]byte, error) {
	staging := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
		Size:  size,
	})
	defer staging.Release()

	encoder := b.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(src, 0, staging, 0, size)
	b.queue.Submit(encoder.Finish(nil))

	if err := staging.MapAsync(b.device, wgpu.MapModeRead, 0, size); err != nil {
		return nil, errors.Wrap(err, "webgpu: failed to map staging buffer")
	}
	mapped := unsafe.Slice((*byte)(staging.GetMappedRange(0, size)), size)
	result := make([]byte, size)
	copy(result, mapped)
	staging.Unmap()

	return result, nil
}

// dispatch runs one compute pass of the named kernel over n invocations.
func (b *Backend) dispatch(name, code string, entries []wgpu.BindGroupEntry, n int) {
	pipeline := b.getOrCreatePipeline(name, code)

	bindGroup := b.device.CreateBindGroupSimple(pipeline.GetBindGroupLayout(0), entries)
	defer bindGroup.Release()

	encoder := b.device.CreateCommandEncoder(nil)
	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(pipeline)
	pass.SetBindGroup(0, bindGroup, nil)
	workgroups := uint32((n + workgroupSize - 1) / workgroupSize)
	pass.DispatchWorkgroups(workgroups, 1, 1)
	pass.End()
	b.queue.Submit(encoder.Finish(nil))
}

// Fill returns a buffer of n slots holding value.
func (b *Backend) Fill(n int, value float32) ([]float32, error) {
	size := uint64(n) * 4
	out := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst,
		Size:  size,
	})
	defer out.Release()

	params := make([]byte, 16)
	binary.LittleEndian.PutUint32(params[0:4], uint32(n))
	binary.LittleEndian.PutUint32(params[4:8], math.Float32bits(value))
	paramsBuf := b.createUniformBuffer(params)
	defer paramsBuf.Release()

	b.dispatch("fill", fillShader, []wgpu.BindGroupEntry{
		wgpu.BufferBindingEntry(0, out, 0, size),
		wgpu.BufferBindingEntry(1, paramsBuf, 0, 16),
	}, n)

	data, err := b.readBuffer(out, size)
	if err != nil {
		return nil, err
	}
	return bytesToF32(data), nil
}

// LeakyReLUForward computes leaky-ReLU with slope alpha elementwise.
func (b *Backend) LeakyReLUForward(inp []float32, alpha float32) ([]float32, error) {
	return b.runUnary("leaky_relu_fwd", unaryForwardShader(leakyReluFwdExpr), inp, nil, nil, alpha)
}

// LeakyReLUBackward accumulates grad_out scaled by the leaky-ReLU derivative
// into gradInp and returns the updated accumulator.
func (b *Backend) LeakyReLUBackward(inp, gradInp, gradOut []float32, alpha float32) ([]float32, error) {
	return b.runUnary("leaky_relu_bwd", unaryBackwardShader(leakyReluBwdExpr), inp, gradInp, gradOut, alpha)
}

// PReLUForward computes parametric ReLU; rhs carries the per-element slope.
func (b *Backend) PReLUForward(lhs, rhs []float32) ([]float32, error) {
	return b.runBinary("prelu_fwd", binaryForwardShader(preluFwdExpr), lhs, rhs, nil, nil)
}

// PReLUBackwardLhs accumulates the input-side gradient into gradLhs.
func (b *Backend) PReLUBackwardLhs(lhs, rhs, gradLhs, gradOut []float32) ([]float32, error) {
	return b.runBinary("prelu_bwd_lhs", binaryBackwardShader(preluBwdLhsExpr), lhs, rhs, gradLhs, gradOut)
}

// PReLUBackwardRhs accumulates the slope-side gradient into gradRhs.
func (b *Backend) PReLUBackwardRhs(lhs, rhs, gradRhs, gradOut []float32) ([]float32, error) {
	return b.runBinary("prelu_bwd_rhs", binaryBackwardShader(preluBwdRhsExpr), lhs, rhs, gradRhs, gradOut)
}

// runUnary executes a generated unary shader. For forward kernels gradInp
// and gradOut are nil and the result is a fresh output buffer; for backward
// kernels gradInp is uploaded, accumulated into, and read back.
func (b *Backend) runUnary(name, code string, inp, gradInp, gradOut []float32, alpha float32) ([]float32, error) {
	n := len(inp)
	size := uint64(n) * 4

	inpBuf := b.createBuffer(f32Bytes(inp), wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc)
	defer inpBuf.Release()

	params := make([]byte, 16)
	binary.LittleEndian.PutUint32(params[0:4], uint32(n))
	binary.LittleEndian.PutUint32(params[4:8], math.Float32bits(alpha))
	paramsBuf := b.createUniformBuffer(params)
	defer paramsBuf.Release()

	if gradInp == nil {
		out := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst,
			Size:  size,
		})
		defer out.Release()

		b.dispatch(name, code, []wgpu.BindGroupEntry{
			wgpu.BufferBindingEntry(0, inpBuf, 0, size),
			wgpu.BufferBindingEntry(1, out, 0, size),
			wgpu.BufferBindingEntry(2, paramsBuf, 0, 16),
		}, n)

		data, err := b.readBuffer(out, size)
		if err != nil {
			return nil, err
		}
		return bytesToF32(data), nil
	}

	if len(gradInp) != n || len(gradOut) != n {
		return nil, errors.Errorf("webgpu: %s: buffer length mismatch: inp %d, grad_inp %d, grad_out %d",
			name, n, len(gradInp), len(gradOut))
	}

	gradInpBuf := b.createBuffer(f32Bytes(gradInp), wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc|wgpu.BufferUsageCopyDst)
	defer gradInpBuf.Release()
	gradOutBuf := b.createBuffer(f32Bytes(gradOut), wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc)
	defer gradOutBuf.Release()

	b.dispatch(name, code, []wgpu.BindGroupEntry{
		wgpu.BufferBindingEntry(0, inpBuf, 0, size),
		wgpu.BufferBindingEntry(1, gradInpBuf, 0, size),
		wgpu.BufferBindingEntry(2, gradOutBuf, 0, size),
		wgpu.BufferBindingEntry(3, paramsBuf, 0, 16),
	}, n)

	data, err := b.readBuffer(gradInpBuf, size)
	if err != nil {
		return nil, err
	}
	return bytesToF32(data), nil
}

// runBinary executes a generated binary shader; same forward/backward split
// as runUnary, with grad/gradOut nil on the forward path.
func (b *Backend) runBinary(name, code string, lhs, rhs, grad, gradOut []float32) ([]float32, error) {
	n := len(lhs)
	if len(rhs) != n {
		return nil, errors.Errorf("webgpu: %s: operand length mismatch: %d vs %d", name, n, len(rhs))
	}
	size := uint64(n) * 4

	lhsBuf := b.createBuffer(f32Bytes(lhs), wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc)
	defer lhsBuf.Release()
	rhsBuf := b.createBuffer(f32Bytes(rhs), wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc)
	defer rhsBuf.Release()

	params := make([]byte, 16)
	binary.LittleEndian.PutUint32(params[0:4], uint32(n))
	paramsBuf := b.createUniformBuffer(params)
	defer paramsBuf.Release()

	if grad == nil {
		out := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst,
			Size:  size,
		})
		defer out.Release()

		b.dispatch(name, code, []wgpu.BindGroupEntry{
			wgpu.BufferBindingEntry(0, lhsBuf, 0, size),
			wgpu.BufferBindingEntry(1, rhsBuf, 0, size),
			wgpu.BufferBindingEntry(2, out, 0, size),
			wgpu.BufferBindingEntry(3, paramsBuf, 0, 16),
		}, n)

		data, err := b.readBuffer(out, size)
		if err != nil {
			return nil, err
		}
		return bytesToF32(data), nil
	}

	if len(grad) != n || len(gradOut) != n {
		return nil, errors.Errorf("webgpu: %s: buffer length mismatch: inp %d, grad %d, grad_out %d",
			name, n, len(grad), len(gradOut))
	}

	gradBuf := b.createBuffer(f32Bytes(grad), wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc|wgpu.BufferUsageCopyDst)
	defer gradBuf.Release()
	gradOutBuf := b.createBuffer(f32Bytes(gradOut), wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc)
	defer gradOutBuf.Release()

	b.dispatch(name, code, []wgpu.BindGroupEntry{
		wgpu.BufferBindingEntry(0, lhsBuf, 0, size),
		wgpu.BufferBindingEntry(1, rhsBuf, 0, size),
		wgpu.BufferBindingEntry(2, gradBuf, 0, size),
		wgpu.BufferBindingEntry(3, gradOutBuf, 0, size),
		wgpu.BufferBindingEntry(4, paramsBuf, 0, 16),
	}, n)

	data, err := b.readBuffer(gradBuf, size)
	if err != nil {
		return nil, err
	}
	return bytesToF32(data), nil
}

// MaxToForward reduces chunks of chunkLen logical elements to their maxima
// on GPU. dims/strides describe the logical-to-physical mapping of inp;
// the logical element count is the product of dims.
func (b *Backend) MaxToForward(inp []float32, dims, strides []int, chunkLen int) ([]float32, error) {
	numel := 1
	for _, d := range dims {
		numel *= d
	}
	if chunkLen <= 0 || numel%chunkLen != 0 {
		return nil, errors.Errorf("webgpu: maxto: chunk length %d does not divide element count %d", chunkLen, numel)
	}
	numChunks := numel / chunkLen

	inpBuf := b.createBuffer(f32Bytes(inp), wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc)
	defer inpBuf.Release()

	// Seed the output with the order key of -inf, the reduction identity.
	keys := make([]uint32, numChunks)
	for i := range keys {
		keys[i] = orderKeyNegInf
	}
	outSize := uint64(numChunks) * 4
	outBuf := b.createBuffer(u32Bytes(keys), wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc|wgpu.BufferUsageCopyDst)
	defer outBuf.Release()

	meta := make([]uint32, 0, 2*len(dims))
	for _, d := range dims {
		meta = append(meta, uint32(d))
	}
	for _, s := range strides {
		meta = append(meta, uint32(s))
	}
	metaBuf := b.createBuffer(u32Bytes(meta), wgpu.BufferUsageStorage)
	defer metaBuf.Release()
	metaSize := uint64(len(meta)) * 4

	params := make([]byte, 16)
	binary.LittleEndian.PutUint32(params[0:4], uint32(numel))
	binary.LittleEndian.PutUint32(params[4:8], uint32(len(dims)))
	binary.LittleEndian.PutUint32(params[8:12], uint32(chunkLen))
	paramsBuf := b.createUniformBuffer(params)
	defer paramsBuf.Release()

	b.dispatch("max_to_fwd", maxToForwardShader, []wgpu.BindGroupEntry{
		wgpu.BufferBindingEntry(0, inpBuf, 0, uint64(len(inp))*4),
		wgpu.BufferBindingEntry(1, outBuf, 0, outSize),
		wgpu.BufferBindingEntry(2, metaBuf, 0, metaSize),
		wgpu.BufferBindingEntry(3, paramsBuf, 0, 16),
	}, numel)

	data, err := b.readBuffer(outBuf, outSize)
	if err != nil {
		return nil, err
	}
	out := make([]float32, numChunks)
	for i, key := range bytesToU32(data) {
		out[i] = decodeOrderKey(key)
	}
	return out, nil
}

// orderKeyNegInf is order_key(-inf): ~bitcast<u32>(-inf).
const orderKeyNegInf uint32 = 0x007FFFFF

// decodeOrderKey inverts the shader's monotonic f32-to-u32 mapping.
func decodeOrderKey(key uint32) float32 {
	if key >= 0x80000000 {
		return math.Float32frombits(key ^ 0x80000000)
	}
	return math.Float32frombits(^key)
}

func f32Bytes(s []float32) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*4)
}

func u32Bytes(s []uint32) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*4)
}

func bytesToF32(b []byte) []float32 {
	if len(b) == 0 {
		return nil
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(&b[0])), len(b)/4)
}

func bytesToU32(b []byte) []uint32 {
	if len(b) == 0 {
		return nil
	}
	return unsafe.Slice((*uint32)(unsafe.Pointer(&b[0])), len(b)/4)
}
