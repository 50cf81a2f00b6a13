//go:build windows

// Package webgpu runs the kern kernels on GPU through WebGPU compute shaders.
// Uses go-webgpu (github.com/go-webgpu/webgpu) for zero-CGO WebGPU bindings.
package webgpu

import "fmt"

// workgroupSize is the number of invocations per workgroup. It is the GPU
// analogue of device.Config.BlockSize and is baked into every shader.
const workgroupSize = 256

// WGSL sources are generated from scalar expression snippets rather than
// written out per op: each elementwise op contributes its forward expression
// and derivative expression(s) in terms of `x` (and `y` for binary ops) and
// the uniform `params.alpha`, and the templates below supply the kernel
// boilerplate. This mirrors the CPU side, where the same pairing comes from
// the UnaryOp/BinaryOp interfaces.

const unaryForwardTemplate = `
@group(0) @binding(0) var<storage, read> inp: array<f32>;
@group(0) @binding(1) var<storage, read_write> out: array<f32>;

struct Params {
    size: u32,
    alpha: f32,
}
@group(0) @binding(2) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let i = global_id.x;
    if (i < params.size) {
        let x = inp[i];
        out[i] = %s;
    }
}
`

const unaryBackwardTemplate = `
@group(0) @binding(0) var<storage, read> inp: array<f32>;
@group(0) @binding(1) var<storage, read_write> grad_inp: array<f32>;
@group(0) @binding(2) var<storage, read> grad_out: array<f32>;

struct Params {
    size: u32,
    alpha: f32,
}
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let i = global_id.x;
    if (i < params.size) {
        let x = inp[i];
        grad_inp[i] = grad_inp[i] + grad_out[i] * (%s);
    }
}
`

const binaryForwardTemplate = `
@group(0) @binding(0) var<storage, read> lhs: array<f32>;
@group(0) @binding(1) var<storage, read> rhs: array<f32>;
@group(0) @binding(2) var<storage, read_write> out: array<f32>;

struct Params {
    size: u32,
}
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let i = global_id.x;
    if (i < params.size) {
        let x = lhs[i];
        let y = rhs[i];
        out[i] = %s;
    }
}
`

const binaryBackwardTemplate = `
@group(0) @binding(0) var<storage, read> lhs: array<f32>;
@group(0) @binding(1) var<storage, read> rhs: array<f32>;
@group(0) @binding(2) var<storage, read_write> grad: array<f32>;
@group(0) @binding(3) var<storage, read> grad_out: array<f32>;

struct Params {
    size: u32,
}
@group(0) @binding(4) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let i = global_id.x;
    if (i < params.size) {
        let x = lhs[i];
        let y = rhs[i];
        grad[i] = grad[i] + grad_out[i] * (%s);
    }
}
`

func unaryForwardShader(expr string) string   { return fmt.Sprintf(unaryForwardTemplate, expr) }
func unaryBackwardShader(expr string) string  { return fmt.Sprintf(unaryBackwardTemplate, expr) }
func binaryForwardShader(expr string) string  { return fmt.Sprintf(binaryForwardTemplate, expr) }
func binaryBackwardShader(expr string) string { return fmt.Sprintf(binaryBackwardTemplate, expr) }

// Op expressions. WGSL select(a, b, cond) yields b when cond holds.
const (
	leakyReluFwdExpr = `select(x, x * params.alpha, x < 0.0)`
	leakyReluBwdExpr = `select(1.0, params.alpha, x < 0.0)`

	preluFwdExpr    = `select(x, x * y, x < 0.0)`
	preluBwdLhsExpr = `select(1.0, y, x < 0.0)`
	preluBwdRhsExpr = `select(0.0, x, x < 0.0)`
)

// fillShader writes params.value into every slot of out.
const fillShader = `
@group(0) @binding(0) var<storage, read_write> out: array<f32>;

struct Params {
    size: u32,
    value: f32,
}
@group(0) @binding(1) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let i = global_id.x;
    if (i < params.size) {
        out[i] = params.value;
    }
}
`

// maxToForwardShader is the chunk max reduction. WGSL offers integer atomics
// only, so chunk maxima are combined through atomicMax on a monotonic u32
// mapping of f32: non-negative floats get their sign bit set, negative floats
// are bitwise inverted. The host seeds the output with the key of -inf and
// decodes keys back to floats after readback.
//
// Out-of-range invocations cannot early-return (workgroupBarrier requires
// uniform control flow), so they deposit the reduction identity instead and
// are excluded from publishing.
const maxToForwardShader = `
@group(0) @binding(0) var<storage, read> inp: array<f32>;
@group(0) @binding(1) var<storage, read_write> out: array<atomic<u32>>;
@group(0) @binding(2) var<storage, read> meta: array<u32>; // dims, then strides

struct Params {
    size: u32,
    num_dims: u32,
    chunk_len: u32,
}
@group(0) @binding(3) var<uniform> params: Params;

var<workgroup> shmem: array<f32, 256>;

const NEG_INF: f32 = -3.402823466e38;

fn to_physical(logical: u32) -> u32 {
    var l = logical;
    var phys = 0u;
    var d = params.num_dims;
    while (d > 0u) {
        d = d - 1u;
        let dim = meta[d];
        let stride = meta[params.num_dims + d];
        phys = phys + (l % dim) * stride;
        l = l / dim;
    }
    return phys;
}

fn order_key(v: f32) -> u32 {
    let bits = bitcast<u32>(v);
    return select(bits | 0x80000000u, ~bits, (bits >> 31u) == 1u);
}

fn next_pow2(n: u32) -> u32 {
    var p = 1u;
    while (p < n) {
        p = p << 1u;
    }
    return p;
}

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>,
        @builtin(local_invocation_id) local_id: vec3<u32>,
        @builtin(workgroup_id) group_id: vec3<u32>) {
    let i = global_id.x;
    let lane = local_id.x;
    let valid = i < params.size;

    var v = NEG_INF;
    if (valid) {
        v = inp[to_physical(i)];
    }
    shmem[lane] = v;

    let block_start = group_id.x * 256u;
    let chunk = i / params.chunk_len;
    let begin = max(chunk * params.chunk_len, block_start) - block_start;
    let end = min((chunk + 1u) * params.chunk_len - block_start, 256u);
    let r = lane - begin;

    var stride = next_pow2(min(params.chunk_len, 256u)) >> 1u;
    while (stride > 0u) {
        workgroupBarrier();
        if (r < stride && lane + stride < end) {
            shmem[lane] = max(shmem[lane], shmem[lane + stride]);
        }
        stride = stride >> 1u;
    }

    if (valid && r == 0u) {
        atomicMax(&out[chunk], order_key(shmem[lane]));
    }
}
`
