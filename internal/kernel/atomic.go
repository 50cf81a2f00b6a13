package kernel

import (
	"math"
	"sync/atomic"
	"unsafe"
)

// AtomicMax atomically raises *addr to max(*addr, val) and returns the
// previous value. Safe under arbitrary interleaving of concurrent callers
// targeting the same location, including negative values and signed zero.
//
// Go has no native floating-point atomics, so this is a compare-and-swap
// loop on the value's bit pattern; the comparison itself is done in float
// space, which sidesteps the sign-bit ordering problem an integer atomic-max
// on raw float bits would have.
func AtomicMax[T Float](addr *T, val T) T {
	if unsafe.Sizeof(val) == 4 {
		old := atomicMaxFloat32((*uint32)(unsafe.Pointer(addr)), float32(val))
		return T(old)
	}
	old := atomicMaxFloat64((*uint64)(unsafe.Pointer(addr)), float64(val))
	return T(old)
}

// AtomicAdd atomically performs *addr += delta and returns the previous
// value. Required wherever gradient slots can be hit by units from different
// blocks (broadcast inputs, repeated backward launches).
func AtomicAdd[T Float](addr *T, delta T) T {
	if unsafe.Sizeof(delta) == 4 {
		old := atomicAddFloat32((*uint32)(unsafe.Pointer(addr)), float32(delta))
		return T(old)
	}
	old := atomicAddFloat64((*uint64)(unsafe.Pointer(addr)), float64(delta))
	return T(old)
}

func atomicMaxFloat32(bits *uint32, val float32) float32 {
	for {
		oldBits := atomic.LoadUint32(bits)
		old := math.Float32frombits(oldBits)
		if old >= val {
			return old
		}
		if atomic.CompareAndSwapUint32(bits, oldBits, math.Float32bits(val)) {
			return old
		}
	}
}

func atomicMaxFloat64(bits *uint64, val float64) float64 {
	for {
		oldBits := atomic.LoadUint64(bits)
		old := math.Float64frombits(oldBits)
		if old >= val {
			return old
		}
		if atomic.CompareAndSwapUint64(bits, oldBits, math.Float64bits(val)) {
			return old
		}
	}
}

func atomicAddFloat32(bits *uint32, delta float32) float32 {
	for {
		oldBits := atomic.LoadUint32(bits)
		old := math.Float32frombits(oldBits)
		if atomic.CompareAndSwapUint32(bits, oldBits, math.Float32bits(old+delta)) {
			return old
		}
	}
}

func atomicAddFloat64(bits *uint64, delta float64) float64 {
	for {
		oldBits := atomic.LoadUint64(bits)
		old := math.Float64frombits(oldBits)
		if atomic.CompareAndSwapUint64(bits, oldBits, math.Float64bits(old+delta)) {
			return old
		}
	}
}
