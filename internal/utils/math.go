package utils

import (
	"math/bits"

	"golang.org/x/exp/constraints"
)

// NextPowerOfTwo returns the smallest power of two ≥ n, and 1 for n == 0.
func NextPowerOfTwo[T constraints.Integer](n T) T {
	if n <= 1 {
		return 1
	}
	return T(1) << bits.Len64(uint64(n-1))
}

// Log2Ceil returns ceil(log2(n)); 0 for n <= 1.
func Log2Ceil[T constraints.Integer](n T) int {
	if n <= 1 {
		return 0
	}
	return bits.Len64(uint64(n - 1))
}
