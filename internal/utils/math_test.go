package utils

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNextPowerOfTwo(t *testing.T) {
	for _, tc := range []struct{ in, out int }{
		{0, 1},
		{1, 1},
		{2, 2},
		{3, 4},
		{4, 4},
		{5, 8},
		{1 << 16, 1 << 16},
		{(1 << 16) + 1, 1 << 17},
	} {
		require.Equal(t, tc.out, NextPowerOfTwo(tc.in), "in=%d", tc.in)
	}
}

func TestLog2Ceil(t *testing.T) {
	for _, tc := range []struct{ in, out int }{
		{1, 0},
		{2, 1},
		{3, 2},
		{4, 2},
		{5, 3},
		{1 << 10, 10},
	} {
		require.Equal(t, tc.out, Log2Ceil(tc.in), "in=%d", tc.in)
	}
}

func TestParallelizeCoversEveryIndexOnce(t *testing.T) {
	for _, nbTasks := range []int{1, 2, 3, 7, 64} {
		const n = 1000
		counts := make([]int32, n)
		Parallelize(n, func(start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&counts[i], 1)
			}
		}, nbTasks)
		for i, c := range counts {
			require.Equal(t, int32(1), c, "index %d with nbTasks %d", i, nbTasks)
		}
	}
}

func TestParallelizeZeroIterations(t *testing.T) {
	called := false
	Parallelize(0, func(start, end int) { called = true })
	require.False(t, called)
}
