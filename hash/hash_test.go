package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func BenchmarkHash(b *testing.B) {
	n := uint32(0)
	s := uint32(0)
	for i := 0; i < b.N; i++ {
		n = Hash(n, s, 1<<20)
		s++
	}
}

func TestHashRange(t *testing.T) {
	for _, max := range []uint32{1, 2, 3, 100, 4096, 1 << 31} {
		for n := uint32(0); n < 1000; n++ {
			out := Hash(n*2654435761, n, max)
			assert.Less(t, out, max, "Hash(%d, %d, %d)", n*2654435761, n, max)
		}
	}
	assert.Equal(t, uint32(0), Hash(12345, 678, 0))
}

func TestHashSaltChangesOutput(t *testing.T) {
	var differ int
	for s := uint32(0); s < 64; s++ {
		if Hash(42, s, 1<<16) != Hash(42, s+1, 1<<16) {
			differ++
		}
	}
	assert.Greater(t, differ, 60)
}

func TestHashVectorized(t *testing.T) {
	for _, size := range []int{1, 4, 8, 16, 17, 31, 64} {
		n := make([]uint32, size)
		s := make([]uint32, size)
		out := make([]uint32, size)
		for i := 0; i < size; i++ {
			n[i] = uint32(i*123 + 456)
			s[i] = uint32(i*789 + 101112)
		}
		for _, fn := range []func(out, n, s []uint32, max uint32){HashVectorized, hashLockstep, hashNotVectorized} {
			fn(out, n, s, 1000000)
			for i := range out {
				assert.Equal(t, Hash(n[i], s[i], 1000000), out[i], "size %d lane %d", size, i)
			}
		}
	}
	assert.GreaterOrEqual(t, HashVectorizedParallelism(), 1)
}

func TestSelectKernel(t *testing.T) {
	_, width := selectKernel(false, false)
	assert.Equal(t, 1, width)
	_, width = selectKernel(false, true)
	assert.Equal(t, 8, width)
	_, width = selectKernel(true, true)
	assert.Equal(t, 16, width)

	n := make([]uint32, 37)
	s := make([]uint32, 37)
	for i := range n {
		n[i] = uint32(i) * 2654435761
		s[i] = uint32(i) ^ 0xdeadbeef
	}
	want := make([]uint32, len(n))
	hashNotVectorized(want, n, s, 12345)
	for _, flags := range [][2]bool{{false, false}, {false, true}, {true, true}} {
		fn, _ := selectKernel(flags[0], flags[1])
		got := make([]uint32, len(n))
		fn(got, n, s, 12345)
		assert.Equal(t, want, got, "avx512=%v avx2=%v", flags[0], flags[1])
	}
}
