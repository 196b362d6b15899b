package hash

import "github.com/klauspost/cpuid/v2"

// HashVectorized computes out[i] = Hash(n[i], s[i], max) for every lane.
// The solver feeds it HashVectorizedParallelism() lanes at a time.
var HashVectorized func(out []uint32, n []uint32, s []uint32, max uint32) = hashNotVectorized

var hashVectorizedParallelism int = 1

func init() {
	HashVectorized, hashVectorizedParallelism = selectKernel(
		cpuid.CPU.Supports(cpuid.AVX512F, cpuid.AVX512DQ),
		cpuid.CPU.Supports(cpuid.AVX2),
	)
}

// selectKernel picks the lockstep kernel and its lane count for the detected
// vector width, or the one lane loop on narrow cpus.
func selectKernel(avx512, avx2 bool) (func(out []uint32, n []uint32, s []uint32, max uint32), int) {
	switch {
	case avx512:
		return hashLockstep, 2 * lockstepLanes
	case avx2:
		return hashLockstep, lockstepLanes
	default:
		return hashNotVectorized, 1
	}
}

// HashVectorizedParallelism reports the recommended number of hashes to compute
// at once on this CPU. Never returns 0.
func HashVectorizedParallelism() int {
	return hashVectorizedParallelism
}

func hashNotVectorized(out []uint32, n []uint32, s []uint32, max uint32) {
	for i := range out {
		out[i] = Hash(n[i], s[i], max)
	}
}

// lockstepLanes is the number of 32 bit lanes of one 256 bit register
const lockstepLanes = 8

// hashLockstep runs every stage of Hash over a block of lanes before the next
// stage, so the block stays in one register file instead of looping per lane.
func hashLockstep(out []uint32, n []uint32, s []uint32, max uint32) {
	var m [lockstepLanes]uint32
	i := 0
	for ; i+lockstepLanes <= len(out); i += lockstepLanes {
		nn := (*[lockstepLanes]uint32)(n[i : i+lockstepLanes])
		ss := (*[lockstepLanes]uint32)(s[i : i+lockstepLanes])
		oo := (*[lockstepLanes]uint32)(out[i : i+lockstepLanes])
		for l := range m {
			m[l] = nn[l] - ss[l]
		}
		for l := range m {
			m[l] ^= m[l] << 2
		}
		for l := range m {
			m[l] ^= m[l] << 3
		}
		for l := range m {
			m[l] ^= m[l] >> 5
		}
		for l := range m {
			m[l] ^= m[l] >> 7
		}
		for l := range m {
			m[l] ^= m[l] << 11
		}
		for l := range m {
			m[l] ^= m[l] << 13
		}
		for l := range m {
			m[l] ^= m[l] >> 17
		}
		for l := range m {
			m[l] ^= m[l] << 19
		}
		for l := range m {
			oo[l] = uint32((uint64(m[l]+ss[l]) * uint64(max)) >> 32)
		}
	}
	for ; i < len(out); i++ {
		out[i] = Hash(n[i], s[i], max)
	}
}
