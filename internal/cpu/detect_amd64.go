//go:build amd64 && !goexperiment.simd

package cpu

import xcpu "golang.org/x/sys/cpu"

// Without GOEXPERIMENT=simd the archsimd vector kernels are not compiled in,
// so the best usable level is scalar even on AVX-capable silicon. The raw
// flags are still reported for diagnostics.
func probe() Features {
	return Features{
		Best:      LevelScalar,
		HasAVX2:   xcpu.X86.HasAVX2,
		HasAVX512: xcpu.X86.HasAVX512F && xcpu.X86.HasAVX512DQ,
	}
}
