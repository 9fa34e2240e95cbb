//go:build amd64 && goexperiment.simd

package cpu

import (
	"simd/archsimd"

	xcpu "golang.org/x/sys/cpu"
)

func probe() Features {
	f := Features{
		HasAVX2:   xcpu.X86.HasAVX2,
		HasAVX512: xcpu.X86.HasAVX512F && xcpu.X86.HasAVX512DQ,
	}
	// Kernel eligibility follows archsimd, which is what the vector
	// variants are written against.
	switch {
	case archsimd.X86.AVX512():
		f.Best = LevelAVX512
	case archsimd.X86.AVX2():
		f.Best = LevelAVX2
	default:
		f.Best = LevelScalar
	}
	return f
}
