//go:build amd64 && goexperiment.simd

package kernels

import (
	"simd/archsimd"

	"github.com/cyrup-ai/kodegen-simd/internal/cpu"
)

func init() {
	register("avx2", cpu.LevelAVX2, 20, Ops{
		Dot:         dotAVX2,
		SquaredNorm: squaredNormAVX2,
		Max:         maxAVX2,
		DivScalar:   divScalarAVX2,
		MulScalar:   mulScalarAVX2,
	})
	register("avx512", cpu.LevelAVX512, 30, Ops{
		Dot:         dotAVX512,
		SquaredNorm: squaredNormAVX512,
		Max:         maxAVX512,
		DivScalar:   divScalarAVX512,
		MulScalar:   mulScalarAVX512,
	})
}

// ---- AVX2: 4 float64 lanes ----

func dotAVX2(a, b []float64) float64 {
	n := len(a)
	var acc archsimd.Float64x4
	i := 0
	for ; i+4 <= n; i += 4 {
		va := archsimd.LoadFloat64x4Slice(a[i:])
		vb := archsimd.LoadFloat64x4Slice(b[i:])
		acc = va.MulAdd(vb, acc)
	}
	var tmp [4]float64
	acc.Store(&tmp)
	sum := tmp[0] + tmp[1] + tmp[2] + tmp[3]
	for ; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

func squaredNormAVX2(x []float64) float64 {
	n := len(x)
	var acc archsimd.Float64x4
	i := 0
	for ; i+4 <= n; i += 4 {
		v := archsimd.LoadFloat64x4Slice(x[i:])
		acc = v.MulAdd(v, acc)
	}
	var tmp [4]float64
	acc.Store(&tmp)
	sum := tmp[0] + tmp[1] + tmp[2] + tmp[3]
	for ; i < n; i++ {
		sum += x[i] * x[i]
	}
	return sum
}

func maxAVX2(x []float64) float64 {
	n := len(x)
	m := x[0]
	i := 0
	if n >= 4 {
		acc := archsimd.LoadFloat64x4Slice(x)
		i = 4
		for ; i+4 <= n; i += 4 {
			v := archsimd.LoadFloat64x4Slice(x[i:])
			acc = acc.Max(v)
		}
		var tmp [4]float64
		acc.Store(&tmp)
		m = tmp[0]
		for _, v := range tmp[1:] {
			if v > m {
				m = v
			}
		}
	}
	for ; i < n; i++ {
		if x[i] > m {
			m = x[i]
		}
	}
	return m
}

func divScalarAVX2(x []float64, t float64) {
	n := len(x)
	vt := archsimd.BroadcastFloat64x4(t)
	i := 0
	for ; i+4 <= n; i += 4 {
		v := archsimd.LoadFloat64x4Slice(x[i:])
		v = v.Div(vt)
		v.StoreSlice(x[i:])
	}
	for ; i < n; i++ {
		x[i] /= t
	}
}

func mulScalarAVX2(x []float64, s float64) {
	n := len(x)
	vs := archsimd.BroadcastFloat64x4(s)
	i := 0
	for ; i+4 <= n; i += 4 {
		v := archsimd.LoadFloat64x4Slice(x[i:])
		v = v.Mul(vs)
		v.StoreSlice(x[i:])
	}
	for ; i < n; i++ {
		x[i] *= s
	}
}

// ---- AVX-512: 8 float64 lanes ----

func dotAVX512(a, b []float64) float64 {
	n := len(a)
	var acc archsimd.Float64x8
	i := 0
	for ; i+8 <= n; i += 8 {
		va := archsimd.LoadFloat64x8Slice(a[i:])
		vb := archsimd.LoadFloat64x8Slice(b[i:])
		acc = va.MulAdd(vb, acc)
	}
	var tmp [8]float64
	acc.Store(&tmp)
	var sum float64
	for _, v := range tmp {
		sum += v
	}
	for ; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

func squaredNormAVX512(x []float64) float64 {
	n := len(x)
	var acc archsimd.Float64x8
	i := 0
	for ; i+8 <= n; i += 8 {
		v := archsimd.LoadFloat64x8Slice(x[i:])
		acc = v.MulAdd(v, acc)
	}
	var tmp [8]float64
	acc.Store(&tmp)
	var sum float64
	for _, v := range tmp {
		sum += v
	}
	for ; i < n; i++ {
		sum += x[i] * x[i]
	}
	return sum
}

func maxAVX512(x []float64) float64 {
	n := len(x)
	m := x[0]
	i := 0
	if n >= 8 {
		acc := archsimd.LoadFloat64x8Slice(x)
		i = 8
		for ; i+8 <= n; i += 8 {
			v := archsimd.LoadFloat64x8Slice(x[i:])
			acc = acc.Max(v)
		}
		var tmp [8]float64
		acc.Store(&tmp)
		m = tmp[0]
		for _, v := range tmp[1:] {
			if v > m {
				m = v
			}
		}
	}
	for ; i < n; i++ {
		if x[i] > m {
			m = x[i]
		}
	}
	return m
}

func divScalarAVX512(x []float64, t float64) {
	n := len(x)
	vt := archsimd.BroadcastFloat64x8(t)
	i := 0
	for ; i+8 <= n; i += 8 {
		v := archsimd.LoadFloat64x8Slice(x[i:])
		v = v.Div(vt)
		v.StoreSlice(x[i:])
	}
	for ; i < n; i++ {
		x[i] /= t
	}
}

func mulScalarAVX512(x []float64, s float64) {
	n := len(x)
	vs := archsimd.BroadcastFloat64x8(s)
	i := 0
	for ; i+8 <= n; i += 8 {
		v := archsimd.LoadFloat64x8Slice(x[i:])
		v = v.Mul(vs)
		v.StoreSlice(x[i:])
	}
	for ; i < n; i++ {
		x[i] *= s
	}
}
