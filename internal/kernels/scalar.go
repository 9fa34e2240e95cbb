package kernels

import "math"

// scalarOps returns the portable reference implementations. Vectorized
// variants must agree with these within 1e-5 relative error for all finite
// inputs.
func scalarOps() Ops {
	return Ops{
		Dot:           dotScalar,
		SquaredNorm:   squaredNormScalar,
		Max:           maxScalar,
		DivScalar:     divScalarScalar,
		MulScalar:     mulScalarScalar,
		ExpSumShifted: expSumShiftedScalar,
	}
}

func dotScalar(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func squaredNormScalar(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return sum
}

func maxScalar(x []float64) float64 {
	m := x[0]
	for _, v := range x[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func divScalarScalar(x []float64, t float64) {
	for i := range x {
		x[i] /= t
	}
}

func mulScalarScalar(x []float64, s float64) {
	for i := range x {
		x[i] *= s
	}
}

func expSumShiftedScalar(x []float64, shift float64) float64 {
	var sum float64
	for i, v := range x {
		e := math.Exp(v - shift)
		x[i] = e
		sum += e
	}
	return sum
}
