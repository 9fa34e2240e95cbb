// Package logits implements the numeric core of a token-generation pipeline:
// similarity and distribution kernels, top-k/top-p filtering, and the fixed
// per-step processing pipeline that turns a raw logits buffer into a
// probability distribution.
//
// All operations dispatch through the process-wide kernel table, which is
// resolved once from the detected CPU capabilities. Buffers keep their
// length through every stage; filtering masks entries to -Inf instead of
// removing them.
package logits

import (
	"math"

	"github.com/cyrup-ai/kodegen-simd/internal/kernels"
)

// Masked is the sentinel value for entries excluded by a filter. A masked
// entry receives probability 0 from Softmax and is never selected.
var Masked = math.Inf(-1)

// CosineSimilarity returns the cosine of the angle between a and b, clamped
// to [-1, 1]. Returns ErrLengthMismatch when the lengths differ and
// ErrDegenerateVector when either vector has zero norm; a zero-length
// vector is degenerate.
func CosineSimilarity(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrLengthMismatch
	}
	ops := kernels.Active()
	na := ops.SquaredNorm(a)
	nb := ops.SquaredNorm(b)
	if na == 0 || nb == 0 {
		return 0, ErrDegenerateVector
	}
	sim := ops.Dot(a, b) / (math.Sqrt(na) * math.Sqrt(nb))
	if math.IsNaN(sim) {
		return 0, ErrNumericOverflow
	}
	// Rounding can push the ratio just past the boundary.
	if sim > 1 {
		sim = 1
	} else if sim < -1 {
		sim = -1
	}
	return sim, nil
}

// ScaleTemperature divides every entry of buf by t in place. t must be
// positive. Masked entries stay masked; any other entry whose quotient
// leaves the finite range fails with ErrNumericOverflow, before buf is
// modified.
func ScaleTemperature(buf []float64, t float64) error {
	if t <= 0 || math.IsNaN(t) {
		return ErrInvalidTemperature
	}
	for _, v := range buf {
		if math.IsInf(v, -1) {
			continue
		}
		if math.IsNaN(v) || math.IsInf(v/t, 0) {
			return ErrNumericOverflow
		}
	}
	kernels.Active().DivScalar(buf, t)
	return nil
}

// Softmax returns the probability distribution for buf without modifying it.
// Masked entries receive probability 0 and are excluded from the
// normalization sum; the remaining entries are non-negative and sum to 1.
func Softmax(buf []float64) ([]float64, error) {
	out := make([]float64, len(buf))
	copy(out, buf)
	if err := softmaxInPlace(out); err != nil {
		return nil, err
	}
	return out, nil
}

// softmaxInPlace computes the numerically stable softmax over the unmasked
// entries of x, writing probabilities back into x.
func softmaxInPlace(x []float64) error {
	if len(x) == 0 {
		return ErrEmptyInput
	}
	ops := kernels.Active()
	shift := ops.Max(x)
	if math.IsInf(shift, -1) {
		// Every entry is masked; there is no distribution to form.
		return ErrNumericOverflow
	}
	if math.IsNaN(shift) || math.IsInf(shift, 1) {
		return ErrNumericOverflow
	}
	sum := ops.ExpSumShifted(x, shift)
	if sum <= 0 || math.IsNaN(sum) || math.IsInf(sum, 1) {
		return ErrNumericOverflow
	}
	ops.MulScalar(x, 1/sum)
	return nil
}

// Argmax returns the index of the largest entry in buf. Ties resolve to the
// lowest index. Returns ErrEmptyInput on a zero-length buffer.
func Argmax(buf []float64) (int, error) {
	if len(buf) == 0 {
		return 0, ErrEmptyInput
	}
	m := kernels.Active().Max(buf)
	for i, v := range buf {
		if v == m {
			return i, nil
		}
	}
	// NaN entries never compare equal to the max; fall back to a direct scan.
	best := 0
	for i := 1; i < len(buf); i++ {
		if buf[i] > buf[best] {
			best = i
		}
	}
	return best, nil
}
