package logits

import (
	"errors"
	"math"
	"testing"
)

func TestCosineSimilaritySelf(t *testing.T) {
	v := []float64{0.3, -1.2, 4.5, 0.001, -7.75, 2.5, 0.125, 9.0, -0.5}
	sim, err := CosineSimilarity(v, v)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(sim-1) > 1e-9 {
		t.Fatalf("self similarity = %v, want 1 within 1e-9", sim)
	}
}

func TestCosineSimilarityOpposite(t *testing.T) {
	a := []float64{1, 2, 3, 4}
	b := []float64{-1, -2, -3, -4}
	sim, err := CosineSimilarity(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(sim+1) > 1e-9 {
		t.Fatalf("similarity = %v, want -1", sim)
	}
}

func TestCosineSimilarityOrthogonal(t *testing.T) {
	sim, err := CosineSimilarity([]float64{1, 0}, []float64{0, 1})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(sim) > 1e-12 {
		t.Fatalf("similarity = %v, want 0", sim)
	}
}

func TestCosineSimilarityErrors(t *testing.T) {
	if _, err := CosineSimilarity([]float64{1, 2}, []float64{1}); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("length mismatch: err = %v", err)
	}
	// A zero-length vector has zero norm.
	if _, err := CosineSimilarity(nil, nil); !errors.Is(err, ErrDegenerateVector) {
		t.Fatalf("empty input: err = %v", err)
	}
	if _, err := CosineSimilarity([]float64{0, 0}, []float64{1, 2}); !errors.Is(err, ErrDegenerateVector) {
		t.Fatalf("zero vector: err = %v", err)
	}
}

func TestScaleTemperature(t *testing.T) {
	buf := []float64{2, -4, 0, 8}
	if err := ScaleTemperature(buf, 2); err != nil {
		t.Fatal(err)
	}
	want := []float64{1, -2, 0, 4}
	for i := range want {
		if buf[i] != want[i] {
			t.Fatalf("buf[%d] = %v, want %v", i, buf[i], want[i])
		}
	}
}

func TestScaleTemperaturePreservesMask(t *testing.T) {
	buf := []float64{1, Masked, 3}
	if err := ScaleTemperature(buf, 0.5); err != nil {
		t.Fatal(err)
	}
	if !math.IsInf(buf[1], -1) {
		t.Fatalf("masked entry became %v", buf[1])
	}
}

func TestScaleTemperatureOverflow(t *testing.T) {
	// Entries at either end of the finite range overflow at small t.
	for _, v := range []float64{-1e308, 1e308} {
		buf := []float64{v, 0, Masked}
		if err := ScaleTemperature(buf, 1e-3); !errors.Is(err, ErrNumericOverflow) {
			t.Fatalf("entry %v: err = %v, want ErrNumericOverflow", v, err)
		}
		// A failed call leaves the buffer untouched.
		if buf[0] != v || buf[1] != 0 || !math.IsInf(buf[2], -1) {
			t.Fatalf("buffer modified on failure: %v", buf)
		}
	}
}

func TestScaleTemperatureInvalid(t *testing.T) {
	for _, tc := range []float64{0, -1, math.NaN()} {
		if err := ScaleTemperature([]float64{1}, tc); !errors.Is(err, ErrInvalidTemperature) {
			t.Fatalf("t=%v: err = %v", tc, err)
		}
	}
}

func TestSoftmaxSumsToOne(t *testing.T) {
	buf := []float64{1.5, -3.25, 0, 12.75, -0.5, 2.25, 7, -9}
	probs, err := Softmax(buf)
	if err != nil {
		t.Fatal(err)
	}
	var sum float64
	for _, p := range probs {
		if p < 0 {
			t.Fatalf("negative probability %v", p)
		}
		sum += p
	}
	if math.Abs(sum-1) > 1e-6 {
		t.Fatalf("sum = %v, want 1 within 1e-6", sum)
	}
	// Input must stay untouched.
	if buf[3] != 12.75 {
		t.Fatalf("Softmax modified its input")
	}
}

func TestSoftmaxMaskedEntriesGetZero(t *testing.T) {
	buf := []float64{1, Masked, 2, Masked}
	probs, err := Softmax(buf)
	if err != nil {
		t.Fatal(err)
	}
	if probs[1] != 0 || probs[3] != 0 {
		t.Fatalf("masked entries carry mass: %v", probs)
	}
	if math.Abs(probs[0]+probs[2]-1) > 1e-9 {
		t.Fatalf("unmasked mass = %v", probs[0]+probs[2])
	}
}

func TestSoftmaxLargeMagnitudes(t *testing.T) {
	// Without the max shift these would overflow exp.
	probs, err := Softmax([]float64{1000, 1001, 999})
	if err != nil {
		t.Fatal(err)
	}
	var sum float64
	for _, p := range probs {
		sum += p
	}
	if math.Abs(sum-1) > 1e-6 {
		t.Fatalf("sum = %v", sum)
	}
	if probs[1] <= probs[0] || probs[0] <= probs[2] {
		t.Fatalf("ordering not preserved: %v", probs)
	}
}

func TestSoftmaxAllMasked(t *testing.T) {
	if _, err := Softmax([]float64{Masked, Masked}); !errors.Is(err, ErrNumericOverflow) {
		t.Fatalf("err = %v", err)
	}
}

func TestArgmax(t *testing.T) {
	tests := []struct {
		buf  []float64
		want int
	}{
		{[]float64{1, 5, 3}, 1},
		{[]float64{7}, 0},
		{[]float64{2, 9, 9, 1}, 1},
		{[]float64{Masked, Masked, -4}, 2},
		{[]float64{-1, -1, -1}, 0},
	}
	for _, tc := range tests {
		got, err := Argmax(tc.buf)
		if err != nil {
			t.Fatal(err)
		}
		if got != tc.want {
			t.Fatalf("Argmax(%v) = %d, want %d", tc.buf, got, tc.want)
		}
	}
	if _, err := Argmax(nil); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("empty: err = %v", err)
	}
}

func TestSoftmaxPreservesArgmax(t *testing.T) {
	buf := []float64{0.25, 4.5, -2, 4.25, 1}
	before, err := Argmax(buf)
	if err != nil {
		t.Fatal(err)
	}
	probs, err := Softmax(buf)
	if err != nil {
		t.Fatal(err)
	}
	after, err := Argmax(probs)
	if err != nil {
		t.Fatal(err)
	}
	if before != after {
		t.Fatalf("argmax moved from %d to %d", before, after)
	}
}
