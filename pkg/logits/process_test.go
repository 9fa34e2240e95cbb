package logits

import (
	"errors"
	"math"
	"testing"

	"github.com/cyrup-ai/kodegen-simd/pkg/constrain"
)

func TestProcessProducesDistribution(t *testing.T) {
	ctx := NewContext(6, WithTemperature(0.7), WithTopK(4), WithTopP(0.95))
	buf := []float64{1.5, -2, 0.25, 3, 0.5, -1}
	if err := Process(buf, ctx, nil); err != nil {
		t.Fatal(err)
	}
	var sum float64
	for _, p := range buf {
		if p < 0 {
			t.Fatalf("negative probability %v", p)
		}
		sum += p
	}
	if math.Abs(sum-1) > 1e-6 {
		t.Fatalf("sum = %v", sum)
	}
}

func TestProcessSumWithinEpsilon(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Epsilon = 1e-12
	ctx := NewContext(4)
	buf := []float64{1, 2, 3, 4}
	if err := Process(buf, ctx, cfg); err != nil {
		t.Fatal(err)
	}
	var sum float64
	for _, p := range buf {
		sum += p
	}
	if math.Abs(sum-1) > cfg.Epsilon {
		t.Fatalf("sum = %v, deviation above %v", sum, cfg.Epsilon)
	}
}

func TestProcessLengthMismatch(t *testing.T) {
	ctx := NewContext(4)
	if err := Process(make([]float64, 3), ctx, nil); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("err = %v", err)
	}
}

func TestProcessEmpty(t *testing.T) {
	ctx := NewContext(0)
	if err := Process(nil, ctx, nil); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("err = %v", err)
	}
}

func TestProcessInvalidTemperature(t *testing.T) {
	ctx := NewContext(2, WithTemperature(-1))
	if err := Process([]float64{1, 2}, ctx, nil); !errors.Is(err, ErrInvalidTemperature) {
		t.Fatalf("err = %v", err)
	}
}

// With neutral settings the pipeline reduces to a plain softmax, so the
// argmax of the output matches the argmax of the input.
func TestProcessNeutralSettings(t *testing.T) {
	ctx := NewContext(5, WithTemperature(1), WithTopK(5), WithTopP(1))
	buf := []float64{0.5, 2.5, -1, 2.25, 0}
	want, err := Softmax(buf)
	if err != nil {
		t.Fatal(err)
	}
	if err := Process(buf, ctx, nil); err != nil {
		t.Fatal(err)
	}
	for i := range want {
		if math.Abs(buf[i]-want[i]) > 1e-12 {
			t.Fatalf("entry %d: %v vs plain softmax %v", i, buf[i], want[i])
		}
	}
}

func TestProcessRepetitionPenalty(t *testing.T) {
	ctx := NewContext(3, WithRepetitionPenalty(100))
	ctx.Observe(0)
	buf := []float64{5, 4, 0}
	if err := Process(buf, ctx, nil); err != nil {
		t.Fatal(err)
	}
	// Token 0 was the favorite but carries the penalty now.
	best, _ := Argmax(buf)
	if best != 1 {
		t.Fatalf("argmax = %d, want the unpenalized runner-up", best)
	}
}

func TestProcessFrequencyPenaltyScalesWithCount(t *testing.T) {
	ctx := NewContext(3, WithFrequencyPenalty(1))
	ctx.Observe(0)
	ctx.Observe(0)
	ctx.Observe(0)
	ctx.Observe(1)
	buf := []float64{0, 0, 0}
	if err := Process(buf, ctx, nil); err != nil {
		t.Fatal(err)
	}
	// Penalties of 3, 1 and 0 order the probabilities 2 > 1 > 0.
	if !(buf[2] > buf[1] && buf[1] > buf[0]) {
		t.Fatalf("probs = %v, want strictly increasing with fewer repeats", buf)
	}
}

func TestProcessPenaltyGates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RepetitionEnabled = false
	ctx := NewContext(2, WithRepetitionPenalty(100))
	ctx.Observe(0)
	buf := []float64{5, 4}
	if err := Process(buf, ctx, cfg); err != nil {
		t.Fatal(err)
	}
	best, _ := Argmax(buf)
	if best != 0 {
		t.Fatalf("disabled penalty still applied: %v", buf)
	}
}

func TestProcessClamp(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ClampMin = -2
	cfg.ClampMax = 2
	ctx := NewContext(3)
	buf := []float64{50, -50, 0}
	if err := Process(buf, ctx, cfg); err != nil {
		t.Fatal(err)
	}
	// Clamping to [-2, 2] bounds the spread: softmax(2, -2, 0).
	want, err := Softmax([]float64{2, -2, 0})
	if err != nil {
		t.Fatal(err)
	}
	for i := range want {
		if math.Abs(buf[i]-want[i]) > 1e-12 {
			t.Fatalf("entry %d: %v, want %v", i, buf[i], want[i])
		}
	}
}

func TestProcessWithConstraint(t *testing.T) {
	// Vocabulary: "[", "]", "true", "x". At the start of an array-of-strings
	// document only "[" is grammatical.
	vocab := constrain.VocabTokenizer{"[", "]", "true", "x"}
	con := constrain.ArrayOfStrings(vocab)
	ctx := NewContext(4, WithConstraint(con))
	buf := []float64{0, 3, 5, 1}
	if err := Process(buf, ctx, nil); err != nil {
		t.Fatal(err)
	}
	if buf[0] != 1 {
		t.Fatalf("probs = %v, want all mass on the opening bracket", buf)
	}
	for i := 1; i < len(buf); i++ {
		if buf[i] != 0 {
			t.Fatalf("ungrammatical token %d has mass %v", i, buf[i])
		}
	}
}

func TestProcessAllMaskedByConstraint(t *testing.T) {
	// No token in the vocabulary can open the document.
	vocab := constrain.VocabTokenizer{"]", "}", ","}
	con := constrain.ArrayOfStrings(vocab)
	ctx := NewContext(3, WithConstraint(con))
	buf := []float64{1, 2, 3}
	if err := Process(buf, ctx, nil); !errors.Is(err, ErrNumericOverflow) {
		t.Fatalf("err = %v", err)
	}
}

func TestContextObserveAndReset(t *testing.T) {
	ctx := NewContext(3)
	ctx.Observe(1)
	ctx.Observe(1)
	ctx.Observe(7) // out of range, history only
	if got := len(ctx.History()); got != 3 {
		t.Fatalf("history length = %d", got)
	}
	ctx.Reset()
	if len(ctx.History()) != 0 {
		t.Fatalf("history survived reset")
	}
	buf := []float64{1, 1, 1}
	c2 := NewContext(3, WithRepetitionPenalty(5))
	c2.Observe(0)
	c2.Reset()
	if err := Process(buf, c2, nil); err != nil {
		t.Fatal(err)
	}
	// After the reset no penalty applies; the distribution stays uniform.
	for _, p := range buf {
		if math.Abs(p-1.0/3) > 1e-9 {
			t.Fatalf("probs = %v, want uniform", buf)
		}
	}
}
