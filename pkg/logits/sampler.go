package logits

import (
	"math"
	"math/rand"
)

// Sampler draws token ids from a processed probability distribution. It is
// the caller-side companion to Process: the pipeline produces the
// distribution, the sampler picks from it.
type Sampler struct {
	rng    *rand.Rand
	greedy bool
}

// NewSampler returns a sampler seeded for reproducible draws. A temperature
// of zero or below selects greedy decoding (always the argmax).
func NewSampler(seed int64, temperature float64) *Sampler {
	return &Sampler{
		rng:    rand.New(rand.NewSource(seed)),
		greedy: temperature <= 0,
	}
}

// Sample draws one index from probs. probs must already be a distribution
// (the output of Process or Softmax); masked entries hold 0 and are never
// selected.
func (s *Sampler) Sample(probs []float64) (int, error) {
	if len(probs) == 0 {
		return 0, ErrEmptyInput
	}
	if s.greedy {
		return Argmax(probs)
	}
	r := s.rng.Float64()
	var cum float64
	last := 0
	for i, p := range probs {
		if p <= 0 || math.IsNaN(p) {
			continue
		}
		cum += p
		last = i
		if r <= cum {
			return i, nil
		}
	}
	if cum == 0 {
		return 0, ErrNumericOverflow
	}
	// Rounding left a sliver below 1; fall back to the last live entry.
	return last, nil
}
