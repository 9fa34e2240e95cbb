package logits

import "math"

// Process runs the fixed pipeline over buf in place: penalties, temperature
// scaling, constraint masking, top-k, top-p, then a softmax over the
// surviving entries. On return buf holds the final probability distribution;
// masked entries hold probability 0 and the sum deviates from 1 by at most
// cfg.Epsilon. Process does not choose a token; sampling and history updates
// stay with the caller.
//
// A nil cfg uses DefaultConfig. When a stage fails, the stages already run
// are not rolled back; the buffer must be discarded.
func Process(buf []float64, ctx *Context, cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if len(buf) != ctx.vocabSize {
		return ErrLengthMismatch
	}
	if len(buf) == 0 {
		return ErrEmptyInput
	}

	applyPenalties(buf, ctx, cfg)

	if err := ScaleTemperature(buf, ctx.temperature); err != nil {
		return err
	}

	if cfg.clampEnabled() {
		clamp(buf, cfg.ClampMin, cfg.ClampMax)
	}

	if ctx.constraint != nil {
		ctx.constraint.MaskLogits(buf)
	}

	if ctx.hasTopK {
		if err := TopK(buf, ctx.topK); err != nil {
			return err
		}
	}
	if ctx.hasTopP {
		if err := TopP(buf, ctx.topP); err != nil {
			return err
		}
	}

	if err := softmaxInPlace(buf); err != nil {
		return err
	}
	if cfg.Epsilon > 0 {
		var sum float64
		for _, p := range buf {
			sum += p
		}
		if math.Abs(sum-1) > cfg.Epsilon {
			return ErrNumericOverflow
		}
	}
	return nil
}

// applyPenalties subtracts the configured weights from tokens present in the
// stream history. History ids outside the vocabulary are skipped.
func applyPenalties(buf []float64, ctx *Context, cfg *Config) {
	if ctx.counts == nil {
		return
	}
	repetition := cfg.RepetitionEnabled && ctx.repetitionPenalty != 0
	frequency := cfg.FrequencyEnabled && ctx.frequencyPenalty != 0
	presence := cfg.PresenceEnabled && ctx.presencePenalty != 0
	if !repetition && !frequency && !presence {
		return
	}
	for id, n := range ctx.counts {
		if n == 0 {
			continue
		}
		if repetition {
			buf[id] -= ctx.repetitionPenalty
		}
		if frequency {
			buf[id] -= ctx.frequencyPenalty * float64(n)
		}
		if presence {
			buf[id] -= ctx.presencePenalty
		}
	}
}

// clamp bounds unmasked entries to [lo, hi]. Masked entries stay masked.
func clamp(buf []float64, lo, hi float64) {
	for i, v := range buf {
		if math.IsInf(v, -1) {
			continue
		}
		if v < lo {
			buf[i] = lo
		} else if v > hi {
			buf[i] = hi
		}
	}
}
