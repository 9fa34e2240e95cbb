package logits

import (
	"github.com/google/uuid"

	"github.com/cyrup-ai/kodegen-simd/pkg/constrain"
)

// Config is the immutable per-run configuration for Process. The zero value
// is not useful; start from DefaultConfig.
type Config struct {
	// Epsilon bounds the tolerated deviation of the output distribution
	// sum from 1. Zero disables the check.
	Epsilon float64

	// RepetitionEnabled, FrequencyEnabled and PresenceEnabled gate the
	// individual penalty stages.
	RepetitionEnabled bool
	FrequencyEnabled  bool
	PresenceEnabled   bool

	// ClampMin and ClampMax bound unmasked logits after temperature
	// scaling when ClampMin < ClampMax. Both zero disables clamping.
	ClampMin float64
	ClampMax float64
}

// DefaultConfig returns the standard pipeline configuration: all penalty
// stages enabled, no clamping.
func DefaultConfig() *Config {
	return &Config{
		Epsilon:           1e-6,
		RepetitionEnabled: true,
		FrequencyEnabled:  true,
		PresenceEnabled:   true,
	}
}

func (c *Config) clampEnabled() bool {
	return c.ClampMin < c.ClampMax
}

// Context is the per-generation-stream state consumed by Process. It is
// owned by exactly one stream and holds no internal synchronization;
// concurrent streams use independent contexts.
type Context struct {
	id        string
	vocabSize int

	temperature float64
	topK        int
	hasTopK     bool
	topP        float64
	hasTopP     bool

	repetitionPenalty float64
	frequencyPenalty  float64
	presencePenalty   float64

	constraint *constrain.Constraint

	history []int32
	counts  []int32
}

// Option configures a Context at construction time.
type Option func(*Context)

// WithTemperature sets the sampling temperature. Values <= 0 are rejected by
// Process with ErrInvalidTemperature.
func WithTemperature(t float64) Option {
	return func(c *Context) { c.temperature = t }
}

// WithTopK enables top-k filtering.
func WithTopK(k int) Option {
	return func(c *Context) { c.topK = k; c.hasTopK = true }
}

// WithTopP enables nucleus filtering.
func WithTopP(p float64) Option {
	return func(c *Context) { c.topP = p; c.hasTopP = true }
}

// WithRepetitionPenalty sets the weight subtracted from every token that
// appears in the history.
func WithRepetitionPenalty(w float64) Option {
	return func(c *Context) { c.repetitionPenalty = w }
}

// WithFrequencyPenalty sets the weight subtracted per occurrence in the
// history.
func WithFrequencyPenalty(w float64) Option {
	return func(c *Context) { c.frequencyPenalty = w }
}

// WithPresencePenalty sets the weight subtracted once from every token
// present in the history.
func WithPresencePenalty(w float64) Option {
	return func(c *Context) { c.presencePenalty = w }
}

// WithConstraint attaches a structured-generation constraint. The context
// takes ownership; the constraint must not be shared with another stream.
func WithConstraint(con *constrain.Constraint) Option {
	return func(c *Context) { c.constraint = con }
}

// NewContext creates the state for one generation stream over a vocabulary
// of the given size.
func NewContext(vocabSize int, opts ...Option) *Context {
	c := &Context{
		id:          uuid.NewString(),
		vocabSize:   vocabSize,
		temperature: 1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ID returns the stream identifier.
func (c *Context) ID() string { return c.id }

// VocabSize returns the expected logits buffer length.
func (c *Context) VocabSize() int { return c.vocabSize }

// Constraint returns the attached constraint, or nil.
func (c *Context) Constraint() *constrain.Constraint { return c.constraint }

// History returns the emitted token ids in order. The returned slice is the
// context's own storage; callers must not modify it.
func (c *Context) History() []int32 { return c.history }

// Observe records an emitted token in the history and occurrence counts.
// Token ids outside the vocabulary are recorded in the history but carry no
// penalty weight.
func (c *Context) Observe(tokenID int32) {
	c.history = append(c.history, tokenID)
	if tokenID >= 0 && int(tokenID) < c.vocabSize {
		if c.counts == nil {
			c.counts = make([]int32, c.vocabSize)
		}
		c.counts[tokenID]++
	}
}

// Reset clears the history and occurrence counts and returns the attached
// constraint to its initial state, keeping the sampling settings. Used when
// drawing multiple samples from one configured stream.
func (c *Context) Reset() {
	c.history = c.history[:0]
	for i := range c.counts {
		c.counts[i] = 0
	}
	if c.constraint != nil {
		c.constraint.Reset()
	}
}
