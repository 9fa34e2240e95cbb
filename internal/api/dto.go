package api

import json "github.com/goccy/go-json"

// ProcessRequest carries one pipeline invocation. Optional fields follow the
// pipeline defaults when absent.
type ProcessRequest struct {
	Logits            []float64 `json:"logits"`
	Temperature       *float64  `json:"temperature,omitempty"`
	TopK              *int      `json:"top_k,omitempty"`
	TopP              *float64  `json:"top_p,omitempty"`
	RepetitionPenalty *float64  `json:"repetition_penalty,omitempty"`
	FrequencyPenalty  *float64  `json:"frequency_penalty,omitempty"`
	PresencePenalty   *float64  `json:"presence_penalty,omitempty"`

	// History lists previously emitted token ids, in order.
	History []int32 `json:"history,omitempty"`
}

type ProcessResponse struct {
	ID     string    `json:"id"`
	Probs  []float64 `json:"probs"`
	Argmax int       `json:"argmax"`
	Kernel string    `json:"kernel"`
}

// ConstraintCheckRequest replays a document against a constraint. A missing
// schema checks JSON well-formedness only.
type ConstraintCheckRequest struct {
	Schema json.RawMessage `json:"schema,omitempty"`
	Text   string          `json:"text"`
}

type ConstraintCheckResponse struct {
	Valid bool   `json:"valid"`
	State string `json:"state"`

	// Offset is the number of bytes consumed before the automaton stopped.
	Offset int    `json:"offset"`
	Error  string `json:"error,omitempty"`

	// Forced is the deterministic continuation, when the constraint pins
	// one down after a partial document.
	Forced string `json:"forced,omitempty"`
}

type CapabilitiesResponse struct {
	Arch        string `json:"arch"`
	Level       string `json:"level"`
	VectorWidth int    `json:"vector_width"`
	Kernel      string `json:"kernel"`
	ForceScalar bool   `json:"force_scalar"`

	AVX2   bool `json:"avx2"`
	AVX512 bool `json:"avx512"`
	NEON   bool `json:"neon"`
}
