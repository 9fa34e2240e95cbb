package constrain

// Tokenizer resolves token ids to the text they produce. The constraint
// automaton consumes that text one byte at a time; a multi-byte token is
// valid only if every byte drives a valid transition.
//
// The tokenizer itself lives outside this package; any id-to-text mapping
// works.
type Tokenizer interface {
	// Decode returns the text for a token id, or "" for ids that produce
	// no text (unknown or special tokens). Tokens that decode to "" are
	// never considered valid under a constraint.
	Decode(id int32) string
}

// VocabTokenizer adapts a plain vocabulary slice to the Tokenizer contract.
// Index i is the text of token id i.
type VocabTokenizer []string

func (v VocabTokenizer) Decode(id int32) string {
	if id < 0 || int(id) >= len(v) {
		return ""
	}
	return v[id]
}
