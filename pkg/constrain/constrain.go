// Package constrain implements the constrained-decoding state machine: an
// incremental automaton that accepts or rejects candidate tokens based on
// whether they keep the generated output on a path to valid JSON, optionally
// checked against a schema.
//
// A Constraint is single-stream state. It advances once per emitted token
// and is monotonic: once any transition is rejected the constraint stays
// rejected. Validity checks simulate transitions on a copy and never mutate
// the committed state.
package constrain

import (
	"fmt"
	"math"
)

// Kind distinguishes the constraint variants.
type Kind uint8

const (
	// KindSyntax enforces JSON well-formedness only.
	KindSyntax Kind = iota
	// KindSchema additionally enforces a parsed schema document.
	KindSchema
	// KindType enforces a schema derived from a host type.
	KindType
)

// State is the automaton's terminal status.
type State uint8

const (
	// StateActive means the document is still in progress.
	StateActive State = iota
	// StateAccepted means the root value closed with every requirement
	// satisfied. Absorbing.
	StateAccepted
	// StateRejected means an invalid transition occurred. Absorbing.
	StateRejected
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateAccepted:
		return "accepted"
	case StateRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Constraint validates and tracks one structured-generation stream.
type Constraint struct {
	kind   Kind
	tok    Tokenizer
	schema *Node
	m      machine
}

// NewSyntax returns a constraint that enforces JSON well-formedness without
// a schema.
func NewSyntax(tok Tokenizer) *Constraint {
	return &Constraint{kind: KindSyntax, tok: tok, m: newMachine(nil)}
}

// ForSchema parses schemaText and returns a constraint enforcing it.
func ForSchema(schemaText []byte, tok Tokenizer) (*Constraint, error) {
	node, err := ParseSchema(schemaText)
	if err != nil {
		return nil, err
	}
	return &Constraint{kind: KindSchema, tok: tok, schema: node, m: newMachine(node)}, nil
}

// ForSchemaNode returns a constraint over an already-built schema tree.
func ForSchemaNode(node *Node, tok Tokenizer) *Constraint {
	return &Constraint{kind: KindSchema, tok: tok, schema: node, m: newMachine(node)}
}

// ForType returns a constraint for the schema document supplied by T.
func ForType[T SchemaProvider](tok Tokenizer) (*Constraint, error) {
	var provider T
	node, err := ParseSchema(provider.JSONSchema())
	if err != nil {
		return nil, err
	}
	return &Constraint{kind: KindType, tok: tok, schema: node, m: newMachine(node)}, nil
}

// Preset constructors for common output shapes.

// ArrayOfStrings constrains output to a JSON array of strings.
func ArrayOfStrings(tok Tokenizer) *Constraint {
	return ForSchemaNode(ArrayOfStringsSchema(), tok)
}

// ArrayOfIntegers constrains output to a JSON array of integers.
func ArrayOfIntegers(tok Tokenizer) *Constraint {
	return ForSchemaNode(ArrayOfIntegersSchema(), tok)
}

// ObjectOfStrings constrains output to a JSON object with string values.
func ObjectOfStrings(tok Tokenizer) *Constraint {
	return ForSchemaNode(ObjectOfStringsSchema(), tok)
}

// Kind returns the constraint variant.
func (c *Constraint) Kind() Kind { return c.kind }

// State returns the automaton's terminal status.
func (c *Constraint) State() State {
	switch {
	case c.m.rejected:
		return StateRejected
	case c.m.accepted:
		return StateAccepted
	default:
		return StateActive
	}
}

// IsTokenValid reports whether emitting the token keeps the stream valid. It
// simulates the token's bytes on a copy of the current state and never
// mutates the constraint. Tokens that decode to no text are invalid.
func (c *Constraint) IsTokenValid(id int32) (bool, error) {
	text := c.tok.Decode(id)
	if text == "" {
		return false, nil
	}
	sim := c.m.clone()
	return advanceAll(&sim, text), nil
}

// UpdateState commits the token to the automaton, advancing the schema
// cursor. An invalid token fails with ErrConstraintViolation and leaves the
// committed state untouched; calls after a terminal state fail with
// ErrConstraintTerminal.
func (c *Constraint) UpdateState(id int32) error {
	if c.m.terminal() {
		return ErrConstraintTerminal
	}
	text := c.tok.Decode(id)
	if text == "" {
		return fmt.Errorf("%w: token %d decodes to no text", ErrConstraintViolation, id)
	}
	sim := c.m.clone()
	if !advanceAll(&sim, text) {
		return fmt.Errorf("%w: token %d (%q)", ErrConstraintViolation, id, text)
	}
	c.m = sim
	return nil
}

// AdvanceText commits raw text byte by byte, returning the offset of the
// first rejected byte on failure. Used for replaying existing documents.
func (c *Constraint) AdvanceText(text string) (int, error) {
	for i := 0; i < len(text); i++ {
		if c.m.terminal() && c.m.rejected {
			return i, ErrConstraintTerminal
		}
		if !c.m.advance(text[i]) {
			return i, fmt.Errorf("%w: byte %q at offset %d", ErrConstraintViolation, text[i], i)
		}
	}
	return len(text), nil
}

// ForcedToken returns the only viable continuation at the current state, if
// the schema pins one down (for example the lone remaining key, or the
// closing brace once every property is present). Callers may emit it
// directly and skip sampling; doing so does not change the automaton's
// semantics.
func (c *Constraint) ForcedToken() (string, bool) {
	m := &c.m
	if m.terminal() {
		return "", false
	}

	// A literal mid-lex has exactly one spelling.
	if m.lex == lexLiteral {
		return string(m.lit), true
	}
	if m.lex == lexString || m.lex == lexNumber {
		return "", false
	}

	if len(m.frames) == 0 {
		if m.rootSeen || m.root == nil {
			return "", false
		}
		switch m.root.Type {
		case TypeObject:
			return "{", true
		case TypeArray:
			return "[", true
		case TypeString:
			return "\"", true
		}
		return "", false
	}

	f := m.top()
	switch f.phase {
	case phaseObjectColon:
		return ":", true
	case phaseObjectKeyOrClose:
		if f.node == nil || f.node.Wildcard != nil {
			return "", false
		}
		if len(f.node.Properties) == 0 {
			return "}", true
		}
		// The close brace stays viable unless the lone property is required.
		if len(f.node.propOrder) == 1 {
			name := f.node.propOrder[0]
			for _, req := range f.node.Required {
				if req == name {
					return "\"" + name + "\"", true
				}
			}
		}
	case phaseObjectKey:
		if f.node == nil || f.node.Wildcard != nil {
			return "", false
		}
		var remaining []string
		for _, name := range f.node.propOrder {
			if !f.seen[name] {
				remaining = append(remaining, name)
			}
		}
		if len(remaining) == 1 {
			return "\"" + remaining[0] + "\"", true
		}
	case phaseObjectCommaOrClose:
		if f.node == nil || f.node.Wildcard != nil {
			return "", false
		}
		if len(f.seen) == len(f.node.Properties) {
			return "}", true
		}
		for _, req := range f.node.Required {
			if !f.seen[req] {
				return ",", true
			}
		}
	case phaseObjectValue, phaseArrayValue, phaseArrayValueOrClose:
		expect := f.expect
		if expect == nil {
			return "", false
		}
		if f.phase == phaseArrayValueOrClose {
			// The close bracket is also viable; nothing is forced.
			return "", false
		}
		switch expect.Type {
		case TypeObject:
			return "{", true
		case TypeArray:
			return "[", true
		case TypeString:
			return "\"", true
		}
	}
	return "", false
}

// MaskLogits sets the entries of buf whose token ids are currently invalid
// to -Inf, leaving valid candidates untouched. Index i is token id i. When
// the constraint is terminal every entry is masked; callers should stop
// decoding once State is no longer StateActive.
func (c *Constraint) MaskLogits(buf []float64) {
	for i := range buf {
		if math.IsInf(buf[i], -1) {
			continue
		}
		ok, _ := c.IsTokenValid(int32(i))
		if !ok {
			buf[i] = math.Inf(-1)
		}
	}
}

// Reset returns the automaton and schema cursor to the initial state, for
// reuse across multi-sample generation.
func (c *Constraint) Reset() {
	c.m = newMachine(c.schema)
}

func advanceAll(m *machine, text string) bool {
	for i := 0; i < len(text); i++ {
		if !m.advance(text[i]) {
			return false
		}
	}
	return true
}
