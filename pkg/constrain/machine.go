package constrain

import (
	"math"
	"strconv"
)

type frameKind uint8

const (
	frameObject frameKind = iota
	frameArray
)

// phase tracks what the automaton expects next inside the innermost open
// structure.
type phase uint8

const (
	phaseObjectKeyOrClose phase = iota // right after '{': first key or '}'
	phaseObjectKey                     // after ',': a key
	phaseObjectColon
	phaseObjectValue
	phaseObjectCommaOrClose
	phaseArrayValueOrClose // right after '[': first value or ']'
	phaseArrayValue        // after ',': a value
	phaseArrayCommaOrClose
)

type lexKind uint8

const (
	lexNone lexKind = iota
	lexString
	lexNumber
	lexLiteral
)

type frame struct {
	kind  frameKind
	phase phase

	// node and expect are nil for syntax-only constraints; seen tracks
	// object keys in every mode so duplicates reject.
	node   *Node
	seen   map[string]bool
	expect *Node
}

// machine is the incremental JSON automaton. It consumes one byte per
// transition and is monotonic: once rejected, every later transition fails.
type machine struct {
	frames []frame

	lex      lexKind
	esc      bool
	hexLeft  int
	strIsKey bool
	str      []byte
	num      []byte
	lit      []byte
	numFrom  *Node // expected type of the number being lexed

	root     *Node // expected type of the root value; nil for syntax-only
	rootSeen bool
	accepted bool
	rejected bool
}

func newMachine(root *Node) machine {
	return machine{root: root}
}

func (m *machine) terminal() bool { return m.accepted || m.rejected }

// clone deep-copies the machine so token validity can be simulated without
// committing.
func (m *machine) clone() machine {
	c := *m
	c.frames = make([]frame, len(m.frames))
	copy(c.frames, m.frames)
	for i := range c.frames {
		if m.frames[i].seen != nil {
			seen := make(map[string]bool, len(m.frames[i].seen))
			for k, v := range m.frames[i].seen {
				seen[k] = v
			}
			c.frames[i].seen = seen
		}
	}
	c.str = append([]byte(nil), m.str...)
	c.num = append([]byte(nil), m.num...)
	c.lit = append([]byte(nil), m.lit...)
	return c
}

func (m *machine) top() *frame {
	return &m.frames[len(m.frames)-1]
}

func (m *machine) reject() bool {
	m.rejected = true
	return false
}

// advance consumes one byte. It returns false, latching the rejected state,
// when the byte cannot extend any valid document.
func (m *machine) advance(b byte) bool {
	if m.rejected {
		return false
	}
	if m.accepted {
		// Only trailing whitespace may follow a completed document.
		if isSpace(b) {
			return true
		}
		return m.reject()
	}

	switch m.lex {
	case lexString:
		return m.advanceString(b)
	case lexLiteral:
		return m.advanceLiteral(b)
	case lexNumber:
		if isNumberByte(b) {
			m.num = append(m.num, b)
			return true
		}
		if !m.finishNumber() {
			return m.reject()
		}
		// The terminator is a structural byte in the enclosing frame.
		return m.structural(b)
	}
	return m.structural(b)
}

func (m *machine) advanceString(b byte) bool {
	if m.hexLeft > 0 {
		if !isHexByte(b) {
			return m.reject()
		}
		m.hexLeft--
		return true
	}
	if m.esc {
		m.esc = false
		switch b {
		case '"', '\\', '/':
			m.str = append(m.str, b)
		case 'b', 'f', 'n', 'r', 't':
			m.str = append(m.str, unescape(b))
		case 'u':
			m.hexLeft = 4
		default:
			return m.reject()
		}
		return true
	}
	switch {
	case b == '\\':
		m.esc = true
		return true
	case b == '"':
		return m.finishString()
	case b < 0x20:
		return m.reject()
	default:
		m.str = append(m.str, b)
		return true
	}
}

func (m *machine) advanceLiteral(b byte) bool {
	if len(m.lit) == 0 || m.lit[0] != b {
		return m.reject()
	}
	m.lit = m.lit[1:]
	if len(m.lit) == 0 {
		m.lex = lexNone
		return m.valueDone()
	}
	return true
}

func (m *machine) structural(b byte) bool {
	if isSpace(b) {
		return true
	}

	if len(m.frames) == 0 {
		if m.rootSeen {
			return m.reject()
		}
		return m.beginValue(b, m.root)
	}

	f := m.top()
	switch f.phase {
	case phaseObjectKeyOrClose:
		if b == '"' {
			m.startString(true)
			return true
		}
		if b == '}' {
			return m.closeObject()
		}
		return m.reject()
	case phaseObjectKey:
		if b == '"' {
			m.startString(true)
			return true
		}
		return m.reject()
	case phaseObjectColon:
		if b == ':' {
			f.phase = phaseObjectValue
			return true
		}
		return m.reject()
	case phaseObjectValue:
		return m.beginValue(b, f.expect)
	case phaseObjectCommaOrClose:
		if b == ',' {
			f.phase = phaseObjectKey
			return true
		}
		if b == '}' {
			return m.closeObject()
		}
		return m.reject()
	case phaseArrayValueOrClose:
		if b == ']' {
			return m.closeArray()
		}
		return m.beginValue(b, f.expect)
	case phaseArrayValue:
		return m.beginValue(b, f.expect)
	case phaseArrayCommaOrClose:
		if b == ',' {
			f.phase = phaseArrayValue
			return true
		}
		if b == ']' {
			return m.closeArray()
		}
		return m.reject()
	}
	return m.reject()
}

// beginValue starts a value whose first byte is b, checking it against the
// expected schema node. A nil expect imposes syntax rules only.
func (m *machine) beginValue(b byte, expect *Node) bool {
	switch {
	case b == '{':
		if expect != nil && expect.Type != TypeObject {
			return m.reject()
		}
		f := frame{kind: frameObject, phase: phaseObjectKeyOrClose, node: expect}
		if expect != nil {
			f.seen = make(map[string]bool, len(expect.Properties))
		} else {
			f.seen = make(map[string]bool)
		}
		m.frames = append(m.frames, f)
		return true
	case b == '[':
		if expect != nil && expect.Type != TypeArray {
			return m.reject()
		}
		f := frame{kind: frameArray, phase: phaseArrayValueOrClose, node: expect}
		if expect != nil {
			f.expect = expect.Items
		}
		m.frames = append(m.frames, f)
		return true
	case b == '"':
		if expect != nil && expect.Type != TypeString {
			return m.reject()
		}
		m.startString(false)
		return true
	case b == '-' || (b >= '0' && b <= '9'):
		if expect != nil && expect.Type != TypeNumber && expect.Type != TypeInteger {
			return m.reject()
		}
		m.lex = lexNumber
		m.num = append(m.num[:0], b)
		m.numFrom = expect
		return true
	case b == 't':
		if expect != nil && expect.Type != TypeBoolean {
			return m.reject()
		}
		m.lex = lexLiteral
		m.lit = append(m.lit[:0], []byte("rue")...)
		return true
	case b == 'f':
		if expect != nil && expect.Type != TypeBoolean {
			return m.reject()
		}
		m.lex = lexLiteral
		m.lit = append(m.lit[:0], []byte("alse")...)
		return true
	case b == 'n':
		// The schema subset has no null type; null is syntax-only.
		if expect != nil {
			return m.reject()
		}
		m.lex = lexLiteral
		m.lit = append(m.lit[:0], []byte("ull")...)
		return true
	}
	return m.reject()
}

func (m *machine) startString(isKey bool) {
	m.lex = lexString
	m.strIsKey = isKey
	m.str = m.str[:0]
	m.esc = false
	m.hexLeft = 0
}

func (m *machine) finishString() bool {
	m.lex = lexNone
	if !m.strIsKey {
		return m.valueDone()
	}

	f := m.top()
	key := string(m.str)
	if f.seen[key] {
		return m.reject()
	}
	if f.node != nil {
		if f.node.Wildcard != nil && len(f.node.Properties) == 0 {
			f.expect = f.node.Wildcard
		} else {
			prop, ok := f.node.Properties[key]
			if !ok {
				return m.reject()
			}
			f.expect = prop
		}
	}
	f.seen[key] = true
	f.phase = phaseObjectColon
	return true
}

// finishNumber validates the accumulated literal and, for schema
// constraints, checks integer-ness and numeric bounds.
func (m *machine) finishNumber() bool {
	m.lex = lexNone
	v, err := strconv.ParseFloat(string(m.num), 64)
	if err != nil || math.IsInf(v, 0) {
		return false
	}
	if expect := m.numFrom; expect != nil {
		if expect.Type == TypeInteger && v != math.Trunc(v) {
			return false
		}
		if expect.Minimum != nil && v < *expect.Minimum {
			return false
		}
		if expect.Maximum != nil && v > *expect.Maximum {
			return false
		}
	}
	m.numFrom = nil
	return m.valueDone()
}

// valueDone records the completion of a scalar value and moves the
// enclosing frame forward.
func (m *machine) valueDone() bool {
	if len(m.frames) == 0 {
		m.rootSeen = true
		m.accepted = true
		return true
	}
	f := m.top()
	switch f.kind {
	case frameObject:
		f.phase = phaseObjectCommaOrClose
	case frameArray:
		f.phase = phaseArrayCommaOrClose
	}
	return true
}

func (m *machine) closeObject() bool {
	f := m.top()
	if f.node != nil {
		for _, req := range f.node.Required {
			if !f.seen[req] {
				return m.reject()
			}
		}
	}
	m.frames = m.frames[:len(m.frames)-1]
	return m.containerDone()
}

func (m *machine) closeArray() bool {
	m.frames = m.frames[:len(m.frames)-1]
	return m.containerDone()
}

func (m *machine) containerDone() bool {
	if len(m.frames) == 0 {
		m.rootSeen = true
		m.accepted = true
		return true
	}
	f := m.top()
	switch f.kind {
	case frameObject:
		f.phase = phaseObjectCommaOrClose
	case frameArray:
		f.phase = phaseArrayCommaOrClose
	}
	return true
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func isNumberByte(b byte) bool {
	return (b >= '0' && b <= '9') || b == '-' || b == '+' || b == '.' || b == 'e' || b == 'E'
}

func isHexByte(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func unescape(b byte) byte {
	switch b {
	case 'b':
		return '\b'
	case 'f':
		return '\f'
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	}
	return b
}
