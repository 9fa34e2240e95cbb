package constrain

import "testing"

func replay(t *testing.T, c *Constraint, text string) (int, error) {
	t.Helper()
	return c.AdvanceText(text)
}

func TestSyntaxAcceptsWellFormedJSON(t *testing.T) {
	docs := []string{
		`{}`,
		`[]`,
		`{"a":1}`,
		`{"a": [1, 2.5, -3e2], "b": {"c": true, "d": null}}`,
		`["x", "y\nz", "é"]`,
		` { "k" : "v" } `,
		`[[[]]]`,
		`{"s":"with \"quotes\" and \\ backslash"}`,
	}
	for _, doc := range docs {
		c := NewSyntax(nil)
		if _, err := replay(t, c, doc); err != nil {
			t.Errorf("%s: unexpected rejection: %v", doc, err)
			continue
		}
		if c.State() != StateAccepted {
			t.Errorf("%s: state = %v, want accepted", doc, c.State())
		}
	}
}

func TestSyntaxRejectsMalformedJSON(t *testing.T) {
	docs := []string{
		`{]`,    // wrong close
		`[,]`,   // leading comma
		`{"a"}`, // missing colon
		`{"a":}`,
		`{"a":1,}`, // trailing comma
		`[1 2]`,    // missing comma
		`tru e`,
		`"unclosed`,
		`{{`,
		`[}`,
		`{"a":1}extra`,
	}
	for _, doc := range docs {
		c := NewSyntax(nil)
		_, err := replay(t, c, doc)
		if err == nil && c.State() == StateAccepted {
			t.Errorf("%s: accepted, want rejection or incomplete", doc)
		}
	}
}

func TestSyntaxIncompleteIsActive(t *testing.T) {
	c := NewSyntax(nil)
	if _, err := replay(t, c, `{"a": [1,`); err != nil {
		t.Fatalf("prefix rejected: %v", err)
	}
	if c.State() != StateActive {
		t.Fatalf("state = %v, want active", c.State())
	}
}

func TestRejectionIsAbsorbing(t *testing.T) {
	c := NewSyntax(nil)
	if _, err := replay(t, c, `}`); err == nil {
		t.Fatalf("close brace at root accepted")
	}
	if c.State() != StateRejected {
		t.Fatalf("state = %v, want rejected", c.State())
	}
	// No byte recovers a rejected machine.
	if c.m.advance('{') {
		t.Fatalf("rejected machine accepted a byte")
	}
}

func TestAcceptanceAllowsOnlyTrailingWhitespace(t *testing.T) {
	c := NewSyntax(nil)
	if _, err := replay(t, c, `{"a":1}`+" \n\t"); err != nil {
		t.Fatalf("trailing whitespace rejected: %v", err)
	}
	if c.State() != StateAccepted {
		t.Fatalf("state = %v, want accepted", c.State())
	}
	if _, err := replay(t, c, `x`); err == nil {
		t.Fatalf("content after accepted document not rejected")
	}
}

func TestDuplicateKeysReject(t *testing.T) {
	c := NewSyntax(nil)
	off, err := replay(t, c, `{"a":1,"a":2}`)
	if err == nil {
		t.Fatalf("duplicate key accepted")
	}
	// The closing quote of the second "a" is the first invalid byte.
	if off != 9 {
		t.Fatalf("rejected at offset %d, want 9", off)
	}
	// Each object tracks its own keys.
	nested := NewSyntax(nil)
	if _, err := replay(t, nested, `{"a":{"a":1}}`); err != nil {
		t.Fatalf("same key in nested object rejected: %v", err)
	}
}

func TestStringEscapes(t *testing.T) {
	c := NewSyntax(nil)
	if _, err := replay(t, c, `{"é\n\"":1}`); err != nil {
		t.Fatalf("escapes rejected: %v", err)
	}
	bad := NewSyntax(nil)
	if _, err := replay(t, bad, `{"\x":1}`); err == nil {
		t.Fatalf("invalid escape accepted")
	}
	badHex := NewSyntax(nil)
	if _, err := replay(t, badHex, `{"\u00gz":1}`); err == nil {
		t.Fatalf("invalid unicode escape accepted")
	}
}

func TestNumberLiterals(t *testing.T) {
	good := []string{`[0]`, `[-1]`, `[1.5]`, `[2e10]`, `[2E-3]`, `[1e+4]`}
	for _, doc := range good {
		c := NewSyntax(nil)
		if _, err := replay(t, c, doc); err != nil {
			t.Errorf("%s: rejected: %v", doc, err)
		}
	}
	bad := []string{`[1.2.3]`, `[1e]`, `[--1]`, `[.5]`}
	for _, doc := range bad {
		c := NewSyntax(nil)
		if _, err := replay(t, c, doc); err == nil {
			t.Errorf("%s: accepted", doc)
		}
	}
}
