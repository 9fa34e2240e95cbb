package constrain

import (
	"errors"
	"testing"
)

const personSchema = `{
	"type": "object",
	"properties": {
		"name": {"type": "string"},
		"age": {"type": "integer", "minimum": 0, "maximum": 150}
	},
	"required": ["name", "age"]
}`

func mustSchema(t *testing.T, text string) *Constraint {
	t.Helper()
	c, err := ForSchema([]byte(text), nil)
	if err != nil {
		t.Fatalf("ForSchema: %v", err)
	}
	return c
}

func TestSchemaAcceptsConformingDocument(t *testing.T) {
	c := mustSchema(t, personSchema)
	if _, err := c.AdvanceText(`{"name":"x","age":1}`); err != nil {
		t.Fatalf("conforming document rejected: %v", err)
	}
	if c.State() != StateAccepted {
		t.Fatalf("state = %v, want accepted", c.State())
	}
}

func TestSchemaRejectsMissingRequiredAtClose(t *testing.T) {
	c := mustSchema(t, personSchema)
	off, err := c.AdvanceText(`{"name":"x"}`)
	if err == nil {
		t.Fatalf("document missing required property accepted")
	}
	// The rejection lands exactly on the closing brace.
	if off != len(`{"name":"x"`) {
		t.Fatalf("rejected at offset %d, want %d", off, len(`{"name":"x"`))
	}
	if c.State() != StateRejected {
		t.Fatalf("state = %v, want rejected", c.State())
	}
}

func TestSchemaRejectsCloseWhereValueExpected(t *testing.T) {
	c := mustSchema(t, personSchema)
	if _, err := c.AdvanceText(`{"name": }`); err == nil {
		t.Fatalf("structural close in value position accepted")
	}
}

func TestSchemaRejectsWrongValueType(t *testing.T) {
	c := mustSchema(t, personSchema)
	if _, err := c.AdvanceText(`{"name": 3`); err == nil {
		t.Fatalf("number where string expected accepted")
	}
	c = mustSchema(t, personSchema)
	if _, err := c.AdvanceText(`{"age": "old"`); err == nil {
		t.Fatalf("string where integer expected accepted")
	}
}

func TestSchemaRejectsUnknownProperty(t *testing.T) {
	c := mustSchema(t, personSchema)
	if _, err := c.AdvanceText(`{"nickname"`); err == nil {
		t.Fatalf("unknown property accepted")
	}
}

func TestSchemaRejectsDuplicateProperty(t *testing.T) {
	c := mustSchema(t, personSchema)
	if _, err := c.AdvanceText(`{"name":"x","name"`); err == nil {
		t.Fatalf("duplicate property accepted")
	}
}

func TestSchemaNumericBounds(t *testing.T) {
	c := mustSchema(t, personSchema)
	if _, err := c.AdvanceText(`{"name":"x","age":200}`); err == nil {
		t.Fatalf("age above maximum accepted")
	}
	c = mustSchema(t, personSchema)
	if _, err := c.AdvanceText(`{"name":"x","age":-1}`); err == nil {
		t.Fatalf("age below minimum accepted")
	}
	c = mustSchema(t, personSchema)
	if _, err := c.AdvanceText(`{"name":"x","age":1.5}`); err == nil {
		t.Fatalf("fractional integer accepted")
	}
}

func TestSchemaRejectsNullValue(t *testing.T) {
	c := mustSchema(t, personSchema)
	if _, err := c.AdvanceText(`{"name":null`); err == nil {
		t.Fatalf("null for string-typed property accepted")
	}
}

func TestParseSchemaUnsupportedConstructs(t *testing.T) {
	docs := []string{
		`{"type":"object","additionalProperties":false}`,
		`{"$ref":"#/defs/x"}`,
		`{"type":"string","enum":["a","b"]}`,
		`{"anyOf":[{"type":"string"}]}`,
		`{"type":"null"}`,
		`{"properties":{}}`,
	}
	for _, doc := range docs {
		if _, err := ParseSchema([]byte(doc)); !errors.Is(err, ErrUnsupportedSchema) {
			t.Errorf("%s: err = %v, want ErrUnsupportedSchema", doc, err)
		}
	}
}

func TestParseSchemaIgnoresAnnotations(t *testing.T) {
	doc := `{"type":"string","title":"Name","description":"a name"}`
	if _, err := ParseSchema([]byte(doc)); err != nil {
		t.Fatalf("annotations rejected: %v", err)
	}
}

func TestParseSchemaRequiredMustBeDeclared(t *testing.T) {
	doc := `{"type":"object","properties":{"a":{"type":"string"}},"required":["b"]}`
	if _, err := ParseSchema([]byte(doc)); !errors.Is(err, ErrUnsupportedSchema) {
		t.Fatalf("undeclared required property not rejected: %v", err)
	}
}

func TestPresetArrayOfStrings(t *testing.T) {
	c := ArrayOfStrings(nil)
	if _, err := c.AdvanceText(`["a","b",""]`); err != nil {
		t.Fatalf("string array rejected: %v", err)
	}
	if c.State() != StateAccepted {
		t.Fatalf("state = %v", c.State())
	}
	c = ArrayOfStrings(nil)
	if _, err := c.AdvanceText(`["a",1`); err == nil {
		t.Fatalf("integer element accepted in string array")
	}
}

func TestPresetArrayOfIntegers(t *testing.T) {
	c := ArrayOfIntegers(nil)
	if _, err := c.AdvanceText(`[1,2,3]`); err != nil {
		t.Fatalf("integer array rejected: %v", err)
	}
	c = ArrayOfIntegers(nil)
	if _, err := c.AdvanceText(`[1.5]`); err == nil {
		t.Fatalf("fraction accepted in integer array")
	}
}

func TestPresetObjectOfStrings(t *testing.T) {
	c := ObjectOfStrings(nil)
	if _, err := c.AdvanceText(`{"any":"key","works":"fine"}`); err != nil {
		t.Fatalf("string map rejected: %v", err)
	}
	if c.State() != StateAccepted {
		t.Fatalf("state = %v", c.State())
	}
	c = ObjectOfStrings(nil)
	if _, err := c.AdvanceText(`{"k":5`); err == nil {
		t.Fatalf("non-string value accepted")
	}
}

type personProvider struct{}

func (personProvider) JSONSchema() []byte { return []byte(personSchema) }

func TestForType(t *testing.T) {
	c, err := ForType[personProvider](nil)
	if err != nil {
		t.Fatalf("ForType: %v", err)
	}
	if c.Kind() != KindType {
		t.Fatalf("kind = %v", c.Kind())
	}
	if _, err := c.AdvanceText(`{"age":42,"name":"y"}`); err != nil {
		t.Fatalf("conforming document rejected: %v", err)
	}
	if c.State() != StateAccepted {
		t.Fatalf("state = %v", c.State())
	}
}
