package manifest

import (
	"reflect"
	"testing"
)

func TestEncodeRoundTrip(t *testing.T) {
	m1, err := Parse(sampleManifest)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	out, err := Encode(m1)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	m2, err := Parse(string(out))
	if err != nil {
		t.Fatalf("Parse(Encode) error: %v", err)
	}

	if !reflect.DeepEqual(m1, m2) {
		t.Errorf("round trip changed the manifest:\nbefore: %+v\nafter:  %+v", m1, m2)
	}
}

func TestEncodePreservesNumericStrings(t *testing.T) {
	// schema_version "2" must not come back as an int scalar.
	raw := `
schema_version: "2"
packs:
  p: {version: "1.0"}
`
	m1, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	out, err := Encode(m1)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	m2, err := Parse(string(out))
	if err != nil {
		t.Fatalf("Parse(Encode) error: %v", err)
	}
	if m2.SchemaVersion != "2" {
		t.Errorf("SchemaVersion = %q, want %q", m2.SchemaVersion, "2")
	}
	if m2.Packs[0].Version != "1.0" {
		t.Errorf("Version = %q, want %q", m2.Packs[0].Version, "1.0")
	}
}

func TestEncodePreservesOrder(t *testing.T) {
	raw := `
packs:
  zulu: {version: "1"}
  alpha: {version: "1"}
  mike: {version: "1"}
`
	m1, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	out, err := Encode(m1)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	m2, err := Parse(string(out))
	if err != nil {
		t.Fatalf("Parse(Encode) error: %v", err)
	}

	want := []string{"zulu", "alpha", "mike"}
	for i, id := range want {
		if m2.Packs[i].ID != id {
			t.Errorf("Packs[%d].ID = %q, want %q", i, m2.Packs[i].ID, id)
		}
	}
}
