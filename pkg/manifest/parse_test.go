package manifest

import (
	"testing"

	"github.com/packhub/packhub/pkg/errors"
)

const sampleManifest = `
schema_version: "1"
name: starter
author: tester
pages:
  intro:
    name: Introduction
    file: pages/intro.md
  setup:
    name: Setup
    file: pages/setup.md
packs:
  basics:
    version: "1.0.0"
    pages: [intro, setup]
    tags: [beginner]
  extra:
    depends_on: [basics]
`

func TestParseBasic(t *testing.T) {
	m, err := Parse(sampleManifest)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	if m.SchemaVersion != "1" {
		t.Errorf("SchemaVersion = %q, want %q", m.SchemaVersion, "1")
	}
	if m.Name != "starter" {
		t.Errorf("Name = %q, want %q", m.Name, "starter")
	}
	if len(m.Pages) != 2 {
		t.Fatalf("len(Pages) = %d, want 2", len(m.Pages))
	}
	if m.Pages[0].Name != "intro" || m.Pages[0].File != "pages/intro.md" {
		t.Errorf("Pages[0] = %+v", m.Pages[0])
	}
	if len(m.Packs) != 2 {
		t.Fatalf("len(Packs) = %d, want 2", len(m.Packs))
	}

	basics := m.Packs[0]
	if basics.ID != "basics" || basics.Version != "1.0.0" {
		t.Errorf("Packs[0] = %+v", basics)
	}
	if basics.PageCount != 2 || len(basics.Pages) != 2 {
		t.Errorf("basics page count = %d, pages = %v", basics.PageCount, basics.Pages)
	}
	if len(basics.DependsOn) != 0 {
		t.Errorf("basics.DependsOn = %v, want empty", basics.DependsOn)
	}

	extra := m.Packs[1]
	if len(extra.DependsOn) != 1 || extra.DependsOn[0] != "basics" {
		t.Errorf("extra.DependsOn = %v, want [basics]", extra.DependsOn)
	}
	if extra.PageCount != 0 {
		t.Errorf("extra.PageCount = %d, want 0", extra.PageCount)
	}
}

func TestParseEmptyInput(t *testing.T) {
	cases := []string{"", "   ", "\n\t\n", "\ufeff", "\ufeff  \n"}
	for _, raw := range cases {
		_, err := Parse(raw)
		if !errors.Is(err, errors.ErrCodeEmptyInput) {
			t.Errorf("Parse(%q) error = %v, want EMPTY_INPUT", raw, err)
		}
	}
}

func TestParseBOMStripped(t *testing.T) {
	m, err := Parse("\ufeff" + sampleManifest)
	if err != nil {
		t.Fatalf("Parse with BOM error: %v", err)
	}
	if len(m.Packs) != 2 {
		t.Errorf("len(Packs) = %d, want 2", len(m.Packs))
	}
}

func TestParseMalformedSyntax(t *testing.T) {
	cases := []string{
		"packs: [unclosed",
		"\t- tabs as indentation: {",
		"just a scalar",      // root is not a mapping
		"- a\n- b",           // root is a list
	}
	for _, raw := range cases {
		_, err := Parse(raw)
		if !errors.Is(err, errors.ErrCodeMalformedSyntax) {
			t.Errorf("Parse(%q) error = %v, want MALFORMED_SYNTAX", raw, err)
		}
	}
}

func TestParseMissingPacks(t *testing.T) {
	cases := []string{
		"name: no packs here",
		"packs: {}",
		"packs: []",
		"packs: 42",
		"packs: just-a-string",
	}
	for _, raw := range cases {
		_, err := Parse(raw)
		if !errors.Is(err, errors.ErrCodeMissingPacks) {
			t.Errorf("Parse(%q) error = %v, want MISSING_PACKS", raw, err)
		}
	}
}

func TestParseNoValidPacks(t *testing.T) {
	// Every entry is filtered: scalar values, empty id, non-mapping entries.
	raw := `
packs:
  "": {version: "1"}
  bad: not-a-mapping
  3: {version: "2"}
`
	_, err := Parse(raw)
	if !errors.Is(err, errors.ErrCodeNoValidPacks) {
		t.Errorf("Parse error = %v, want NO_VALID_PACKS", err)
	}
}

func TestParsePagesSkipRules(t *testing.T) {
	raw := `
pages:
  good:
    file: a.md
  nofile:
    name: Missing file
  emptyfile:
    file: "   "
  scalar: just-a-string
  5:
    file: numeric-key.md
packs:
  p: {pages: [good]}
`
	m, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(m.Pages) != 1 {
		t.Fatalf("len(Pages) = %d, want 1: %+v", len(m.Pages), m.Pages)
	}
	if m.Pages[0].Name != "good" {
		t.Errorf("Pages[0].Name = %q, want %q", m.Pages[0].Name, "good")
	}
}

func TestParsePacksAsList(t *testing.T) {
	raw := `
packs:
  - id: first
    version: "1"
  - id: second
    depends_on: [first]
  - version: "no id, skipped"
`
	m, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(m.Packs) != 2 {
		t.Fatalf("len(Packs) = %d, want 2", len(m.Packs))
	}
	if m.Packs[0].ID != "first" || m.Packs[1].ID != "second" {
		t.Errorf("pack ids = %s, %s", m.Packs[0].ID, m.Packs[1].ID)
	}
}

func TestParseDuplicateIDs(t *testing.T) {
	// Last entry wins, but the pack keeps its first position.
	raw := `
packs:
  - id: a
    version: "1"
  - id: b
    version: "1"
  - id: a
    version: "2"
`
	m, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(m.Packs) != 2 {
		t.Fatalf("len(Packs) = %d, want 2", len(m.Packs))
	}
	if m.Packs[0].ID != "a" || m.Packs[0].Version != "2" {
		t.Errorf("Packs[0] = %+v, want id=a version=2", m.Packs[0])
	}
	if m.Packs[1].ID != "b" {
		t.Errorf("Packs[1].ID = %q, want b", m.Packs[1].ID)
	}
}

func TestParseStringListNormalization(t *testing.T) {
	raw := `
packs:
  p:
    pages: ["  a  ", "", b, 42, true]
    depends_on: not-a-list
    tags:
`
	m, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	p := m.Packs[0]
	if len(p.Pages) != 2 || p.Pages[0] != "a" || p.Pages[1] != "b" {
		t.Errorf("Pages = %v, want [a b]", p.Pages)
	}
	if p.PageCount != 2 {
		t.Errorf("PageCount = %d, want 2", p.PageCount)
	}
	if len(p.DependsOn) != 0 {
		t.Errorf("DependsOn = %v, want empty", p.DependsOn)
	}
	if len(p.Tags) != 0 {
		t.Errorf("Tags = %v, want empty", p.Tags)
	}
}

func TestParseScalarCoercion(t *testing.T) {
	// Numeric and missing metadata coerce to strings; missing becomes "".
	raw := `
schema_version: 2
packs:
  p: {version: 1.5}
`
	m, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if m.SchemaVersion != "2" {
		t.Errorf("SchemaVersion = %q, want %q", m.SchemaVersion, "2")
	}
	if m.Author != "" {
		t.Errorf("Author = %q, want empty", m.Author)
	}
	if m.Packs[0].Version != "1.5" {
		t.Errorf("Version = %q, want %q", m.Packs[0].Version, "1.5")
	}
}

func TestParseDeterministic(t *testing.T) {
	m1, err := Parse(sampleManifest)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	m2, err := Parse(sampleManifest)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(m1.Packs) != len(m2.Packs) || len(m1.Pages) != len(m2.Pages) {
		t.Fatal("repeated parses disagree on sizes")
	}
	for i := range m1.Packs {
		if m1.Packs[i].ID != m2.Packs[i].ID {
			t.Errorf("pack order differs at %d: %s vs %s", i, m1.Packs[i].ID, m2.Packs[i].ID)
		}
	}
}

func TestManifestLookups(t *testing.T) {
	m, err := Parse(sampleManifest)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	if p, ok := m.Pack("basics"); !ok || p.ID != "basics" {
		t.Errorf("Pack(basics) = %+v, %v", p, ok)
	}
	if _, ok := m.Pack("nope"); ok {
		t.Error("Pack(nope) should not be found")
	}
	if pg, ok := m.Page("intro"); !ok || pg.File != "pages/intro.md" {
		t.Errorf("Page(intro) = %+v, %v", pg, ok)
	}
	if got := m.TotalPageCount(); got != 2 {
		t.Errorf("TotalPageCount = %d, want 2", got)
	}
}
