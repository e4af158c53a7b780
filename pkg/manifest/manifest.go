// Package manifest parses declarative content-pack manifests into a
// normalized, immutable form.
//
// A manifest describes reusable content "packs": the pages each pack owns,
// the packs it depends on, plus tags and version metadata. Parsing is a pure
// function over the raw manifest text - no I/O, no shared state - and is
// deterministic: identical input always yields an identical Manifest. The
// store layer relies on this for content-hash based cache invalidation.
//
// # Normalization rules
//
// Pages missing a file path are dropped. Pack ids come from the mapping key
// when it is a string, otherwise from the entry's own id field; duplicate ids
// overwrite (last wins). The pages, depends_on, and tags lists are normalized
// to trimmed, non-empty strings; anything else is filtered out.
//
// # Usage
//
//	m, err := manifest.Parse(raw)
//	if err != nil {
//	    // errors carry a discriminated code: EMPTY_INPUT, MALFORMED_SYNTAX,
//	    // MISSING_PACKS, or NO_VALID_PACKS
//	}
//	for _, pack := range m.Packs {
//	    fmt.Println(pack.ID, pack.PageCount)
//	}
package manifest

// =============================================================================
// Normalized Manifest Types
// =============================================================================

// Manifest is the normalized form of a parsed pack manifest.
// It is immutable after construction; callers must not mutate the slices.
type Manifest struct {
	SchemaVersion string `json:"schema_version" bson:"schema_version"`
	LastUpdated   string `json:"last_updated" bson:"last_updated"`
	Name          string `json:"name" bson:"name"`
	Description   string `json:"description" bson:"description"`
	Author        string `json:"author" bson:"author"`

	// Pages and Packs preserve the manifest's insertion order.
	Pages []Page `json:"pages" bson:"pages"`
	Packs []Pack `json:"packs" bson:"packs"`
}

// Page is a single content unit owned by a pack.
// Entries without a file path are dropped during parsing, so File is
// always non-empty on a parsed Page.
type Page struct {
	Name        string `json:"name" bson:"name"`
	File        string `json:"file" bson:"file"`
	LastUpdated string `json:"last_updated,omitempty" bson:"last_updated,omitempty"`
}

// Pack is a named bundle of pages plus dependency and tag metadata.
// PageCount always equals len(Pages).
type Pack struct {
	ID          string   `json:"id" bson:"id"`
	Version     string   `json:"version,omitempty" bson:"version,omitempty"`
	Description string   `json:"description,omitempty" bson:"description,omitempty"`
	Pages       []string `json:"pages" bson:"pages"`
	DependsOn   []string `json:"depends_on" bson:"depends_on"`
	Tags        []string `json:"tags" bson:"tags"`
	PageCount   int      `json:"page_count" bson:"page_count"`
}

// Pack returns the pack with the given id, if present.
func (m *Manifest) Pack(id string) (Pack, bool) {
	for _, p := range m.Packs {
		if p.ID == id {
			return p, true
		}
	}
	return Pack{}, false
}

// Page returns the page with the given name, if present.
func (m *Manifest) Page(name string) (Page, bool) {
	for _, p := range m.Pages {
		if p.Name == name {
			return p, true
		}
	}
	return Page{}, false
}

// TotalPageCount returns the sum of PageCount over all packs.
func (m *Manifest) TotalPageCount() int {
	total := 0
	for _, p := range m.Packs {
		total += p.PageCount
	}
	return total
}
