package manifest

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/packhub/packhub/pkg/errors"
)

// Parse converts raw manifest text into a normalized Manifest.
//
// The payload is YAML. Parsing walks the document tree directly so that
// mapping insertion order is preserved and malformed entries can be skipped
// individually rather than failing the whole document.
//
// Parse returns a coded error on failure:
//   - EMPTY_INPUT: the input is empty after BOM stripping and trimming
//   - MALFORMED_SYNTAX: the payload is not valid YAML, or the root is not a mapping
//   - MISSING_PACKS: the packs section is absent, not a mapping/list, or empty
//   - NO_VALID_PACKS: every pack entry was filtered out during normalization
//
// No partial Manifest is ever returned alongside an error.
func Parse(raw string) (*Manifest, error) {
	raw = strings.TrimPrefix(raw, "\ufeff")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New(errors.ErrCodeEmptyInput, "manifest is empty")
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedSyntax, err, "manifest is not valid YAML")
	}

	root := documentRoot(&doc)
	if root == nil || root.Kind != yaml.MappingNode {
		return nil, errors.New(errors.ErrCodeMalformedSyntax, "manifest root must be a mapping")
	}

	m := &Manifest{
		SchemaVersion: scalarField(root, "schema_version"),
		LastUpdated:   scalarField(root, "last_updated"),
		Name:          scalarField(root, "name"),
		Description:   scalarField(root, "description"),
		Author:        scalarField(root, "author"),
		Pages:         parsePages(mappingField(root, "pages")),
	}

	packs, err := parsePacks(field(root, "packs"))
	if err != nil {
		return nil, err
	}
	m.Packs = packs

	return m, nil
}

// =============================================================================
// Section Parsers
// =============================================================================

// parsePages extracts pages from the pages mapping.
// Entries are skipped when the key is not a string, the value is not a
// mapping, or the file path is empty after coercion.
func parsePages(node *yaml.Node) []Page {
	pages := []Page{}
	if node == nil || node.Kind != yaml.MappingNode {
		return pages
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		if !isStringScalar(key) || val.Kind != yaml.MappingNode {
			continue
		}
		file := strings.TrimSpace(scalarField(val, "file"))
		if file == "" {
			continue
		}
		pages = append(pages, Page{
			Name:        key.Value,
			File:        file,
			LastUpdated: scalarField(val, "last_updated"),
		})
	}
	return pages
}

// parsePacks extracts packs from the packs section, which may be either a
// mapping (id -> entry) or a list of entries carrying their own id field.
func parsePacks(node *yaml.Node) ([]Pack, error) {
	if node == nil {
		return nil, errors.New(errors.ErrCodeMissingPacks, "manifest has no packs section")
	}

	packs := []Pack{}
	index := map[string]int{} // pack id -> position in packs

	add := func(id string, entry *yaml.Node) {
		id = strings.TrimSpace(id)
		if id == "" || entry == nil || entry.Kind != yaml.MappingNode {
			return
		}
		pack := parsePack(id, entry)
		// Duplicate ids overwrite in place: last entry wins, first position kept.
		if at, ok := index[id]; ok {
			packs[at] = pack
			return
		}
		index[id] = len(packs)
		packs = append(packs, pack)
	}

	switch node.Kind {
	case yaml.MappingNode:
		if len(node.Content) == 0 {
			return nil, errors.New(errors.ErrCodeMissingPacks, "packs section is empty")
		}
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, val := node.Content[i], node.Content[i+1]
			if isStringScalar(key) {
				add(key.Value, val)
				continue
			}
			// Non-string key: fall back to the entry's own id field.
			if val.Kind == yaml.MappingNode {
				add(scalarField(val, "id"), val)
			}
		}
	case yaml.SequenceNode:
		if len(node.Content) == 0 {
			return nil, errors.New(errors.ErrCodeMissingPacks, "packs section is empty")
		}
		for _, entry := range node.Content {
			if entry.Kind == yaml.MappingNode {
				add(scalarField(entry, "id"), entry)
			}
		}
	default:
		return nil, errors.New(errors.ErrCodeMissingPacks, "packs section must be a mapping or list")
	}

	if len(packs) == 0 {
		return nil, errors.New(errors.ErrCodeNoValidPacks, "no valid packs remain after normalization")
	}
	return packs, nil
}

// parsePack normalizes a single pack entry. The id has already been resolved
// and validated by the caller.
func parsePack(id string, entry *yaml.Node) Pack {
	pages := stringList(field(entry, "pages"))
	return Pack{
		ID:          id,
		Version:     strings.TrimSpace(scalarField(entry, "version")),
		Description: scalarField(entry, "description"),
		Pages:       pages,
		DependsOn:   stringList(field(entry, "depends_on")),
		Tags:        stringList(field(entry, "tags")),
		PageCount:   len(pages),
	}
}

// =============================================================================
// YAML Node Helpers
// =============================================================================

// documentRoot unwraps the document node to its single content node.
func documentRoot(doc *yaml.Node) *yaml.Node {
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		return doc.Content[0]
	}
	return nil
}

// field returns the value node for key within a mapping, or nil.
func field(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		k := node.Content[i]
		if isStringScalar(k) && k.Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

// mappingField returns the value node for key if it is a mapping, or nil.
func mappingField(node *yaml.Node, key string) *yaml.Node {
	v := field(node, key)
	if v == nil || v.Kind != yaml.MappingNode {
		return nil
	}
	return v
}

// scalarField coerces the value for key to a string.
// Missing keys, non-scalar values, and explicit nulls become "".
func scalarField(node *yaml.Node, key string) string {
	return scalarString(field(node, key))
}

// scalarString coerces a node to its scalar string value.
// Non-scalar nodes and explicit nulls become "".
func scalarString(node *yaml.Node) string {
	if node == nil || node.Kind != yaml.ScalarNode || node.Tag == "!!null" {
		return ""
	}
	return node.Value
}

// isStringScalar reports whether a node is a string-typed scalar.
// YAML distinguishes string keys from ints, bools, and nulls by tag.
func isStringScalar(node *yaml.Node) bool {
	return node != nil && node.Kind == yaml.ScalarNode && node.Tag == "!!str"
}

// stringList normalizes a node to a list of trimmed non-empty strings.
// Non-list values become an empty list; non-string elements are coerced to
// empty string and filtered out.
func stringList(node *yaml.Node) []string {
	out := []string{}
	if node == nil || node.Kind != yaml.SequenceNode {
		return out
	}
	for _, elem := range node.Content {
		if !isStringScalar(elem) {
			continue
		}
		if s := strings.TrimSpace(elem.Value); s != "" {
			out = append(out, s)
		}
	}
	return out
}
