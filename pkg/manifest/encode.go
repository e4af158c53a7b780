package manifest

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Encode serializes a normalized Manifest back to canonical YAML.
//
// The output round-trips: Parse(Encode(m)) yields a Manifest equal to m for
// any m produced by Parse. Pages and packs are emitted as mappings keyed by
// name and id, in the manifest's insertion order. PageCount is derived data
// and is not emitted.
func Encode(m *Manifest) ([]byte, error) {
	root := newMapping()

	addScalarPair(root, "schema_version", m.SchemaVersion)
	addScalarPair(root, "last_updated", m.LastUpdated)
	addScalarPair(root, "name", m.Name)
	addScalarPair(root, "description", m.Description)
	addScalarPair(root, "author", m.Author)

	pages := newMapping()
	for _, p := range m.Pages {
		entry := newMapping()
		addScalarPair(entry, "file", p.File)
		if p.LastUpdated != "" {
			addScalarPair(entry, "last_updated", p.LastUpdated)
		}
		addPair(pages, p.Name, entry)
	}
	addPair(root, "pages", pages)

	packs := newMapping()
	for _, p := range m.Packs {
		entry := newMapping()
		addScalarPair(entry, "version", p.Version)
		addScalarPair(entry, "description", p.Description)
		addPair(entry, "pages", newSequence(p.Pages))
		addPair(entry, "depends_on", newSequence(p.DependsOn))
		addPair(entry, "tags", newSequence(p.Tags))
		addPair(packs, p.ID, entry)
	}
	addPair(root, "packs", packs)

	out, err := yaml.Marshal(root)
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	return out, nil
}

func newMapping() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

func newScalar(value string) *yaml.Node {
	// Force the string tag so numeric-looking values ("2", "1.0") survive
	// a round trip as strings.
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

func newSequence(values []string) *yaml.Node {
	seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, v := range values {
		seq.Content = append(seq.Content, newScalar(v))
	}
	return seq
}

func addPair(m *yaml.Node, key string, value *yaml.Node) {
	m.Content = append(m.Content, newScalar(key), value)
}

func addScalarPair(m *yaml.Node, key, value string) {
	addPair(m, key, newScalar(value))
}
