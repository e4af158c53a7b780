// Package hierarchy builds the display tree consumed by the UI.
//
// The tree is exactly two levels deep: one synthetic root node whose children
// are the packs, in manifest insertion order. Pages are deliberately not
// nested below packs - the raw page map stays server-internal. Sorting, if a
// client wants it, is the client's concern; the builder never reorders.
package hierarchy

import (
	"github.com/packhub/packhub/pkg/manifest"
)

// Node types.
const (
	TypeRoot = "root"
	TypePack = "pack"
)

// Meta carries aggregate counts, present on the root node only.
type Meta struct {
	PackCount int `json:"pack_count" bson:"pack_count"`
	PageCount int `json:"page_count" bson:"page_count"`
}

// Node is one node of the display hierarchy.
type Node struct {
	Name     string `json:"name" bson:"name"`
	Label    string `json:"label" bson:"label"`
	Type     string `json:"type" bson:"type"`
	Version  string `json:"version,omitempty" bson:"version,omitempty"`
	Children []Node `json:"children" bson:"children"`
	Meta     *Meta  `json:"meta,omitempty" bson:"meta,omitempty"`
}

// Build produces the display hierarchy for packs.
// The root's meta counts packs and sums their page counts; each pack child
// carries its version and an empty children list.
func Build(packs []manifest.Pack) *Node {
	root := &Node{
		Name:     "root",
		Label:    "Packs",
		Type:     TypeRoot,
		Children: make([]Node, 0, len(packs)),
		Meta:     &Meta{PackCount: len(packs)},
	}

	for _, pack := range packs {
		root.Meta.PageCount += pack.PageCount
		root.Children = append(root.Children, Node{
			Name:     pack.ID,
			Label:    pack.ID,
			Type:     TypePack,
			Version:  pack.Version,
			Children: []Node{},
		})
	}

	return root
}
