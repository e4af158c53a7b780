// Package graph derives the dependency/containment graph from normalized
// manifest packs.
//
// The graph has two edge sets: contains edges (pack -> page it bundles) and
// depends edges (pack -> pack it requires). Roots are packs with no incoming
// depends edge. Construction is a pure function over the pack list - no I/O,
// deterministic, safe for concurrent use on independent inputs.
//
// Cycle detection is fail-soft: a cyclic manifest still produces the full
// edge set with HasCycle set, and the caller decides how to react. Dangling
// depends_on references are likewise retained as edges rather than dropped.
package graph

import (
	"github.com/packhub/packhub/pkg/manifest"
)

// =============================================================================
// Graph Types
// =============================================================================

// Edge represents a directed edge in the graph.
type Edge struct {
	From string `json:"from" bson:"from"`
	To   string `json:"to" bson:"to"`
}

// Graph is the dependency/containment structure derived from a manifest.
// It is recomputed on every build and never persisted on its own.
type Graph struct {
	// ContainsEdges relate a pack to each page it bundles, in page-list order.
	ContainsEdges []Edge `json:"containsEdges" bson:"containsEdges"`

	// DependsEdges relate a pack to each pack it requires, in depends_on
	// order. Targets are retained even when no pack with that id exists.
	DependsEdges []Edge `json:"dependsEdges" bson:"dependsEdges"`

	// Roots are pack ids that never appear as a depends edge target,
	// in the packs' original order.
	Roots []string `json:"roots" bson:"roots"`

	// HasCycle reports whether the depends edges contain a cycle.
	HasCycle bool `json:"hasCycle" bson:"hasCycle"`
}

// =============================================================================
// Builder
// =============================================================================

// Build derives the graph from packs. The pack slice's order determines edge
// and root ordering.
func Build(packs []manifest.Pack) *Graph {
	g := &Graph{
		ContainsEdges: []Edge{},
		DependsEdges:  []Edge{},
		Roots:         []string{},
	}

	dependedOn := map[string]bool{}
	adjacency := map[string][]string{}

	for _, pack := range packs {
		for _, page := range pack.Pages {
			g.ContainsEdges = append(g.ContainsEdges, Edge{From: pack.ID, To: page})
		}
		for _, dep := range pack.DependsOn {
			g.DependsEdges = append(g.DependsEdges, Edge{From: pack.ID, To: dep})
			dependedOn[dep] = true
			adjacency[pack.ID] = append(adjacency[pack.ID], dep)
		}
	}

	for _, pack := range packs {
		if !dependedOn[pack.ID] {
			g.Roots = append(g.Roots, pack.ID)
		}
	}

	g.HasCycle = detectCycle(packs, adjacency)
	return g
}

// =============================================================================
// Cycle Detection
// =============================================================================

// Traversal colors: white = unvisited, gray = on the current DFS path,
// black = fully explored.
const (
	white = iota
	gray
	black
)

// frame is one entry of the explicit DFS stack. next tracks how many of the
// node's dependencies have been expanded so far.
type frame struct {
	id   string
	next int
}

// detectCycle reports whether the depends adjacency contains a back-edge.
//
// The traversal is an iterative depth-first search with an explicit stack.
// Manifests can be adversarially deep, so recursing on the call stack is not
// an option here. A gray target found during expansion is a back-edge.
func detectCycle(packs []manifest.Pack, adjacency map[string][]string) bool {
	color := map[string]int{}

	for _, pack := range packs {
		if color[pack.ID] != white {
			continue
		}

		stack := []frame{{id: pack.ID}}
		color[pack.ID] = gray

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			deps := adjacency[top.id]

			if top.next >= len(deps) {
				color[top.id] = black
				stack = stack[:len(stack)-1]
				continue
			}

			child := deps[top.next]
			top.next++

			switch color[child] {
			case white:
				color[child] = gray
				stack = append(stack, frame{id: child})
			case gray:
				return true
			}
		}
	}
	return false
}
