package graph

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
)

// Options configures DOT export.
type Options struct {
	// ShowPages includes contains edges (pack -> page) in the output.
	// When false, only the pack dependency structure is drawn.
	ShowPages bool
}

// ToDOT converts a Graph to Graphviz DOT format.
// Depends edges are drawn solid between box nodes; contains edges, when
// enabled, are drawn dashed toward ellipse page nodes. The resulting DOT
// string can be rendered with [RenderSVG].
func ToDOT(g *Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph packs {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	seen := map[string]bool{}
	node := func(id string) {
		if !seen[id] {
			seen[id] = true
			fmt.Fprintf(&buf, "  %q;\n", id)
		}
	}

	for _, r := range g.Roots {
		node(r)
	}
	for _, e := range g.DependsEdges {
		node(e.From)
		node(e.To)
	}

	if opts.ShowPages {
		for _, e := range g.ContainsEdges {
			node(e.From)
			if !seen["page:"+e.To] {
				seen["page:"+e.To] = true
				fmt.Fprintf(&buf, "  %q [shape=ellipse, style=filled, fillcolor=lightgrey, label=%q];\n", "page:"+e.To, e.To)
			}
		}
	}

	buf.WriteString("\n")
	for _, e := range g.DependsEdges {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}
	if opts.ShowPages {
		for _, e := range g.ContainsEdges {
			fmt.Fprintf(&buf, "  %q -> %q [style=dashed, arrowhead=none];\n", e.From, "page:"+e.To)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a Graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, g *Graph, opts Options) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	parsed, err := graphviz.ParseBytes([]byte(ToDOT(g, opts)))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer parsed.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, parsed, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
