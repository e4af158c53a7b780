package graph

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/packhub/packhub/pkg/manifest"
)

func pack(id string, pages, deps []string) manifest.Pack {
	return manifest.Pack{
		ID:        id,
		Pages:     pages,
		DependsOn: deps,
		PageCount: len(pages),
	}
}

func TestBuildEndToEnd(t *testing.T) {
	// A has one page, B has two pages and depends on A. A is a depends
	// target, so B is the sole root.
	packs := []manifest.Pack{
		pack("A", []string{"p1"}, nil),
		pack("B", []string{"p2", "p3"}, []string{"A"}),
	}
	g := Build(packs)

	if len(g.ContainsEdges) != 3 {
		t.Errorf("len(ContainsEdges) = %d, want 3", len(g.ContainsEdges))
	}
	wantDepends := []Edge{{From: "B", To: "A"}}
	if !reflect.DeepEqual(g.DependsEdges, wantDepends) {
		t.Errorf("DependsEdges = %v, want %v", g.DependsEdges, wantDepends)
	}
	if !reflect.DeepEqual(g.Roots, []string{"B"}) {
		t.Errorf("Roots = %v, want [B]", g.Roots)
	}
	if g.HasCycle {
		t.Error("HasCycle = true, want false")
	}
}

func TestBuildRootDependsOnOthers(t *testing.T) {
	// Depending on other packs does not cost a pack its root status; only
	// being depended upon does.
	packs := []manifest.Pack{
		pack("lib", nil, nil),
		pack("app", nil, []string{"lib"}),
	}
	g := Build(packs)

	if !reflect.DeepEqual(g.Roots, []string{"app"}) {
		t.Errorf("Roots = %v, want [app]", g.Roots)
	}
}

func TestBuildNoDependencies(t *testing.T) {
	// With no depends_on anywhere, every pack is a root.
	packs := []manifest.Pack{
		pack("x", nil, nil),
		pack("y", []string{"p"}, nil),
		pack("z", nil, nil),
	}
	g := Build(packs)

	if g.HasCycle {
		t.Error("HasCycle = true, want false")
	}
	if !reflect.DeepEqual(g.Roots, []string{"x", "y", "z"}) {
		t.Errorf("Roots = %v, want [x y z]", g.Roots)
	}
	if len(g.DependsEdges) != 0 {
		t.Errorf("DependsEdges = %v, want empty", g.DependsEdges)
	}
}

func TestBuildCycle(t *testing.T) {
	packs := []manifest.Pack{
		pack("a", nil, []string{"b"}),
		pack("b", nil, []string{"a"}),
	}
	g := Build(packs)

	if !g.HasCycle {
		t.Error("HasCycle = false, want true for a<->b")
	}
	// Fail-soft: edges still present.
	if len(g.DependsEdges) != 2 {
		t.Errorf("len(DependsEdges) = %d, want 2", len(g.DependsEdges))
	}
	// Both packs are depended on, so no roots.
	if len(g.Roots) != 0 {
		t.Errorf("Roots = %v, want empty", g.Roots)
	}
}

func TestBuildSelfCycle(t *testing.T) {
	g := Build([]manifest.Pack{pack("a", nil, []string{"a"})})
	if !g.HasCycle {
		t.Error("HasCycle = false, want true for self-dependency")
	}
}

func TestBuildLongCycle(t *testing.T) {
	packs := []manifest.Pack{
		pack("a", nil, []string{"b"}),
		pack("b", nil, []string{"c"}),
		pack("c", nil, []string{"a"}),
	}
	if g := Build(packs); !g.HasCycle {
		t.Error("HasCycle = false, want true for a->b->c->a")
	}
}

func TestBuildDiamondIsNotCycle(t *testing.T) {
	// Shared dependency reached twice must not read as a back-edge.
	packs := []manifest.Pack{
		pack("top", nil, []string{"left", "right"}),
		pack("left", nil, []string{"base"}),
		pack("right", nil, []string{"base"}),
		pack("base", nil, nil),
	}
	g := Build(packs)
	if g.HasCycle {
		t.Error("HasCycle = true, want false for diamond")
	}
	if !reflect.DeepEqual(g.Roots, []string{"top"}) {
		t.Errorf("Roots = %v, want [top]", g.Roots)
	}
}

func TestBuildDanglingDependencyRetained(t *testing.T) {
	g := Build([]manifest.Pack{pack("a", nil, []string{"ghost"})})

	want := []Edge{{From: "a", To: "ghost"}}
	if !reflect.DeepEqual(g.DependsEdges, want) {
		t.Errorf("DependsEdges = %v, want %v", g.DependsEdges, want)
	}
	if g.HasCycle {
		t.Error("dangling reference must not read as a cycle")
	}
	// ghost is not a pack, so only a stays a root candidate.
	if !reflect.DeepEqual(g.Roots, []string{"a"}) {
		t.Errorf("Roots = %v, want [a]", g.Roots)
	}
}

func TestRootsExcludeExactlyDependsTargets(t *testing.T) {
	packs := []manifest.Pack{
		pack("a", nil, []string{"b"}),
		pack("b", nil, nil),
		pack("c", nil, []string{"b"}),
	}
	g := Build(packs)

	targets := map[string]bool{}
	for _, e := range g.DependsEdges {
		targets[e.To] = true
	}
	for _, r := range g.Roots {
		if targets[r] {
			t.Errorf("root %s is a depends target", r)
		}
	}
	for _, p := range packs {
		isRoot := false
		for _, r := range g.Roots {
			if r == p.ID {
				isRoot = true
			}
		}
		if !targets[p.ID] && !isRoot {
			t.Errorf("pack %s is not a target but missing from roots", p.ID)
		}
	}
}

func TestBuildDeepChain(t *testing.T) {
	// A long linear chain must not blow the stack: detection is iterative.
	const n = 100000
	packs := make([]manifest.Pack, n)
	for i := range packs {
		var deps []string
		if i+1 < n {
			deps = []string{fmt.Sprintf("p%d", i+1)}
		}
		packs[i] = pack(fmt.Sprintf("p%d", i), nil, deps)
	}

	g := Build(packs)
	if g.HasCycle {
		t.Error("HasCycle = true, want false for linear chain")
	}
	if !reflect.DeepEqual(g.Roots, []string{"p0"}) {
		t.Errorf("Roots = %v, want [p0]", g.Roots)
	}
}

func TestBuildEmpty(t *testing.T) {
	g := Build(nil)
	if g.HasCycle {
		t.Error("HasCycle = true for empty input")
	}
	if len(g.ContainsEdges) != 0 || len(g.DependsEdges) != 0 || len(g.Roots) != 0 {
		t.Errorf("empty input produced non-empty graph: %+v", g)
	}
}
