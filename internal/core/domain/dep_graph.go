package domain

import (
	"slices"
	"unique"
)

type pathSet map[unique.Handle[string]]struct{}

// DependencyGraph tracks which files import which.
// deps and reverseDeps are kept symmetric under every mutation.
// It is not safe for concurrent use; owners guard it.
type DependencyGraph struct {
	deps        map[unique.Handle[string]]pathSet
	reverseDeps map[unique.Handle[string]]pathSet
}

// NewDependencyGraph creates an empty graph.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		deps:        make(map[unique.Handle[string]]pathSet),
		reverseDeps: make(map[unique.Handle[string]]pathSet),
	}
}

// Register replaces the dependency set of file with deps.
// Old edges are removed before new ones are added.
func (g *DependencyGraph) Register(file string, deps []string) {
	fh := unique.Make(file)
	g.unlink(fh)

	if len(deps) == 0 {
		return
	}

	set := make(pathSet, len(deps))
	for _, d := range deps {
		if d == file {
			continue
		}
		dh := unique.Make(d)
		set[dh] = struct{}{}

		rev, ok := g.reverseDeps[dh]
		if !ok {
			rev = make(pathSet)
			g.reverseDeps[dh] = rev
		}
		rev[fh] = struct{}{}
	}
	if len(set) > 0 {
		g.deps[fh] = set
	}
}

// Remove drops every edge where file is the dependent.
// Edges from other files to file are kept so their cascade still works if file reappears.
func (g *DependencyGraph) Remove(file string) {
	g.unlink(unique.Make(file))
}

func (g *DependencyGraph) unlink(fh unique.Handle[string]) {
	for dh := range g.deps[fh] {
		rev := g.reverseDeps[dh]
		delete(rev, fh)
		if len(rev) == 0 {
			delete(g.reverseDeps, dh)
		}
	}
	delete(g.deps, fh)
}

// TransitiveDependents walks reverseDeps breadth-first from file and returns
// every file that depends on it, directly or indirectly. file itself is excluded.
func (g *DependencyGraph) TransitiveDependents(file string) []string {
	start := unique.Make(file)
	visited := pathSet{start: {}}
	queue := []unique.Handle[string]{start}
	var out []string

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for dependent := range g.reverseDeps[current] {
			if _, seen := visited[dependent]; seen {
				continue
			}
			visited[dependent] = struct{}{}
			out = append(out, dependent.Value())
			queue = append(queue, dependent)
		}
	}

	slices.Sort(out)
	return out
}
