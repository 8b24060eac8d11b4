package graph

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// FilterByRadius keeps the nodes within radius hops of any seed,
// treating edges as undirected. All seeds share a single walk and one
// visited set. When traversable is non-empty the walk only expands
// through seed nodes and nodes of a traversable type; reached nodes of
// other types stay in the result but act as dead ends. Without seeds,
// or with a negative radius, the graph passes through unchanged.
func FilterByRadius(g *Graph, seeds []string, radius int, traversable []string) *Graph {
	if len(seeds) == 0 || radius < 0 {
		return g
	}

	adjacency := make(map[string][]string, len(g.Nodes))
	for _, e := range g.Edges {
		adjacency[e.Source] = append(adjacency[e.Source], e.Target)
		adjacency[e.Target] = append(adjacency[e.Target], e.Source)
	}

	types := make(map[string]string, len(g.Nodes))
	for _, n := range g.Nodes {
		types[n.ID] = n.Type
	}

	gate := mapset.NewSet(traversable...)
	seedSet := mapset.NewSet[string]()
	visited := mapset.NewSet[string]()

	type hop struct {
		id    string
		depth int
	}
	queue := make([]hop, 0, len(seeds))
	for _, s := range seeds {
		// seeds that are not in the graph are ignored
		if _, ok := types[s]; !ok {
			continue
		}
		if visited.Contains(s) {
			continue
		}
		visited.Add(s)
		seedSet.Add(s)
		queue = append(queue, hop{id: s})
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if cur.depth == radius {
			continue
		}
		if gate.Cardinality() > 0 && !seedSet.Contains(cur.id) && !gate.Contains(types[cur.id]) {
			continue
		}

		for _, next := range adjacency[cur.id] {
			if visited.Contains(next) {
				continue
			}
			visited.Add(next)
			queue = append(queue, hop{id: next, depth: cur.depth + 1})
		}
	}

	return keepNodes(g, visited)
}

// FilterByTypes keeps only nodes of the given types and the edges whose
// endpoints both survive. An empty list keeps everything.
func FilterByTypes(g *Graph, nodeTypes []string) *Graph {
	if len(nodeTypes) == 0 {
		return g
	}

	keep := mapset.NewSet(nodeTypes...)
	kept := mapset.NewSet[string]()
	for _, n := range g.Nodes {
		if keep.Contains(n.Type) {
			kept.Add(n.ID)
		}
	}

	return keepNodes(g, kept)
}

// keepNodes projects the graph onto a node id set. Edges survive only
// when both endpoints do.
func keepNodes(g *Graph, ids mapset.Set[string]) *Graph {
	out := &Graph{Nodes: []*Node{}, Edges: []*Edge{}}
	for _, n := range g.Nodes {
		if ids.Contains(n.ID) {
			out.Nodes = append(out.Nodes, n)
		}
	}
	for _, e := range g.Edges {
		if ids.Contains(e.Source) && ids.Contains(e.Target) {
			out.Edges = append(out.Edges, e)
		}
	}

	return out
}
