package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// chainGraph builds people-1 - organisations-1 - contracts-1 -
// initiatives-1 with an extra self loop on the initiative.
func chainGraph() *Graph {
	return &Graph{
		Nodes: []*Node{
			{ID: "people-1", Type: "people"},
			{ID: "organisations-1", Type: "organisations"},
			{ID: "contracts-1", Type: "contracts"},
			{ID: "initiatives-1", Type: "initiatives"},
		},
		Edges: []*Edge{
			{ID: "e1", Source: "people-1", Target: "organisations-1"},
			{ID: "e2", Source: "organisations-1", Target: "contracts-1"},
			{ID: "e3", Source: "contracts-1", Target: "initiatives-1"},
			{ID: "loop", Source: "initiatives-1", Target: "initiatives-1"},
		},
	}
}

func nodeIDs(g *Graph) []string {
	ids := make([]string, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		ids = append(ids, n.ID)
	}
	return ids
}

func edgeIDs(g *Graph) []string {
	ids := make([]string, 0, len(g.Edges))
	for _, e := range g.Edges {
		ids = append(ids, e.ID)
	}
	return ids
}

func TestFilterByRadius(t *testing.T) {
	tests := []struct {
		name        string
		seeds       []string
		radius      int
		traversable []string
		wantNodes   []string
		wantEdges   []string
	}{
		{
			name:      "no seeds passes through",
			radius:    2,
			wantNodes: []string{"people-1", "organisations-1", "contracts-1", "initiatives-1"},
			wantEdges: []string{"e1", "e2", "e3", "loop"},
		},
		{
			name:      "negative radius passes through",
			seeds:     []string{"people-1"},
			radius:    -1,
			wantNodes: []string{"people-1", "organisations-1", "contracts-1", "initiatives-1"},
			wantEdges: []string{"e1", "e2", "e3", "loop"},
		},
		{
			name:      "radius zero keeps only the seed",
			seeds:     []string{"people-1"},
			radius:    0,
			wantNodes: []string{"people-1"},
			wantEdges: []string{},
		},
		{
			name:      "one hop",
			seeds:     []string{"people-1"},
			radius:    1,
			wantNodes: []string{"people-1", "organisations-1"},
			wantEdges: []string{"e1"},
		},
		{
			name:      "two hops",
			seeds:     []string{"people-1"},
			radius:    2,
			wantNodes: []string{"people-1", "organisations-1", "contracts-1"},
			wantEdges: []string{"e1", "e2"},
		},
		{
			name:      "radius beyond the graph keeps everything",
			seeds:     []string{"people-1"},
			radius:    10,
			wantNodes: []string{"people-1", "organisations-1", "contracts-1", "initiatives-1"},
			wantEdges: []string{"e1", "e2", "e3", "loop"},
		},
		{
			name:      "unknown seed selects nothing",
			seeds:     []string{"ghost-1"},
			radius:    3,
			wantNodes: []string{},
			wantEdges: []string{},
		},
		{
			name:      "edges between separately reached nodes survive",
			seeds:     []string{"people-1", "initiatives-1"},
			radius:    1,
			wantNodes: []string{"people-1", "organisations-1", "contracts-1", "initiatives-1"},
			wantEdges: []string{"e1", "e2", "e3", "loop"},
		},
		{
			name:        "non-traversable nodes are dead ends",
			seeds:       []string{"people-1"},
			radius:      3,
			traversable: []string{"people"},
			wantNodes:   []string{"people-1", "organisations-1"},
			wantEdges:   []string{"e1"},
		},
		{
			name:        "walk passes through traversable types only",
			seeds:       []string{"people-1"},
			radius:      3,
			traversable: []string{"people", "organisations"},
			wantNodes:   []string{"people-1", "organisations-1", "contracts-1"},
			wantEdges:   []string{"e1", "e2"},
		},
		{
			name:      "self loop stays within one hop",
			seeds:     []string{"initiatives-1"},
			radius:    1,
			wantNodes: []string{"contracts-1", "initiatives-1"},
			wantEdges: []string{"e3", "loop"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := FilterByRadius(chainGraph(), tt.seeds, tt.radius, tt.traversable)
			assert.ElementsMatch(t, tt.wantNodes, nodeIDs(g))
			assert.ElementsMatch(t, tt.wantEdges, edgeIDs(g))
		})
	}
}

func TestFilterByTypes(t *testing.T) {
	g := FilterByTypes(chainGraph(), nil)
	assert.Len(t, g.Nodes, 4)
	assert.Len(t, g.Edges, 4)

	g = FilterByTypes(chainGraph(), []string{"people", "organisations"})
	assert.ElementsMatch(t, []string{"people-1", "organisations-1"}, nodeIDs(g))
	assert.ElementsMatch(t, []string{"e1"}, edgeIDs(g))

	g = FilterByTypes(chainGraph(), []string{"unknown"})
	assert.Len(t, g.Nodes, 0)
	assert.Len(t, g.Edges, 0)
}
