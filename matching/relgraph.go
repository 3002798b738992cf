package matching

import "learnpath/catalog"

// RelationGraph indexes taxonomy edges by source and by target so that both
// outgoing and incoming neighbors of any tag resolve in O(1). Built once per
// catalog snapshot, read-only afterwards.
type RelationGraph struct {
	bySource map[string][]catalog.Edge
	byTarget map[string][]catalog.Edge
}

// NewRelationGraph builds the adjacency maps from an edge list. Edge order
// within each adjacency list follows input order, which keeps traversal
// deterministic.
func NewRelationGraph(edges []catalog.Edge) *RelationGraph {
	g := &RelationGraph{
		bySource: make(map[string][]catalog.Edge),
		byTarget: make(map[string][]catalog.Edge),
	}
	for _, edge := range edges {
		if edge.Source == "" || edge.Target == "" {
			continue
		}
		g.bySource[edge.Source] = append(g.bySource[edge.Source], edge)
		g.byTarget[edge.Target] = append(g.byTarget[edge.Target], edge)
	}
	return g
}

// Outgoing returns the edges leaving the given tag.
func (g *RelationGraph) Outgoing(tagID string) []catalog.Edge {
	return g.bySource[tagID]
}

// Incoming returns the edges arriving at the given tag.
func (g *RelationGraph) Incoming(tagID string) []catalog.Edge {
	return g.byTarget[tagID]
}

// EdgeCount reports the number of indexed edges.
func (g *RelationGraph) EdgeCount() int {
	total := 0
	for _, edges := range g.bySource {
		total += len(edges)
	}
	return total
}
