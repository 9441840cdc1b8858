package store

import (
	"cmp"
	"slices"
)

// SortNodes orders nodes by name, then differentiator, then uuid.
func SortNodes(nodes []Node) {
	slices.SortStableFunc(nodes, func(a, b Node) int {
		return cmp.Or(
			cmp.Compare(a.Name, b.Name),
			cmp.Compare(a.Differentiator, b.Differentiator),
			cmp.Compare(a.UUID, b.UUID),
		)
	})
}

// SortRelations puts relations in the order every backend returns them:
// outgoing by position, incoming by source node then position.
func SortRelations(rels []Relation, dir Direction) {
	slices.SortStableFunc(rels, func(a, b Relation) int {
		if dir == Incoming {
			return cmp.Or(
				cmp.Compare(a.Edge.From, b.Edge.From),
				cmp.Compare(a.Edge.Position, b.Edge.Position),
			)
		}
		return cmp.Or(
			cmp.Compare(a.Edge.Position, b.Edge.Position),
			cmp.Compare(a.Edge.To, b.Edge.To),
		)
	})
}

// SortNeighbours orders a mixed-direction edge list deterministically.
func SortNeighbours(rels []Relation) {
	slices.SortStableFunc(rels, func(a, b Relation) int {
		return cmp.Or(
			cmp.Compare(a.Edge.Type, b.Edge.Type),
			cmp.Compare(a.Edge.From, b.Edge.From),
			cmp.Compare(a.Edge.To, b.Edge.To),
			cmp.Compare(a.Edge.Position, b.Edge.Position),
		)
	})
}
