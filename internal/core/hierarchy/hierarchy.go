// Package hierarchy loads and validates the shallow sub/sur trees that
// materials, productions and venues form.
package hierarchy

import (
	"context"
	"errors"
	"fmt"

	"github.com/agenthands/playbill/internal/core/model"
	"github.com/agenthands/playbill/internal/store"
)

// Hierarchy describes one self-referential tree. Ceiling is the maximum
// number of generations a single chain may span.
type Hierarchy struct {
	Kind    model.Kind
	Edge    model.EdgeType
	Ceiling int
	Noun    string
}

var (
	Materials   = Hierarchy{Kind: model.KindMaterial, Edge: model.EdgeHasSubMaterial, Ceiling: 3, Noun: "material"}
	Productions = Hierarchy{Kind: model.KindProduction, Edge: model.EdgeHasSubProduction, Ceiling: 3, Noun: "production"}
	Venues      = Hierarchy{Kind: model.KindVenue, Edge: model.EdgeHasSubVenue, Ceiling: 2, Noun: "venue"}
)

// For returns the hierarchy nodes of kind belong to.
func For(kind model.Kind) (Hierarchy, bool) {
	switch kind {
	case model.KindMaterial:
		return Materials, true
	case model.KindProduction:
		return Productions, true
	case model.KindVenue:
		return Venues, true
	}
	return Hierarchy{}, false
}

// Tree is a node with its loaded descendants.
type Tree struct {
	Node store.Node
	Subs []Tree
}

// Height counts the generations in the tree, itself included.
func (t Tree) Height() int {
	h := 0
	for _, s := range t.Subs {
		h = max(h, s.Height())
	}
	return h + 1
}

// Neighbourhood is everything within Ceiling-1 hops of a node in one
// hierarchy. Surs is ordered nearest first.
type Neighbourhood struct {
	Subject store.Node
	Surs    []store.Node
	Subs    []Tree
}

// Depth is the generation of the subject counted from its root, 1-based.
func (n Neighbourhood) Depth() int {
	return len(n.Surs) + 1
}

// Height is the number of generations from the subject down, itself
// included.
func (n Neighbourhood) Height() int {
	return Tree{Node: n.Subject, Subs: n.Subs}.Height()
}

// Sur returns the direct parent, if any.
func (n Neighbourhood) Sur() (store.Node, bool) {
	if len(n.Surs) == 0 {
		return store.Node{}, false
	}
	return n.Surs[0], true
}

// Load walks up to Ceiling-1 generations in each direction from uuid. The
// walk is breadth-first and never revisits a node, so a corrupt graph
// containing a cycle still terminates.
func (h Hierarchy) Load(ctx context.Context, tx store.Tx, uuid string) (Neighbourhood, error) {
	subject, err := tx.GetNode(ctx, uuid)
	if err != nil {
		return Neighbourhood{}, err
	}
	n := Neighbourhood{Subject: subject}
	visited := map[string]bool{uuid: true}

	if n.Surs, err = h.climb(ctx, tx, uuid, visited); err != nil {
		return Neighbourhood{}, err
	}
	if n.Subs, err = h.loadSubs(ctx, tx, uuid, h.Ceiling-1, visited); err != nil {
		return Neighbourhood{}, err
	}
	return n, nil
}

// Surs returns the ancestors of uuid, nearest first, without loading
// descendants.
func (h Hierarchy) Surs(ctx context.Context, tx store.Tx, uuid string) ([]store.Node, error) {
	return h.climb(ctx, tx, uuid, map[string]bool{uuid: true})
}

func (h Hierarchy) climb(ctx context.Context, tx store.Tx, uuid string, visited map[string]bool) ([]store.Node, error) {
	var surs []store.Node
	current := uuid
	for range h.Ceiling - 1 {
		rels, err := tx.Incoming(ctx, current, h.Edge)
		if err != nil {
			return nil, fmt.Errorf("failed to load sur-%s of %s: %w", h.Noun, current, err)
		}
		if len(rels) == 0 || visited[rels[0].Node.UUID] {
			break
		}
		sur := rels[0].Node
		visited[sur.UUID] = true
		surs = append(surs, sur)
		current = sur.UUID
	}
	return surs, nil
}

func (h Hierarchy) loadSubs(ctx context.Context, tx store.Tx, uuid string, levels int, visited map[string]bool) ([]Tree, error) {
	if levels == 0 {
		return nil, nil
	}
	rels, err := tx.Outgoing(ctx, uuid, h.Edge)
	if err != nil {
		return nil, fmt.Errorf("failed to load sub-%ss of %s: %w", h.Noun, uuid, err)
	}
	var subs []Tree
	for _, r := range rels {
		if visited[r.Node.UUID] {
			continue
		}
		visited[r.Node.UUID] = true
		children, err := h.loadSubs(ctx, tx, r.Node.UUID, levels-1, visited)
		if err != nil {
			return nil, err
		}
		subs = append(subs, Tree{Node: r.Node, Subs: children})
	}
	return subs, nil
}

// LoadOptional is Load that reports a missing node as ok=false.
func (h Hierarchy) LoadOptional(ctx context.Context, tx store.Tx, uuid string) (Neighbourhood, bool, error) {
	n, err := h.Load(ctx, tx, uuid)
	if errors.Is(err, store.ErrNotFound) {
		return Neighbourhood{}, false, nil
	}
	if err != nil {
		return Neighbourhood{}, false, err
	}
	return n, true, nil
}
