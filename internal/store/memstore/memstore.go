// Package memstore is an in-process store.Store. Writes run against a
// clone of the state which replaces the live state only when the
// transaction function succeeds.
package memstore

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/agenthands/playbill/internal/core/model"
	"github.com/agenthands/playbill/internal/store"
)

var errReadOnly = errors.New("memstore: write attempted in read transaction")

type state struct {
	nodes map[string]store.Node
	edges []store.Edge
}

func (s state) clone() state {
	nodes := make(map[string]store.Node, len(s.nodes))
	for id, n := range s.nodes {
		nodes[id] = cloneNode(n)
	}
	edges := make([]store.Edge, len(s.edges))
	for i, e := range s.edges {
		edges[i] = cloneEdge(e)
	}
	return state{nodes: nodes, edges: edges}
}

func cloneNode(n store.Node) store.Node {
	n.Props = maps.Clone(n.Props)
	return n
}

func cloneEdge(e store.Edge) store.Edge {
	e.Props = maps.Clone(e.Props)
	return e
}

type Store struct {
	mu    sync.RWMutex
	state state
}

func New() *Store {
	return &Store{state: state{nodes: make(map[string]store.Node)}}
}

func (s *Store) Read(ctx context.Context, fn func(tx store.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&tx{state: &s.state, readOnly: true})
}

func (s *Store) Write(ctx context.Context, fn func(tx store.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	working := s.state.clone()
	if err := fn(&tx{state: &working}); err != nil {
		return err
	}
	s.state = working
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	return nil
}

type tx struct {
	state    *state
	readOnly bool
}

func (t *tx) GetNode(ctx context.Context, uuid string) (store.Node, error) {
	n, ok := t.state.nodes[uuid]
	if !ok {
		return store.Node{}, store.ErrNotFound
	}
	return cloneNode(n), nil
}

func (t *tx) FindNode(ctx context.Context, kind model.Kind, name, differentiator string) (store.Node, error) {
	var matches []store.Node
	for _, n := range t.state.nodes {
		if n.Kind == kind && n.Name == name && n.Differentiator == differentiator {
			matches = append(matches, n)
		}
	}
	if len(matches) == 0 {
		return store.Node{}, store.ErrNotFound
	}
	store.SortNodes(matches)
	return cloneNode(matches[0]), nil
}

func (t *tx) ListNodes(ctx context.Context, kind model.Kind) ([]store.Node, error) {
	var nodes []store.Node
	for _, n := range t.state.nodes {
		if n.Kind == kind {
			nodes = append(nodes, cloneNode(n))
		}
	}
	store.SortNodes(nodes)
	return nodes, nil
}

func (t *tx) CreateNode(ctx context.Context, node store.Node) error {
	if t.readOnly {
		return errReadOnly
	}
	if _, exists := t.state.nodes[node.UUID]; exists {
		return fmt.Errorf("memstore: node %s already exists", node.UUID)
	}
	t.state.nodes[node.UUID] = cloneNode(node)
	return nil
}

func (t *tx) UpdateNode(ctx context.Context, node store.Node) error {
	if t.readOnly {
		return errReadOnly
	}
	existing, ok := t.state.nodes[node.UUID]
	if !ok {
		return store.ErrNotFound
	}
	node.Kind = existing.Kind
	t.state.nodes[node.UUID] = cloneNode(node)
	return nil
}

func (t *tx) DeleteNode(ctx context.Context, uuid string) error {
	if t.readOnly {
		return errReadOnly
	}
	if _, ok := t.state.nodes[uuid]; !ok {
		return store.ErrNotFound
	}
	delete(t.state.nodes, uuid)
	t.state.edges = slices.DeleteFunc(t.state.edges, func(e store.Edge) bool {
		return e.From == uuid || e.To == uuid
	})
	return nil
}

func (t *tx) Outgoing(ctx context.Context, uuid string, edgeType model.EdgeType) ([]store.Relation, error) {
	var rels []store.Relation
	for _, e := range t.state.edges {
		if e.Type == edgeType && e.From == uuid {
			rels = append(rels, store.Relation{Edge: cloneEdge(e), Node: cloneNode(t.state.nodes[e.To])})
		}
	}
	store.SortRelations(rels, store.Outgoing)
	return rels, nil
}

func (t *tx) Incoming(ctx context.Context, uuid string, edgeType model.EdgeType) ([]store.Relation, error) {
	var rels []store.Relation
	for _, e := range t.state.edges {
		if e.Type == edgeType && e.To == uuid {
			rels = append(rels, store.Relation{Edge: cloneEdge(e), Node: cloneNode(t.state.nodes[e.From])})
		}
	}
	store.SortRelations(rels, store.Incoming)
	return rels, nil
}

func (t *tx) Neighbours(ctx context.Context, uuid string) ([]store.Relation, error) {
	var rels []store.Relation
	for _, e := range t.state.edges {
		switch uuid {
		case e.From:
			rels = append(rels, store.Relation{Edge: cloneEdge(e), Node: cloneNode(t.state.nodes[e.To])})
		case e.To:
			rels = append(rels, store.Relation{Edge: cloneEdge(e), Node: cloneNode(t.state.nodes[e.From])})
		}
	}
	store.SortNeighbours(rels)
	return rels, nil
}

func (t *tx) CreateEdge(ctx context.Context, edge store.Edge) error {
	if t.readOnly {
		return errReadOnly
	}
	if _, ok := t.state.nodes[edge.From]; !ok {
		return fmt.Errorf("memstore: edge source %s: %w", edge.From, store.ErrNotFound)
	}
	if _, ok := t.state.nodes[edge.To]; !ok {
		return fmt.Errorf("memstore: edge target %s: %w", edge.To, store.ErrNotFound)
	}
	t.state.edges = append(t.state.edges, cloneEdge(edge))
	return nil
}

func (t *tx) DeleteEdges(ctx context.Context, uuid string, dir store.Direction, edgeTypes ...model.EdgeType) error {
	if t.readOnly {
		return errReadOnly
	}
	t.state.edges = slices.DeleteFunc(t.state.edges, func(e store.Edge) bool {
		anchor := e.From
		if dir == store.Incoming {
			anchor = e.To
		}
		return anchor == uuid && slices.Contains(edgeTypes, e.Type)
	})
	return nil
}
