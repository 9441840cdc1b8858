// Package store defines the storage collaborator the core runs against.
// Backends live in sub-packages (memstore, sqlitestore) and in
// internal/driver for Neo4j.
package store

import (
	"context"
	"errors"

	"github.com/agenthands/playbill/internal/core/model"
)

// ErrNotFound is returned by lookups that match no node.
var ErrNotFound = errors.New("node not found")

// Node is a stored entity. Props holds kind-specific scalars (subtitle,
// format, year, dates); integer values may come back as int, int64 or
// float64 depending on the backend, use Int to read them.
type Node struct {
	UUID           string
	Kind           model.Kind
	Name           string
	Differentiator string
	Props          map[string]any
}

// String returns a string prop or "".
func (n Node) String(key string) string {
	s, _ := n.Props[key].(string)
	return s
}

// Int returns an integer prop or 0.
func (n Node) Int(key string) int {
	return toInt(n.Props[key])
}

// Direction selects which end of an edge a query anchors on.
type Direction int

const (
	Outgoing Direction = iota
	Incoming
)

// Edge is a directed relationship. Position orders edges of one type
// leaving the same node.
type Edge struct {
	Type     model.EdgeType
	From     string
	To       string
	Position int
	Props    map[string]any
}

func (e Edge) String(key string) string {
	s, _ := e.Props[key].(string)
	return s
}

func (e Edge) Int(key string) int {
	return toInt(e.Props[key])
}

func (e Edge) Bool(key string) bool {
	b, _ := e.Props[key].(bool)
	return b
}

// Relation is an edge together with the node at its far end.
type Relation struct {
	Edge Edge
	Node Node
}

// Tx is the set of graph operations available inside a transaction.
type Tx interface {
	GetNode(ctx context.Context, uuid string) (Node, error)
	// FindNode matches on kind, name and differentiator where an empty
	// differentiator only matches nodes without one.
	FindNode(ctx context.Context, kind model.Kind, name, differentiator string) (Node, error)
	ListNodes(ctx context.Context, kind model.Kind) ([]Node, error)
	CreateNode(ctx context.Context, node Node) error
	UpdateNode(ctx context.Context, node Node) error
	DeleteNode(ctx context.Context, uuid string) error

	Outgoing(ctx context.Context, uuid string, edgeType model.EdgeType) ([]Relation, error)
	Incoming(ctx context.Context, uuid string, edgeType model.EdgeType) ([]Relation, error)
	// Neighbours returns every edge touching uuid in either direction.
	Neighbours(ctx context.Context, uuid string) ([]Relation, error)
	CreateEdge(ctx context.Context, edge Edge) error
	DeleteEdges(ctx context.Context, uuid string, dir Direction, edgeTypes ...model.EdgeType) error
}

// Store runs functions inside transactions. Write commits only when fn
// returns nil; Read never mutates.
type Store interface {
	Read(ctx context.Context, fn func(tx Tx) error) error
	Write(ctx context.Context, fn func(tx Tx) error) error
	Close(ctx context.Context) error
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case int32:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
