package driver

import (
	"context"
	"errors"
	"fmt"
	"maps"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agenthands/playbill/internal/core/model"
	"github.com/agenthands/playbill/internal/store"
)

var errReadOnly = errors.New("driver: write attempted in read transaction")

// Reserved node properties; everything else round-trips through
// store.Node.Props.
const (
	propUUID           = "uuid"
	propName           = "name"
	propDifferentiator = "differentiator"
	propPosition       = "position"
)

// Store adapts a GraphDriver to store.Store.
type Store struct {
	driver GraphDriver
}

func NewStore(driver GraphDriver) *Store {
	return &Store{driver: driver}
}

func (s *Store) Read(ctx context.Context, fn func(tx store.Tx) error) error {
	return s.driver.ExecuteRead(ctx, func(r Runner) error {
		return fn(&tx{run: r, readOnly: true})
	})
}

func (s *Store) Write(ctx context.Context, fn func(tx store.Tx) error) error {
	return s.driver.ExecuteWrite(ctx, func(r Runner) error {
		return fn(&tx{run: r})
	})
}

func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

type tx struct {
	run      Runner
	readOnly bool
}

func nodeParams(n store.Node) map[string]any {
	props := maps.Clone(n.Props)
	if props == nil {
		props = map[string]any{}
	}
	props[propUUID] = n.UUID
	props[propName] = n.Name
	// Stored even when empty: the natural-key constraint skips nodes whose
	// constrained properties are null.
	props[propDifferentiator] = n.Differentiator
	return props
}

func toNode(v any) (store.Node, error) {
	dbNode, ok := v.(neo4j.Node)
	if !ok {
		return store.Node{}, fmt.Errorf("driver: expected node, got %T", v)
	}
	props := maps.Clone(dbNode.Props)
	n := store.Node{Props: props}
	n.UUID, _ = props[propUUID].(string)
	n.Name, _ = props[propName].(string)
	n.Differentiator, _ = props[propDifferentiator].(string)
	delete(props, propUUID)
	delete(props, propName)
	delete(props, propDifferentiator)
	for _, l := range dbNode.Labels {
		if k, err := model.KindFromLabel(l); err == nil {
			n.Kind = k
			break
		}
	}
	return n, nil
}

func recordNode(rec *neo4j.Record) (store.Node, error) {
	v, ok := rec.Get("node")
	if !ok {
		return store.Node{}, errors.New("driver: record has no node")
	}
	return toNode(v)
}

func count(records []*neo4j.Record, key string) int64 {
	if len(records) == 0 {
		return 0
	}
	v, _ := records[0].Get(key)
	n, _ := v.(int64)
	return n
}

func (t *tx) GetNode(ctx context.Context, uuid string) (store.Node, error) {
	records, err := t.run.Run(ctx, getNodeQuery, map[string]any{"uuid": uuid})
	if err != nil {
		return store.Node{}, err
	}
	if len(records) == 0 {
		return store.Node{}, store.ErrNotFound
	}
	return recordNode(records[0])
}

func (t *tx) FindNode(ctx context.Context, kind model.Kind, name, differentiator string) (store.Node, error) {
	q, ok := nodeStatements[kind]
	if !ok {
		return store.Node{}, fmt.Errorf("driver: unknown kind %q", kind)
	}
	records, err := t.run.Run(ctx, q.find, map[string]any{"name": name, "differentiator": differentiator})
	if err != nil {
		return store.Node{}, err
	}
	if len(records) == 0 {
		return store.Node{}, store.ErrNotFound
	}
	return recordNode(records[0])
}

func (t *tx) ListNodes(ctx context.Context, kind model.Kind) ([]store.Node, error) {
	q, ok := nodeStatements[kind]
	if !ok {
		return nil, fmt.Errorf("driver: unknown kind %q", kind)
	}
	records, err := t.run.Run(ctx, q.list, nil)
	if err != nil {
		return nil, err
	}
	nodes := make([]store.Node, 0, len(records))
	for _, rec := range records {
		n, err := recordNode(rec)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	store.SortNodes(nodes)
	return nodes, nil
}

func (t *tx) CreateNode(ctx context.Context, node store.Node) error {
	if t.readOnly {
		return errReadOnly
	}
	q, ok := nodeStatements[node.Kind]
	if !ok {
		return fmt.Errorf("driver: unknown kind %q", node.Kind)
	}
	_, err := t.run.Run(ctx, q.create, map[string]any{"props": nodeParams(node)})
	return err
}

func (t *tx) UpdateNode(ctx context.Context, node store.Node) error {
	if t.readOnly {
		return errReadOnly
	}
	records, err := t.run.Run(ctx, updateNodeQuery, map[string]any{"uuid": node.UUID, "props": nodeParams(node)})
	if err != nil {
		return err
	}
	if count(records, "matched") == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (t *tx) DeleteNode(ctx context.Context, uuid string) error {
	if t.readOnly {
		return errReadOnly
	}
	records, err := t.run.Run(ctx, deleteNodeQuery, map[string]any{"uuid": uuid})
	if err != nil {
		return err
	}
	if count(records, "matched") == 0 {
		return store.ErrNotFound
	}
	return nil
}

func toRelation(rec *neo4j.Record, edgeType model.EdgeType) (store.Relation, error) {
	n, err := recordNode(rec)
	if err != nil {
		return store.Relation{}, err
	}
	m := rec.AsMap()
	e := store.Edge{Type: edgeType}
	if edgeType == "" {
		s, _ := m["type"].(string)
		e.Type = model.EdgeType(s)
	}
	e.From, _ = m["from"].(string)
	e.To, _ = m["to"].(string)
	props, _ := m["props"].(map[string]any)
	e.Props = maps.Clone(props)
	if e.Props == nil {
		e.Props = map[string]any{}
	}
	if p, ok := e.Props[propPosition].(int64); ok {
		e.Position = int(p)
	}
	delete(e.Props, propPosition)
	return store.Relation{Edge: e, Node: n}, nil
}

func (t *tx) relations(ctx context.Context, cypher string, uuid string, edgeType model.EdgeType) ([]store.Relation, error) {
	records, err := t.run.Run(ctx, cypher, map[string]any{"uuid": uuid})
	if err != nil {
		return nil, err
	}
	rels := make([]store.Relation, 0, len(records))
	for _, rec := range records {
		r, err := toRelation(rec, edgeType)
		if err != nil {
			return nil, err
		}
		rels = append(rels, r)
	}
	return rels, nil
}

func (t *tx) Outgoing(ctx context.Context, uuid string, edgeType model.EdgeType) ([]store.Relation, error) {
	q, ok := edgeStatements[edgeType]
	if !ok {
		return nil, fmt.Errorf("driver: unknown edge type %q", edgeType)
	}
	rels, err := t.relations(ctx, q.outgoing, uuid, edgeType)
	if err != nil {
		return nil, err
	}
	store.SortRelations(rels, store.Outgoing)
	return rels, nil
}

func (t *tx) Incoming(ctx context.Context, uuid string, edgeType model.EdgeType) ([]store.Relation, error) {
	q, ok := edgeStatements[edgeType]
	if !ok {
		return nil, fmt.Errorf("driver: unknown edge type %q", edgeType)
	}
	rels, err := t.relations(ctx, q.incoming, uuid, edgeType)
	if err != nil {
		return nil, err
	}
	store.SortRelations(rels, store.Incoming)
	return rels, nil
}

func (t *tx) Neighbours(ctx context.Context, uuid string) ([]store.Relation, error) {
	rels, err := t.relations(ctx, neighboursQuery, uuid, "")
	if err != nil {
		return nil, err
	}
	store.SortNeighbours(rels)
	return rels, nil
}

func (t *tx) CreateEdge(ctx context.Context, edge store.Edge) error {
	if t.readOnly {
		return errReadOnly
	}
	q, ok := edgeStatements[edge.Type]
	if !ok {
		return fmt.Errorf("driver: unknown edge type %q", edge.Type)
	}
	props := maps.Clone(edge.Props)
	if props == nil {
		props = map[string]any{}
	}
	props[propPosition] = int64(edge.Position)
	records, err := t.run.Run(ctx, q.create, map[string]any{"from": edge.From, "to": edge.To, "props": props})
	if err != nil {
		return err
	}
	if count(records, "created") == 0 {
		return fmt.Errorf("driver: edge %s -[%s]-> %s: %w", edge.From, edge.Type, edge.To, store.ErrNotFound)
	}
	return nil
}

func (t *tx) DeleteEdges(ctx context.Context, uuid string, dir store.Direction, edgeTypes ...model.EdgeType) error {
	if t.readOnly {
		return errReadOnly
	}
	for _, et := range edgeTypes {
		q, ok := edgeStatements[et]
		if !ok {
			return fmt.Errorf("driver: unknown edge type %q", et)
		}
		cypher := q.deleteFrom
		if dir == store.Incoming {
			cypher = q.deleteTo
		}
		if _, err := t.run.Run(ctx, cypher, map[string]any{"uuid": uuid}); err != nil {
			return err
		}
	}
	return nil
}
