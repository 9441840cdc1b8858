// Package sqlitestore is a store.Store on a single SQLite file, for
// deployments without a Neo4j server.
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/agenthands/playbill/internal/core/model"
	"github.com/agenthands/playbill/internal/store"
)

var errReadOnly = errors.New("sqlitestore: write attempted in read transaction")

type Store struct {
	db *sql.DB
}

// New opens (creating if needed) the database at path and applies the
// schema.
func New(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	// Pragmas are per connection.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to sqlite: %w", err)
	}
	for _, pragma := range allPragmas() {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma: %w", err)
		}
	}
	for _, stmt := range allSchemaStatements() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}
	return &Store{db: db}, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.db.Close()
}

func (s *Store) Read(ctx context.Context, fn func(tx store.Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning read transaction: %w", err)
	}
	defer sqlTx.Rollback()
	return fn(&tx{tx: sqlTx, readOnly: true})
}

func (s *Store) Write(ctx context.Context, fn func(tx store.Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning write transaction: %w", err)
	}
	if err := fn(&tx{tx: sqlTx}); err != nil {
		sqlTx.Rollback()
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

type tx struct {
	tx       *sql.Tx
	readOnly bool
}

const nodeColumns = `uuid, kind, name, differentiator, props`

type scanner interface {
	Scan(dest ...any) error
}

func scanNode(row scanner) (store.Node, error) {
	var (
		n     store.Node
		kind  string
		props string
	)
	if err := row.Scan(&n.UUID, &kind, &n.Name, &n.Differentiator, &props); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.Node{}, store.ErrNotFound
		}
		return store.Node{}, err
	}
	n.Kind = model.Kind(kind)
	if err := json.Unmarshal([]byte(props), &n.Props); err != nil {
		return store.Node{}, fmt.Errorf("decoding props of %s: %w", n.UUID, err)
	}
	return n, nil
}

func encodeProps(props map[string]any) (string, error) {
	if props == nil {
		return "{}", nil
	}
	b, err := json.Marshal(props)
	if err != nil {
		return "", fmt.Errorf("encoding props: %w", err)
	}
	return string(b), nil
}

func (t *tx) GetNode(ctx context.Context, uuid string) (store.Node, error) {
	row := t.tx.QueryRowContext(ctx, `SELECT `+nodeColumns+` FROM nodes WHERE uuid = ?`, uuid)
	return scanNode(row)
}

func (t *tx) FindNode(ctx context.Context, kind model.Kind, name, differentiator string) (store.Node, error) {
	row := t.tx.QueryRowContext(ctx, `
		SELECT `+nodeColumns+` FROM nodes
		WHERE kind = ? AND name = ? AND differentiator = ?
		ORDER BY uuid
		LIMIT 1`, string(kind), name, differentiator)
	return scanNode(row)
}

func (t *tx) ListNodes(ctx context.Context, kind model.Kind) ([]store.Node, error) {
	rows, err := t.tx.QueryContext(ctx, `SELECT `+nodeColumns+` FROM nodes WHERE kind = ?`, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nodes []store.Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	store.SortNodes(nodes)
	return nodes, nil
}

func (t *tx) CreateNode(ctx context.Context, node store.Node) error {
	if t.readOnly {
		return errReadOnly
	}
	props, err := encodeProps(node.Props)
	if err != nil {
		return err
	}
	_, err = t.tx.ExecContext(ctx,
		`INSERT INTO nodes (`+nodeColumns+`) VALUES (?, ?, ?, ?, ?)`,
		node.UUID, string(node.Kind), node.Name, node.Differentiator, props)
	if err != nil {
		return fmt.Errorf("inserting node: %w", err)
	}
	return nil
}

func (t *tx) UpdateNode(ctx context.Context, node store.Node) error {
	if t.readOnly {
		return errReadOnly
	}
	props, err := encodeProps(node.Props)
	if err != nil {
		return err
	}
	res, err := t.tx.ExecContext(ctx,
		`UPDATE nodes SET name = ?, differentiator = ?, props = ? WHERE uuid = ?`,
		node.Name, node.Differentiator, props, node.UUID)
	if err != nil {
		return fmt.Errorf("updating node: %w", err)
	}
	return requireRow(res)
}

func (t *tx) DeleteNode(ctx context.Context, uuid string) error {
	if t.readOnly {
		return errReadOnly
	}
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM edges WHERE from_uuid = ? OR to_uuid = ?`, uuid, uuid); err != nil {
		return fmt.Errorf("detaching node: %w", err)
	}
	res, err := t.tx.ExecContext(ctx, `DELETE FROM nodes WHERE uuid = ?`, uuid)
	if err != nil {
		return fmt.Errorf("deleting node: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// relationQuery joins edges to the node at the far end. far is the edges
// column naming that node.
func relationQuery(far, where string) string {
	return `
		SELECT e.type, e.from_uuid, e.to_uuid, e.position, e.props,
		       n.uuid, n.kind, n.name, n.differentiator, n.props
		FROM edges e JOIN nodes n ON n.uuid = e.` + far + `
		WHERE ` + where
}

func (t *tx) relations(ctx context.Context, query string, args ...any) ([]store.Relation, error) {
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rels []store.Relation
	for rows.Next() {
		var (
			r                    store.Relation
			edgeType, kind       string
			edgeProps, nodeProps string
		)
		if err := rows.Scan(
			&edgeType, &r.Edge.From, &r.Edge.To, &r.Edge.Position, &edgeProps,
			&r.Node.UUID, &kind, &r.Node.Name, &r.Node.Differentiator, &nodeProps,
		); err != nil {
			return nil, err
		}
		r.Edge.Type = model.EdgeType(edgeType)
		r.Node.Kind = model.Kind(kind)
		if err := json.Unmarshal([]byte(edgeProps), &r.Edge.Props); err != nil {
			return nil, fmt.Errorf("decoding edge props: %w", err)
		}
		if err := json.Unmarshal([]byte(nodeProps), &r.Node.Props); err != nil {
			return nil, fmt.Errorf("decoding node props: %w", err)
		}
		rels = append(rels, r)
	}
	return rels, rows.Err()
}

func (t *tx) Outgoing(ctx context.Context, uuid string, edgeType model.EdgeType) ([]store.Relation, error) {
	rels, err := t.relations(ctx, relationQuery("to_uuid", "e.from_uuid = ? AND e.type = ?"), uuid, string(edgeType))
	if err != nil {
		return nil, err
	}
	store.SortRelations(rels, store.Outgoing)
	return rels, nil
}

func (t *tx) Incoming(ctx context.Context, uuid string, edgeType model.EdgeType) ([]store.Relation, error) {
	rels, err := t.relations(ctx, relationQuery("from_uuid", "e.to_uuid = ? AND e.type = ?"), uuid, string(edgeType))
	if err != nil {
		return nil, err
	}
	store.SortRelations(rels, store.Incoming)
	return rels, nil
}

func (t *tx) Neighbours(ctx context.Context, uuid string) ([]store.Relation, error) {
	out, err := t.relations(ctx, relationQuery("to_uuid", "e.from_uuid = ?"), uuid)
	if err != nil {
		return nil, err
	}
	in, err := t.relations(ctx, relationQuery("from_uuid", "e.to_uuid = ? AND e.from_uuid <> ?"), uuid, uuid)
	if err != nil {
		return nil, err
	}
	rels := append(out, in...)
	store.SortNeighbours(rels)
	return rels, nil
}

func (t *tx) CreateEdge(ctx context.Context, edge store.Edge) error {
	if t.readOnly {
		return errReadOnly
	}
	for _, end := range []string{edge.From, edge.To} {
		if _, err := t.GetNode(ctx, end); err != nil {
			return fmt.Errorf("sqlitestore: edge end %s: %w", end, err)
		}
	}
	props, err := encodeProps(edge.Props)
	if err != nil {
		return err
	}
	_, err = t.tx.ExecContext(ctx,
		`INSERT INTO edges (type, from_uuid, to_uuid, position, props) VALUES (?, ?, ?, ?, ?)`,
		string(edge.Type), edge.From, edge.To, edge.Position, props)
	if err != nil {
		return fmt.Errorf("inserting edge: %w", err)
	}
	return nil
}

func (t *tx) DeleteEdges(ctx context.Context, uuid string, dir store.Direction, edgeTypes ...model.EdgeType) error {
	if t.readOnly {
		return errReadOnly
	}
	if len(edgeTypes) == 0 {
		return nil
	}
	anchor := "from_uuid"
	if dir == store.Incoming {
		anchor = "to_uuid"
	}
	args := []any{uuid}
	for _, et := range edgeTypes {
		args = append(args, string(et))
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(edgeTypes)), ", ")
	query := `DELETE FROM edges WHERE ` + anchor + ` = ? AND type IN (` + placeholders + `)`
	if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("deleting edges: %w", err)
	}
	return nil
}
