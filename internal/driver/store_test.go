package driver

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/playbill/internal/core/model"
	"github.com/agenthands/playbill/internal/store"
)

func TestStatementsCoverEveryKindAndEdgeType(t *testing.T) {
	for _, k := range model.Kinds {
		q, ok := nodeStatements[k]
		require.True(t, ok, k)
		assert.Contains(t, q.create, "(n:Node:"+k.Label()+")")
		assert.Contains(t, q.find, "coalesce(n.differentiator, '')")
	}
	for _, et := range model.EdgeTypes {
		q, ok := edgeStatements[et]
		require.True(t, ok, et)
		assert.Contains(t, q.create, "[r:"+string(et)+"]")
		assert.Contains(t, q.deleteTo, "[r:"+string(et)+"]->(:Node {uuid: $uuid})")
	}
	queries := indexQueries()
	assert.Len(t, queries, 1+len(model.Kinds))
	assert.Contains(t, queries[0], "FOR (n:Node) REQUIRE n.uuid IS UNIQUE")
	assert.Contains(t, queries, "CREATE CONSTRAINT material_natural_key IF NOT EXISTS FOR (n:Material) REQUIRE (n.name, n.differentiator) IS UNIQUE")
	assert.Contains(t, queries, "CREATE INDEX production_name IF NOT EXISTS FOR (n:Production) ON (n.name)")
}

func TestCreateNodeFlattensProps(t *testing.T) {
	ctx := context.Background()
	mock := &MockDriver{}
	s := NewStore(mock)

	err := s.Write(ctx, func(tx store.Tx) error {
		return tx.CreateNode(ctx, store.Node{
			UUID: "m-1", Kind: model.KindMaterial, Name: "Hamlet",
			Props: map[string]any{model.PropFormat: "play"},
		})
	})
	require.NoError(t, err)
	require.Len(t, mock.Executed, 1)
	assert.Equal(t, 1, mock.Writes)

	q := mock.Executed[0]
	assert.Contains(t, q.Query, "CREATE (n:Node:Material)")
	props := q.Params["props"].(map[string]any)
	assert.Equal(t, map[string]any{"uuid": "m-1", "name": "Hamlet", "differentiator": "", "format": "play"}, props)
}

func TestGetNodeReadsLabelAndProps(t *testing.T) {
	ctx := context.Background()
	mock := &MockDriver{Results: map[string][]*neo4j.Record{
		"RETURN n AS node": {record([]string{"node"}, neo4j.Node{
			Labels: []string{"Node", "AwardCeremony"},
			Props:  map[string]any{"uuid": "c-1", "name": "2020"},
		})},
	}}
	s := NewStore(mock)

	require.NoError(t, s.Read(ctx, func(tx store.Tx) error {
		n, err := tx.GetNode(ctx, "c-1")
		require.NoError(t, err)
		assert.Equal(t, model.KindAwardCeremony, n.Kind)
		assert.Equal(t, "2020", n.Name)
		assert.Empty(t, n.Differentiator)
		assert.Empty(t, n.Props)
		return nil
	}))
	assert.Zero(t, mock.Writes)
}

func TestGetNodeMissing(t *testing.T) {
	ctx := context.Background()
	s := NewStore(&MockDriver{})
	err := s.Read(ctx, func(tx store.Tx) error {
		_, err := tx.GetNode(ctx, "nope")
		return err
	})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestOutgoingDecodesPosition(t *testing.T) {
	ctx := context.Background()
	keys := []string{"from", "to", "props", "node"}
	sub := func(uuid string, pos int64) *neo4j.Record {
		return record(keys, "m-1", uuid,
			map[string]any{"position": pos, "qualifier": "q"},
			neo4j.Node{Labels: []string{"Material"}, Props: map[string]any{"uuid": uuid, "name": uuid}})
	}
	mock := &MockDriver{Results: map[string][]*neo4j.Record{
		"[r:HAS_SUB_MATERIAL]->(b)": {sub("b", 1), sub("a", 0)},
	}}
	s := NewStore(mock)

	require.NoError(t, s.Read(ctx, func(tx store.Tx) error {
		rels, err := tx.Outgoing(ctx, "m-1", model.EdgeHasSubMaterial)
		require.NoError(t, err)
		require.Len(t, rels, 2)
		assert.Equal(t, "a", rels[0].Node.UUID)
		assert.Equal(t, 1, rels[1].Edge.Position)
		assert.Equal(t, model.EdgeHasSubMaterial, rels[1].Edge.Type)
		assert.Equal(t, map[string]any{"qualifier": "q"}, rels[1].Edge.Props)
		return nil
	}))
}

func TestCreateEdgeMissingEnd(t *testing.T) {
	ctx := context.Background()
	mock := &MockDriver{Results: map[string][]*neo4j.Record{
		"AS created": {record([]string{"created"}, int64(0))},
	}}
	s := NewStore(mock)

	err := s.Write(ctx, func(tx store.Tx) error {
		return tx.CreateEdge(ctx, store.Edge{Type: model.EdgePlaysAt, From: "p", To: "v", Position: 3})
	})
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Equal(t, int64(3), mock.Executed[0].Params["props"].(map[string]any)["position"])
}

func TestDeleteEdgesOnePerType(t *testing.T) {
	ctx := context.Background()
	mock := &MockDriver{}
	s := NewStore(mock)

	require.NoError(t, s.Write(ctx, func(tx store.Tx) error {
		return tx.DeleteEdges(ctx, "m-1", store.Incoming, model.EdgeHasSubMaterial, model.EdgeDepicts)
	}))
	require.Len(t, mock.Executed, 2)
	for _, q := range mock.Executed {
		assert.True(t, strings.Contains(q.Query, "->(:Node {uuid: $uuid})"))
	}
}

func TestReadTransactionRejectsWrites(t *testing.T) {
	ctx := context.Background()
	mock := &MockDriver{}
	err := NewStore(mock).Read(ctx, func(tx store.Tx) error {
		return tx.DeleteNode(ctx, "m-1")
	})
	assert.ErrorIs(t, err, errReadOnly)
	assert.Empty(t, mock.Executed)
}

func TestRunnerErrorPropagates(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("connection refused")
	err := NewStore(&MockDriver{Err: boom}).Read(ctx, func(tx store.Tx) error {
		_, err := tx.ListNodes(ctx, model.KindVenue)
		return err
	})
	assert.ErrorIs(t, err, boom)
}
