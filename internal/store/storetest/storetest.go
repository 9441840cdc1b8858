// Package storetest holds the behaviour every store.Store backend must
// share. Backend packages call Run from their own tests.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/playbill/internal/core/model"
	"github.com/agenthands/playbill/internal/store"
)

// Factory returns an empty store; cleanup is the factory's business.
type Factory func(t *testing.T) store.Store

func Run(t *testing.T, newStore Factory) {
	t.Run("NodeLifecycle", func(t *testing.T) { testNodeLifecycle(t, newStore(t)) })
	t.Run("FindNodeNullEqualsNull", func(t *testing.T) { testFindNode(t, newStore(t)) })
	t.Run("EdgeOrdering", func(t *testing.T) { testEdgeOrdering(t, newStore(t)) })
	t.Run("DeleteEdges", func(t *testing.T) { testDeleteEdges(t, newStore(t)) })
	t.Run("WriteRollback", func(t *testing.T) { testWriteRollback(t, newStore(t)) })
	t.Run("DeleteNodeDetaches", func(t *testing.T) { testDeleteNodeDetaches(t, newStore(t)) })
}

func write(t *testing.T, s store.Store, fn func(ctx context.Context, tx store.Tx)) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.Write(ctx, func(tx store.Tx) error {
		fn(ctx, tx)
		return nil
	}))
}

func read(t *testing.T, s store.Store, fn func(ctx context.Context, tx store.Tx)) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.Read(ctx, func(tx store.Tx) error {
		fn(ctx, tx)
		return nil
	}))
}

func material(uuid, name, differentiator string) store.Node {
	return store.Node{UUID: uuid, Kind: model.KindMaterial, Name: name, Differentiator: differentiator, Props: map[string]any{}}
}

func testNodeLifecycle(t *testing.T, s store.Store) {
	write(t, s, func(ctx context.Context, tx store.Tx) {
		n := material("m-1", "Hamlet", "")
		n.Props[model.PropFormat] = "play"
		n.Props[model.PropYear] = int64(1600)
		require.NoError(t, tx.CreateNode(ctx, n))
	})

	read(t, s, func(ctx context.Context, tx store.Tx) {
		n, err := tx.GetNode(ctx, "m-1")
		require.NoError(t, err)
		assert.Equal(t, model.KindMaterial, n.Kind)
		assert.Equal(t, "Hamlet", n.Name)
		assert.Equal(t, "play", n.String(model.PropFormat))
		assert.Equal(t, 1600, n.Int(model.PropYear))

		_, err = tx.GetNode(ctx, "missing")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	write(t, s, func(ctx context.Context, tx store.Tx) {
		n := material("m-1", "Hamlet", "Q2")
		n.Props[model.PropFormat] = "tragedy"
		require.NoError(t, tx.UpdateNode(ctx, n))
	})

	read(t, s, func(ctx context.Context, tx store.Tx) {
		n, err := tx.GetNode(ctx, "m-1")
		require.NoError(t, err)
		assert.Equal(t, "Q2", n.Differentiator)
		assert.Equal(t, "tragedy", n.String(model.PropFormat))
		assert.Zero(t, n.Int(model.PropYear), "scalars are overwritten, not merged")

		nodes, err := tx.ListNodes(ctx, model.KindMaterial)
		require.NoError(t, err)
		assert.Len(t, nodes, 1)
	})
}

func testFindNode(t *testing.T, s store.Store) {
	write(t, s, func(ctx context.Context, tx store.Tx) {
		require.NoError(t, tx.CreateNode(ctx, material("x-1", "Xyzzy", "1")))
		require.NoError(t, tx.CreateNode(ctx, material("x-2", "Xyzzy", "2")))
		require.NoError(t, tx.CreateNode(ctx, material("x-0", "Xyzzy", "")))
		require.NoError(t, tx.CreateNode(ctx, store.Node{UUID: "p-1", Kind: model.KindPerson, Name: "Xyzzy"}))
	})

	read(t, s, func(ctx context.Context, tx store.Tx) {
		n, err := tx.FindNode(ctx, model.KindMaterial, "Xyzzy", "1")
		require.NoError(t, err)
		assert.Equal(t, "x-1", n.UUID)

		n, err = tx.FindNode(ctx, model.KindMaterial, "Xyzzy", "2")
		require.NoError(t, err)
		assert.Equal(t, "x-2", n.UUID)

		n, err = tx.FindNode(ctx, model.KindMaterial, "Xyzzy", "")
		require.NoError(t, err)
		assert.Equal(t, "x-0", n.UUID)

		n, err = tx.FindNode(ctx, model.KindPerson, "Xyzzy", "")
		require.NoError(t, err)
		assert.Equal(t, "p-1", n.UUID)

		_, err = tx.FindNode(ctx, model.KindMaterial, "Xyzzy", "3")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func testEdgeOrdering(t *testing.T, s store.Store) {
	write(t, s, func(ctx context.Context, tx store.Tx) {
		for _, id := range []string{"root", "a", "b", "c"} {
			require.NoError(t, tx.CreateNode(ctx, material(id, id, "")))
		}
		// Inserted out of order on purpose.
		require.NoError(t, tx.CreateEdge(ctx, store.Edge{Type: model.EdgeHasSubMaterial, From: "root", To: "c", Position: 2}))
		require.NoError(t, tx.CreateEdge(ctx, store.Edge{Type: model.EdgeHasSubMaterial, From: "root", To: "a", Position: 0}))
		require.NoError(t, tx.CreateEdge(ctx, store.Edge{
			Type: model.EdgeHasSubMaterial, From: "root", To: "b", Position: 1,
			Props: map[string]any{model.PropQualifier: "middle"},
		}))
	})

	read(t, s, func(ctx context.Context, tx store.Tx) {
		rels, err := tx.Outgoing(ctx, "root", model.EdgeHasSubMaterial)
		require.NoError(t, err)
		require.Len(t, rels, 3)
		assert.Equal(t, "a", rels[0].Node.UUID)
		assert.Equal(t, "b", rels[1].Node.UUID)
		assert.Equal(t, "c", rels[2].Node.UUID)
		assert.Equal(t, "middle", rels[1].Edge.String(model.PropQualifier))
		assert.Equal(t, 1, rels[1].Edge.Position)

		rels, err = tx.Incoming(ctx, "b", model.EdgeHasSubMaterial)
		require.NoError(t, err)
		require.Len(t, rels, 1)
		assert.Equal(t, "root", rels[0].Node.UUID)
		assert.Equal(t, "root", rels[0].Edge.From)

		rels, err = tx.Outgoing(ctx, "root", model.EdgeSubsequentVersionOf)
		require.NoError(t, err)
		assert.Empty(t, rels)

		rels, err = tx.Neighbours(ctx, "root")
		require.NoError(t, err)
		assert.Len(t, rels, 3)
	})
}

func testDeleteEdges(t *testing.T, s store.Store) {
	write(t, s, func(ctx context.Context, tx store.Tx) {
		for _, id := range []string{"m", "sub", "orig", "sur"} {
			require.NoError(t, tx.CreateNode(ctx, material(id, id, "")))
		}
		require.NoError(t, tx.CreateEdge(ctx, store.Edge{Type: model.EdgeHasSubMaterial, From: "m", To: "sub"}))
		require.NoError(t, tx.CreateEdge(ctx, store.Edge{Type: model.EdgeSubsequentVersionOf, From: "m", To: "orig"}))
		require.NoError(t, tx.CreateEdge(ctx, store.Edge{Type: model.EdgeHasSubMaterial, From: "sur", To: "m"}))
	})

	write(t, s, func(ctx context.Context, tx store.Tx) {
		require.NoError(t, tx.DeleteEdges(ctx, "m", store.Outgoing, model.EdgeHasSubMaterial))
	})

	read(t, s, func(ctx context.Context, tx store.Tx) {
		rels, err := tx.Outgoing(ctx, "m", model.EdgeHasSubMaterial)
		require.NoError(t, err)
		assert.Empty(t, rels)

		rels, err = tx.Outgoing(ctx, "m", model.EdgeSubsequentVersionOf)
		require.NoError(t, err)
		assert.Len(t, rels, 1, "other edge types are untouched")

		rels, err = tx.Incoming(ctx, "m", model.EdgeHasSubMaterial)
		require.NoError(t, err)
		assert.Len(t, rels, 1, "incoming edges are untouched")
	})

	write(t, s, func(ctx context.Context, tx store.Tx) {
		require.NoError(t, tx.DeleteEdges(ctx, "m", store.Incoming, model.EdgeHasSubMaterial))
	})

	read(t, s, func(ctx context.Context, tx store.Tx) {
		rels, err := tx.Incoming(ctx, "m", model.EdgeHasSubMaterial)
		require.NoError(t, err)
		assert.Empty(t, rels)
	})
}

func testWriteRollback(t *testing.T, s store.Store) {
	boom := errors.New("boom")
	err := s.Write(context.Background(), func(tx store.Tx) error {
		require.NoError(t, tx.CreateNode(context.Background(), material("m-1", "Hamlet", "")))
		return boom
	})
	require.ErrorIs(t, err, boom)

	read(t, s, func(ctx context.Context, tx store.Tx) {
		_, err := tx.GetNode(ctx, "m-1")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func testDeleteNodeDetaches(t *testing.T, s store.Store) {
	write(t, s, func(ctx context.Context, tx store.Tx) {
		require.NoError(t, tx.CreateNode(ctx, material("m", "m", "")))
		require.NoError(t, tx.CreateNode(ctx, material("sub", "sub", "")))
		require.NoError(t, tx.CreateEdge(ctx, store.Edge{Type: model.EdgeHasSubMaterial, From: "m", To: "sub"}))
	})

	write(t, s, func(ctx context.Context, tx store.Tx) {
		require.NoError(t, tx.DeleteNode(ctx, "m"))
	})

	read(t, s, func(ctx context.Context, tx store.Tx) {
		rels, err := tx.Neighbours(ctx, "sub")
		require.NoError(t, err)
		assert.Empty(t, rels)
	})
}
