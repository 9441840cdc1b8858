package summary

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/playbill/internal/core/model"
	"github.com/agenthands/playbill/internal/store"
	"github.com/agenthands/playbill/internal/store/memstore"
)

func node(kind model.Kind, uuid string) store.Node {
	return store.Node{UUID: uuid, Kind: kind, Name: uuid, Props: map[string]any{}}
}

func TestChains(t *testing.T) {
	leaf, mid, root := node(model.KindMaterial, "leaf"), node(model.KindMaterial, "mid"), node(model.KindMaterial, "root")

	up := MaterialSurChain(leaf, []store.Node{mid, root})
	require.NotNil(t, up.SurMaterial)
	require.NotNil(t, up.SurMaterial.SurMaterial)
	assert.Equal(t, "root", up.SurMaterial.SurMaterial.UUID)
	assert.Nil(t, up.SurMaterial.SurMaterial.SurMaterial)

	down := MaterialSubChain(root, []store.Node{mid})
	require.Len(t, down.SubMaterials, 1)
	assert.Equal(t, "mid", down.SubMaterials[0].UUID)
	assert.Empty(t, down.SubMaterials[0].SubMaterials)

	assert.Nil(t, ProductionSurChain(node(model.KindProduction, "p"), nil).SurProduction)
}

func TestProductionWithVenue(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	require.NoError(t, s.Write(ctx, func(tx store.Tx) error {
		p := node(model.KindProduction, "hamlet")
		p.Props[model.PropStartDate] = "2020-01-01"
		for _, n := range []store.Node{p, node(model.KindVenue, "nt"), node(model.KindVenue, "olivier")} {
			require.NoError(t, tx.CreateNode(ctx, n))
		}
		require.NoError(t, tx.CreateEdge(ctx, store.Edge{Type: model.EdgeHasSubVenue, From: "nt", To: "olivier"}))
		return tx.CreateEdge(ctx, store.Edge{Type: model.EdgePlaysAt, From: "hamlet", To: "olivier"})
	}))

	require.NoError(t, s.Read(ctx, func(tx store.Tx) error {
		p, err := tx.GetNode(ctx, "hamlet")
		require.NoError(t, err)
		got, err := New(tx).Production(ctx, p)
		require.NoError(t, err)
		assert.Equal(t, model.ProductionSummary{
			UUID:      "hamlet",
			Name:      "hamlet",
			StartDate: "2020-01-01",
			Venue: &model.VenueSummary{
				UUID:     "olivier",
				Name:     "olivier",
				SurVenue: &model.VenueSummary{UUID: "nt", Name: "nt"},
			},
		}, got)
		return nil
	}))
}
