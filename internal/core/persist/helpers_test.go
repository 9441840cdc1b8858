package persist

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agenthands/playbill/internal/apperror"
	"github.com/agenthands/playbill/internal/core/dedupe"
	"github.com/agenthands/playbill/internal/core/model"
	"github.com/agenthands/playbill/internal/store"
	"github.com/agenthands/playbill/internal/store/memstore"
)

type fixture struct {
	t     *testing.T
	store store.Store
	p     *Persister
}

func newFixture(t *testing.T) *fixture {
	n := 0
	newID := func() string {
		n++
		return fmt.Sprintf("generated-%d", n)
	}
	return &fixture{t: t, store: memstore.New(), p: New(dedupe.NewResolver(newID))}
}

func (f *fixture) write(fn func(ctx context.Context, tx store.Tx) error) error {
	return f.store.Write(context.Background(), func(tx store.Tx) error {
		return fn(context.Background(), tx)
	})
}

func (f *fixture) read(fn func(ctx context.Context, tx store.Tx)) {
	f.t.Helper()
	require.NoError(f.t, f.store.Read(context.Background(), func(tx store.Tx) error {
		fn(context.Background(), tx)
		return nil
	}))
}

func (f *fixture) material(in model.Material) (model.Material, error) {
	var out model.Material
	err := f.write(func(ctx context.Context, tx store.Tx) error {
		var err error
		out, err = f.p.CreateMaterial(ctx, tx, in)
		return err
	})
	return out, err
}

func (f *fixture) updateMaterial(uuid string, in model.Material) (model.Material, error) {
	var out model.Material
	err := f.write(func(ctx context.Context, tx store.Tx) error {
		var err error
		out, err = f.p.UpdateMaterial(ctx, tx, uuid, in)
		return err
	})
	return out, err
}

func (f *fixture) mustMaterial(in model.Material) model.Material {
	f.t.Helper()
	out, err := f.material(in)
	require.NoError(f.t, err)
	return out
}

func (f *fixture) outgoing(uuid string, edgeType model.EdgeType) []string {
	f.t.Helper()
	var ids []string
	f.read(func(ctx context.Context, tx store.Tx) {
		rels, err := tx.Outgoing(ctx, uuid, edgeType)
		require.NoError(f.t, err)
		for _, r := range rels {
			ids = append(ids, r.Node.UUID)
		}
	})
	return ids
}

// fieldErrors flattens an apperror into "kind field" strings.
func fieldErrors(t *testing.T, err error) []string {
	t.Helper()
	appErr, ok := apperror.As(err)
	require.True(t, ok, "expected *apperror.Error, got %v", err)
	var out []string
	for _, f := range appErr.Fields {
		out = append(out, string(f.Kind)+" "+f.Field)
	}
	return out
}

func refs(names ...string) []model.Ref {
	out := make([]model.Ref, len(names))
	for i, n := range names {
		out[i] = model.Ref{Name: n}
	}
	return out
}
