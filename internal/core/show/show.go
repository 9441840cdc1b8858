// Package show renders the read-only pages of each kind: plain
// relationship lookups plus, where applicable, the award traversal.
package show

import (
	"cmp"
	"context"
	"errors"
	"slices"

	"github.com/agenthands/playbill/internal/apperror"
	"github.com/agenthands/playbill/internal/core/hierarchy"
	"github.com/agenthands/playbill/internal/core/model"
	"github.com/agenthands/playbill/internal/core/summary"
	"github.com/agenthands/playbill/internal/store"
)

type Viewer struct {
	tx      store.Tx
	summary *summary.Summarizer
}

func New(tx store.Tx) *Viewer {
	return &Viewer{tx: tx, summary: summary.New(tx)}
}

// List returns every node of kind ordered by name and differentiator.
func List(ctx context.Context, tx store.Tx, kind model.Kind) ([]model.EntitySummary, error) {
	nodes, err := tx.ListNodes(ctx, kind)
	if err != nil {
		return nil, err
	}
	out := make([]model.EntitySummary, len(nodes))
	for i, n := range nodes {
		out[i] = summary.Entity(n)
	}
	return out, nil
}

func (v *Viewer) require(ctx context.Context, kind model.Kind, uuid string) (store.Node, error) {
	n, err := v.tx.GetNode(ctx, uuid)
	if errors.Is(err, store.ErrNotFound) || (err == nil && n.Kind != kind) {
		return store.Node{}, apperror.NotFound(kind, uuid)
	}
	return n, err
}

func (v *Viewer) materials(ctx context.Context, rels []store.Relation) ([]model.MaterialSummary, error) {
	out := make([]model.MaterialSummary, 0, len(rels))
	for _, r := range rels {
		m, err := v.summary.Material(ctx, r.Node)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (v *Viewer) productions(ctx context.Context, rels []store.Relation) ([]model.ProductionSummary, error) {
	out := make([]model.ProductionSummary, 0, len(rels))
	for _, r := range rels {
		p, err := v.summary.Production(ctx, r.Node)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	sortProductions(out)
	return out, nil
}

// sortProductions orders by start date, latest first.
func sortProductions(ps []model.ProductionSummary) {
	slices.SortStableFunc(ps, func(a, b model.ProductionSummary) int {
		return cmp.Or(
			cmp.Compare(b.StartDate, a.StartDate),
			cmp.Compare(a.Name, b.Name),
			cmp.Compare(a.UUID, b.UUID),
		)
	})
}

func materialTrees(trees []hierarchy.Tree) []model.MaterialSummary {
	out := make([]model.MaterialSummary, 0, len(trees))
	for _, t := range trees {
		m := summary.Material(t.Node)
		if len(t.Subs) > 0 {
			m.SubMaterials = materialTrees(t.Subs)
		}
		out = append(out, m)
	}
	return out
}

func productionTrees(trees []hierarchy.Tree) []model.ProductionSummary {
	out := make([]model.ProductionSummary, 0, len(trees))
	for _, t := range trees {
		p := summary.Production(t.Node)
		if len(t.Subs) > 0 {
			p.SubProductions = productionTrees(t.Subs)
		}
		out = append(out, p)
	}
	return out
}
