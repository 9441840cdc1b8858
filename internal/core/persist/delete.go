package persist

import (
	"cmp"
	"context"
	"slices"

	"github.com/agenthands/playbill/internal/apperror"
	"github.com/agenthands/playbill/internal/core/model"
	"github.com/agenthands/playbill/internal/store"
)

// Delete removes the node unless it still has associations, in which case
// an undeletable_entity error names the associated kinds. An award
// ceremony's categories and its link to the award belong to it and are
// removed first.
func (p *Persister) Delete(ctx context.Context, tx store.Tx, kind model.Kind, uuid string) error {
	if _, err := requireNode(ctx, tx, kind, uuid); err != nil {
		return err
	}
	if kind == model.KindAwardCeremony {
		if err := dropCategories(ctx, tx, uuid); err != nil {
			return err
		}
		if err := tx.DeleteEdges(ctx, uuid, store.Incoming, model.EdgePresentedAt); err != nil {
			return err
		}
	}

	rels, err := tx.Neighbours(ctx, uuid)
	if err != nil {
		return err
	}
	var associations []model.Kind
	for _, r := range rels {
		if r.Node.UUID != uuid && !slices.Contains(associations, r.Node.Kind) {
			associations = append(associations, r.Node.Kind)
		}
	}
	if len(associations) > 0 {
		slices.SortFunc(associations, func(a, b model.Kind) int {
			return cmp.Compare(a.Label(), b.Label())
		})
		return apperror.Undeletable(kind, associations)
	}
	return tx.DeleteNode(ctx, uuid)
}
