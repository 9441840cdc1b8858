package persist

import (
	"context"
	"strings"

	"github.com/agenthands/playbill/internal/apperror"
	"github.com/agenthands/playbill/internal/core/hierarchy"
	"github.com/agenthands/playbill/internal/core/model"
	"github.com/agenthands/playbill/internal/store"
)

func (p *Persister) CreateVenue(ctx context.Context, tx store.Tx, in model.Venue) (model.Venue, error) {
	return p.saveVenue(ctx, tx, in.UUID, in, false)
}

func (p *Persister) UpdateVenue(ctx context.Context, tx store.Tx, uuid string, in model.Venue) (model.Venue, error) {
	return p.saveVenue(ctx, tx, uuid, in, true)
}

func (p *Persister) saveVenue(ctx context.Context, tx store.Tx, uuid string, in model.Venue, isUpdate bool) (model.Venue, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Differentiator = strings.TrimSpace(in.Differentiator)
	in.SubVenues = trimRefs(in.SubVenues)

	w, err := p.begin(ctx, tx, model.KindVenue, uuid, isUpdate)
	if err != nil {
		return model.Venue{}, err
	}
	w.checkName("name", in.Name)
	w.checkOptional("differentiator", in.Differentiator)
	keys := make([]string, len(in.SubVenues))
	for i, r := range in.SubVenues {
		w.checkRef(apperror.Index("subVenues", i), r)
		keys[i] = refKey(r.Name, r.Differentiator)
	}
	w.markDuplicates(keys, func(i int) string {
		return apperror.Join(apperror.Index("subVenues", i), "name")
	})
	if err := w.checkUnique(ctx, in.Name, in.Differentiator); err != nil {
		return model.Venue{}, err
	}
	if err := w.errs.Err(); err != nil {
		return model.Venue{}, err
	}

	if err := w.saveSubject(ctx, in.Name, in.Differentiator, map[string]any{}, model.EdgeHasSubVenue); err != nil {
		return model.Venue{}, err
	}
	for i, r := range in.SubVenues {
		if r.IsZero() {
			continue
		}
		child, err := w.ensure(ctx, model.KindVenue, r)
		if err != nil {
			return model.Venue{}, err
		}
		field := apperror.Join(apperror.Index("subVenues", i), "name")
		if err := w.attachSub(ctx, hierarchy.Venues, field, child, i); err != nil {
			return model.Venue{}, err
		}
	}
	if err := w.errs.Err(); err != nil {
		return model.Venue{}, err
	}
	return p.EditVenue(ctx, tx, w.uuid)
}

func (p *Persister) EditVenue(ctx context.Context, tx store.Tx, uuid string) (model.Venue, error) {
	n, err := requireNode(ctx, tx, model.KindVenue, uuid)
	if err != nil {
		return model.Venue{}, err
	}
	subs, err := tx.Outgoing(ctx, uuid, model.EdgeHasSubVenue)
	if err != nil {
		return model.Venue{}, err
	}
	return model.Venue{
		UUID:           n.UUID,
		Name:           n.Name,
		Differentiator: n.Differentiator,
		SubVenues:      refsOf(subs),
	}, nil
}
