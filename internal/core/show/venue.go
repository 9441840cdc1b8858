package show

import (
	"context"

	"github.com/agenthands/playbill/internal/core/hierarchy"
	"github.com/agenthands/playbill/internal/core/model"
	"github.com/agenthands/playbill/internal/core/summary"
)

// Venue lists productions at the venue itself and at its sub-venues; the
// latter keep the sub-venue they play at.
func (v *Viewer) Venue(ctx context.Context, uuid string) (model.VenueShow, error) {
	if _, err := v.require(ctx, model.KindVenue, uuid); err != nil {
		return model.VenueShow{}, err
	}
	h, err := hierarchy.Venues.Load(ctx, v.tx, uuid)
	if err != nil {
		return model.VenueShow{}, err
	}
	out := model.VenueShow{
		UUID:           h.Subject.UUID,
		Name:           h.Subject.Name,
		Differentiator: h.Subject.Differentiator,
		SubVenues:      []model.VenueSummary{},
		Productions:    []model.ProductionSummary{},
	}
	if sur, ok := h.Sur(); ok {
		s := summary.Venue(sur)
		out.SurVenue = &s
	}

	rels, err := v.tx.Incoming(ctx, uuid, model.EdgePlaysAt)
	if err != nil {
		return model.VenueShow{}, err
	}
	for _, r := range rels {
		out.Productions = append(out.Productions, summary.Production(r.Node))
	}

	for _, sub := range h.Subs {
		venue := summary.Venue(sub.Node)
		out.SubVenues = append(out.SubVenues, venue)
		rels, err := v.tx.Incoming(ctx, sub.Node.UUID, model.EdgePlaysAt)
		if err != nil {
			return model.VenueShow{}, err
		}
		for _, r := range rels {
			p := summary.Production(r.Node)
			p.Venue = &venue
			out.Productions = append(out.Productions, p)
		}
	}
	sortProductions(out.Productions)
	return out, nil
}
