package show

import (
	"cmp"
	"context"
	"slices"

	"github.com/agenthands/playbill/internal/core/awards"
	"github.com/agenthands/playbill/internal/core/model"
	"github.com/agenthands/playbill/internal/core/summary"
)

// Award lists the award's ceremonies, latest name first.
func (v *Viewer) Award(ctx context.Context, uuid string) (model.AwardShow, error) {
	n, err := v.require(ctx, model.KindAward, uuid)
	if err != nil {
		return model.AwardShow{}, err
	}
	out := model.AwardShow{
		UUID:           n.UUID,
		Name:           n.Name,
		Differentiator: n.Differentiator,
		Ceremonies:     []model.CeremonySummary{},
	}
	rels, err := v.tx.Outgoing(ctx, uuid, model.EdgePresentedAt)
	if err != nil {
		return model.AwardShow{}, err
	}
	for _, r := range rels {
		out.Ceremonies = append(out.Ceremonies, model.CeremonySummary{UUID: r.Node.UUID, Name: r.Node.Name})
	}
	slices.SortStableFunc(out.Ceremonies, func(a, b model.CeremonySummary) int {
		return cmp.Compare(b.Name, a.Name)
	})
	return out, nil
}

func (v *Viewer) AwardCeremony(ctx context.Context, uuid string) (model.AwardCeremonyShow, error) {
	n, err := v.require(ctx, model.KindAwardCeremony, uuid)
	if err != nil {
		return model.AwardCeremonyShow{}, err
	}
	out := model.AwardCeremonyShow{UUID: n.UUID, Name: n.Name, Categories: []model.AwardCategory{}}

	presenters, err := v.tx.Incoming(ctx, uuid, model.EdgePresentedAt)
	if err != nil {
		return model.AwardCeremonyShow{}, err
	}
	if len(presenters) > 0 {
		award := summary.Entity(presenters[0].Node)
		out.Award = &award
	}

	categories, err := v.tx.Outgoing(ctx, uuid, model.EdgePresentsCategory)
	if err != nil {
		return model.AwardCeremonyShow{}, err
	}
	for _, c := range categories {
		nominations, err := awards.Nominations(ctx, v.tx, c.Node.UUID)
		if err != nil {
			return model.AwardCeremonyShow{}, err
		}
		out.Categories = append(out.Categories, model.AwardCategory{Name: c.Node.Name, Nominations: nominations})
	}
	return out, nil
}
