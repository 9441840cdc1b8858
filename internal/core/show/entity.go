package show

import (
	"cmp"
	"context"
	"slices"

	"github.com/agenthands/playbill/internal/core/awards"
	"github.com/agenthands/playbill/internal/core/model"
	"github.com/agenthands/playbill/internal/store"
)

// Person renders a person or company. Companies have no cast credits.
func (v *Viewer) Person(ctx context.Context, kind model.Kind, uuid string) (model.PersonShow, error) {
	n, err := v.require(ctx, kind, uuid)
	if err != nil {
		return model.PersonShow{}, err
	}
	out := model.PersonShow{
		Model:          n.Kind,
		UUID:           n.UUID,
		Name:           n.Name,
		Differentiator: n.Differentiator,
		Materials:      []model.CreditedMaterial{},
	}

	credits, err := v.tx.Incoming(ctx, uuid, model.EdgeHasWritingEntity)
	if err != nil {
		return model.PersonShow{}, err
	}
	for _, r := range credits {
		m, err := v.summary.Material(ctx, r.Node)
		if err != nil {
			return model.PersonShow{}, err
		}
		out.Materials = append(out.Materials, model.CreditedMaterial{
			MaterialSummary: m,
			CreditName:      r.Edge.String(model.PropCreditName),
			CreditType:      r.Edge.String(model.PropCreditType),
		})
	}
	slices.SortStableFunc(out.Materials, func(a, b model.CreditedMaterial) int {
		return cmp.Or(
			cmp.Compare(b.Year, a.Year),
			cmp.Compare(a.Name, b.Name),
			cmp.Compare(a.UUID, b.UUID),
		)
	})

	if kind == model.KindPerson {
		cast, err := v.tx.Incoming(ctx, uuid, model.EdgeHasCastMember)
		if err != nil {
			return model.PersonShow{}, err
		}
		if out.Productions, err = v.castCredits(ctx, cast); err != nil {
			return model.PersonShow{}, err
		}
	}

	if out.Awards, err = awards.Find(ctx, v.tx, uuid); err != nil {
		return model.PersonShow{}, err
	}
	return out, nil
}

// castCredits folds a person's cast edges into one entry per production.
func (v *Viewer) castCredits(ctx context.Context, rels []store.Relation) ([]model.CastCredit, error) {
	out := []model.CastCredit{}
	index := map[string]int{}
	for _, r := range rels {
		i, ok := index[r.Node.UUID]
		if !ok {
			p, err := v.summary.Production(ctx, r.Node)
			if err != nil {
				return nil, err
			}
			i = len(out)
			index[r.Node.UUID] = i
			out = append(out, model.CastCredit{ProductionSummary: p, Roles: []model.RoleView{}})
		}
		if role := roleView(r.Edge, nil); role.Name != "" {
			out[i].Roles = append(out[i].Roles, role)
		}
	}
	slices.SortStableFunc(out, func(a, b model.CastCredit) int {
		return cmp.Or(
			cmp.Compare(b.StartDate, a.StartDate),
			cmp.Compare(a.Name, b.Name),
		)
	})
	return out, nil
}

func (v *Viewer) Character(ctx context.Context, uuid string) (model.CharacterShow, error) {
	n, err := v.require(ctx, model.KindCharacter, uuid)
	if err != nil {
		return model.CharacterShow{}, err
	}
	out := model.CharacterShow{
		UUID:           n.UUID,
		Name:           n.Name,
		Differentiator: n.Differentiator,
		Materials:      []model.DepictingMaterial{},
	}
	rels, err := v.tx.Incoming(ctx, uuid, model.EdgeDepicts)
	if err != nil {
		return model.CharacterShow{}, err
	}
	for _, r := range rels {
		m, err := v.summary.Material(ctx, r.Node)
		if err != nil {
			return model.CharacterShow{}, err
		}
		out.Materials = append(out.Materials, model.DepictingMaterial{
			MaterialSummary: m,
			DisplayName:     r.Edge.String(model.PropDisplayName),
			Qualifier:       r.Edge.String(model.PropQualifier),
		})
	}
	slices.SortStableFunc(out.Materials, func(a, b model.DepictingMaterial) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return out, nil
}
