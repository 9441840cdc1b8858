package show

import (
	"context"

	"github.com/agenthands/playbill/internal/core/awards"
	"github.com/agenthands/playbill/internal/core/hierarchy"
	"github.com/agenthands/playbill/internal/core/model"
	"github.com/agenthands/playbill/internal/core/summary"
	"github.com/agenthands/playbill/internal/store"
)

func (v *Viewer) Production(ctx context.Context, uuid string) (model.ProductionShow, error) {
	n, err := v.require(ctx, model.KindProduction, uuid)
	if err != nil {
		return model.ProductionShow{}, err
	}
	out := model.ProductionShow{
		UUID:      n.UUID,
		Name:      n.Name,
		Subtitle:  n.String(model.PropSubtitle),
		StartDate: n.String(model.PropStartDate),
		PressDate: n.String(model.PropPressDate),
		EndDate:   n.String(model.PropEndDate),
	}

	materials, err := v.tx.Outgoing(ctx, uuid, model.EdgeProductionOf)
	if err != nil {
		return model.ProductionShow{}, err
	}
	var characters []store.Relation
	if len(materials) > 0 {
		m, err := v.summary.Material(ctx, materials[0].Node)
		if err != nil {
			return model.ProductionShow{}, err
		}
		out.Material = &m
		if characters, err = v.tx.Outgoing(ctx, m.UUID, model.EdgeDepicts); err != nil {
			return model.ProductionShow{}, err
		}
	}

	venues, err := v.tx.Outgoing(ctx, uuid, model.EdgePlaysAt)
	if err != nil {
		return model.ProductionShow{}, err
	}
	if len(venues) > 0 {
		venue, err := v.summary.Venue(ctx, venues[0].Node)
		if err != nil {
			return model.ProductionShow{}, err
		}
		out.Venue = &venue
	}

	h, err := hierarchy.Productions.Load(ctx, v.tx, uuid)
	if err != nil {
		return model.ProductionShow{}, err
	}
	if len(h.Surs) > 0 {
		sur := summary.ProductionSurChain(h.Surs[0], h.Surs[1:])
		out.SurProduction = &sur
	}
	out.SubProductions = productionTrees(h.Subs)

	cast, err := v.tx.Outgoing(ctx, uuid, model.EdgeHasCastMember)
	if err != nil {
		return model.ProductionShow{}, err
	}
	out.Cast = castMembers(cast, characters)

	if out.Awards, err = awards.Find(ctx, v.tx, uuid); err != nil {
		return model.ProductionShow{}, err
	}
	return out, nil
}

// castMembers groups cast edges by member. A role links to a character
// when the production's material depicts one of that name.
func castMembers(rels, characters []store.Relation) []model.CastMemberView {
	members := []model.CastMemberView{}
	last := -1
	for _, r := range rels {
		if pos := r.Edge.Int(model.PropCastMemberPosition); pos != last {
			members = append(members, model.CastMemberView{
				UUID:           r.Node.UUID,
				Name:           r.Node.Name,
				Differentiator: r.Node.Differentiator,
				Roles:          []model.RoleView{},
			})
			last = pos
		}
		if role := roleView(r.Edge, characters); role.Name != "" {
			m := &members[len(members)-1]
			m.Roles = append(m.Roles, role)
		}
	}
	return members
}

func roleView(e store.Edge, characters []store.Relation) model.RoleView {
	role := model.RoleView{
		Name:          e.String(model.PropRoleName),
		CharacterName: e.String(model.PropCharacterName),
		Qualifier:     e.String(model.PropQualifier),
		IsAlternate:   e.Bool(model.PropIsAlternate),
	}
	if role.Name == "" {
		return role
	}
	name := role.CharacterName
	if name == "" {
		name = role.Name
	}
	differentiator := e.String(model.PropCharacterDiff)
	for _, c := range characters {
		display := c.Edge.String(model.PropDisplayName)
		if (c.Node.Name == name || display == name) && c.Node.Differentiator == differentiator {
			character := summary.Entity(c.Node)
			role.Character = &character
			break
		}
	}
	return role
}
