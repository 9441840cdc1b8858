package show

import (
	"context"

	"github.com/agenthands/playbill/internal/core/awards"
	"github.com/agenthands/playbill/internal/core/hierarchy"
	"github.com/agenthands/playbill/internal/core/model"
	"github.com/agenthands/playbill/internal/core/summary"
	"github.com/agenthands/playbill/internal/store"
)

func (v *Viewer) Material(ctx context.Context, uuid string) (model.MaterialShow, error) {
	n, err := v.require(ctx, model.KindMaterial, uuid)
	if err != nil {
		return model.MaterialShow{}, err
	}
	out := model.MaterialShow{
		UUID:           n.UUID,
		Name:           n.Name,
		Differentiator: n.Differentiator,
		Subtitle:       n.String(model.PropSubtitle),
		Format:         n.String(model.PropFormat),
		Year:           n.Int(model.PropYear),
	}

	writers, err := v.tx.Outgoing(ctx, uuid, model.EdgeHasWritingEntity)
	if err != nil {
		return model.MaterialShow{}, err
	}
	out.WritingCredits = writingCredits(writers)

	originals, err := v.tx.Outgoing(ctx, uuid, model.EdgeSubsequentVersionOf)
	if err != nil {
		return model.MaterialShow{}, err
	}
	if len(originals) > 0 {
		m, err := v.summary.Material(ctx, originals[0].Node)
		if err != nil {
			return model.MaterialShow{}, err
		}
		out.OriginalVersionMaterial = &m
	}

	for _, lineage := range []struct {
		edge model.EdgeType
		dst  *[]model.MaterialSummary
	}{
		{model.EdgeSubsequentVersionOf, &out.SubsequentVersionMaterials},
		{model.EdgeUsesSourceMaterial, &out.SourcingMaterials},
	} {
		rels, err := v.tx.Incoming(ctx, uuid, lineage.edge)
		if err != nil {
			return model.MaterialShow{}, err
		}
		if *lineage.dst, err = v.materials(ctx, rels); err != nil {
			return model.MaterialShow{}, err
		}
	}

	h, err := hierarchy.Materials.Load(ctx, v.tx, uuid)
	if err != nil {
		return model.MaterialShow{}, err
	}
	if len(h.Surs) > 0 {
		sur := summary.MaterialSurChain(h.Surs[0], h.Surs[1:])
		out.SurMaterial = &sur
	}
	out.SubMaterials = materialTrees(h.Subs)

	depicts, err := v.tx.Outgoing(ctx, uuid, model.EdgeDepicts)
	if err != nil {
		return model.MaterialShow{}, err
	}
	out.CharacterGroups = characterGroups(depicts)

	productions, err := v.tx.Incoming(ctx, uuid, model.EdgeProductionOf)
	if err != nil {
		return model.MaterialShow{}, err
	}
	if out.Productions, err = v.productions(ctx, productions); err != nil {
		return model.MaterialShow{}, err
	}

	if out.Awards, err = awards.Find(ctx, v.tx, uuid); err != nil {
		return model.MaterialShow{}, err
	}
	return out, nil
}

func writingCredits(rels []store.Relation) []model.WritingCreditView {
	credits := []model.WritingCreditView{}
	last := -1
	for _, r := range rels {
		if pos := r.Edge.Int(model.PropCreditPosition); pos != last {
			credits = append(credits, model.WritingCreditView{
				Name:       r.Edge.String(model.PropCreditName),
				CreditType: r.Edge.String(model.PropCreditType),
				Entities:   []model.EntitySummary{},
			})
			last = pos
		}
		c := &credits[len(credits)-1]
		c.Entities = append(c.Entities, summary.Entity(r.Node))
	}
	return credits
}

func characterGroups(rels []store.Relation) []model.CharacterGroupView {
	groups := []model.CharacterGroupView{}
	last := -1
	for _, r := range rels {
		if pos := r.Edge.Int(model.PropGroupPosition); pos != last {
			groups = append(groups, model.CharacterGroupView{
				Name:       r.Edge.String(model.PropGroupName),
				Characters: []model.CharacterView{},
			})
			last = pos
		}
		g := &groups[len(groups)-1]
		g.Characters = append(g.Characters, model.CharacterView{
			UUID:        r.Node.UUID,
			Name:        r.Node.Name,
			DisplayName: r.Edge.String(model.PropDisplayName),
			Qualifier:   r.Edge.String(model.PropQualifier),
		})
	}
	return groups
}
