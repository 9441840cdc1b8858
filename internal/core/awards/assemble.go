package awards

import (
	"cmp"
	"context"
	"slices"

	"github.com/agenthands/playbill/internal/core/model"
	"github.com/agenthands/playbill/internal/core/summary"
	"github.com/agenthands/playbill/internal/store"
)

// placed is a candidate located under its ceremony and award.
type placed struct {
	*candidate
	award            store.Node
	ceremony         store.Node
	categoryPosition int
}

func (f *finder) assemble(ctx context.Context) ([]model.Award, error) {
	entries := make([]placed, 0, len(f.found))
	for _, c := range f.found {
		ceremonies, err := f.tx.Incoming(ctx, c.category.UUID, model.EdgePresentsCategory)
		if err != nil {
			return nil, err
		}
		if len(ceremonies) == 0 {
			continue
		}
		awards, err := f.tx.Incoming(ctx, ceremonies[0].Node.UUID, model.EdgePresentedAt)
		if err != nil {
			return nil, err
		}
		if len(awards) == 0 {
			continue
		}
		entries = append(entries, placed{
			candidate:        c,
			award:            awards[0].Node,
			ceremony:         ceremonies[0].Node,
			categoryPosition: ceremonies[0].Edge.Position,
		})
	}

	slices.SortFunc(entries, func(a, b placed) int {
		return cmp.Or(
			cmp.Compare(a.award.Name, b.award.Name),
			cmp.Compare(a.award.Differentiator, b.award.Differentiator),
			cmp.Compare(a.award.UUID, b.award.UUID),
			cmp.Compare(b.ceremony.Name, a.ceremony.Name),
			cmp.Compare(a.ceremony.UUID, b.ceremony.UUID),
			cmp.Compare(a.categoryPosition, b.categoryPosition),
			cmp.Compare(a.position, b.position),
		)
	})

	s := summary.New(f.tx)
	out := []model.Award{}
	nominees := map[string][]store.Relation{}
	var prev *placed
	for i := range entries {
		e := &entries[i]
		rels, ok := nominees[e.category.UUID]
		if !ok {
			var err error
			if rels, err = f.tx.Outgoing(ctx, e.category.UUID, model.EdgeHasNominee); err != nil {
				return nil, err
			}
			nominees[e.category.UUID] = rels
		}
		nom, err := nomination(ctx, s, rels, e.position, f.subject.UUID)
		if err != nil {
			return nil, err
		}
		nom.RecipientMaterials = e.via.materials
		nom.RecipientProductions = e.via.productions
		nom.RecipientSubsequentVersionMaterials = e.via.subsequentVersions
		nom.RecipientSourcingMaterials = e.via.sourcing

		if prev == nil || prev.award.UUID != e.award.UUID {
			out = append(out, model.Award{
				UUID:           e.award.UUID,
				Name:           e.award.Name,
				Differentiator: e.award.Differentiator,
				Ceremonies:     []model.AwardCeremonyResult{},
			})
		}
		award := &out[len(out)-1]
		if prev == nil || prev.ceremony.UUID != e.ceremony.UUID {
			award.Ceremonies = append(award.Ceremonies, model.AwardCeremonyResult{
				UUID:       e.ceremony.UUID,
				Name:       e.ceremony.Name,
				Categories: []model.AwardCategory{},
			})
		}
		ceremony := &award.Ceremonies[len(award.Ceremonies)-1]
		if prev == nil || prev.category.UUID != e.category.UUID {
			ceremony.Categories = append(ceremony.Categories, model.AwardCategory{Name: e.category.Name})
		}
		category := &ceremony.Categories[len(ceremony.Categories)-1]
		category.Nominations = append(category.Nominations, nom)
		prev = e
	}
	return out, nil
}

// Nominations renders every nomination of a category in declaration
// order.
func Nominations(ctx context.Context, tx store.Tx, category string) ([]model.Nomination, error) {
	rels, err := tx.Outgoing(ctx, category, model.EdgeHasNominee)
	if err != nil {
		return nil, err
	}
	s := summary.New(tx)
	out := []model.Nomination{}
	last := -1
	for _, r := range rels {
		pos := r.Edge.Int(model.PropNominationPosition)
		if pos == last {
			continue
		}
		last = pos
		n, err := nomination(ctx, s, rels, pos, "")
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// nomination renders the nominees at position. The node exclude is left
// out of the nominee lists.
func nomination(ctx context.Context, s *summary.Summarizer, rels []store.Relation, position int, exclude string) (model.Nomination, error) {
	n := model.Nomination{
		Entities:    []model.NominatedEntity{},
		Productions: []model.ProductionSummary{},
		Materials:   []model.MaterialSummary{},
	}

	first := true
	for _, r := range rels {
		if r.Edge.Int(model.PropNominationPosition) != position {
			continue
		}
		if first {
			n.IsWinner = r.Edge.Bool(model.PropIsWinner)
			n.Type = model.NominationType(n.IsWinner, r.Edge.String(model.PropCustomType))
			first = false
		}
		if r.Node.UUID == exclude {
			continue
		}

		switch r.Node.Kind {
		case model.KindProduction:
			p, err := s.Production(ctx, r.Node)
			if err != nil {
				return model.Nomination{}, err
			}
			n.Productions = append(n.Productions, p)
		case model.KindMaterial:
			m, err := s.Material(ctx, r.Node)
			if err != nil {
				return model.Nomination{}, err
			}
			n.Materials = append(n.Materials, m)
		default:
			if company := r.Edge.String(model.PropNominatedCompanyUUID); company != "" {
				for i := range n.Entities {
					if n.Entities[i].UUID == company {
						n.Entities[i].Members = append(n.Entities[i].Members, summary.Entity(r.Node))
					}
				}
				continue
			}
			n.Entities = append(n.Entities, model.NominatedEntity{
				Model:          r.Node.Kind,
				UUID:           r.Node.UUID,
				Name:           r.Node.Name,
				Differentiator: r.Node.Differentiator,
			})
		}
	}
	return n, nil
}
