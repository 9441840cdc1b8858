// Package summary renders stored nodes as the compact summaries embedded in
// show pages and award results.
package summary

import (
	"context"

	"github.com/agenthands/playbill/internal/core/hierarchy"
	"github.com/agenthands/playbill/internal/core/model"
	"github.com/agenthands/playbill/internal/store"
)

func Entity(n store.Node) model.EntitySummary {
	return model.EntitySummary{Model: n.Kind, UUID: n.UUID, Name: n.Name, Differentiator: n.Differentiator}
}

func Material(n store.Node) model.MaterialSummary {
	return model.MaterialSummary{
		UUID:           n.UUID,
		Name:           n.Name,
		Differentiator: n.Differentiator,
		Format:         n.String(model.PropFormat),
		Year:           n.Int(model.PropYear),
	}
}

func Production(n store.Node) model.ProductionSummary {
	return model.ProductionSummary{
		UUID:      n.UUID,
		Name:      n.Name,
		Subtitle:  n.String(model.PropSubtitle),
		StartDate: n.String(model.PropStartDate),
		EndDate:   n.String(model.PropEndDate),
	}
}

func Venue(n store.Node) model.VenueSummary {
	return model.VenueSummary{UUID: n.UUID, Name: n.Name, Differentiator: n.Differentiator}
}

// MaterialSurChain renders anchor with surs (nearest first) nested through
// SurMaterial.
func MaterialSurChain(anchor store.Node, surs []store.Node) model.MaterialSummary {
	m := Material(anchor)
	if len(surs) > 0 {
		sur := MaterialSurChain(surs[0], surs[1:])
		m.SurMaterial = &sur
	}
	return m
}

// MaterialSubChain renders anchor with a single descending path nested
// through SubMaterials.
func MaterialSubChain(anchor store.Node, path []store.Node) model.MaterialSummary {
	m := Material(anchor)
	if len(path) > 0 {
		m.SubMaterials = []model.MaterialSummary{MaterialSubChain(path[0], path[1:])}
	}
	return m
}

func ProductionSurChain(anchor store.Node, surs []store.Node) model.ProductionSummary {
	p := Production(anchor)
	if len(surs) > 0 {
		sur := ProductionSurChain(surs[0], surs[1:])
		p.SurProduction = &sur
	}
	return p
}

func ProductionSubChain(anchor store.Node, path []store.Node) model.ProductionSummary {
	p := Production(anchor)
	if len(path) > 0 {
		p.SubProductions = []model.ProductionSummary{ProductionSubChain(path[0], path[1:])}
	}
	return p
}

// Summarizer renders summaries that need surrounding context from the
// store.
type Summarizer struct {
	tx store.Tx
}

func New(tx store.Tx) *Summarizer {
	return &Summarizer{tx: tx}
}

// Material renders n with its full sur-material chain.
func (s *Summarizer) Material(ctx context.Context, n store.Node) (model.MaterialSummary, error) {
	surs, err := hierarchy.Materials.Surs(ctx, s.tx, n.UUID)
	if err != nil {
		return model.MaterialSummary{}, err
	}
	return MaterialSurChain(n, surs), nil
}

func (s *Summarizer) Venue(ctx context.Context, n store.Node) (model.VenueSummary, error) {
	v := Venue(n)
	surs, err := hierarchy.Venues.Surs(ctx, s.tx, n.UUID)
	if err != nil {
		return model.VenueSummary{}, err
	}
	if len(surs) > 0 {
		sur := Venue(surs[0])
		v.SurVenue = &sur
	}
	return v, nil
}

// Production renders n with the venue it plays at.
func (s *Summarizer) Production(ctx context.Context, n store.Node) (model.ProductionSummary, error) {
	p := Production(n)
	venues, err := s.tx.Outgoing(ctx, n.UUID, model.EdgePlaysAt)
	if err != nil {
		return model.ProductionSummary{}, err
	}
	if len(venues) > 0 {
		v, err := s.Venue(ctx, venues[0].Node)
		if err != nil {
			return model.ProductionSummary{}, err
		}
		p.Venue = &v
	}
	return p, nil
}
