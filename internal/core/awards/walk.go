package awards

import (
	"context"
	"slices"

	"github.com/agenthands/playbill/internal/core/hierarchy"
	"github.com/agenthands/playbill/internal/core/model"
	"github.com/agenthands/playbill/internal/core/summary"
	"github.com/agenthands/playbill/internal/store"
)

// root is a material the hierarchy walk starts from: the subject itself or
// a material crediting the subject.
type root struct {
	node store.Node
	// hops already spent reaching node
	base int
	// credited roots echo themselves in recipientMaterials
	credited bool
	lineage  bool
}

// point is a material in the root's neighbourhood together with the
// recipient context that reaching it implies.
type point struct {
	node    store.Node
	dist    int
	context []model.MaterialSummary
}

func (f *finder) walkMaterial(ctx context.Context, rt root) error {
	n, err := hierarchy.Materials.Load(ctx, f.tx, rt.node.UUID)
	if err != nil {
		return err
	}

	points := []point{{node: n.Subject}}
	if rt.credited {
		points[0].context = []model.MaterialSummary{summary.Material(n.Subject)}
	}
	for i, sur := range n.Surs {
		points = append(points, point{
			node:    sur,
			dist:    i + 1,
			context: []model.MaterialSummary{summary.MaterialSurChain(n.Subject, n.Surs[:i+1])},
		})
	}
	err = eachPath(n.Subs, nil, func(path []store.Node) error {
		points = append(points, point{
			node:    path[len(path)-1],
			dist:    len(path),
			context: []model.MaterialSummary{summary.MaterialSubChain(n.Subject, path)},
		})
		return nil
	})
	if err != nil {
		return err
	}

	for _, p := range points {
		c := classHierarchy
		if p.dist == 0 {
			c = classDirect
		}
		if err := f.collect(ctx, p.node.UUID, rank{class: c, hops: rt.base + p.dist}, recipients{materials: p.context}); err != nil {
			return err
		}
	}
	if !rt.lineage {
		return nil
	}

	links := []struct {
		edge  model.EdgeType
		class class
	}{
		{model.EdgeSubsequentVersionOf, classSubsequentVersion},
		{model.EdgeUsesSourceMaterial, classSourcing},
	}
	for _, p := range points {
		for _, link := range links {
			rels, err := f.tx.Incoming(ctx, p.node.UUID, link.edge)
			if err != nil {
				return err
			}
			for _, rel := range rels {
				if rel.Node.UUID == f.subject.UUID {
					continue
				}
				err := f.walkLineage(ctx, rel.Node, link.class, rt.base+p.dist+1, p.context, p.dist == 0)
				if err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// walkLineage collects nominations of a lineage-linked material and its
// surs. Subs are only visited when the link was taken from the root.
func (f *finder) walkLineage(ctx context.Context, linked store.Node, c class, hops int, around []model.MaterialSummary, descend bool) error {
	n, err := hierarchy.Materials.Load(ctx, f.tx, linked.UUID)
	if err != nil {
		return err
	}
	hit := func(node store.Node, extra int, chain model.MaterialSummary) error {
		via := recipients{materials: around}
		if c == classSourcing {
			via.sourcing = []model.MaterialSummary{chain}
		} else {
			via.subsequentVersions = []model.MaterialSummary{chain}
		}
		return f.collect(ctx, node.UUID, rank{class: c, hops: hops + extra}, via)
	}

	if err := hit(n.Subject, 0, summary.Material(n.Subject)); err != nil {
		return err
	}
	for i, sur := range n.Surs {
		if err := hit(sur, i+1, summary.MaterialSurChain(n.Subject, n.Surs[:i+1])); err != nil {
			return err
		}
	}
	if !descend {
		return nil
	}
	return eachPath(n.Subs, nil, func(path []store.Node) error {
		return hit(path[len(path)-1], len(path), summary.MaterialSubChain(n.Subject, path))
	})
}

func (f *finder) walkProduction(ctx context.Context) error {
	n, err := hierarchy.Productions.Load(ctx, f.tx, f.subject.UUID)
	if err != nil {
		return err
	}
	if err := f.collect(ctx, n.Subject.UUID, rank{class: classDirect}, recipients{}); err != nil {
		return err
	}
	for i, sur := range n.Surs {
		via := recipients{productions: []model.ProductionSummary{summary.ProductionSurChain(n.Subject, n.Surs[:i+1])}}
		if err := f.collect(ctx, sur.UUID, rank{class: classHierarchy, hops: i + 1}, via); err != nil {
			return err
		}
	}
	return eachPath(n.Subs, nil, func(path []store.Node) error {
		via := recipients{productions: []model.ProductionSummary{summary.ProductionSubChain(n.Subject, path)}}
		return f.collect(ctx, path[len(path)-1].UUID, rank{class: classHierarchy, hops: len(path)}, via)
	})
}

// walkEntity collects a person's or company's own nominations and those
// reached through the materials crediting it.
func (f *finder) walkEntity(ctx context.Context) error {
	if err := f.collect(ctx, f.subject.UUID, rank{class: classDirect}, recipients{}); err != nil {
		return err
	}
	credits, err := f.tx.Incoming(ctx, f.subject.UUID, model.EdgeHasWritingEntity)
	if err != nil {
		return err
	}

	type visit struct {
		material   string
		creditType string
	}
	seen := map[visit]bool{}
	for _, rel := range credits {
		creditType := rel.Edge.String(model.PropCreditType)
		v := visit{material: rel.Node.UUID, creditType: creditType}
		if seen[v] {
			continue
		}
		seen[v] = true

		switch creditType {
		case model.CreditTypeNonSpecificSourceMaterial:
			err = f.walkSourceCredit(ctx, rel.Node)
		case model.CreditTypeRightsGrantor:
			err = f.walkMaterial(ctx, root{node: rel.Node, base: 1, credited: true})
		default:
			err = f.walkMaterial(ctx, root{node: rel.Node, base: 1, credited: true, lineage: true})
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// walkSourceCredit treats a material crediting the subject as a general
// source as a sourcing material, along with its surs.
func (f *finder) walkSourceCredit(ctx context.Context, material store.Node) error {
	surs, err := hierarchy.Materials.Surs(ctx, f.tx, material.UUID)
	if err != nil {
		return err
	}
	via := recipients{sourcing: []model.MaterialSummary{summary.Material(material)}}
	if err := f.collect(ctx, material.UUID, rank{class: classSourcing, hops: 1}, via); err != nil {
		return err
	}
	for i, sur := range surs {
		via := recipients{sourcing: []model.MaterialSummary{summary.MaterialSurChain(material, surs[:i+1])}}
		if err := f.collect(ctx, sur.UUID, rank{class: classSourcing, hops: i + 2}, via); err != nil {
			return err
		}
	}
	return nil
}

// eachPath calls fn with the path from the top of trees down to every
// node, depth first in position order, stopping at the first error.
func eachPath(trees []hierarchy.Tree, prefix []store.Node, fn func(path []store.Node) error) error {
	for _, t := range trees {
		path := append(slices.Clone(prefix), t.Node)
		if err := fn(path); err != nil {
			return err
		}
		if err := eachPath(t.Subs, path, fn); err != nil {
			return err
		}
	}
	return nil
}
