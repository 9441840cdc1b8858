// Package awards finds every nomination reachable from a subject through
// direct nomination, hierarchy neighbours and version or source lineage,
// and assembles them into award trees.
package awards

import (
	"context"
	"fmt"

	"github.com/agenthands/playbill/internal/core/model"
	"github.com/agenthands/playbill/internal/store"
)

// class orders the ways a nomination can be reached. Lower is more
// specific.
type class int

const (
	classDirect class = iota
	classHierarchy
	classSubsequentVersion
	classSourcing
)

type rank struct {
	class class
	hops  int
}

func (r rank) less(o rank) bool {
	if r.class != o.class {
		return r.class < o.class
	}
	return r.hops < o.hops
}

// recipients explains how the subject relates to a nomination.
type recipients struct {
	materials          []model.MaterialSummary
	productions        []model.ProductionSummary
	subsequentVersions []model.MaterialSummary
	sourcing           []model.MaterialSummary
}

func (r *recipients) merge(o recipients) {
	r.materials = mergeMaterials(r.materials, o.materials)
	r.subsequentVersions = mergeMaterials(r.subsequentVersions, o.subsequentVersions)
	r.sourcing = mergeMaterials(r.sourcing, o.sourcing)
	for _, p := range o.productions {
		if !containsKey(r.productions, productionKey(p), productionKey) {
			r.productions = append(r.productions, p)
		}
	}
}

func mergeMaterials(dst, src []model.MaterialSummary) []model.MaterialSummary {
	for _, m := range src {
		if !containsKey(dst, materialKey(m), materialKey) {
			dst = append(dst, m)
		}
	}
	return dst
}

func containsKey[T any](items []T, key string, keyOf func(T) string) bool {
	for _, it := range items {
		if keyOf(it) == key {
			return true
		}
	}
	return false
}

// materialKey identifies a context by the uuids along its chain.
func materialKey(m model.MaterialSummary) string {
	key := m.UUID
	if m.SurMaterial != nil {
		key += "^" + materialKey(*m.SurMaterial)
	}
	for _, s := range m.SubMaterials {
		key += "v" + materialKey(s)
	}
	return key
}

func productionKey(p model.ProductionSummary) string {
	key := p.UUID
	if p.SurProduction != nil {
		key += "^" + productionKey(*p.SurProduction)
	}
	for _, s := range p.SubProductions {
		key += "v" + productionKey(s)
	}
	return key
}

type nominationKey struct {
	category string
	position int
}

// candidate is the best-ranked way a nomination has been reached so far.
type candidate struct {
	category store.Node
	position int
	rank     rank
	via      recipients
}

type finder struct {
	tx      store.Tx
	subject store.Node
	found   map[nominationKey]*candidate
}

// Find returns the awards reachable from the node uuid. Only materials,
// productions, people and companies receive awards.
func Find(ctx context.Context, tx store.Tx, uuid string) ([]model.Award, error) {
	subject, err := tx.GetNode(ctx, uuid)
	if err != nil {
		return nil, err
	}
	f := &finder{tx: tx, subject: subject, found: map[nominationKey]*candidate{}}

	switch subject.Kind {
	case model.KindMaterial:
		err = f.walkMaterial(ctx, root{node: subject, lineage: true})
	case model.KindProduction:
		err = f.walkProduction(ctx)
	case model.KindPerson, model.KindCompany:
		err = f.walkEntity(ctx)
	default:
		return nil, fmt.Errorf("%s nodes do not receive awards", subject.Kind.Label())
	}
	if err != nil {
		return nil, err
	}
	return f.assemble(ctx)
}

// collect records every nomination of nominee, keeping the best rank per
// nomination and merging the contexts of equally ranked paths.
func (f *finder) collect(ctx context.Context, nominee string, r rank, via recipients) error {
	rels, err := f.tx.Incoming(ctx, nominee, model.EdgeHasNominee)
	if err != nil {
		return fmt.Errorf("failed to load nominations of %s: %w", nominee, err)
	}
	for _, rel := range rels {
		key := nominationKey{category: rel.Node.UUID, position: rel.Edge.Int(model.PropNominationPosition)}
		c, ok := f.found[key]
		switch {
		case !ok || r.less(c.rank):
			c = &candidate{category: rel.Node, position: key.position, rank: r}
			c.via.merge(via)
			f.found[key] = c
		case !c.rank.less(r):
			c.via.merge(via)
		}
	}
	return nil
}
