package persist

import (
	"context"
	"strings"

	"github.com/agenthands/playbill/internal/apperror"
	"github.com/agenthands/playbill/internal/core/model"
	"github.com/agenthands/playbill/internal/store"
)

func (p *Persister) CreateAwardCeremony(ctx context.Context, tx store.Tx, in model.AwardCeremony) (model.AwardCeremony, error) {
	return p.saveAwardCeremony(ctx, tx, in.UUID, in, false)
}

func (p *Persister) UpdateAwardCeremony(ctx context.Context, tx store.Tx, uuid string, in model.AwardCeremony) (model.AwardCeremony, error) {
	return p.saveAwardCeremony(ctx, tx, uuid, in, true)
}

func normalizeAwardCeremony(in *model.AwardCeremony) {
	in.Name = strings.TrimSpace(in.Name)
	in.Award = trimRef(in.Award)
	for i := range in.Categories {
		c := &in.Categories[i]
		c.Name = strings.TrimSpace(c.Name)
		for j := range c.Nominations {
			n := &c.Nominations[j]
			n.CustomType = strings.TrimSpace(n.CustomType)
			for k := range n.Entities {
				e := &n.Entities[k]
				e.UUID = strings.TrimSpace(e.UUID)
				e.Name = strings.TrimSpace(e.Name)
				e.Differentiator = strings.TrimSpace(e.Differentiator)
				if e.Model == "" {
					e.Model = model.KindPerson
				}
				e.Members = trimRefs(e.Members)
			}
			n.Productions = trimUUIDRefs(n.Productions)
			n.Materials = trimRefs(n.Materials)
		}
	}
}

func nominationEmpty(n model.NominationInput) bool {
	for _, e := range n.Entities {
		if e.Name != "" {
			return false
		}
	}
	for _, p := range n.Productions {
		if p.UUID != "" {
			return false
		}
	}
	for _, m := range n.Materials {
		if !m.IsZero() {
			return false
		}
	}
	return true
}

func (w *write) validateAwardCeremony(in model.AwardCeremony) {
	w.checkName("name", in.Name)
	w.checkRef("award", in.Award)

	for i, c := range in.Categories {
		path := apperror.Index("categories", i)
		hasNominations := false
		for _, n := range c.Nominations {
			hasNominations = hasNominations || !nominationEmpty(n)
		}
		if c.Name == "" && hasNominations {
			w.errs.Add(apperror.KindValidation, apperror.Join(path, "name"), msgTooShort)
		}
		w.checkOptional(apperror.Join(path, "name"), c.Name)

		for j, n := range c.Nominations {
			npath := apperror.Index(apperror.Join(path, "nominations"), j)
			w.checkOptional(apperror.Join(npath, "customType"), n.CustomType)
			w.validateNominees(npath, n)
		}
	}
}

func (w *write) validateNominees(path string, n model.NominationInput) {
	entities := apperror.Join(path, "entities")
	keys := make([]string, len(n.Entities))
	for k, e := range n.Entities {
		epath := apperror.Index(entities, k)
		w.checkRef(epath, e.Ref())
		switch e.Model {
		case model.KindPerson, model.KindCompany:
		default:
			w.errs.Add(apperror.KindValidation, apperror.Join(epath, "model"), "Value must be PERSON or COMPANY")
		}
		if e.Name != "" {
			keys[k] = string(e.Model) + "\x00" + refKey(e.Name, e.Differentiator)
		}

		members := apperror.Join(epath, "members")
		if e.Model != model.KindCompany && len(e.Members) > 0 {
			w.errs.Add(apperror.KindValidation, members, "Only companies can have nominated members")
		}
		memberKeys := make([]string, len(e.Members))
		for m, r := range e.Members {
			w.checkRef(apperror.Index(members, m), r)
			memberKeys[m] = refKey(r.Name, r.Differentiator)
		}
		w.markDuplicates(memberKeys, func(m int) string {
			return apperror.Join(apperror.Index(members, m), "name")
		})
	}
	w.markDuplicates(keys, func(k int) string {
		return apperror.Join(apperror.Index(entities, k), "name")
	})

	keys = make([]string, len(n.Productions))
	for k, r := range n.Productions {
		keys[k] = r.UUID
	}
	w.markDuplicates(keys, func(k int) string {
		return apperror.Join(apperror.Index(apperror.Join(path, "productions"), k), "uuid")
	})

	keys = make([]string, len(n.Materials))
	for k, r := range n.Materials {
		w.checkRef(apperror.Index(apperror.Join(path, "materials"), k), r)
		keys[k] = refKey(r.Name, r.Differentiator)
	}
	w.markDuplicates(keys, func(k int) string {
		return apperror.Join(apperror.Index(apperror.Join(path, "materials"), k), "name")
	})
}

// checkCeremonyUnique enforces that an award presents one ceremony per name.
func (w *write) checkCeremonyUnique(ctx context.Context, p *Persister, in model.AwardCeremony) error {
	if in.Award.IsZero() || in.Name == "" {
		return nil
	}
	award, err := p.resolver.Resolve(ctx, w.tx, model.KindAward, in.Award.Name, in.Award.Differentiator, "")
	if err != nil || award.IsNew {
		return err
	}
	ceremonies, err := w.tx.Outgoing(ctx, award.UUID, model.EdgePresentedAt)
	if err != nil {
		return err
	}
	for _, c := range ceremonies {
		if c.Node.Name == in.Name && c.Node.UUID != w.uuid {
			w.errs.Add(apperror.KindDuplicateRecord, "name", "Award ceremony with this name already exists for this award")
		}
	}
	return nil
}

// dropCategories removes the ceremony's owned category nodes along with
// their nominee edges.
func dropCategories(ctx context.Context, tx store.Tx, ceremony string) error {
	categories, err := tx.Outgoing(ctx, ceremony, model.EdgePresentsCategory)
	if err != nil {
		return err
	}
	for _, c := range categories {
		if err := tx.DeleteNode(ctx, c.Node.UUID); err != nil {
			return err
		}
	}
	return nil
}

func (p *Persister) saveAwardCeremony(ctx context.Context, tx store.Tx, uuid string, in model.AwardCeremony, isUpdate bool) (model.AwardCeremony, error) {
	normalizeAwardCeremony(&in)
	w, err := p.begin(ctx, tx, model.KindAwardCeremony, uuid, isUpdate)
	if err != nil {
		return model.AwardCeremony{}, err
	}
	w.validateAwardCeremony(in)
	if err := w.checkCeremonyUnique(ctx, p, in); err != nil {
		return model.AwardCeremony{}, err
	}
	if err := w.errs.Err(); err != nil {
		return model.AwardCeremony{}, err
	}

	if isUpdate {
		if err := dropCategories(ctx, tx, w.uuid); err != nil {
			return model.AwardCeremony{}, err
		}
		if err := tx.DeleteEdges(ctx, w.uuid, store.Incoming, model.EdgePresentedAt); err != nil {
			return model.AwardCeremony{}, err
		}
	}
	if err := w.saveSubject(ctx, in.Name, "", map[string]any{}); err != nil {
		return model.AwardCeremony{}, err
	}

	if !in.Award.IsZero() {
		award, err := w.ensure(ctx, model.KindAward, in.Award)
		if err != nil {
			return model.AwardCeremony{}, err
		}
		if err := tx.CreateEdge(ctx, store.Edge{Type: model.EdgePresentedAt, From: award, To: w.uuid}); err != nil {
			return model.AwardCeremony{}, err
		}
	}

	position := 0
	for i, c := range in.Categories {
		if c.Name == "" {
			continue
		}
		category := store.Node{
			UUID:  p.resolver.NewID(),
			Kind:  model.KindAwardCeremonyCategory,
			Name:  c.Name,
			Props: map[string]any{},
		}
		if err := tx.CreateNode(ctx, category); err != nil {
			return model.AwardCeremony{}, err
		}
		if err := w.link(ctx, model.EdgePresentsCategory, category.UUID, position, nil); err != nil {
			return model.AwardCeremony{}, err
		}
		position++
		if err := w.linkNominees(ctx, category.UUID, apperror.Index("categories", i), c.Nominations); err != nil {
			return model.AwardCeremony{}, err
		}
	}
	if err := w.errs.Err(); err != nil {
		return model.AwardCeremony{}, err
	}
	return p.EditAwardCeremony(ctx, tx, w.uuid)
}

func (w *write) linkNominees(ctx context.Context, category, path string, nominations []model.NominationInput) error {
	position := 0
	nominate := func(to string, props map[string]any) error {
		err := w.tx.CreateEdge(ctx, store.Edge{Type: model.EdgeHasNominee, From: category, To: to, Position: position, Props: props})
		position++
		return err
	}

	nominationPosition := 0
	for j, n := range nominations {
		if nominationEmpty(n) {
			continue
		}
		npath := apperror.Index(apperror.Join(path, "nominations"), j)
		base := func() map[string]any {
			props := map[string]any{model.PropNominationPosition: int64(nominationPosition)}
			if n.IsWinner {
				props[model.PropIsWinner] = true
			}
			setString(props, model.PropCustomType, n.CustomType)
			return props
		}

		for _, e := range n.Entities {
			if e.Name == "" {
				continue
			}
			id, err := w.ensure(ctx, e.Model, e.Ref())
			if err != nil {
				return err
			}
			if err := nominate(id, base()); err != nil {
				return err
			}
			for _, m := range e.Members {
				if m.IsZero() {
					continue
				}
				member, err := w.ensure(ctx, model.KindPerson, m)
				if err != nil {
					return err
				}
				props := base()
				props[model.PropNominatedCompanyUUID] = id
				if err := nominate(member, props); err != nil {
					return err
				}
			}
		}
		for k, r := range n.Productions {
			if r.UUID == "" {
				continue
			}
			if _, err := requireNode(ctx, w.tx, model.KindProduction, r.UUID); err != nil {
				if !apperror.IsKind(err, apperror.KindNotFound) {
					return err
				}
				field := apperror.Join(apperror.Index(apperror.Join(npath, "productions"), k), "uuid")
				w.errs.Add(apperror.KindReferenceNotFound, field, "Production with this uuid does not exist")
				continue
			}
			if err := nominate(r.UUID, base()); err != nil {
				return err
			}
		}
		for _, r := range n.Materials {
			if r.IsZero() {
				continue
			}
			id, err := w.ensure(ctx, model.KindMaterial, r)
			if err != nil {
				return err
			}
			if err := nominate(id, base()); err != nil {
				return err
			}
		}
		nominationPosition++
	}
	return nil
}

func (p *Persister) EditAwardCeremony(ctx context.Context, tx store.Tx, uuid string) (model.AwardCeremony, error) {
	n, err := requireNode(ctx, tx, model.KindAwardCeremony, uuid)
	if err != nil {
		return model.AwardCeremony{}, err
	}
	out := model.AwardCeremony{UUID: n.UUID, Name: n.Name, Categories: []model.CategoryInput{}}

	awards, err := tx.Incoming(ctx, uuid, model.EdgePresentedAt)
	if err != nil {
		return model.AwardCeremony{}, err
	}
	if len(awards) > 0 {
		out.Award = refOf(awards[0].Node)
	}

	categories, err := tx.Outgoing(ctx, uuid, model.EdgePresentsCategory)
	if err != nil {
		return model.AwardCeremony{}, err
	}
	for _, c := range categories {
		nominees, err := tx.Outgoing(ctx, c.Node.UUID, model.EdgeHasNominee)
		if err != nil {
			return model.AwardCeremony{}, err
		}
		out.Categories = append(out.Categories, model.CategoryInput{
			Name:        c.Node.Name,
			Nominations: groupNominations(nominees),
		})
	}
	return out, nil
}

// groupNominations rebuilds nomination payloads from nominee edges in
// position order.
func groupNominations(rels []store.Relation) []model.NominationInput {
	nominations := []model.NominationInput{}
	last := -1
	for _, r := range rels {
		if pos := r.Edge.Int(model.PropNominationPosition); pos != last {
			nominations = append(nominations, model.NominationInput{
				IsWinner:   r.Edge.Bool(model.PropIsWinner),
				CustomType: r.Edge.String(model.PropCustomType),
			})
			last = pos
		}
		n := &nominations[len(nominations)-1]
		ref := refOf(r.Node)
		switch r.Node.Kind {
		case model.KindProduction:
			n.Productions = append(n.Productions, model.UUIDRef{UUID: r.Node.UUID})
		case model.KindMaterial:
			n.Materials = append(n.Materials, ref)
		default:
			if company := r.Edge.String(model.PropNominatedCompanyUUID); company != "" {
				for i := range n.Entities {
					if n.Entities[i].UUID == company {
						n.Entities[i].Members = append(n.Entities[i].Members, ref)
					}
				}
				continue
			}
			n.Entities = append(n.Entities, model.NomineeEntity{
				Model:          r.Node.Kind,
				UUID:           r.Node.UUID,
				Name:           r.Node.Name,
				Differentiator: r.Node.Differentiator,
			})
		}
	}
	return nominations
}
