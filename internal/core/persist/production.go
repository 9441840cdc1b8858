package persist

import (
	"context"
	"strings"
	"time"

	"github.com/agenthands/playbill/internal/apperror"
	"github.com/agenthands/playbill/internal/core/hierarchy"
	"github.com/agenthands/playbill/internal/core/model"
	"github.com/agenthands/playbill/internal/store"
)

const dateLayout = "2006-01-02"

var productionEdges = []model.EdgeType{
	model.EdgeProductionOf,
	model.EdgePlaysAt,
	model.EdgeHasSubProduction,
	model.EdgeHasCastMember,
}

func (p *Persister) CreateProduction(ctx context.Context, tx store.Tx, in model.Production) (model.Production, error) {
	return p.saveProduction(ctx, tx, in.UUID, in, false)
}

func (p *Persister) UpdateProduction(ctx context.Context, tx store.Tx, uuid string, in model.Production) (model.Production, error) {
	return p.saveProduction(ctx, tx, uuid, in, true)
}

func normalizeProduction(in *model.Production) {
	in.Name = strings.TrimSpace(in.Name)
	in.Subtitle = strings.TrimSpace(in.Subtitle)
	in.StartDate = strings.TrimSpace(in.StartDate)
	in.PressDate = strings.TrimSpace(in.PressDate)
	in.EndDate = strings.TrimSpace(in.EndDate)
	in.Material = trimRef(in.Material)
	in.Venue = trimRef(in.Venue)
	in.SubProductions = trimUUIDRefs(in.SubProductions)
	for i := range in.Cast {
		m := &in.Cast[i]
		m.UUID = strings.TrimSpace(m.UUID)
		m.Name = strings.TrimSpace(m.Name)
		m.Differentiator = strings.TrimSpace(m.Differentiator)
		for j := range m.Roles {
			r := &m.Roles[j]
			r.Name = strings.TrimSpace(r.Name)
			r.CharacterName = strings.TrimSpace(r.CharacterName)
			r.CharacterDifferentiator = strings.TrimSpace(r.CharacterDifferentiator)
			r.Qualifier = strings.TrimSpace(r.Qualifier)
		}
	}
}

func (w *write) checkDate(field, value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		w.errs.Add(apperror.KindValidation, field, "Value needs to be a valid date (YYYY-MM-DD)")
		return time.Time{}, false
	}
	return t, true
}

func (w *write) validateProduction(in model.Production) {
	w.checkName("name", in.Name)
	w.checkOptional("subtitle", in.Subtitle)

	start, hasStart := w.checkDate("startDate", in.StartDate)
	press, hasPress := w.checkDate("pressDate", in.PressDate)
	end, hasEnd := w.checkDate("endDate", in.EndDate)
	if hasStart && hasPress && press.Before(start) {
		w.errs.Add(apperror.KindValidation, "pressDate", "Press date must not be before start date")
	}
	if hasStart && hasEnd && end.Before(start) {
		w.errs.Add(apperror.KindValidation, "endDate", "End date must not be before start date")
	}
	if hasPress && hasEnd && end.Before(press) {
		w.errs.Add(apperror.KindValidation, "endDate", "End date must not be before press date")
	}

	w.checkRef("material", in.Material)
	w.checkRef("venue", in.Venue)

	keys := make([]string, len(in.SubProductions))
	for i, r := range in.SubProductions {
		keys[i] = r.UUID
	}
	w.markDuplicates(keys, func(i int) string {
		return apperror.Join(apperror.Index("subProductions", i), "uuid")
	})

	keys = make([]string, len(in.Cast))
	for i, m := range in.Cast {
		path := apperror.Index("cast", i)
		w.checkRef(path, model.Ref{Name: m.Name, Differentiator: m.Differentiator})
		keys[i] = refKey(m.Name, m.Differentiator)
		roleKeys := make([]string, len(m.Roles))
		for j, r := range m.Roles {
			rpath := apperror.Index(apperror.Join(path, "roles"), j)
			if r.Name == "" && (r.CharacterName != "" || r.CharacterDifferentiator != "" || r.Qualifier != "") {
				w.errs.Add(apperror.KindValidation, apperror.Join(rpath, "name"), msgTooShort)
			}
			w.checkOptional(apperror.Join(rpath, "name"), r.Name)
			w.checkOptional(apperror.Join(rpath, "characterName"), r.CharacterName)
			w.checkOptional(apperror.Join(rpath, "characterDifferentiator"), r.CharacterDifferentiator)
			w.checkOptional(apperror.Join(rpath, "qualifier"), r.Qualifier)
			if r.Name != "" {
				roleKeys[j] = strings.Join([]string{r.Name, r.CharacterName, r.CharacterDifferentiator, r.Qualifier}, "\x00")
			}
		}
		w.markDuplicates(roleKeys, func(j int) string {
			return apperror.Join(apperror.Index(apperror.Join(path, "roles"), j), "name")
		})
	}
	w.markDuplicates(keys, func(i int) string {
		return apperror.Join(apperror.Index("cast", i), "name")
	})
}

func (p *Persister) saveProduction(ctx context.Context, tx store.Tx, uuid string, in model.Production, isUpdate bool) (model.Production, error) {
	normalizeProduction(&in)
	w, err := p.begin(ctx, tx, model.KindProduction, uuid, isUpdate)
	if err != nil {
		return model.Production{}, err
	}
	w.validateProduction(in)
	if err := w.errs.Err(); err != nil {
		return model.Production{}, err
	}

	props := map[string]any{}
	setString(props, model.PropSubtitle, in.Subtitle)
	setString(props, model.PropStartDate, in.StartDate)
	setString(props, model.PropPressDate, in.PressDate)
	setString(props, model.PropEndDate, in.EndDate)
	if err := w.saveSubject(ctx, in.Name, "", props, productionEdges...); err != nil {
		return model.Production{}, err
	}

	if !in.Material.IsZero() {
		id, err := w.ensure(ctx, model.KindMaterial, in.Material)
		if err != nil {
			return model.Production{}, err
		}
		if err := w.link(ctx, model.EdgeProductionOf, id, 0, nil); err != nil {
			return model.Production{}, err
		}
	}
	if !in.Venue.IsZero() {
		id, err := w.ensure(ctx, model.KindVenue, in.Venue)
		if err != nil {
			return model.Production{}, err
		}
		if err := w.link(ctx, model.EdgePlaysAt, id, 0, nil); err != nil {
			return model.Production{}, err
		}
	}
	for i, r := range in.SubProductions {
		if r.UUID == "" {
			continue
		}
		field := apperror.Join(apperror.Index("subProductions", i), "uuid")
		if err := w.attachSub(ctx, hierarchy.Productions, field, r.UUID, i); err != nil {
			return model.Production{}, err
		}
	}
	if err := w.linkCast(ctx, in.Cast); err != nil {
		return model.Production{}, err
	}
	if err := w.errs.Err(); err != nil {
		return model.Production{}, err
	}
	return p.EditProduction(ctx, tx, w.uuid)
}

// linkCast creates one HAS_CAST_MEMBER edge per role, or a single edge for
// a member without roles.
func (w *write) linkCast(ctx context.Context, cast []model.CastMember) error {
	position := 0
	for i, m := range cast {
		if m.Name == "" {
			continue
		}
		id, err := w.ensure(ctx, model.KindPerson, model.Ref{UUID: m.UUID, Name: m.Name, Differentiator: m.Differentiator})
		if err != nil {
			return err
		}
		var roles []model.Role
		for _, r := range m.Roles {
			if r.Name != "" {
				roles = append(roles, r)
			}
		}
		if len(roles) == 0 {
			props := map[string]any{model.PropCastMemberPosition: int64(i)}
			if err := w.link(ctx, model.EdgeHasCastMember, id, position, props); err != nil {
				return err
			}
			position++
			continue
		}
		for j, r := range roles {
			props := map[string]any{
				model.PropCastMemberPosition: int64(i),
				model.PropRolePosition:       int64(j),
				model.PropRoleName:           r.Name,
			}
			setString(props, model.PropCharacterName, r.CharacterName)
			setString(props, model.PropCharacterDiff, r.CharacterDifferentiator)
			setString(props, model.PropQualifier, r.Qualifier)
			if r.IsAlternate {
				props[model.PropIsAlternate] = true
			}
			if err := w.link(ctx, model.EdgeHasCastMember, id, position, props); err != nil {
				return err
			}
			position++
		}
	}
	return nil
}

func (p *Persister) EditProduction(ctx context.Context, tx store.Tx, uuid string) (model.Production, error) {
	n, err := requireNode(ctx, tx, model.KindProduction, uuid)
	if err != nil {
		return model.Production{}, err
	}
	out := model.Production{
		UUID:      n.UUID,
		Name:      n.Name,
		Subtitle:  n.String(model.PropSubtitle),
		StartDate: n.String(model.PropStartDate),
		PressDate: n.String(model.PropPressDate),
		EndDate:   n.String(model.PropEndDate),
	}

	materials, err := tx.Outgoing(ctx, uuid, model.EdgeProductionOf)
	if err != nil {
		return model.Production{}, err
	}
	if len(materials) > 0 {
		out.Material = refOf(materials[0].Node)
	}
	venues, err := tx.Outgoing(ctx, uuid, model.EdgePlaysAt)
	if err != nil {
		return model.Production{}, err
	}
	if len(venues) > 0 {
		out.Venue = refOf(venues[0].Node)
	}

	subs, err := tx.Outgoing(ctx, uuid, model.EdgeHasSubProduction)
	if err != nil {
		return model.Production{}, err
	}
	out.SubProductions = make([]model.UUIDRef, len(subs))
	for i, s := range subs {
		out.SubProductions[i] = model.UUIDRef{UUID: s.Node.UUID}
	}

	cast, err := tx.Outgoing(ctx, uuid, model.EdgeHasCastMember)
	if err != nil {
		return model.Production{}, err
	}
	out.Cast = groupCast(cast)
	return out, nil
}

func groupCast(rels []store.Relation) []model.CastMember {
	members := []model.CastMember{}
	last := -1
	for _, r := range rels {
		if pos := r.Edge.Int(model.PropCastMemberPosition); pos != last {
			members = append(members, model.CastMember{
				UUID:           r.Node.UUID,
				Name:           r.Node.Name,
				Differentiator: r.Node.Differentiator,
				Roles:          []model.Role{},
			})
			last = pos
		}
		role := r.Edge.String(model.PropRoleName)
		if role == "" {
			continue
		}
		m := &members[len(members)-1]
		m.Roles = append(m.Roles, model.Role{
			Name:                    role,
			CharacterName:           r.Edge.String(model.PropCharacterName),
			CharacterDifferentiator: r.Edge.String(model.PropCharacterDiff),
			Qualifier:               r.Edge.String(model.PropQualifier),
			IsAlternate:             r.Edge.Bool(model.PropIsAlternate),
		})
	}
	return members
}
