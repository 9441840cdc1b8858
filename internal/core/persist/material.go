package persist

import (
	"context"
	"strings"

	"github.com/agenthands/playbill/internal/apperror"
	"github.com/agenthands/playbill/internal/core/hierarchy"
	"github.com/agenthands/playbill/internal/core/model"
	"github.com/agenthands/playbill/internal/store"
)

// Lineage walks are bounded; a chain longer than this is treated as a
// cycle.
const maxLineageHops = 64

var materialEdges = []model.EdgeType{
	model.EdgeSubsequentVersionOf,
	model.EdgeUsesSourceMaterial,
	model.EdgeHasWritingEntity,
	model.EdgeHasSubMaterial,
	model.EdgeDepicts,
}

func (p *Persister) CreateMaterial(ctx context.Context, tx store.Tx, in model.Material) (model.Material, error) {
	return p.saveMaterial(ctx, tx, in.UUID, in, false)
}

func (p *Persister) UpdateMaterial(ctx context.Context, tx store.Tx, uuid string, in model.Material) (model.Material, error) {
	return p.saveMaterial(ctx, tx, uuid, in, true)
}

func normalizeMaterial(in *model.Material) {
	in.Name = strings.TrimSpace(in.Name)
	in.Differentiator = strings.TrimSpace(in.Differentiator)
	in.Subtitle = strings.TrimSpace(in.Subtitle)
	in.Format = strings.TrimSpace(in.Format)
	in.OriginalVersionMaterial = trimRef(in.OriginalVersionMaterial)
	in.SubMaterials = trimRefs(in.SubMaterials)
	for i := range in.WritingCredits {
		c := &in.WritingCredits[i]
		c.Name = strings.TrimSpace(c.Name)
		c.CreditType = strings.TrimSpace(c.CreditType)
		for j := range c.Entities {
			e := &c.Entities[j]
			e.UUID = strings.TrimSpace(e.UUID)
			e.Name = strings.TrimSpace(e.Name)
			e.Differentiator = strings.TrimSpace(e.Differentiator)
			if e.Model == "" {
				e.Model = model.KindPerson
			}
		}
	}
	for i := range in.CharacterGroups {
		g := &in.CharacterGroups[i]
		g.Name = strings.TrimSpace(g.Name)
		for j := range g.Characters {
			c := &g.Characters[j]
			c.UUID = strings.TrimSpace(c.UUID)
			c.Name = strings.TrimSpace(c.Name)
			c.UnderlyingName = strings.TrimSpace(c.UnderlyingName)
			c.Differentiator = strings.TrimSpace(c.Differentiator)
			c.Qualifier = strings.TrimSpace(c.Qualifier)
		}
	}
}

func (w *write) validateMaterial(in model.Material) {
	w.checkName("name", in.Name)
	w.checkOptional("differentiator", in.Differentiator)
	w.checkOptional("subtitle", in.Subtitle)
	w.checkOptional("format", in.Format)
	if in.Year < 0 || in.Year > 9999 {
		w.errs.Add(apperror.KindValidation, "year", "Value must be a whole number between 0 and 9999")
	}
	w.checkRef("originalVersionMaterial", in.OriginalVersionMaterial)

	for i, c := range in.WritingCredits {
		path := apperror.Index("writingCredits", i)
		w.checkOptional(apperror.Join(path, "name"), c.Name)
		if !model.ValidCreditType(c.CreditType) {
			w.errs.Add(apperror.KindValidation, apperror.Join(path, "creditType"), "Value is not a known credit type")
		}
		keys := make([]string, len(c.Entities))
		for j, e := range c.Entities {
			epath := apperror.Index(apperror.Join(path, "entities"), j)
			w.checkRef(epath, e.Ref())
			switch e.Model {
			case model.KindPerson, model.KindCompany, model.KindMaterial:
			default:
				w.errs.Add(apperror.KindValidation, apperror.Join(epath, "model"), "Value must be PERSON, COMPANY or MATERIAL")
			}
			if e.Name != "" {
				keys[j] = string(e.Model) + "\x00" + refKey(e.Name, e.Differentiator)
			}
		}
		w.markDuplicates(keys, func(j int) string {
			return apperror.Join(apperror.Index(apperror.Join(path, "entities"), j), "name")
		})
	}

	keys := make([]string, len(in.SubMaterials))
	for i, r := range in.SubMaterials {
		w.checkRef(apperror.Index("subMaterials", i), r)
		keys[i] = refKey(r.Name, r.Differentiator)
	}
	w.markDuplicates(keys, func(i int) string {
		return apperror.Join(apperror.Index("subMaterials", i), "name")
	})

	for i, g := range in.CharacterGroups {
		path := apperror.Index("characterGroups", i)
		w.checkOptional(apperror.Join(path, "name"), g.Name)
		keys := make([]string, len(g.Characters))
		for j, c := range g.Characters {
			cpath := apperror.Index(apperror.Join(path, "characters"), j)
			w.checkRef(cpath, model.Ref{Name: c.Name, Differentiator: c.Differentiator})
			w.checkOptional(apperror.Join(cpath, "underlyingName"), c.UnderlyingName)
			w.checkOptional(apperror.Join(cpath, "qualifier"), c.Qualifier)
			if c.Name != "" {
				keys[j] = strings.Join([]string{c.Name, c.UnderlyingName, c.Differentiator, c.Qualifier}, "\x00")
			}
		}
		w.markDuplicates(keys, func(j int) string {
			return apperror.Join(apperror.Index(apperror.Join(path, "characters"), j), "name")
		})
	}
}

func (p *Persister) saveMaterial(ctx context.Context, tx store.Tx, uuid string, in model.Material, isUpdate bool) (model.Material, error) {
	normalizeMaterial(&in)
	w, err := p.begin(ctx, tx, model.KindMaterial, uuid, isUpdate)
	if err != nil {
		return model.Material{}, err
	}
	w.validateMaterial(in)
	if err := w.checkUnique(ctx, in.Name, in.Differentiator); err != nil {
		return model.Material{}, err
	}
	if err := w.errs.Err(); err != nil {
		return model.Material{}, err
	}

	props := map[string]any{}
	setString(props, model.PropSubtitle, in.Subtitle)
	setString(props, model.PropFormat, in.Format)
	if in.Year != 0 {
		props[model.PropYear] = int64(in.Year)
	}
	if err := w.saveSubject(ctx, in.Name, in.Differentiator, props, materialEdges...); err != nil {
		return model.Material{}, err
	}

	if err := w.linkOriginalVersion(ctx, in.OriginalVersionMaterial); err != nil {
		return model.Material{}, err
	}
	if err := w.linkWritingCredits(ctx, in.WritingCredits); err != nil {
		return model.Material{}, err
	}
	for i, r := range in.SubMaterials {
		if r.IsZero() {
			continue
		}
		child, err := w.ensure(ctx, model.KindMaterial, r)
		if err != nil {
			return model.Material{}, err
		}
		field := apperror.Join(apperror.Index("subMaterials", i), "name")
		if err := w.attachSub(ctx, hierarchy.Materials, field, child, i); err != nil {
			return model.Material{}, err
		}
	}
	if err := w.linkCharacters(ctx, in.CharacterGroups); err != nil {
		return model.Material{}, err
	}
	if err := w.errs.Err(); err != nil {
		return model.Material{}, err
	}
	return p.EditMaterial(ctx, tx, w.uuid)
}

func (w *write) linkOriginalVersion(ctx context.Context, ref model.Ref) error {
	if ref.IsZero() {
		return nil
	}
	original, err := w.ensure(ctx, model.KindMaterial, ref)
	if err != nil {
		return err
	}
	field := "originalVersionMaterial.name"
	if original == w.uuid {
		w.errs.Add(apperror.KindStructuralViolation, field, "Instance cannot form association with itself")
		return nil
	}
	cyclic, err := reaches(ctx, w.tx, original, w.uuid, model.EdgeSubsequentVersionOf)
	if err != nil {
		return err
	}
	if cyclic {
		w.errs.Add(apperror.KindStructuralViolation, field, "Material is already a subsequent version of this material")
		return nil
	}
	return w.link(ctx, model.EdgeSubsequentVersionOf, original, 0, nil)
}

// reaches reports whether target is reachable from start along outgoing
// edges of edgeType.
func reaches(ctx context.Context, tx store.Tx, start, target string, edgeType model.EdgeType) (bool, error) {
	visited := map[string]bool{start: true}
	frontier := []string{start}
	for hop := 0; hop < maxLineageHops && len(frontier) > 0; hop++ {
		var next []string
		for _, id := range frontier {
			rels, err := tx.Outgoing(ctx, id, edgeType)
			if err != nil {
				return false, err
			}
			for _, r := range rels {
				if r.Node.UUID == target {
					return true, nil
				}
				if !visited[r.Node.UUID] {
					visited[r.Node.UUID] = true
					next = append(next, r.Node.UUID)
				}
			}
		}
		frontier = next
	}
	return len(frontier) > 0, nil
}

func (w *write) linkWritingCredits(ctx context.Context, credits []model.WritingCredit) error {
	position, sourcePosition := 0, 0
	for i, c := range credits {
		for j, e := range c.Entities {
			if e.Name == "" {
				continue
			}
			id, err := w.ensure(ctx, e.Model, e.Ref())
			if err != nil {
				return err
			}
			if e.Model == model.KindMaterial {
				if id == w.uuid {
					field := apperror.Join(apperror.Index(apperror.Join(apperror.Index("writingCredits", i), "entities"), j), "name")
					w.errs.Add(apperror.KindStructuralViolation, field, "Instance cannot form association with itself")
					continue
				}
				if err := w.link(ctx, model.EdgeUsesSourceMaterial, id, sourcePosition, nil); err != nil {
					return err
				}
				sourcePosition++
			}
			props := map[string]any{
				model.PropCreditPosition: int64(i),
				model.PropEntityPosition: int64(j),
			}
			setString(props, model.PropCreditName, c.Name)
			setString(props, model.PropCreditType, c.CreditType)
			if err := w.link(ctx, model.EdgeHasWritingEntity, id, position, props); err != nil {
				return err
			}
			position++
		}
	}
	return nil
}

func (w *write) linkCharacters(ctx context.Context, groups []model.CharacterGroup) error {
	position := 0
	for i, g := range groups {
		for _, c := range g.Characters {
			if c.Name == "" {
				continue
			}
			id, err := w.ensure(ctx, model.KindCharacter, model.Ref{UUID: c.UUID, Name: c.NodeName(), Differentiator: c.Differentiator})
			if err != nil {
				return err
			}
			props := map[string]any{model.PropGroupPosition: int64(i)}
			setString(props, model.PropGroupName, g.Name)
			if c.UnderlyingName != "" && c.UnderlyingName != c.Name {
				props[model.PropDisplayName] = c.Name
			}
			setString(props, model.PropQualifier, c.Qualifier)
			if err := w.link(ctx, model.EdgeDepicts, id, position, props); err != nil {
				return err
			}
			position++
		}
	}
	return nil
}

// EditMaterial returns the material in payload form with resolved uuids.
func (p *Persister) EditMaterial(ctx context.Context, tx store.Tx, uuid string) (model.Material, error) {
	n, err := requireNode(ctx, tx, model.KindMaterial, uuid)
	if err != nil {
		return model.Material{}, err
	}
	m := model.Material{
		UUID:           n.UUID,
		Name:           n.Name,
		Differentiator: n.Differentiator,
		Subtitle:       n.String(model.PropSubtitle),
		Format:         n.String(model.PropFormat),
		Year:           n.Int(model.PropYear),
	}

	originals, err := tx.Outgoing(ctx, uuid, model.EdgeSubsequentVersionOf)
	if err != nil {
		return model.Material{}, err
	}
	if len(originals) > 0 {
		m.OriginalVersionMaterial = refOf(originals[0].Node)
	}

	writers, err := tx.Outgoing(ctx, uuid, model.EdgeHasWritingEntity)
	if err != nil {
		return model.Material{}, err
	}
	m.WritingCredits = groupWritingCredits(writers)

	subs, err := tx.Outgoing(ctx, uuid, model.EdgeHasSubMaterial)
	if err != nil {
		return model.Material{}, err
	}
	m.SubMaterials = refsOf(subs)

	depicts, err := tx.Outgoing(ctx, uuid, model.EdgeDepicts)
	if err != nil {
		return model.Material{}, err
	}
	m.CharacterGroups = groupCharacters(depicts)
	return m, nil
}

// groupWritingCredits rebuilds credits from edges already in position order.
func groupWritingCredits(rels []store.Relation) []model.WritingCredit {
	credits := []model.WritingCredit{}
	last := -1
	for _, r := range rels {
		if pos := r.Edge.Int(model.PropCreditPosition); pos != last {
			credits = append(credits, model.WritingCredit{
				Name:       r.Edge.String(model.PropCreditName),
				CreditType: r.Edge.String(model.PropCreditType),
			})
			last = pos
		}
		c := &credits[len(credits)-1]
		c.Entities = append(c.Entities, model.WritingEntity{
			Model:          r.Node.Kind,
			UUID:           r.Node.UUID,
			Name:           r.Node.Name,
			Differentiator: r.Node.Differentiator,
		})
	}
	return credits
}

func groupCharacters(rels []store.Relation) []model.CharacterGroup {
	groups := []model.CharacterGroup{}
	last := -1
	for _, r := range rels {
		if pos := r.Edge.Int(model.PropGroupPosition); pos != last {
			groups = append(groups, model.CharacterGroup{Name: r.Edge.String(model.PropGroupName)})
			last = pos
		}
		g := &groups[len(groups)-1]
		c := model.CharacterDepiction{
			UUID:           r.Node.UUID,
			Name:           r.Node.Name,
			Differentiator: r.Node.Differentiator,
			Qualifier:      r.Edge.String(model.PropQualifier),
		}
		if display := r.Edge.String(model.PropDisplayName); display != "" {
			c.Name, c.UnderlyingName = display, r.Node.Name
		}
		g.Characters = append(g.Characters, c)
	}
	return groups
}
