package persist

import (
	"context"
	"fmt"
	"strings"

	"github.com/agenthands/playbill/internal/core/model"
	"github.com/agenthands/playbill/internal/store"
)

// Entities are the kinds that carry only a natural key.
var Entities = []model.Kind{model.KindPerson, model.KindCompany, model.KindCharacter, model.KindAward}

func isEntity(kind model.Kind) bool {
	for _, k := range Entities {
		if k == kind {
			return true
		}
	}
	return false
}

func (p *Persister) CreateEntity(ctx context.Context, tx store.Tx, kind model.Kind, in model.Entity) (model.Entity, error) {
	return p.saveEntity(ctx, tx, kind, in.UUID, in, false)
}

func (p *Persister) UpdateEntity(ctx context.Context, tx store.Tx, kind model.Kind, uuid string, in model.Entity) (model.Entity, error) {
	return p.saveEntity(ctx, tx, kind, uuid, in, true)
}

func (p *Persister) saveEntity(ctx context.Context, tx store.Tx, kind model.Kind, uuid string, in model.Entity, isUpdate bool) (model.Entity, error) {
	if !isEntity(kind) {
		return model.Entity{}, fmt.Errorf("persist: %s is not a simple entity", kind)
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Differentiator = strings.TrimSpace(in.Differentiator)

	w, err := p.begin(ctx, tx, kind, uuid, isUpdate)
	if err != nil {
		return model.Entity{}, err
	}
	w.checkName("name", in.Name)
	w.checkOptional("differentiator", in.Differentiator)
	if err := w.checkUnique(ctx, in.Name, in.Differentiator); err != nil {
		return model.Entity{}, err
	}
	if err := w.errs.Err(); err != nil {
		return model.Entity{}, err
	}
	if err := w.saveSubject(ctx, in.Name, in.Differentiator, map[string]any{}); err != nil {
		return model.Entity{}, err
	}
	return p.EditEntity(ctx, tx, kind, w.uuid)
}

func (p *Persister) EditEntity(ctx context.Context, tx store.Tx, kind model.Kind, uuid string) (model.Entity, error) {
	n, err := requireNode(ctx, tx, kind, uuid)
	if err != nil {
		return model.Entity{}, err
	}
	return model.Entity{UUID: n.UUID, Name: n.Name, Differentiator: n.Differentiator}, nil
}
