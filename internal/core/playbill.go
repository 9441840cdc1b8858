// Package core exposes the theatre records graph as one façade: every
// operation runs in exactly one store transaction.
package core

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/agenthands/playbill/internal/apperror"
	"github.com/agenthands/playbill/internal/core/awards"
	"github.com/agenthands/playbill/internal/core/dedupe"
	"github.com/agenthands/playbill/internal/core/model"
	"github.com/agenthands/playbill/internal/core/persist"
	"github.com/agenthands/playbill/internal/core/show"
	"github.com/agenthands/playbill/internal/logging"
	"github.com/agenthands/playbill/internal/store"
)

type Playbill struct {
	Store         store.Store
	Logger        *slog.Logger
	UUIDGenerator func() string

	persister *persist.Persister
}

func NewPlaybill(s store.Store, logger *slog.Logger) *Playbill {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Playbill{Store: s, Logger: logger, UUIDGenerator: uuid.NewString}
	p.persister = persist.New(dedupe.NewResolver(func() string { return p.UUIDGenerator() }))
	return p
}

func (p *Playbill) log(ctx context.Context) *slog.Logger {
	return logging.FromContextOr(ctx, p.Logger)
}

// finish logs the outcome of op and converts storage failures.
func (p *Playbill) finish(ctx context.Context, op string, kind model.Kind, err error) error {
	logger := p.log(ctx).With(slog.String("op", op), slog.String("kind", string(kind)))
	if err == nil {
		if op != "read" {
			logger.Info("write committed")
		}
		return nil
	}
	if appErr, ok := apperror.As(err); ok && !appErr.IsFatal() {
		logger.Debug("request rejected", slog.String("error_kind", string(appErr.Kind)), slog.String("error", appErr.Message))
		return err
	}
	err = apperror.Storage(err)
	logger.Error("storage failure", slog.Any("error", err))
	return err
}

func write[T any](ctx context.Context, p *Playbill, op string, kind model.Kind, fn func(tx store.Tx) (T, error)) (T, error) {
	var out T
	err := p.Store.Write(ctx, func(tx store.Tx) error {
		var err error
		out, err = fn(tx)
		return err
	})
	if err != nil {
		var zero T
		return zero, p.finish(ctx, op, kind, err)
	}
	return out, p.finish(ctx, op, kind, nil)
}

func read[T any](ctx context.Context, p *Playbill, kind model.Kind, fn func(tx store.Tx) (T, error)) (T, error) {
	var out T
	err := p.Store.Read(ctx, func(tx store.Tx) error {
		var err error
		out, err = fn(tx)
		return err
	})
	if err != nil {
		var zero T
		return zero, p.finish(ctx, "read", kind, err)
	}
	return out, nil
}

func (p *Playbill) CreateMaterial(ctx context.Context, in model.Material) (model.Material, error) {
	return write(ctx, p, "create", model.KindMaterial, func(tx store.Tx) (model.Material, error) {
		return p.persister.CreateMaterial(ctx, tx, in)
	})
}

func (p *Playbill) UpdateMaterial(ctx context.Context, uuid string, in model.Material) (model.Material, error) {
	return write(ctx, p, "update", model.KindMaterial, func(tx store.Tx) (model.Material, error) {
		return p.persister.UpdateMaterial(ctx, tx, uuid, in)
	})
}

func (p *Playbill) EditMaterial(ctx context.Context, uuid string) (model.Material, error) {
	return read(ctx, p, model.KindMaterial, func(tx store.Tx) (model.Material, error) {
		return p.persister.EditMaterial(ctx, tx, uuid)
	})
}

func (p *Playbill) ShowMaterial(ctx context.Context, uuid string) (model.MaterialShow, error) {
	return read(ctx, p, model.KindMaterial, func(tx store.Tx) (model.MaterialShow, error) {
		return show.New(tx).Material(ctx, uuid)
	})
}

func (p *Playbill) CreateProduction(ctx context.Context, in model.Production) (model.Production, error) {
	return write(ctx, p, "create", model.KindProduction, func(tx store.Tx) (model.Production, error) {
		return p.persister.CreateProduction(ctx, tx, in)
	})
}

func (p *Playbill) UpdateProduction(ctx context.Context, uuid string, in model.Production) (model.Production, error) {
	return write(ctx, p, "update", model.KindProduction, func(tx store.Tx) (model.Production, error) {
		return p.persister.UpdateProduction(ctx, tx, uuid, in)
	})
}

func (p *Playbill) EditProduction(ctx context.Context, uuid string) (model.Production, error) {
	return read(ctx, p, model.KindProduction, func(tx store.Tx) (model.Production, error) {
		return p.persister.EditProduction(ctx, tx, uuid)
	})
}

func (p *Playbill) ShowProduction(ctx context.Context, uuid string) (model.ProductionShow, error) {
	return read(ctx, p, model.KindProduction, func(tx store.Tx) (model.ProductionShow, error) {
		return show.New(tx).Production(ctx, uuid)
	})
}

func (p *Playbill) CreateVenue(ctx context.Context, in model.Venue) (model.Venue, error) {
	return write(ctx, p, "create", model.KindVenue, func(tx store.Tx) (model.Venue, error) {
		return p.persister.CreateVenue(ctx, tx, in)
	})
}

func (p *Playbill) UpdateVenue(ctx context.Context, uuid string, in model.Venue) (model.Venue, error) {
	return write(ctx, p, "update", model.KindVenue, func(tx store.Tx) (model.Venue, error) {
		return p.persister.UpdateVenue(ctx, tx, uuid, in)
	})
}

func (p *Playbill) EditVenue(ctx context.Context, uuid string) (model.Venue, error) {
	return read(ctx, p, model.KindVenue, func(tx store.Tx) (model.Venue, error) {
		return p.persister.EditVenue(ctx, tx, uuid)
	})
}

func (p *Playbill) ShowVenue(ctx context.Context, uuid string) (model.VenueShow, error) {
	return read(ctx, p, model.KindVenue, func(tx store.Tx) (model.VenueShow, error) {
		return show.New(tx).Venue(ctx, uuid)
	})
}

// CreateEntity creates a person, company, character or award.
func (p *Playbill) CreateEntity(ctx context.Context, kind model.Kind, in model.Entity) (model.Entity, error) {
	return write(ctx, p, "create", kind, func(tx store.Tx) (model.Entity, error) {
		return p.persister.CreateEntity(ctx, tx, kind, in)
	})
}

func (p *Playbill) UpdateEntity(ctx context.Context, kind model.Kind, uuid string, in model.Entity) (model.Entity, error) {
	return write(ctx, p, "update", kind, func(tx store.Tx) (model.Entity, error) {
		return p.persister.UpdateEntity(ctx, tx, kind, uuid, in)
	})
}

func (p *Playbill) EditEntity(ctx context.Context, kind model.Kind, uuid string) (model.Entity, error) {
	return read(ctx, p, kind, func(tx store.Tx) (model.Entity, error) {
		return p.persister.EditEntity(ctx, tx, kind, uuid)
	})
}

// ShowPerson renders a person or company.
func (p *Playbill) ShowPerson(ctx context.Context, kind model.Kind, uuid string) (model.PersonShow, error) {
	return read(ctx, p, kind, func(tx store.Tx) (model.PersonShow, error) {
		return show.New(tx).Person(ctx, kind, uuid)
	})
}

func (p *Playbill) ShowCharacter(ctx context.Context, uuid string) (model.CharacterShow, error) {
	return read(ctx, p, model.KindCharacter, func(tx store.Tx) (model.CharacterShow, error) {
		return show.New(tx).Character(ctx, uuid)
	})
}

func (p *Playbill) ShowAward(ctx context.Context, uuid string) (model.AwardShow, error) {
	return read(ctx, p, model.KindAward, func(tx store.Tx) (model.AwardShow, error) {
		return show.New(tx).Award(ctx, uuid)
	})
}

func (p *Playbill) CreateAwardCeremony(ctx context.Context, in model.AwardCeremony) (model.AwardCeremony, error) {
	return write(ctx, p, "create", model.KindAwardCeremony, func(tx store.Tx) (model.AwardCeremony, error) {
		return p.persister.CreateAwardCeremony(ctx, tx, in)
	})
}

func (p *Playbill) UpdateAwardCeremony(ctx context.Context, uuid string, in model.AwardCeremony) (model.AwardCeremony, error) {
	return write(ctx, p, "update", model.KindAwardCeremony, func(tx store.Tx) (model.AwardCeremony, error) {
		return p.persister.UpdateAwardCeremony(ctx, tx, uuid, in)
	})
}

func (p *Playbill) EditAwardCeremony(ctx context.Context, uuid string) (model.AwardCeremony, error) {
	return read(ctx, p, model.KindAwardCeremony, func(tx store.Tx) (model.AwardCeremony, error) {
		return p.persister.EditAwardCeremony(ctx, tx, uuid)
	})
}

func (p *Playbill) ShowAwardCeremony(ctx context.Context, uuid string) (model.AwardCeremonyShow, error) {
	return read(ctx, p, model.KindAwardCeremony, func(tx store.Tx) (model.AwardCeremonyShow, error) {
		return show.New(tx).AwardCeremony(ctx, uuid)
	})
}

// Delete removes a node of kind with no remaining associations.
func (p *Playbill) Delete(ctx context.Context, kind model.Kind, uuid string) error {
	_, err := write(ctx, p, "delete", kind, func(tx store.Tx) (struct{}, error) {
		return struct{}{}, p.persister.Delete(ctx, tx, kind, uuid)
	})
	return err
}

func (p *Playbill) List(ctx context.Context, kind model.Kind) ([]model.EntitySummary, error) {
	return read(ctx, p, kind, func(tx store.Tx) ([]model.EntitySummary, error) {
		return show.List(ctx, tx, kind)
	})
}

// FindAwards returns the awards reachable from a material, production,
// person or company of kind.
func (p *Playbill) FindAwards(ctx context.Context, kind model.Kind, uuid string) ([]model.Award, error) {
	return read(ctx, p, kind, func(tx store.Tx) ([]model.Award, error) {
		switch kind {
		case model.KindMaterial, model.KindProduction, model.KindPerson, model.KindCompany:
		default:
			return nil, apperror.Invalid(apperror.KindValidation, "model", kind.Label()+" nodes do not receive awards")
		}
		n, err := tx.GetNode(ctx, uuid)
		if errors.Is(err, store.ErrNotFound) || (err == nil && n.Kind != kind) {
			return nil, apperror.NotFound(kind, uuid)
		}
		if err != nil {
			return nil, err
		}
		return awards.Find(ctx, tx, uuid)
	})
}
