package show

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/playbill/internal/apperror"
	"github.com/agenthands/playbill/internal/core/dedupe"
	"github.com/agenthands/playbill/internal/core/model"
	"github.com/agenthands/playbill/internal/core/persist"
	"github.com/agenthands/playbill/internal/store"
	"github.com/agenthands/playbill/internal/store/memstore"
)

type fixture struct {
	t     *testing.T
	store store.Store
	p     *persist.Persister
}

func newFixture(t *testing.T) *fixture {
	n := 0
	newID := func() string {
		n++
		return fmt.Sprintf("generated-%d", n)
	}
	return &fixture{t: t, store: memstore.New(), p: persist.New(dedupe.NewResolver(newID))}
}

func (f *fixture) write(fn func(ctx context.Context, tx store.Tx) error) {
	f.t.Helper()
	require.NoError(f.t, f.store.Write(context.Background(), func(tx store.Tx) error {
		return fn(context.Background(), tx)
	}))
}

func (f *fixture) view(fn func(ctx context.Context, v *Viewer) error) {
	f.t.Helper()
	require.NoError(f.t, f.store.Read(context.Background(), func(tx store.Tx) error {
		return fn(context.Background(), New(tx))
	}))
}

func (f *fixture) uuidOf(kind model.Kind, name string) string {
	f.t.Helper()
	var uuid string
	require.NoError(f.t, f.store.Read(context.Background(), func(tx store.Tx) error {
		n, err := tx.FindNode(context.Background(), kind, name, "")
		uuid = n.UUID
		return err
	}))
	return uuid
}

// seed stores a small repertoire around Henry IV.
func seed(f *fixture) {
	f.write(func(ctx context.Context, tx store.Tx) error {
		if _, err := f.p.CreateVenue(ctx, tx, model.Venue{Name: "National Theatre", SubVenues: []model.Ref{{Name: "Olivier"}}}); err != nil {
			return err
		}
		if _, err := f.p.CreateMaterial(ctx, tx, model.Material{
			UUID:   "part-1",
			Name:   "Henry IV, Part 1",
			Format: "play",
			Year:   1597,
			WritingCredits: []model.WritingCredit{
				{Entities: []model.WritingEntity{{Name: "William Shakespeare"}}},
				{Name: "based on", Entities: []model.WritingEntity{{Model: model.KindMaterial, Name: "Chronicles"}}},
			},
			CharacterGroups: []model.CharacterGroup{{
				Characters: []model.CharacterDepiction{
					{Name: "Hal", UnderlyingName: "Henry V"},
					{Name: "Falstaff"},
				},
			}},
		}); err != nil {
			return err
		}
		if _, err := f.p.CreateMaterial(ctx, tx, model.Material{
			Name:         "The Henriad",
			SubMaterials: []model.Ref{{Name: "Henry IV, Part 1"}},
		}); err != nil {
			return err
		}
		if _, err := f.p.CreateMaterial(ctx, tx, model.Material{
			Name:                    "Henry IV: Remix",
			OriginalVersionMaterial: model.Ref{Name: "Henry IV, Part 1"},
		}); err != nil {
			return err
		}
		_, err := f.p.CreateProduction(ctx, tx, model.Production{
			UUID:      "prod",
			Name:      "Henry IV, Part 1",
			StartDate: "2005-05-04",
			Material:  model.Ref{Name: "Henry IV, Part 1"},
			Venue:     model.Ref{Name: "Olivier"},
			Cast: []model.CastMember{
				{Name: "Michael Gambon", Roles: []model.Role{{Name: "Sir John Falstaff", CharacterName: "Falstaff"}}},
				{Name: "Matthew Macfadyen", Roles: []model.Role{{Name: "Hal"}, {Name: "Chorus", IsAlternate: true}}},
			},
		})
		return err
	})
}

func TestMaterialShow(t *testing.T) {
	f := newFixture(t)
	seed(f)

	f.view(func(ctx context.Context, v *Viewer) error {
		m, err := v.Material(ctx, "part-1")
		require.NoError(t, err)

		assert.Equal(t, "play", m.Format)
		assert.Equal(t, 1597, m.Year)
		require.Len(t, m.WritingCredits, 2)
		assert.Equal(t, "William Shakespeare", m.WritingCredits[0].Entities[0].Name)
		assert.Equal(t, "based on", m.WritingCredits[1].Name)
		assert.Equal(t, model.KindMaterial, m.WritingCredits[1].Entities[0].Model)

		require.NotNil(t, m.SurMaterial)
		assert.Equal(t, "The Henriad", m.SurMaterial.Name)
		assert.Empty(t, m.SubMaterials)
		assert.Nil(t, m.OriginalVersionMaterial)
		require.Len(t, m.SubsequentVersionMaterials, 1)
		assert.Equal(t, "Henry IV: Remix", m.SubsequentVersionMaterials[0].Name)
		assert.Empty(t, m.SourcingMaterials)

		require.Len(t, m.CharacterGroups, 1)
		assert.Equal(t, []model.CharacterView{
			{UUID: f.uuidOf(model.KindCharacter, "Henry V"), Name: "Henry V", DisplayName: "Hal"},
			{UUID: f.uuidOf(model.KindCharacter, "Falstaff"), Name: "Falstaff"},
		}, m.CharacterGroups[0].Characters)

		require.Len(t, m.Productions, 1)
		require.NotNil(t, m.Productions[0].Venue)
		assert.Equal(t, "Olivier", m.Productions[0].Venue.Name)
		assert.Equal(t, "National Theatre", m.Productions[0].Venue.SurVenue.Name)
		assert.NotNil(t, m.Awards)

		source, err := v.Material(ctx, f.uuidOf(model.KindMaterial, "Chronicles"))
		require.NoError(t, err)
		require.Len(t, source.SourcingMaterials, 1)
		assert.Equal(t, "Henry IV, Part 1", source.SourcingMaterials[0].Name)
		assert.Equal(t, "The Henriad", source.SourcingMaterials[0].SurMaterial.Name)

		remix, err := v.Material(ctx, f.uuidOf(model.KindMaterial, "Henry IV: Remix"))
		require.NoError(t, err)
		require.NotNil(t, remix.OriginalVersionMaterial)
		assert.Equal(t, "Henry IV, Part 1", remix.OriginalVersionMaterial.Name)

		henriad, err := v.Material(ctx, f.uuidOf(model.KindMaterial, "The Henriad"))
		require.NoError(t, err)
		require.Len(t, henriad.SubMaterials, 1)
		assert.Equal(t, "Henry IV, Part 1", henriad.SubMaterials[0].Name)
		return nil
	})
}

func TestProductionShow(t *testing.T) {
	f := newFixture(t)
	seed(f)

	f.view(func(ctx context.Context, v *Viewer) error {
		p, err := v.Production(ctx, "prod")
		require.NoError(t, err)

		assert.Equal(t, "2005-05-04", p.StartDate)
		require.NotNil(t, p.Material)
		assert.Equal(t, "The Henriad", p.Material.SurMaterial.Name)
		require.NotNil(t, p.Venue)
		assert.Equal(t, "National Theatre", p.Venue.SurVenue.Name)
		assert.Empty(t, p.SubProductions)

		require.Len(t, p.Cast, 2)
		gambon := p.Cast[0]
		assert.Equal(t, "Michael Gambon", gambon.Name)
		require.Len(t, gambon.Roles, 1)
		require.NotNil(t, gambon.Roles[0].Character)
		assert.Equal(t, "Falstaff", gambon.Roles[0].Character.Name)

		hal := p.Cast[1].Roles
		require.Len(t, hal, 2)
		require.NotNil(t, hal[0].Character, "display name links the role")
		assert.Equal(t, "Henry V", hal[0].Character.Name)
		assert.Nil(t, hal[1].Character)
		assert.True(t, hal[1].IsAlternate)
		return nil
	})
}

func TestVenueShow(t *testing.T) {
	f := newFixture(t)
	seed(f)

	f.view(func(ctx context.Context, v *Viewer) error {
		nt, err := v.Venue(ctx, f.uuidOf(model.KindVenue, "National Theatre"))
		require.NoError(t, err)
		assert.Nil(t, nt.SurVenue)
		require.Len(t, nt.SubVenues, 1)
		require.Len(t, nt.Productions, 1)
		assert.Equal(t, "Olivier", nt.Productions[0].Venue.Name)

		olivier, err := v.Venue(ctx, f.uuidOf(model.KindVenue, "Olivier"))
		require.NoError(t, err)
		require.NotNil(t, olivier.SurVenue)
		assert.Equal(t, "National Theatre", olivier.SurVenue.Name)
		require.Len(t, olivier.Productions, 1)
		assert.Nil(t, olivier.Productions[0].Venue)
		return nil
	})
}

func TestPersonAndCharacterShow(t *testing.T) {
	f := newFixture(t)
	seed(f)

	f.view(func(ctx context.Context, v *Viewer) error {
		will, err := v.Person(ctx, model.KindPerson, f.uuidOf(model.KindPerson, "William Shakespeare"))
		require.NoError(t, err)
		require.Len(t, will.Materials, 1)
		assert.Equal(t, "Henry IV, Part 1", will.Materials[0].Name)
		assert.Empty(t, will.Productions)

		gambon, err := v.Person(ctx, model.KindPerson, f.uuidOf(model.KindPerson, "Michael Gambon"))
		require.NoError(t, err)
		require.Len(t, gambon.Productions, 1)
		assert.Equal(t, "Sir John Falstaff", gambon.Productions[0].Roles[0].Name)

		falstaff, err := v.Character(ctx, f.uuidOf(model.KindCharacter, "Falstaff"))
		require.NoError(t, err)
		require.Len(t, falstaff.Materials, 1)
		assert.Equal(t, "Henry IV, Part 1", falstaff.Materials[0].Name)

		henry, err := v.Character(ctx, f.uuidOf(model.KindCharacter, "Henry V"))
		require.NoError(t, err)
		assert.Equal(t, "Hal", henry.Materials[0].DisplayName)
		return nil
	})
}

func TestAwardShows(t *testing.T) {
	f := newFixture(t)
	seed(f)
	var ceremony string
	f.write(func(ctx context.Context, tx store.Tx) error {
		for _, name := range []string{"2004", "2005"} {
			out, err := f.p.CreateAwardCeremony(ctx, tx, model.AwardCeremony{
				Name:  name,
				Award: model.Ref{Name: "Evening Standard Award"},
				Categories: []model.CategoryInput{{
					Name: "Best Actor",
					Nominations: []model.NominationInput{
						{Entities: []model.NomineeEntity{{Name: "Michael Gambon"}}, Productions: []model.UUIDRef{{UUID: "prod"}}},
						{IsWinner: true, CustomType: "Special Award", Entities: []model.NomineeEntity{{Name: "Matthew Macfadyen"}}},
					},
				}},
			})
			if err != nil {
				return err
			}
			ceremony = out.UUID
		}
		return nil
	})

	f.view(func(ctx context.Context, v *Viewer) error {
		award, err := v.Award(ctx, f.uuidOf(model.KindAward, "Evening Standard Award"))
		require.NoError(t, err)
		require.Len(t, award.Ceremonies, 2)
		assert.Equal(t, "2005", award.Ceremonies[0].Name)

		c, err := v.AwardCeremony(ctx, ceremony)
		require.NoError(t, err)
		require.NotNil(t, c.Award)
		assert.Equal(t, "Evening Standard Award", c.Award.Name)
		require.Len(t, c.Categories, 1)
		nominations := c.Categories[0].Nominations
		require.Len(t, nominations, 2)
		assert.Equal(t, model.NominationTypeNomination, nominations[0].Type)
		assert.Equal(t, "Michael Gambon", nominations[0].Entities[0].Name)
		require.Len(t, nominations[0].Productions, 1)
		assert.Equal(t, "Olivier", nominations[0].Productions[0].Venue.Name)
		assert.Equal(t, "Special Award", nominations[1].Type)
		assert.True(t, nominations[1].IsWinner)

		p, err := v.Production(ctx, "prod")
		require.NoError(t, err)
		require.Len(t, p.Awards, 1)
		assert.Len(t, p.Awards[0].Ceremonies, 2)
		return nil
	})
}

func TestShowMissing(t *testing.T) {
	f := newFixture(t)
	seed(f)
	f.view(func(ctx context.Context, v *Viewer) error {
		_, err := v.Material(ctx, "nope")
		assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

		_, err = v.Venue(ctx, "prod")
		assert.True(t, apperror.IsKind(err, apperror.KindNotFound), "wrong kind is not found")
		return nil
	})
}

func TestList(t *testing.T) {
	f := newFixture(t)
	seed(f)
	require.NoError(t, f.store.Read(context.Background(), func(tx store.Tx) error {
		venues, err := List(context.Background(), tx, model.KindVenue)
		require.NoError(t, err)
		require.Len(t, venues, 2)
		assert.Equal(t, "National Theatre", venues[0].Name)
		assert.Equal(t, "Olivier", venues[1].Name)
		return nil
	}))
}
