//go:build integration

package integration

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/playbill/internal/core"
	"github.com/agenthands/playbill/internal/core/model"
	"github.com/agenthands/playbill/internal/driver"
	"github.com/agenthands/playbill/internal/store"
	"github.com/agenthands/playbill/internal/store/storetest"
)

// connect opens the Neo4j named by NEO4J_URI and empties it. Tests skip
// when no database is configured.
func connect(t *testing.T) *driver.Neo4jDriver {
	t.Helper()
	_ = godotenv.Load("../../.env")

	uri := os.Getenv("NEO4J_URI")
	if uri == "" {
		t.Skip("Skipping integration test: NEO4J_URI not set")
	}
	database := os.Getenv("NEO4J_DATABASE")
	if database == "" {
		database = "neo4j"
	}

	ctx := context.Background()
	d, err := driver.NewNeo4jDriver(ctx, uri, os.Getenv("NEO4J_USER"), os.Getenv("NEO4J_PASSWORD"), database, slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { d.Close(context.Background()) })

	require.NoError(t, d.BuildIndices(ctx))
	require.NoError(t, d.ExecuteWrite(ctx, func(r driver.Runner) error {
		_, err := r.Run(ctx, "MATCH (n) DETACH DELETE n", nil)
		return err
	}))
	return d
}

func TestNeo4jStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return driver.NewStore(connect(t))
	})
}

func TestFullFlow(t *testing.T) {
	p := core.NewPlaybill(driver.NewStore(connect(t)), slog.Default())
	ctx := context.Background()

	hamlet, err := p.CreateMaterial(ctx, model.Material{
		Name:   "Hamlet",
		Format: "play",
		Year:   1600,
		WritingCredits: []model.WritingCredit{{
			Entities: []model.WritingEntity{{Model: model.KindPerson, Name: "William Shakespeare"}},
		}},
	})
	require.NoError(t, err)

	redux, err := p.CreateMaterial(ctx, model.Material{
		Name:                    "Hamlet Redux",
		Format:                  "play",
		Year:                    2024,
		OriginalVersionMaterial: model.Ref{Name: "Hamlet"},
	})
	require.NoError(t, err)

	_, err = p.CreateVenue(ctx, model.Venue{
		Name:      "National Theatre",
		SubVenues: []model.Ref{{Name: "Olivier Theatre"}, {Name: "Lyttelton Theatre"}},
	})
	require.NoError(t, err)

	production, err := p.CreateProduction(ctx, model.Production{
		Name:      "Hamlet Redux",
		StartDate: "2024-03-01",
		Material:  model.Ref{Name: "Hamlet Redux"},
		Venue:     model.Ref{Name: "Olivier Theatre"},
		Cast: []model.CastMember{{
			Name:  "Judi Dench",
			Roles: []model.Role{{Name: "Gertrude"}},
		}},
	})
	require.NoError(t, err)

	_, err = p.CreateAwardCeremony(ctx, model.AwardCeremony{
		Name:  "2024",
		Award: model.Ref{Name: "Bard Prize"},
		Categories: []model.CategoryInput{{
			Name: "Best Revival",
			Nominations: []model.NominationInput{{
				IsWinner:    true,
				Materials:   []model.Ref{{Name: "Hamlet Redux"}},
				Productions: []model.UUIDRef{{UUID: production.UUID}},
			}},
		}},
	})
	require.NoError(t, err)

	awards, err := p.FindAwards(ctx, model.KindMaterial, hamlet.UUID)
	require.NoError(t, err)
	require.Len(t, awards, 1)
	assert.Equal(t, "Bard Prize", awards[0].Name)

	awards, err = p.FindAwards(ctx, model.KindMaterial, redux.UUID)
	require.NoError(t, err)
	require.Len(t, awards, 1)

	venue, err := p.ShowVenue(ctx, production.Venue.UUID)
	require.NoError(t, err)
	require.Len(t, venue.Productions, 1)
	assert.Equal(t, production.UUID, venue.Productions[0].UUID)

	err = p.Delete(ctx, model.KindMaterial, redux.UUID)
	require.Error(t, err)
}
