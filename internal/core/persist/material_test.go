package persist

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/playbill/internal/apperror"
	"github.com/agenthands/playbill/internal/core/model"
	"github.com/agenthands/playbill/internal/store"
)

func TestCreateMaterial(t *testing.T) {
	f := newFixture(t)
	out, err := f.material(model.Material{
		Name:   " Hamlet ",
		Format: "play",
		Year:   1600,
		WritingCredits: []model.WritingCredit{
			{Entities: []model.WritingEntity{{Model: model.KindPerson, Name: "William Shakespeare"}}},
			{Name: "based on", Entities: []model.WritingEntity{{Model: model.KindMaterial, Name: "Ur-Hamlet"}}},
		},
		SubMaterials: refs("Act 1", "Act 2"),
		CharacterGroups: []model.CharacterGroup{{
			Name: "Danes",
			Characters: []model.CharacterDepiction{
				{Name: "Hamlet"},
				{Name: "The Ghost", UnderlyingName: "King Hamlet", Qualifier: "ghost"},
			},
		}},
	})
	require.NoError(t, err)

	want := model.Material{
		UUID:   "generated-1",
		Name:   "Hamlet",
		Format: "play",
		Year:   1600,
		WritingCredits: []model.WritingCredit{
			{Entities: []model.WritingEntity{{Model: model.KindPerson, UUID: "generated-2", Name: "William Shakespeare"}}},
			{Name: "based on", Entities: []model.WritingEntity{{Model: model.KindMaterial, UUID: "generated-3", Name: "Ur-Hamlet"}}},
		},
		SubMaterials: []model.Ref{{UUID: "generated-4", Name: "Act 1"}, {UUID: "generated-5", Name: "Act 2"}},
		CharacterGroups: []model.CharacterGroup{{
			Name: "Danes",
			Characters: []model.CharacterDepiction{
				{UUID: "generated-6", Name: "Hamlet"},
				{UUID: "generated-7", Name: "The Ghost", UnderlyingName: "King Hamlet", Qualifier: "ghost"},
			},
		}},
	}
	assert.Equal(t, want, out)
	assert.Equal(t, []string{"generated-3"}, f.outgoing("generated-1", model.EdgeUsesSourceMaterial))
}

func TestCreateMaterialReusesExistingNodes(t *testing.T) {
	f := newFixture(t)
	first := f.mustMaterial(model.Material{
		Name:           "Hamlet",
		WritingCredits: []model.WritingCredit{{Entities: []model.WritingEntity{{Name: "William Shakespeare"}}}},
	})
	second := f.mustMaterial(model.Material{
		Name:           "Macbeth",
		WritingCredits: []model.WritingCredit{{Entities: []model.WritingEntity{{UUID: "ignored", Name: "William Shakespeare"}}}},
	})
	assert.Equal(t,
		first.WritingCredits[0].Entities[0].UUID,
		second.WritingCredits[0].Entities[0].UUID)
}

func TestUpdateMaterialReplacesEdgesWholesale(t *testing.T) {
	f := newFixture(t)
	m := f.mustMaterial(model.Material{Name: "Anthology", SubMaterials: refs("A", "B")})
	old := f.outgoing(m.UUID, model.EdgeHasSubMaterial)
	require.Len(t, old, 2)

	out, err := f.updateMaterial(m.UUID, model.Material{Name: "Anthology", SubMaterials: refs("C", "D")})
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "D"}, []string{out.SubMaterials[0].Name, out.SubMaterials[1].Name})

	current := f.outgoing(m.UUID, model.EdgeHasSubMaterial)
	assert.Len(t, current, 2)
	for _, id := range old {
		assert.NotContains(t, current, id)
	}

	// The old children survive as free-standing nodes.
	f.read(func(ctx context.Context, tx store.Tx) {
		_, err := tx.GetNode(ctx, old[0])
		assert.NoError(t, err)
	})
}

func TestUpdateMaterialKeepsIncomingEdges(t *testing.T) {
	f := newFixture(t)
	parent := f.mustMaterial(model.Material{Name: "Collected Works", SubMaterials: refs("Hamlet")})
	hamlet := parent.SubMaterials[0]

	_, err := f.updateMaterial(hamlet.UUID, model.Material{Name: "Hamlet", Format: "play"})
	require.NoError(t, err)
	assert.Equal(t, []string{hamlet.UUID}, f.outgoing(parent.UUID, model.EdgeHasSubMaterial))
}

func TestMaterialCycleIsRejected(t *testing.T) {
	f := newFixture(t)
	hamlet := f.mustMaterial(model.Material{Name: "Hamlet", SubMaterials: refs("Act 1")})
	act := hamlet.SubMaterials[0]

	_, err := f.updateMaterial(act.UUID, model.Material{Name: "Act 1", SubMaterials: refs("Hamlet")})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindStructuralViolation))
	assert.Equal(t, []string{"structural_violation subMaterials[0].name"}, fieldErrors(t, err))
	assert.Empty(t, f.outgoing(act.UUID, model.EdgeHasSubMaterial))
}

func TestMaterialSelfReferenceIsRejected(t *testing.T) {
	f := newFixture(t)
	_, err := f.material(model.Material{
		Name:                    "Hamlet",
		OriginalVersionMaterial: model.Ref{Name: "Hamlet"},
		SubMaterials:            refs("Hamlet"),
		WritingCredits:          []model.WritingCredit{{Entities: []model.WritingEntity{{Model: model.KindMaterial, Name: "Hamlet"}}}},
	})
	require.Error(t, err)
	assert.ElementsMatch(t, []string{
		"structural_violation originalVersionMaterial.name",
		"structural_violation writingCredits[0].entities[0].name",
		"structural_violation subMaterials[0].name",
	}, fieldErrors(t, err))

	// Nothing from the failed write is committed.
	f.read(func(ctx context.Context, tx store.Tx) {
		nodes, err := tx.ListNodes(ctx, model.KindMaterial)
		require.NoError(t, err)
		assert.Empty(t, nodes)
	})
}

func TestMaterialDepthCeiling(t *testing.T) {
	f := newFixture(t)
	root := f.mustMaterial(model.Material{Name: "Root", SubMaterials: refs("Mid")})
	mid, err := f.updateMaterial(root.SubMaterials[0].UUID, model.Material{Name: "Mid", SubMaterials: refs("Leaf")})
	require.NoError(t, err)
	leaf := mid.SubMaterials[0]

	// From the bottom: a fourth generation below Leaf.
	_, err = f.updateMaterial(leaf.UUID, model.Material{Name: "Leaf", SubMaterials: refs("Epilogue")})
	require.Error(t, err)
	assert.Equal(t, []string{"structural_violation subMaterials[0].name"}, fieldErrors(t, err))

	// From the top: Root (three generations) placed under a new material.
	_, err = f.material(model.Material{Name: "Omnibus", SubMaterials: refs("Root")})
	require.Error(t, err)
	assert.Equal(t, []string{"structural_violation subMaterials[0].name"}, fieldErrors(t, err))

	// A two-generation tree fits under a root.
	other := f.mustMaterial(model.Material{Name: "Duology", SubMaterials: refs("Part One")})
	_, err = f.material(model.Material{Name: "Box Set", SubMaterials: refs(other.Name)})
	assert.NoError(t, err)
}

func TestMaterialSecondParentIsRejected(t *testing.T) {
	f := newFixture(t)
	f.mustMaterial(model.Material{Name: "First Folio", SubMaterials: refs("Hamlet")})
	_, err := f.material(model.Material{Name: "Second Quarto", SubMaterials: refs("Hamlet")})
	require.Error(t, err)
	appErr, _ := apperror.As(err)
	assert.Equal(t, "Sub-material is already assigned to another sur-material", appErr.Message)
}

func TestMaterialDuplicateNaturalKey(t *testing.T) {
	f := newFixture(t)
	f.mustMaterial(model.Material{Name: "Xyzzy", Differentiator: "1"})

	_, err := f.material(model.Material{Name: "Xyzzy", Differentiator: "1"})
	require.Error(t, err)
	assert.Equal(t, []string{
		"duplicate_record name",
		"duplicate_record differentiator",
	}, fieldErrors(t, err))

	two := f.mustMaterial(model.Material{Name: "Xyzzy", Differentiator: "2"})
	assert.NotEmpty(t, two.UUID)

	// Updating to its own key is not a collision.
	_, err = f.updateMaterial(two.UUID, model.Material{Name: "Xyzzy", Differentiator: "2", Format: "novel"})
	assert.NoError(t, err)
}

func TestMaterialValidation(t *testing.T) {
	f := newFixture(t)
	_, err := f.material(model.Material{
		Name:         "",
		Year:         10000,
		SubMaterials: []model.Ref{{Name: "Act 1"}, {Name: "Act 1"}, {Differentiator: "x"}},
		WritingCredits: []model.WritingCredit{{
			CreditType: "GHOST",
			Entities:   []model.WritingEntity{{Model: model.KindVenue, Name: "Globe"}},
		}},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	assert.ElementsMatch(t, []string{
		"validation name",
		"validation year",
		"validation writingCredits[0].creditType",
		"validation writingCredits[0].entities[0].model",
		"validation subMaterials[0].name",
		"validation subMaterials[1].name",
		"validation subMaterials[2].name",
	}, fieldErrors(t, err))
}

func TestOriginalVersionCycleIsRejected(t *testing.T) {
	f := newFixture(t)
	redux := f.mustMaterial(model.Material{Name: "Hamlet: Redux", OriginalVersionMaterial: model.Ref{Name: "Hamlet"}})
	hamlet := redux.OriginalVersionMaterial

	_, err := f.updateMaterial(hamlet.UUID, model.Material{Name: "Hamlet", OriginalVersionMaterial: model.Ref{Name: "Hamlet: Redux"}})
	require.Error(t, err)
	assert.Equal(t, []string{"structural_violation originalVersionMaterial.name"}, fieldErrors(t, err))
}

func TestUpdateMissingMaterial(t *testing.T) {
	f := newFixture(t)
	_, err := f.updateMaterial("nope", model.Material{Name: "Hamlet"})
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}
