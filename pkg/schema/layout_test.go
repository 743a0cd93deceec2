package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/schema"
)

func TestUnifiedLayout_SharesOneTablePerRelationKind(t *testing.T) {
	layout := schema.UnifiedLayout{}

	for _, pt := range models.ParentTypes {
		j := layout.FacetJunction(pt, schema.FacetRole)
		assert.Equal(t, "parent_roles", j.Table)
		assert.Equal(t, "parent_type", j.ParentTypeColumn)
		assert.Equal(t, "parent_id", j.ParentIDColumn)
	}

	assert.Equal(t, "parent_domains", layout.FacetJunction(models.ParentTypeEvent, schema.FacetDomain).Table)
	assert.Equal(t, "parent_key_relationships", layout.FacetJunction(models.ParentTypeDepositIdea, schema.FacetKeyRelationship).Table)
	assert.Equal(t, "parent_role_domains", layout.DerivedJunction(models.ParentTypeTask, schema.DerivedRoleDomain).Table)
	assert.Equal(t, "parent_key_relationship_domains", layout.DerivedJunction(models.ParentTypeTask, schema.DerivedKeyRelationshipDomain).Table)
	assert.Equal(t, "parent_notes", layout.NoteJunction(models.ParentTypeTask).Table)
}

func TestPerKindLayout_ResolvesTablePerParentType(t *testing.T) {
	layout := schema.PerKindLayout{}

	j := layout.FacetJunction(models.ParentTypeTask, schema.FacetRole)
	assert.Equal(t, "task_roles", j.Table)
	assert.Empty(t, j.ParentTypeColumn, "per-kind tables carry no discriminator column")
	assert.Equal(t, "task_id", j.ParentIDColumn)

	assert.Equal(t, "event_domains", layout.FacetJunction(models.ParentTypeEvent, schema.FacetDomain).Table)
	assert.Equal(t, "deposit_idea_key_relationships", layout.FacetJunction(models.ParentTypeDepositIdea, schema.FacetKeyRelationship).Table)
	assert.Equal(t, "deposit_idea_id", layout.FacetJunction(models.ParentTypeDepositIdea, schema.FacetRole).ParentIDColumn)

	assert.Equal(t, "event_role_domains", layout.DerivedJunction(models.ParentTypeEvent, schema.DerivedRoleDomain).Table)
	assert.Equal(t, "task_key_relationship_domains", layout.DerivedJunction(models.ParentTypeTask, schema.DerivedKeyRelationshipDomain).Table)
	assert.Equal(t, "deposit_idea_notes", layout.NoteJunction(models.ParentTypeDepositIdea).Table)
}

func TestNoteJunctions_CoverEveryTableTheLayoutWritesTo(t *testing.T) {
	assert.Len(t, schema.UnifiedLayout{}.NoteJunctions(), 1)

	perKind := schema.PerKindLayout{}.NoteJunctions()
	require.Len(t, perKind, len(models.ParentTypes))
	tables := make([]string, 0, len(perKind))
	for _, j := range perKind {
		tables = append(tables, j.Table)
	}
	assert.ElementsMatch(t, []string{"task_notes", "event_notes", "deposit_idea_notes"}, tables)
}

func TestForName_ResolvesConfiguredLayouts(t *testing.T) {
	unified, err := schema.ForName("unified")
	require.NoError(t, err)
	assert.Equal(t, "unified", unified.Name())

	perKind, err := schema.ForName("perKind")
	require.NoError(t, err)
	assert.Equal(t, "perKind", perKind.Name())

	defaulted, err := schema.ForName("")
	require.NoError(t, err)
	assert.Equal(t, "unified", defaulted.Name())

	_, err = schema.ForName("sharded")
	assert.Error(t, err)
}
