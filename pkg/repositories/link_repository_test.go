package repositories_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/repositories"
	"github.com/Ramsey-B/clover/pkg/schema"
)

func newTaskRef() models.ParentRef {
	return models.ParentRef{Type: models.ParentTypeTask, ID: uuid.New()}
}

// layouts under test; the sync contract must hold through both
var layouts = []schema.Layout{schema.UnifiedLayout{}, schema.PerKindLayout{}}

func TestLinkRepository_ReplaceFacetLinks_ReplacesWholeSelection(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)

	for _, layout := range layouts {
		t.Run(layout.Name(), func(t *testing.T) {
			repo := repositories.NewLinkRepository(db, getTestLogger(), layout)
			ctx := getTestContext(uuid.New())
			parent := newTaskRef()

			a, b, c, d := uuid.New(), uuid.New(), uuid.New(), uuid.New()

			require.NoError(t, repo.ReplaceFacetLinks(ctx, parent, schema.FacetRole, []uuid.UUID{a, b, c}))

			got, err := repo.ListFacetIDs(ctx, parent, schema.FacetRole)
			require.NoError(t, err)
			assert.ElementsMatch(t, []uuid.UUID{a, b, c}, got)

			// a second save replaces the whole set, unselected IDs included
			require.NoError(t, repo.ReplaceFacetLinks(ctx, parent, schema.FacetRole, []uuid.UUID{b, d}))

			got, err = repo.ListFacetIDs(ctx, parent, schema.FacetRole)
			require.NoError(t, err)
			assert.ElementsMatch(t, []uuid.UUID{b, d}, got)
		})
	}
}

func TestLinkRepository_ReplaceFacetLinks_IsIdempotent(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := repositories.NewLinkRepository(db, getTestLogger(), schema.UnifiedLayout{})
	ctx := getTestContext(uuid.New())
	parent := newTaskRef()

	sel := []uuid.UUID{uuid.New(), uuid.New()}
	require.NoError(t, repo.ReplaceFacetLinks(ctx, parent, schema.FacetDomain, sel))
	require.NoError(t, repo.ReplaceFacetLinks(ctx, parent, schema.FacetDomain, sel))

	got, err := repo.ListFacetIDs(ctx, parent, schema.FacetDomain)
	require.NoError(t, err)
	assert.ElementsMatch(t, sel, got)
}

func TestLinkRepository_ReplaceFacetLinks_EmptySetClears(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := repositories.NewLinkRepository(db, getTestLogger(), schema.UnifiedLayout{})
	ctx := getTestContext(uuid.New())
	parent := newTaskRef()

	require.NoError(t, repo.ReplaceFacetLinks(ctx, parent, schema.FacetKeyRelationship, []uuid.UUID{uuid.New()}))
	require.NoError(t, repo.ReplaceFacetLinks(ctx, parent, schema.FacetKeyRelationship, nil))

	got, err := repo.ListFacetIDs(ctx, parent, schema.FacetKeyRelationship)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLinkRepository_ReplaceFacetLinks_CollapsesDuplicateInput(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := repositories.NewLinkRepository(db, getTestLogger(), schema.UnifiedLayout{})
	ctx := getTestContext(uuid.New())
	parent := newTaskRef()

	a := uuid.New()
	require.NoError(t, repo.ReplaceFacetLinks(ctx, parent, schema.FacetRole, []uuid.UUID{a, a, a}))

	got, err := repo.ListFacetIDs(ctx, parent, schema.FacetRole)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a}, got)
}

func TestLinkRepository_ReplaceFacetLinks_ScopedToParentAndUser(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := repositories.NewLinkRepository(db, getTestLogger(), schema.UnifiedLayout{})

	userA := getTestContext(uuid.New())
	userB := getTestContext(uuid.New())
	parent := newTaskRef()
	other := newTaskRef()

	roleA, roleB, roleOther := uuid.New(), uuid.New(), uuid.New()
	require.NoError(t, repo.ReplaceFacetLinks(userA, parent, schema.FacetRole, []uuid.UUID{roleA}))
	require.NoError(t, repo.ReplaceFacetLinks(userB, parent, schema.FacetRole, []uuid.UUID{roleB}))
	require.NoError(t, repo.ReplaceFacetLinks(userA, other, schema.FacetRole, []uuid.UUID{roleOther}))

	// clearing userA's links for one parent touches nothing else
	require.NoError(t, repo.ReplaceFacetLinks(userA, parent, schema.FacetRole, nil))

	got, err := repo.ListFacetIDs(userB, parent, schema.FacetRole)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{roleB}, got)

	got, err = repo.ListFacetIDs(userA, other, schema.FacetRole)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{roleOther}, got)
}

func TestLinkRepository_DerivedLinks_RowCountIsCrossProduct(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)

	for _, layout := range layouts {
		t.Run(layout.Name(), func(t *testing.T) {
			repo := repositories.NewLinkRepository(db, getTestLogger(), layout)
			ctx := getTestContext(uuid.New())
			parent := newTaskRef()

			roles := []uuid.UUID{uuid.New(), uuid.New()}
			domains := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}

			pairs := make([]repositories.DerivedPair, 0, len(roles)*len(domains))
			for _, r := range roles {
				for _, d := range domains {
					pairs = append(pairs, repositories.DerivedPair{Left: r, Right: d})
				}
			}

			require.NoError(t, repo.ReplaceDerivedLinks(ctx, parent, schema.DerivedRoleDomain, pairs))

			count, err := repo.CountDerivedLinks(ctx, parent, schema.DerivedRoleDomain)
			require.NoError(t, err)
			assert.Equal(t, 6, count)

			// empty replacement deletes everything
			require.NoError(t, repo.ReplaceDerivedLinks(ctx, parent, schema.DerivedRoleDomain, nil))
			count, err = repo.CountDerivedLinks(ctx, parent, schema.DerivedRoleDomain)
			require.NoError(t, err)
			assert.Zero(t, count)
		})
	}
}

func TestLinkRepository_NoteLink_SetReplaceClear(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := repositories.NewLinkRepository(db, getTestLogger(), schema.UnifiedLayout{})
	ctx := getTestContext(uuid.New())
	parent := newTaskRef()

	got, err := repo.GetNoteLinkID(ctx, parent)
	require.NoError(t, err)
	assert.Nil(t, got)

	first := uuid.New()
	require.NoError(t, repo.ReplaceNoteLink(ctx, parent, &first))
	got, err = repo.GetNoteLinkID(ctx, parent)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, first, *got)

	second := uuid.New()
	require.NoError(t, repo.ReplaceNoteLink(ctx, parent, &second))
	got, err = repo.GetNoteLinkID(ctx, parent)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, second, *got)

	require.NoError(t, repo.ReplaceNoteLink(ctx, parent, nil))
	got, err = repo.GetNoteLinkID(ctx, parent)
	require.NoError(t, err)
	assert.Nil(t, got)
}
