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

func TestGoalRepository_FacetRowsAccumulateAndReadDistinct(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := repositories.NewGoalRepository(db, getTestLogger())
	ctx := getTestContext(uuid.New())
	goalID := uuid.New()

	r1, r2 := uuid.New(), uuid.New()

	// two items contributing overlapping roles: rows accumulate, reads collapse
	require.NoError(t, repo.InsertGoalFacetRows(ctx, goalID, schema.FacetRole, []uuid.UUID{r1, r2}))
	require.NoError(t, repo.InsertGoalFacetRows(ctx, goalID, schema.FacetRole, []uuid.UUID{r1}))

	got, err := repo.ListGoalFacetIDs(ctx, goalID, schema.FacetRole)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{r1, r2}, got)
}

func TestGoalRepository_InsertGoalFacetRows_EmptyIsNoOp(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := repositories.NewGoalRepository(db, getTestLogger())
	ctx := getTestContext(uuid.New())
	goalID := uuid.New()

	require.NoError(t, repo.InsertGoalFacetRows(ctx, goalID, schema.FacetDomain, nil))

	got, err := repo.ListGoalFacetIDs(ctx, goalID, schema.FacetDomain)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGoalRepository_ReplaceGoalItem_RepointsSingleParentLink(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := repositories.NewGoalRepository(db, getTestLogger())
	ctx := getTestContext(uuid.New())

	firstGoal, secondGoal := uuid.New(), uuid.New()
	parent := models.ParentRef{Type: models.ParentTypeTask, ID: uuid.New()}
	other := models.ParentRef{Type: models.ParentTypeTask, ID: uuid.New()}

	require.NoError(t, repo.ReplaceGoalItem(ctx, firstGoal, parent))
	require.NoError(t, repo.ReplaceGoalItem(ctx, firstGoal, other))

	// repointing one parent leaves the other parent's link alone
	require.NoError(t, repo.ReplaceGoalItem(ctx, secondGoal, parent))

	firstItems, err := repo.ListItems(ctx, firstGoal)
	require.NoError(t, err)
	require.Len(t, firstItems, 1)
	assert.Equal(t, other.ID, firstItems[0].ParentID)

	secondItems, err := repo.ListItems(ctx, secondGoal)
	require.NoError(t, err)
	require.Len(t, secondItems, 1)
	assert.Equal(t, parent.ID, secondItems[0].ParentID)
}

func TestGoalRepository_GetByID_NotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := repositories.NewGoalRepository(db, getTestLogger())
	ctx := getTestContext(uuid.New())

	_, err := repo.GetByID(ctx, uuid.New())
	assertNotFound(t, err)
}
