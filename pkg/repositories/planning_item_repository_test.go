package repositories_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/repositories"
)

func TestPlanningItemRepository_UpsertAndGet(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := repositories.NewPlanningItemRepository(db, getTestLogger())
	userID := uuid.New()
	ctx := getTestContext(userID)

	due := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
	item := &models.PlanningItem{
		ID:     uuid.New(),
		UserID: userID,
		Type:   models.ParentTypeTask,
		Title:  "Plan the week",
		DueAt:  &due,
	}

	require.NoError(t, repo.Upsert(ctx, item))
	assert.False(t, item.CreatedAt.IsZero())

	got, err := repo.GetByRef(ctx, item.Ref())
	require.NoError(t, err)
	assert.Equal(t, "Plan the week", got.Title)
	require.NotNil(t, got.DueAt)
	assert.True(t, got.DueAt.Equal(due))

	// second upsert with the same ID updates in place
	item.Title = "Plan next week"
	item.Completed = true
	require.NoError(t, repo.Upsert(ctx, item))

	got, err = repo.GetByRef(ctx, item.Ref())
	require.NoError(t, err)
	assert.Equal(t, "Plan next week", got.Title)
	assert.True(t, got.Completed)
}

func TestPlanningItemRepository_GetByRef_NotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := repositories.NewPlanningItemRepository(db, getTestLogger())
	ctx := getTestContext(uuid.New())

	_, err := repo.GetByRef(ctx, models.ParentRef{Type: models.ParentTypeEvent, ID: uuid.New()})
	assertNotFound(t, err)
}

func TestPlanningItemRepository_Delete_JoinsContextTransaction(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := repositories.NewPlanningItemRepository(db, getTestLogger())
	userID := uuid.New()
	ctx := getTestContext(userID)

	item := &models.PlanningItem{
		ID:     uuid.New(),
		UserID: userID,
		Type:   models.ParentTypeTask,
		Title:  "Weekly review",
	}
	require.NoError(t, repo.Upsert(ctx, item))

	// delete inside a caller-owned transaction that is rolled back; the
	// row must survive, so the delete ran on the tx and not the pool
	txCtx, tx, err := db.GetTx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, repo.Delete(txCtx, item.Ref()))
	require.NoError(t, tx.Rollback(txCtx))

	exists, err := repo.Exists(ctx, item.Ref())
	require.NoError(t, err)
	assert.True(t, exists, "rolled-back delete must leave the row in place")

	require.NoError(t, repo.Delete(ctx, item.Ref()))

	exists, err = repo.Exists(ctx, item.Ref())
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestPlanningItemRepository_ItemsAreUserScoped(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := repositories.NewPlanningItemRepository(db, getTestLogger())
	owner := uuid.New()

	item := &models.PlanningItem{
		ID:     uuid.New(),
		UserID: owner,
		Type:   models.ParentTypeDepositIdea,
		Title:  "Surprise breakfast",
	}
	require.NoError(t, repo.Upsert(getTestContext(owner), item))

	_, err := repo.GetByRef(getTestContext(uuid.New()), item.Ref())
	assertNotFound(t, err)
}
