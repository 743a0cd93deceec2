package repositories

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/schema"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

const (
	goalsTable     = "twelve_week_goals"
	goalItemsTable = "goal_items"
)

var goalStruct = database.NewStruct(new(models.TwelveWeekGoal))

func goalFacetTable(kind schema.FacetKind) string {
	switch kind {
	case schema.FacetRole:
		return "goal_roles"
	case schema.FacetDomain:
		return "goal_domains"
	case schema.FacetKeyRelationship:
		return "goal_key_relationships"
	}
	return ""
}

// GoalRepository handles goal links and goal-scoped facet aggregation rows.
// Aggregation rows are inserted without write-time dedup: two items linked to
// the same goal with the same role produce two rows, and readers are expected
// to collapse them with DISTINCT. That count is observable and relied on, so
// the writer never deduplicates.
type GoalRepository struct {
	*Repository
}

// NewGoalRepository creates a new goal repository
func NewGoalRepository(db database.DB, logger ectologger.Logger) *GoalRepository {
	return &GoalRepository{
		Repository: NewRepository(db, logger),
	}
}

// GetByID retrieves a twelve-week goal by ID (user-scoped)
func (r *GoalRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.TwelveWeekGoal, error) {
	ctx, span := tracing.StartSpan(ctx, "GoalRepository.GetByID")
	defer span.End()

	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	sb := goalStruct.SelectFrom(goalsTable)
	sb.Where(sb.Equal("user_id", userID), sb.Equal("id", id))

	query, args := sb.Build()
	var goal models.TwelveWeekGoal
	err = r.db.GetContext(ctx, &goal, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, httperror.NewHTTPErrorf(http.StatusNotFound, "goal %s does not exist", id)
	}
	if err != nil {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get goal")
	}
	return &goal, nil
}

// ReplaceGoalItem deletes any prior goal link for this exact parent and
// inserts the new one. Links to other goals from other parents are untouched.
func (r *GoalRepository) ReplaceGoalItem(ctx context.Context, goalID uuid.UUID, parent models.ParentRef) error {
	ctx, span := tracing.StartSpan(ctx, "GoalRepository.ReplaceGoalItem")
	defer span.End()

	userID, err := GetUserID(ctx)
	if err != nil {
		return err
	}

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	db := database.NewDeleteBuilder()
	db.DeleteFrom(goalItemsTable).
		Where(
			db.Equal("user_id", userID),
			db.Equal("parent_type", string(parent.Type)),
			db.Equal("parent_id", parent.ID),
		)

	query, args := db.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"goal_id":   goalID,
			"parent_id": parent.ID,
		}).Error("failed to delete goal item link")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to clear goal link")
	}

	ib := database.NewInsertBuilder()
	ib.InsertInto(goalItemsTable).
		Cols("user_id", "goal_id", "parent_type", "parent_id", "created_at").
		Values(userID, goalID, string(parent.Type), parent.ID, sqlbuilder.Raw("NOW()"))

	query, args = ib.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"goal_id":   goalID,
			"parent_id": parent.ID,
		}).Error("failed to insert goal item link")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to write goal link")
	}

	if err := tx.Commit(ctx); err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to commit")
	}
	return nil
}

// InsertGoalFacetRows appends one aggregation row per facet ID. No existence
// check against rows contributed by other items: duplicates are expected.
func (r *GoalRepository) InsertGoalFacetRows(ctx context.Context, goalID uuid.UUID, kind schema.FacetKind, facetIDs []uuid.UUID) error {
	ctx, span := tracing.StartSpan(ctx, "GoalRepository.InsertGoalFacetRows")
	defer span.End()

	userID, err := GetUserID(ctx)
	if err != nil {
		return err
	}

	if len(facetIDs) == 0 {
		return nil
	}

	table := goalFacetTable(kind)

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	ib := database.NewInsertBuilder()
	ib.InsertInto(table).
		Cols("user_id", "goal_id", kind.Column())
	for _, id := range facetIDs {
		ib.Values(userID, goalID, id)
	}

	query, args := ib.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"goal_id":    goalID,
			"facet_kind": kind,
		}).Error("failed to insert goal facet rows")
		return httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to write %s", table)
	}

	if err := tx.Commit(ctx); err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to commit")
	}
	return nil
}

// ListGoalFacetIDs returns the distinct facet IDs aggregated for a goal
func (r *GoalRepository) ListGoalFacetIDs(ctx context.Context, goalID uuid.UUID, kind schema.FacetKind) ([]uuid.UUID, error) {
	ctx, span := tracing.StartSpan(ctx, "GoalRepository.ListGoalFacetIDs")
	defer span.End()

	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	sb := database.NewSelectBuilder()
	sb.Distinct().Select(kind.Column())
	sb.From(goalFacetTable(kind))
	sb.Where(sb.Equal("user_id", userID), sb.Equal("goal_id", goalID))
	sb.OrderBy(kind.Column())

	query, args := sb.Build()
	var ids []uuid.UUID
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list goal facets")
	}
	return ids, nil
}

// ListItems returns every parent linked to a goal
func (r *GoalRepository) ListItems(ctx context.Context, goalID uuid.UUID) ([]models.GoalItem, error) {
	ctx, span := tracing.StartSpan(ctx, "GoalRepository.ListItems")
	defer span.End()

	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	sb := database.NewSelectBuilder()
	sb.Select("user_id", "goal_id", "parent_type", "parent_id", "created_at")
	sb.From(goalItemsTable)
	sb.Where(sb.Equal("user_id", userID), sb.Equal("goal_id", goalID))
	sb.OrderBy("created_at")

	query, args := sb.Build()
	var items []models.GoalItem
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list goal items")
	}
	return items, nil
}
