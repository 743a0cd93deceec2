package repositories

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

const (
	tasksTable        = "tasks"
	eventsTable       = "events"
	depositIdeasTable = "deposit_ideas"
)

// PlanningItemRepository handles database operations for tasks, events, and
// deposit ideas. The three tables share the parent contract; the parent type
// picks the table.
type PlanningItemRepository struct {
	*Repository
}

// NewPlanningItemRepository creates a new planning item repository
func NewPlanningItemRepository(db database.DB, logger ectologger.Logger) *PlanningItemRepository {
	return &PlanningItemRepository{
		Repository: NewRepository(db, logger),
	}
}

func itemTable(pt models.ParentType) string {
	switch pt {
	case models.ParentTypeTask:
		return tasksTable
	case models.ParentTypeEvent:
		return eventsTable
	case models.ParentTypeDepositIdea:
		return depositIdeasTable
	}
	return ""
}

// Upsert creates the planning item row or updates it in place. The insert is
// keyed on id so a retried save lands on the same row.
func (r *PlanningItemRepository) Upsert(ctx context.Context, item *models.PlanningItem) error {
	ctx, span := tracing.StartSpan(ctx, "PlanningItemRepository.Upsert")
	defer span.End()

	userID, err := GetUserID(ctx)
	if err != nil {
		return err
	}
	item.UserID = userID

	table := itemTable(item.Type)
	if table == "" {
		return httperror.NewHTTPErrorf(http.StatusBadRequest, "unknown parent_type %q", string(item.Type))
	}

	ib := database.NewInsertBuilder()
	ib.InsertInto(table)

	switch item.Type {
	case models.ParentTypeTask:
		ib.Cols("id", "user_id", "title", "completed", "due_at", "recurrence", "created_at", "updated_at").
			Values(item.ID, item.UserID, item.Title, item.Completed, item.DueAt, item.Recurrence,
				sqlbuilder.Raw("NOW()"), sqlbuilder.Raw("NOW()"))
		ub := ib.OnConflict("id")
		ub.Set(
			ub.Assign("title", database.Excluded("title")),
			ub.Assign("completed", database.Excluded("completed")),
			ub.Assign("due_at", database.Excluded("due_at")),
			ub.Assign("recurrence", database.Excluded("recurrence")),
			ub.Assign("updated_at", sqlbuilder.Raw("NOW()")),
		)
	case models.ParentTypeEvent:
		ib.Cols("id", "user_id", "title", "starts_at", "ends_at", "all_day", "recurrence", "created_at", "updated_at").
			Values(item.ID, item.UserID, item.Title, item.StartsAt, item.EndsAt, item.AllDay, item.Recurrence,
				sqlbuilder.Raw("NOW()"), sqlbuilder.Raw("NOW()"))
		ub := ib.OnConflict("id")
		ub.Set(
			ub.Assign("title", database.Excluded("title")),
			ub.Assign("starts_at", database.Excluded("starts_at")),
			ub.Assign("ends_at", database.Excluded("ends_at")),
			ub.Assign("all_day", database.Excluded("all_day")),
			ub.Assign("recurrence", database.Excluded("recurrence")),
			ub.Assign("updated_at", sqlbuilder.Raw("NOW()")),
		)
	case models.ParentTypeDepositIdea:
		ib.Cols("id", "user_id", "title", "completed", "created_at", "updated_at").
			Values(item.ID, item.UserID, item.Title, item.Completed,
				sqlbuilder.Raw("NOW()"), sqlbuilder.Raw("NOW()"))
		ub := ib.OnConflict("id")
		ub.Set(
			ub.Assign("title", database.Excluded("title")),
			ub.Assign("completed", database.Excluded("completed")),
			ub.Assign("updated_at", sqlbuilder.Raw("NOW()")),
		)
	}
	ib.SQL("RETURNING created_at, updated_at")

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	query, args := ib.Build()
	err = tx.QueryRowContext(ctx, query, args...).Scan(&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"parent_type": item.Type,
			"parent_id":   item.ID,
		}).Error("failed to upsert planning item")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to save planning item")
	}

	if err := tx.Commit(ctx); err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to commit")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"parent_type": item.Type,
		"parent_id":   item.ID,
	}).Debugf("Saved %s", table)
	return nil
}

// GetByRef retrieves a planning item by its parent reference (user-scoped)
func (r *PlanningItemRepository) GetByRef(ctx context.Context, ref models.ParentRef) (*models.PlanningItem, error) {
	ctx, span := tracing.StartSpan(ctx, "PlanningItemRepository.GetByRef")
	defer span.End()

	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	table := itemTable(ref.Type)
	if table == "" {
		return nil, httperror.NewHTTPErrorf(http.StatusBadRequest, "unknown parent_type %q", string(ref.Type))
	}

	sb := database.NewSelectBuilder()
	switch ref.Type {
	case models.ParentTypeTask:
		sb.Select("id", "user_id", "title", "completed", "due_at", "recurrence", "created_at", "updated_at")
	case models.ParentTypeEvent:
		sb.Select("id", "user_id", "title", "starts_at", "ends_at", "all_day", "recurrence", "created_at", "updated_at")
	case models.ParentTypeDepositIdea:
		sb.Select("id", "user_id", "title", "completed", "created_at", "updated_at")
	}
	sb.From(table)
	sb.Where(sb.Equal("user_id", userID), sb.Equal("id", ref.ID))

	query, args := sb.Build()
	var item models.PlanningItem
	err = r.db.GetContext(ctx, &item, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, httperror.NewHTTPErrorf(http.StatusNotFound, "%s %s does not exist", ref.Type, ref.ID)
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"parent_type": ref.Type,
			"parent_id":   ref.ID,
		}).Error("failed to get planning item")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get planning item")
	}

	item.Type = ref.Type
	return &item, nil
}

// Exists reports whether the parent row is present (user-scoped)
func (r *PlanningItemRepository) Exists(ctx context.Context, ref models.ParentRef) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "PlanningItemRepository.Exists")
	defer span.End()

	userID, err := GetUserID(ctx)
	if err != nil {
		return false, err
	}

	table := itemTable(ref.Type)
	if table == "" {
		return false, httperror.NewHTTPErrorf(http.StatusBadRequest, "unknown parent_type %q", string(ref.Type))
	}

	sb := database.NewSelectBuilder()
	sb.Select("1")
	sb.From(table)
	sb.Where(sb.Equal("user_id", userID), sb.Equal("id", ref.ID))

	query, args := sb.Build()
	var one int
	err = r.db.GetContext(ctx, &one, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, httperror.NewHTTPError(http.StatusInternalServerError, "failed to check planning item")
	}
	return true, nil
}

// Delete deletes a planning item row. Relationship links are not touched
// here; deletion cleanup is the caller's concern.
func (r *PlanningItemRepository) Delete(ctx context.Context, ref models.ParentRef) error {
	ctx, span := tracing.StartSpan(ctx, "PlanningItemRepository.Delete")
	defer span.End()

	userID, err := GetUserID(ctx)
	if err != nil {
		return err
	}

	table := itemTable(ref.Type)
	if table == "" {
		return httperror.NewHTTPErrorf(http.StatusBadRequest, "unknown parent_type %q", string(ref.Type))
	}

	db := database.NewDeleteBuilder()
	db.DeleteFrom(table).
		Where(db.Equal("user_id", userID), db.Equal("id", ref.ID))

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	query, args := db.Build()
	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"parent_type": ref.Type,
			"parent_id":   ref.ID,
		}).Error("failed to delete planning item")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete planning item")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete planning item")
	}
	if rows == 0 {
		return httperror.NewHTTPErrorf(http.StatusNotFound, "%s %s does not exist", ref.Type, ref.ID)
	}

	return tx.Commit(ctx)
}
