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

const notesTable = "notes"

var noteStruct = database.NewStruct(new(models.Note))

// NoteRepository handles database operations for notes. Notes are
// append-only: edits create new rows, they never update existing ones.
type NoteRepository struct {
	*Repository
}

// NewNoteRepository creates a new note repository
func NewNoteRepository(db database.DB, logger ectologger.Logger) *NoteRepository {
	return &NoteRepository{
		Repository: NewRepository(db, logger),
	}
}

// Create inserts a new note row
func (r *NoteRepository) Create(ctx context.Context, note *models.Note) error {
	ctx, span := tracing.StartSpan(ctx, "NoteRepository.Create")
	defer span.End()

	userID, err := GetUserID(ctx)
	if err != nil {
		return err
	}
	note.UserID = userID

	if note.ID == uuid.Nil {
		note.ID = uuid.New()
	}

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	ib := database.NewInsertBuilder()
	ib.InsertInto(notesTable).
		Cols("id", "user_id", "content", "created_at").
		Values(note.ID, note.UserID, note.Content, sqlbuilder.Raw("NOW()")).
		Returning("created_at")

	query, args := ib.Build()
	err = tx.QueryRowContext(ctx, query, args...).Scan(&note.CreatedAt)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"note_id": note.ID,
		}).Error("failed to create note")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to create note")
	}

	if err := tx.Commit(ctx); err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to commit")
	}
	return nil
}

// GetByID retrieves a note by ID (user-scoped)
func (r *NoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Note, error) {
	ctx, span := tracing.StartSpan(ctx, "NoteRepository.GetByID")
	defer span.End()

	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	sb := noteStruct.SelectFrom(notesTable)
	sb.Where(sb.Equal("user_id", userID), sb.Equal("id", id))

	query, args := sb.Build()
	var note models.Note
	err = r.db.GetContext(ctx, &note, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, httperror.NewHTTPErrorf(http.StatusNotFound, "note %s does not exist", id)
	}
	if err != nil {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get note")
	}
	return &note, nil
}

// CountByUser returns the number of note rows a user owns, linked or not
func (r *NoteRepository) CountByUser(ctx context.Context) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "NoteRepository.CountByUser")
	defer span.End()

	userID, err := GetUserID(ctx)
	if err != nil {
		return 0, err
	}

	sb := database.NewSelectBuilder()
	sb.Select("COUNT(*)")
	sb.From(notesTable)
	sb.Where(sb.Equal("user_id", userID))

	query, args := sb.Build()
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to count notes")
	}
	return count, nil
}

// DeleteOrphans removes note rows no link table references anymore. Only the
// retention policy layer calls this; saves never delete notes.
func (r *NoteRepository) DeleteOrphans(ctx context.Context, layout schema.Layout) (int64, error) {
	ctx, span := tracing.StartSpan(ctx, "NoteRepository.DeleteOrphans")
	defer span.End()

	userID, err := GetUserID(ctx)
	if err != nil {
		return 0, err
	}

	db := database.NewDeleteBuilder()
	db.DeleteFrom(notesTable)
	db.Where(db.Equal("user_id", userID))
	for _, j := range layout.NoteJunctions() {
		sub := database.NewSelectBuilder()
		sub.Select("note_id")
		sub.From(j.Table)
		db.Where(db.NotIn("id", sub))
	}

	query, args := db.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to delete orphaned notes")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete orphaned notes")
	}

	rows, _ := result.RowsAffected()
	r.logger.WithContext(ctx).WithFields(map[string]any{
		"count": rows,
	}).Info("Deleted orphaned notes")
	return rows, nil
}
