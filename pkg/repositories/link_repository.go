package repositories

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/schema"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// insertBatchSize caps the rows per bulk insert statement
const insertBatchSize = 500

// DerivedPair is one row of a materialized cross product
type DerivedPair struct {
	Left  uuid.UUID
	Right uuid.UUID
}

// LinkRepository owns every junction table write. All mutating methods follow
// replace-all semantics: delete every row for the (parent, relation), then
// bulk-insert the desired rows. The schema layout decides which table that
// is; the semantics never change with it. Mutations join any transaction
// already open on the context.
type LinkRepository struct {
	*Repository
	layout schema.Layout
}

// NewLinkRepository creates a new link repository bound to a schema layout
func NewLinkRepository(db database.DB, logger ectologger.Logger, layout schema.Layout) *LinkRepository {
	return &LinkRepository{
		Repository: NewRepository(db, logger),
		layout:     layout,
	}
}

// Layout returns the active schema layout
func (r *LinkRepository) Layout() schema.Layout {
	return r.layout
}

func (r *LinkRepository) deleteParentRows(ctx context.Context, tx database.Tx, userID uuid.UUID, parent models.ParentRef, j schema.Junction) error {
	db := database.NewDeleteBuilder()
	db.DeleteFrom(j.Table)
	db.Where(db.Equal("user_id", userID), db.Equal(j.ParentIDColumn, parent.ID))
	if j.ParentTypeColumn != "" {
		db.Where(db.Equal(j.ParentTypeColumn, string(parent.Type)))
	}

	query, args := db.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"table":       j.Table,
			"parent_type": parent.Type,
			"parent_id":   parent.ID,
		}).Error("failed to delete link rows")
		return httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to clear %s", j.Table)
	}
	return nil
}

// ReplaceFacetLinks makes the stored facet links for (parent, kind) equal
// exactly facetIDs. An empty set is a valid input meaning "clear all links of
// this kind". Duplicate IDs in the input collapse to one row.
func (r *LinkRepository) ReplaceFacetLinks(ctx context.Context, parent models.ParentRef, kind schema.FacetKind, facetIDs []uuid.UUID) error {
	ctx, span := tracing.StartSpan(ctx, "LinkRepository.ReplaceFacetLinks")
	defer span.End()

	userID, err := GetUserID(ctx)
	if err != nil {
		return err
	}

	j := r.layout.FacetJunction(parent.Type, kind)

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	if err := r.deleteParentRows(ctx, tx, userID, parent, j); err != nil {
		return err
	}

	ids := models.UniqueIDs(facetIDs)
	for i := 0; i < len(ids); i += insertBatchSize {
		end := i + insertBatchSize
		if end > len(ids) {
			end = len(ids)
		}

		ib := database.NewInsertBuilder()
		ib.InsertInto(j.Table)
		if j.ParentTypeColumn != "" {
			ib.Cols("user_id", j.ParentTypeColumn, j.ParentIDColumn, kind.Column())
			for _, id := range ids[i:end] {
				ib.Values(userID, string(parent.Type), parent.ID, id)
			}
		} else {
			ib.Cols("user_id", j.ParentIDColumn, kind.Column())
			for _, id := range ids[i:end] {
				ib.Values(userID, parent.ID, id)
			}
		}

		query, args := ib.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
				"table":       j.Table,
				"parent_type": parent.Type,
				"parent_id":   parent.ID,
				"facet_kind":  kind,
			}).Error("failed to insert link rows")
			return httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to write %s", j.Table)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to commit")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"table":      j.Table,
		"parent_id":  parent.ID,
		"facet_kind": kind,
		"count":      len(ids),
	}).Debug("Replaced facet links")
	return nil
}

// ListFacetIDs returns the facet IDs currently linked to (parent, kind)
func (r *LinkRepository) ListFacetIDs(ctx context.Context, parent models.ParentRef, kind schema.FacetKind) ([]uuid.UUID, error) {
	ctx, span := tracing.StartSpan(ctx, "LinkRepository.ListFacetIDs")
	defer span.End()

	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	j := r.layout.FacetJunction(parent.Type, kind)

	sb := database.NewSelectBuilder()
	sb.Select(kind.Column())
	sb.From(j.Table)
	sb.Where(sb.Equal("user_id", userID), sb.Equal(j.ParentIDColumn, parent.ID))
	if j.ParentTypeColumn != "" {
		sb.Where(sb.Equal(j.ParentTypeColumn, string(parent.Type)))
	}
	sb.OrderBy(kind.Column())

	query, args := sb.Build()
	var ids []uuid.UUID
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to list %s links", kind)
	}
	return ids, nil
}

// ReplaceDerivedLinks rewrites the materialized cross-product rows for
// (parent, kind). An empty pair set deletes without inserting.
func (r *LinkRepository) ReplaceDerivedLinks(ctx context.Context, parent models.ParentRef, kind schema.DerivedKind, pairs []DerivedPair) error {
	ctx, span := tracing.StartSpan(ctx, "LinkRepository.ReplaceDerivedLinks")
	defer span.End()

	userID, err := GetUserID(ctx)
	if err != nil {
		return err
	}

	j := r.layout.DerivedJunction(parent.Type, kind)
	leftCol, rightCol := kind.Columns()

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	if err := r.deleteParentRows(ctx, tx, userID, parent, j); err != nil {
		return err
	}

	for i := 0; i < len(pairs); i += insertBatchSize {
		end := i + insertBatchSize
		if end > len(pairs) {
			end = len(pairs)
		}

		ib := database.NewInsertBuilder()
		ib.InsertInto(j.Table)
		if j.ParentTypeColumn != "" {
			ib.Cols("user_id", j.ParentTypeColumn, j.ParentIDColumn, leftCol, rightCol)
			for _, p := range pairs[i:end] {
				ib.Values(userID, string(parent.Type), parent.ID, p.Left, p.Right)
			}
		} else {
			ib.Cols("user_id", j.ParentIDColumn, leftCol, rightCol)
			for _, p := range pairs[i:end] {
				ib.Values(userID, parent.ID, p.Left, p.Right)
			}
		}

		query, args := ib.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
				"table":     j.Table,
				"parent_id": parent.ID,
			}).Error("failed to insert derived link rows")
			return httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to write %s", j.Table)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to commit")
	}
	return nil
}

// CountDerivedLinks returns how many derived rows exist for (parent, kind)
func (r *LinkRepository) CountDerivedLinks(ctx context.Context, parent models.ParentRef, kind schema.DerivedKind) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "LinkRepository.CountDerivedLinks")
	defer span.End()

	userID, err := GetUserID(ctx)
	if err != nil {
		return 0, err
	}

	j := r.layout.DerivedJunction(parent.Type, kind)

	sb := database.NewSelectBuilder()
	sb.Select("COUNT(*)")
	sb.From(j.Table)
	sb.Where(sb.Equal("user_id", userID), sb.Equal(j.ParentIDColumn, parent.ID))
	if j.ParentTypeColumn != "" {
		sb.Where(sb.Equal(j.ParentTypeColumn, string(parent.Type)))
	}

	query, args := sb.Build()
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to count derived links")
	}
	return count, nil
}

// ReplaceNoteLink repoints the parent's note link. A nil note ID clears the
// link. The note rows themselves are never touched here.
func (r *LinkRepository) ReplaceNoteLink(ctx context.Context, parent models.ParentRef, noteID *uuid.UUID) error {
	ctx, span := tracing.StartSpan(ctx, "LinkRepository.ReplaceNoteLink")
	defer span.End()

	userID, err := GetUserID(ctx)
	if err != nil {
		return err
	}

	j := r.layout.NoteJunction(parent.Type)

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	if err := r.deleteParentRows(ctx, tx, userID, parent, j); err != nil {
		return err
	}

	if noteID != nil {
		ib := database.NewInsertBuilder()
		ib.InsertInto(j.Table)
		if j.ParentTypeColumn != "" {
			ib.Cols("user_id", j.ParentTypeColumn, j.ParentIDColumn, "note_id").
				Values(userID, string(parent.Type), parent.ID, *noteID)
		} else {
			ib.Cols("user_id", j.ParentIDColumn, "note_id").
				Values(userID, parent.ID, *noteID)
		}

		query, args := ib.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
				"table":     j.Table,
				"parent_id": parent.ID,
				"note_id":   *noteID,
			}).Error("failed to insert note link")
			return httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to write %s", j.Table)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to commit")
	}
	return nil
}

// GetNoteLinkID returns the linked note ID for the parent, or nil when no
// note is attached
func (r *LinkRepository) GetNoteLinkID(ctx context.Context, parent models.ParentRef) (*uuid.UUID, error) {
	ctx, span := tracing.StartSpan(ctx, "LinkRepository.GetNoteLinkID")
	defer span.End()

	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	j := r.layout.NoteJunction(parent.Type)

	sb := database.NewSelectBuilder()
	sb.Select("note_id")
	sb.From(j.Table)
	sb.Where(sb.Equal("user_id", userID), sb.Equal(j.ParentIDColumn, parent.ID))
	if j.ParentTypeColumn != "" {
		sb.Where(sb.Equal(j.ParentTypeColumn, string(parent.Type)))
	}

	query, args := sb.Build()
	var noteID uuid.UUID
	err = r.db.GetContext(ctx, &noteID, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get note link")
	}
	return &noteID, nil
}
