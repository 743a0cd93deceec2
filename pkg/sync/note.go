package sync

import (
	"context"
	"strings"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/repositories"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// NoteAttacher manages the note attached to a planning item. Every save with
// non-empty text writes a brand-new note row and repoints the link; prior
// note rows stay behind unlinked. That trades storage for an implicit edit
// history, and the retention policy decides if the orphans are ever swept.
type NoteAttacher struct {
	notes  *repositories.NoteRepository
	links  *repositories.LinkRepository
	logger ectologger.Logger
}

// NewNoteAttacher creates a new note attacher
func NewNoteAttacher(notes *repositories.NoteRepository, links *repositories.LinkRepository, logger ectologger.Logger) *NoteAttacher {
	return &NoteAttacher{
		notes:  notes,
		links:  links,
		logger: logger,
	}
}

// Attach replaces the parent's note link. Whitespace-only text clears the
// link without creating a note. Returns the new note's ID, or nil when the
// link was cleared.
func (a *NoteAttacher) Attach(ctx context.Context, parent models.ParentRef, text string) (*uuid.UUID, error) {
	ctx, span := tracing.StartSpan(ctx, "sync.NoteAttacher.Attach")
	defer span.End()

	if strings.TrimSpace(text) == "" {
		if err := a.links.ReplaceNoteLink(ctx, parent, nil); err != nil {
			return nil, err
		}
		return nil, nil
	}

	note := &models.Note{Content: text}
	if err := a.notes.Create(ctx, note); err != nil {
		return nil, err
	}

	if err := a.links.ReplaceNoteLink(ctx, parent, &note.ID); err != nil {
		return nil, err
	}

	a.logger.WithContext(ctx).WithFields(map[string]any{
		"parent_type": parent.Type,
		"parent_id":   parent.ID,
		"note_id":     note.ID,
	}).Debug("Attached note")
	return &note.ID, nil
}
