package models

import (
	"time"

	"github.com/google/uuid"
)

// Note is append-only free text. Saves never edit a note in place: each save
// with non-empty text creates a new row and repoints the parent's note link,
// leaving prior rows behind as an implicit edit history.
type Note struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// TableName returns the database table name
func (Note) TableName() string {
	return "notes"
}
