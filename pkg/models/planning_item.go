package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Ramsey-B/clover/pkg/database"
)

// PlanningItem is the common shape of a task, event, or deposit idea row.
// Scheduling fields only apply to tasks and events; they are stored as NULL
// for deposit ideas and never read back for them.
type PlanningItem struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	UserID    uuid.UUID  `db:"user_id" json:"user_id"`
	Type      ParentType `db:"-" json:"parent_type"`
	Title     string     `db:"title" json:"title"`
	Completed bool       `db:"completed" json:"completed"`

	// Task scheduling
	DueAt *time.Time `db:"due_at" json:"due_at,omitempty"`

	// Event scheduling
	StartsAt *time.Time `db:"starts_at" json:"starts_at,omitempty"`
	EndsAt   *time.Time `db:"ends_at" json:"ends_at,omitempty"`
	AllDay   bool       `db:"all_day" json:"all_day"`

	// Recurrence is an opaque schedule blob owned by the calendar layer
	Recurrence database.JSONB[map[string]any] `db:"recurrence" json:"recurrence,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Ref returns the relationship parent reference for this item
func (p *PlanningItem) Ref() ParentRef {
	return ParentRef{Type: p.Type, ID: p.ID}
}

// Task is a PlanningItem persisted to the tasks table
type Task struct {
	ID         uuid.UUID                      `db:"id" json:"id"`
	UserID     uuid.UUID                      `db:"user_id" json:"user_id"`
	Title      string                         `db:"title" json:"title"`
	Completed  bool                           `db:"completed" json:"completed"`
	DueAt      *time.Time                     `db:"due_at" json:"due_at,omitempty"`
	Recurrence database.JSONB[map[string]any] `db:"recurrence" json:"recurrence,omitempty"`
	CreatedAt  time.Time                      `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time                      `db:"updated_at" json:"updated_at"`
}

// TableName returns the database table name
func (Task) TableName() string {
	return "tasks"
}

// Event is a PlanningItem persisted to the events table
type Event struct {
	ID         uuid.UUID                      `db:"id" json:"id"`
	UserID     uuid.UUID                      `db:"user_id" json:"user_id"`
	Title      string                         `db:"title" json:"title"`
	StartsAt   *time.Time                     `db:"starts_at" json:"starts_at,omitempty"`
	EndsAt     *time.Time                     `db:"ends_at" json:"ends_at,omitempty"`
	AllDay     bool                           `db:"all_day" json:"all_day"`
	Recurrence database.JSONB[map[string]any] `db:"recurrence" json:"recurrence,omitempty"`
	CreatedAt  time.Time                      `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time                      `db:"updated_at" json:"updated_at"`
}

// TableName returns the database table name
func (Event) TableName() string {
	return "events"
}

// DepositIdea is an unscheduled planning item persisted to the deposit_ideas table
type DepositIdea struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Title     string    `db:"title" json:"title"`
	Completed bool      `db:"completed" json:"completed"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// TableName returns the database table name
func (DepositIdea) TableName() string {
	return "deposit_ideas"
}
