package models

import (
	"time"

	"github.com/google/uuid"
)

// TwelveWeekGoal is a goal row; read-only from the sync engine's perspective
type TwelveWeekGoal struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	UserID    uuid.UUID  `db:"user_id" json:"user_id"`
	Title     string     `db:"title" json:"title"`
	StartsOn  *time.Time `db:"starts_on" json:"starts_on,omitempty"`
	EndsOn    *time.Time `db:"ends_on" json:"ends_on,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// TableName returns the database table name
func (TwelveWeekGoal) TableName() string {
	return "twelve_week_goals"
}

// GoalItem links a planning item to the goal it contributes to.
// A cleared goal flag does not retract an existing link; retraction is a
// retention-policy decision, not an implicit side effect of a save.
type GoalItem struct {
	UserID     uuid.UUID  `db:"user_id" json:"user_id"`
	GoalID     uuid.UUID  `db:"goal_id" json:"goal_id"`
	ParentType ParentType `db:"parent_type" json:"parent_type"`
	ParentID   uuid.UUID  `db:"parent_id" json:"parent_id"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

// TableName returns the database table name
func (GoalItem) TableName() string {
	return "goal_items"
}
