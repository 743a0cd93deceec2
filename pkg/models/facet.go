package models

import (
	"time"

	"github.com/google/uuid"
)

// Facets are descriptive tag categories attachable to planning items. The
// sync engine only references facet IDs; facet rows are owned by the
// onboarding/profile surfaces and are read-only here.

// Role is a life role facet (e.g. parent, engineer)
type Role struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Name      string    `db:"name" json:"name"`
	Color     *string   `db:"color" json:"color,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// TableName returns the database table name
func (Role) TableName() string {
	return "roles"
}

// Domain is a wellness domain facet (e.g. physical, spiritual)
type Domain struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// TableName returns the database table name
func (Domain) TableName() string {
	return "domains"
}

// KeyRelationship is a person the user plans around
type KeyRelationship struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// TableName returns the database table name
func (KeyRelationship) TableName() string {
	return "key_relationships"
}
