package models

import (
	"net/http"
	"strings"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/google/uuid"
)

// SaveRequest is the full payload of one save action: the item's own fields
// plus the complete desired facet selection per relation kind. Selections are
// replace-all: the stored links after the save equal exactly these sets.
type SaveRequest struct {
	// ID is present only on edit
	ID         *uuid.UUID `json:"id,omitempty"`
	ParentType ParentType `json:"parent_type" validate:"required"`
	Title      string     `json:"title" validate:"required"`
	Notes      string     `json:"notes"`

	SelectedRoleIDs            []uuid.UUID `json:"selected_role_ids"`
	SelectedDomainIDs          []uuid.UUID `json:"selected_domain_ids"`
	SelectedKeyRelationshipIDs []uuid.UUID `json:"selected_key_relationship_ids"`

	IsTwelveWeekGoal bool       `json:"is_twelve_week_goal"`
	GoalID           *uuid.UUID `json:"goal_id,omitempty"`

	// Scheduling fields (task/event only)
	Completed bool       `json:"completed"`
	DueAt     *time.Time `json:"due_at,omitempty"`
	StartsAt  *time.Time `json:"starts_at,omitempty"`
	EndsAt    *time.Time `json:"ends_at,omitempty"`
	AllDay    bool       `json:"all_day"`

	Recurrence map[string]any `json:"recurrence,omitempty"`
}

// Validate rejects malformed requests before any write happens
func (r *SaveRequest) Validate() error {
	if !r.ParentType.IsValid() {
		return httperror.NewHTTPErrorf(http.StatusBadRequest, "unknown parent_type %q", string(r.ParentType))
	}
	if strings.TrimSpace(r.Title) == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "title is required")
	}
	if r.IsTwelveWeekGoal && r.GoalID == nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "goal_id is required when is_twelve_week_goal is set")
	}
	if r.ParentType == ParentTypeEvent && r.StartsAt != nil && r.EndsAt != nil && r.EndsAt.Before(*r.StartsAt) {
		return httperror.NewHTTPError(http.StatusBadRequest, "ends_at must not be before starts_at")
	}
	return nil
}

// Item maps the request onto a PlanningItem, assigning a fresh ID on create
func (r *SaveRequest) Item(userID uuid.UUID) *PlanningItem {
	id := uuid.New()
	if r.ID != nil {
		id = *r.ID
	}

	item := &PlanningItem{
		ID:        id,
		UserID:    userID,
		Type:      r.ParentType,
		Title:     r.Title,
		Completed: r.Completed,
	}

	switch r.ParentType {
	case ParentTypeTask:
		item.DueAt = r.DueAt
	case ParentTypeEvent:
		item.StartsAt = r.StartsAt
		item.EndsAt = r.EndsAt
		item.AllDay = r.AllDay
	}

	if r.Recurrence != nil && r.ParentType != ParentTypeDepositIdea {
		item.Recurrence.Data = r.Recurrence
	}

	return item
}
