package sync

import (
	"context"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/repositories"
	"github.com/Ramsey-B/clover/pkg/schema"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// GoalLinker connects a planning item to a twelve-week goal and propagates
// the item's facet selections into the goal-scoped aggregation tables. It is
// only invoked when the save's goal flag is set; clearing the flag later does
// not retract a previously created link.
type GoalLinker struct {
	goals  *repositories.GoalRepository
	logger ectologger.Logger
}

// NewGoalLinker creates a new goal linker
func NewGoalLinker(goals *repositories.GoalRepository, logger ectologger.Logger) *GoalLinker {
	return &GoalLinker{
		goals:  goals,
		logger: logger,
	}
}

// Link replaces the parent's goal link and appends one aggregation row per
// selected facet. Aggregation rows contributed by other items linked to the
// same goal are left alone, so duplicates across items are expected; readers
// collapse them with DISTINCT.
func (l *GoalLinker) Link(ctx context.Context, goalID uuid.UUID, parent models.ParentRef, roles, domains, keyRelationships []uuid.UUID) error {
	ctx, span := tracing.StartSpan(ctx, "sync.GoalLinker.Link")
	defer span.End()

	if err := l.goals.ReplaceGoalItem(ctx, goalID, parent); err != nil {
		return err
	}

	if err := l.goals.InsertGoalFacetRows(ctx, goalID, schema.FacetRole, roles); err != nil {
		return err
	}
	if err := l.goals.InsertGoalFacetRows(ctx, goalID, schema.FacetDomain, domains); err != nil {
		return err
	}
	if err := l.goals.InsertGoalFacetRows(ctx, goalID, schema.FacetKeyRelationship, keyRelationships); err != nil {
		return err
	}

	l.logger.WithContext(ctx).WithFields(map[string]any{
		"goal_id":     goalID,
		"parent_type": parent.Type,
		"parent_id":   parent.ID,
	}).Debug("Linked item to goal")
	return nil
}
