package handlers

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/repositories"
	"github.com/Ramsey-B/clover/pkg/schema"
)

// GoalHandler serves twelve week goals and their aggregated relationships
type GoalHandler struct {
	repo *repositories.GoalRepository
}

// NewGoalHandler creates a new goal handler
func NewGoalHandler(repo *repositories.GoalRepository) *GoalHandler {
	return &GoalHandler{repo: repo}
}

// GoalDetail is a goal with its linked items and the distinct facet IDs
// accumulated from every item ever linked to it
type GoalDetail struct {
	Goal               *models.TwelveWeekGoal `json:"goal"`
	Items              []models.GoalItem      `json:"items"`
	RoleIDs            []uuid.UUID            `json:"role_ids"`
	DomainIDs          []uuid.UUID            `json:"domain_ids"`
	KeyRelationshipIDs []uuid.UUID            `json:"key_relationship_ids"`
}

// RegisterRoutes registers the goal routes
func (h *GoalHandler) RegisterRoutes(g *echo.Group) {
	goals := g.Group("/goals")
	goals.GET("/:id", h.Get)
}

// Get handles GET /goals/:id
func (h *GoalHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := ParseUUID(c, "id")
	if err != nil {
		return err
	}

	goal, err := h.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	detail := &GoalDetail{Goal: goal}
	if detail.Items, err = h.repo.ListItems(ctx, id); err != nil {
		return err
	}
	if detail.RoleIDs, err = h.repo.ListGoalFacetIDs(ctx, id, schema.FacetRole); err != nil {
		return err
	}
	if detail.DomainIDs, err = h.repo.ListGoalFacetIDs(ctx, id, schema.FacetDomain); err != nil {
		return err
	}
	if detail.KeyRelationshipIDs, err = h.repo.ListGoalFacetIDs(ctx, id, schema.FacetKeyRelationship); err != nil {
		return err
	}

	return SuccessResponse(c, detail)
}
