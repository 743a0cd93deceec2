package handlers

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/repositories"
	"github.com/Ramsey-B/clover/pkg/schema"
	syncengine "github.com/Ramsey-B/clover/pkg/sync"
)

// PlanningItemHandler handles task, event, and deposit idea API requests
type PlanningItemHandler struct {
	engine *syncengine.Engine
	items  *repositories.PlanningItemRepository
	links  *repositories.LinkRepository
	notes  *repositories.NoteRepository
}

// NewPlanningItemHandler creates a new planning item handler
func NewPlanningItemHandler(
	engine *syncengine.Engine,
	items *repositories.PlanningItemRepository,
	links *repositories.LinkRepository,
	notes *repositories.NoteRepository,
) *PlanningItemHandler {
	return &PlanningItemHandler{
		engine: engine,
		items:  items,
		links:  links,
		notes:  notes,
	}
}

// ItemDetail is an item together with its current relationship selections
type ItemDetail struct {
	Item               *models.PlanningItem `json:"item"`
	RoleIDs            []uuid.UUID          `json:"role_ids"`
	DomainIDs          []uuid.UUID          `json:"domain_ids"`
	KeyRelationshipIDs []uuid.UUID          `json:"key_relationship_ids"`
	Note               *models.Note         `json:"note,omitempty"`
}

// RegisterRoutes registers the planning item routes
func (h *PlanningItemHandler) RegisterRoutes(g *echo.Group) {
	items := g.Group("/items")
	items.POST("", h.Create)
	items.PUT("/:id", h.Update)
	items.GET("/:type/:id", h.Get)
	items.DELETE("/:type/:id", h.Delete)
}

// Create handles POST /items
func (h *PlanningItemHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.SaveRequest
	if err := c.Bind(&req); err != nil {
		return BadRequest("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	// creation always mints a new ID
	req.ID = nil

	result, err := h.engine.Save(ctx, &req)
	if err != nil {
		return err
	}

	return CreatedResponse(c, result)
}

// Update handles PUT /items/:id
func (h *PlanningItemHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := ParseUUID(c, "id")
	if err != nil {
		return err
	}

	var req models.SaveRequest
	if err := c.Bind(&req); err != nil {
		return BadRequest("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	req.ID = &id

	result, err := h.engine.Save(ctx, &req)
	if err != nil {
		return err
	}

	return SuccessResponse(c, result)
}

// Get handles GET /items/:type/:id
func (h *PlanningItemHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	pt, err := ParseParentType(c, "type")
	if err != nil {
		return err
	}
	id, err := ParseUUID(c, "id")
	if err != nil {
		return err
	}
	ref := models.ParentRef{Type: pt, ID: id}

	item, err := h.items.GetByRef(ctx, ref)
	if err != nil {
		return err
	}

	detail := &ItemDetail{Item: item}
	if detail.RoleIDs, err = h.links.ListFacetIDs(ctx, ref, schema.FacetRole); err != nil {
		return err
	}
	if detail.DomainIDs, err = h.links.ListFacetIDs(ctx, ref, schema.FacetDomain); err != nil {
		return err
	}
	if detail.KeyRelationshipIDs, err = h.links.ListFacetIDs(ctx, ref, schema.FacetKeyRelationship); err != nil {
		return err
	}

	noteID, err := h.links.GetNoteLinkID(ctx, ref)
	if err != nil {
		return err
	}
	if noteID != nil {
		if detail.Note, err = h.notes.GetByID(ctx, *noteID); err != nil {
			return err
		}
	}

	return SuccessResponse(c, detail)
}

// Delete handles DELETE /items/:type/:id
func (h *PlanningItemHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	pt, err := ParseParentType(c, "type")
	if err != nil {
		return err
	}
	id, err := ParseUUID(c, "id")
	if err != nil {
		return err
	}

	if err := h.engine.Delete(ctx, models.ParentRef{Type: pt, ID: id}); err != nil {
		return err
	}

	return NoContentResponse(c)
}
