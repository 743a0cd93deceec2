package handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/clover/pkg/repositories"
)

// FacetHandler serves the role, domain, and key relationship pickers
type FacetHandler struct {
	repo *repositories.FacetRepository
}

// NewFacetHandler creates a new facet handler
func NewFacetHandler(repo *repositories.FacetRepository) *FacetHandler {
	return &FacetHandler{repo: repo}
}

// RegisterRoutes registers the facet routes
func (h *FacetHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/roles", h.ListRoles)
	g.GET("/domains", h.ListDomains)
	g.GET("/key-relationships", h.ListKeyRelationships)
}

// ListRoles handles GET /roles
func (h *FacetHandler) ListRoles(c echo.Context) error {
	roles, err := h.repo.ListRoles(c.Request().Context())
	if err != nil {
		return err
	}
	return SuccessResponse(c, roles)
}

// ListDomains handles GET /domains
func (h *FacetHandler) ListDomains(c echo.Context) error {
	domains, err := h.repo.ListDomains(c.Request().Context())
	if err != nil {
		return err
	}
	return SuccessResponse(c, domains)
}

// ListKeyRelationships handles GET /key-relationships
func (h *FacetHandler) ListKeyRelationships(c echo.Context) error {
	keyRelationships, err := h.repo.ListKeyRelationships(c.Request().Context())
	if err != nil {
		return err
	}
	return SuccessResponse(c, keyRelationships)
}
