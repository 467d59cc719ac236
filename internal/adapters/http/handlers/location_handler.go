package handlers

import (
	"census-backend/internal/adapters/http/middleware"
	"census-backend/internal/core/services"
	"census-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// LocationHandler serves the location tree.
type LocationHandler struct {
	locationService *services.LocationService
	log             *zap.Logger
}

func NewLocationHandler(locationService *services.LocationService, log *zap.Logger) *LocationHandler {
	return &LocationHandler{
		locationService: locationService,
		log:             log,
	}
}

// ListTopLevel returns the country and its cities
// @Summary Top-level locations
// @Tags Location
// @Produce json
// @Success 200 {object} response.Response
// @Router /location/top [get]
func (h *LocationHandler) ListTopLevel(c *fiber.Ctx) error {
	nodes, err := h.locationService.ListTopLevel(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return response.Success(c, data(nodes))
}

// GetByCode returns one location
// @Summary Get location
// @Tags Location
// @Produce json
// @Param code path string true "Location code"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /location/{code} [get]
func (h *LocationHandler) GetByCode(c *fiber.Ctx) error {
	node, err := h.locationService.GetByCode(c.UserContext(), c.Params("code"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return response.Success(c, data(node))
}

// ListChildren returns direct children in insertion order
// @Summary Child locations
// @Tags Location
// @Produce json
// @Param code path string true "Parent code"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /location/{code}/children [get]
func (h *LocationHandler) ListChildren(c *fiber.Ctx) error {
	nodes, err := h.locationService.ListChildren(c.UserContext(), c.Params("code"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return response.Success(c, data(nodes))
}

// ListUnassigned returns provisioned names still waiting for a code
// @Summary Unassigned child names
// @Tags Location
// @Produce json
// @Security BearerAuth
// @Param code path string true "Parent code"
// @Success 200 {object} response.Response
// @Router /location/{code}/unassigned [get]
func (h *LocationHandler) ListUnassigned(c *fiber.Ctx) error {
	nodes, err := h.locationService.ListUnassigned(c.UserContext(), c.Params("code"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return response.Success(c, data(nodes))
}

// Create provisions a child location
// @Summary Create location
// @Tags Location
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateLocationInput true "Parent code, name and optional code"
// @Success 201 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /location/create [post]
func (h *LocationHandler) Create(c *fiber.Ctx) error {
	var req services.CreateLocationInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	node, err := h.locationService.Create(c.UserContext(), middleware.Username(c), &req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return response.Created(c, data(node))
}

// AssignCode gives a provisioned name its code
// @Summary Assign location code
// @Description The name must be provisioned directly under the caller's managed location; a code is set once.
// @Tags Location
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.AssignCodeInput true "Name and code"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /location/update [put]
func (h *LocationHandler) AssignCode(c *fiber.Ctx) error {
	var req services.AssignCodeInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Name == "" || req.Code == "" {
		return response.BadRequest(c, "name and code are required")
	}

	if err := h.locationService.AssignCode(c.UserContext(), middleware.Username(c), &req); err != nil {
		return respondError(c, h.log, err)
	}
	return response.Success(c, "")
}
