package handlers

import (
	"census-backend/internal/adapters/http/middleware"
	"census-backend/internal/core/services"
	"census-backend/internal/pkg/pagination"
	"census-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// UserHandler handles user management endpoints
type UserHandler struct {
	userService *services.UserService
	log         *zap.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService, log *zap.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		log:         log,
	}
}

// SetActiveRequest toggles survey rights. Active is required.
type SetActiveRequest struct {
	Active *bool `json:"active"`
}

// FinishRequest flags the caller's declaration as complete. IsFinish is required.
type FinishRequest struct {
	IsFinish *bool `json:"is_finish"`
}

// CreateUser handles creating a subordinate account
// @Summary Create user
// @Description Create an account managed by the caller. The role must be a child of the caller's role and the location a direct child of the caller's location.
// @Tags User
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateUserInput true "User data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /user/create [post]
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req services.CreateUserInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user, err := h.userService.Create(c.UserContext(), middleware.Username(c), &req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return response.Created(c, data(user))
}

// DeleteUser handles deleting a direct subordinate
// @Summary Delete user
// @Tags User
// @Produce json
// @Security BearerAuth
// @Param username path string true "Username"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /user/{username} [delete]
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	target := c.Params("username")
	deleted, err := h.userService.Delete(c.UserContext(), middleware.Username(c), target)
	if err != nil {
		return respondError(c, h.log, err)
	}
	if !deleted {
		return response.NotFound(c, "User not found")
	}
	return response.Success(c, fiber.Map{})
}

// SetActive grants or revokes survey rights on a subordinate and its descendants
// @Summary Set survey rights
// @Tags User
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param username path string true "Username"
// @Param body body SetActiveRequest true "Active flag"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /user/{username}/active [put]
func (h *UserHandler) SetActive(c *fiber.Ctx) error {
	var req SetActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Active == nil {
		return response.BadRequest(c, "active is required")
	}

	n, err := h.userService.SetActive(c.UserContext(), middleware.Username(c), c.Params("username"), *req.Active)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return response.Success(c, data(fiber.Map{"updated": n}))
}

// SetSurveyTime opens a declare window on a subordinate
// @Summary Set declare window
// @Tags User
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param username path string true "Username"
// @Param body body services.DeclareWindowInput true "Window as epoch seconds"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /user/{username}/survey-time [put]
func (h *UserHandler) SetSurveyTime(c *fiber.Ctx) error {
	var req services.DeclareWindowInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.userService.SetDeclareWindow(c.UserContext(), middleware.Username(c), c.Params("username"), &req); err != nil {
		return respondError(c, h.log, err)
	}
	return response.Success(c, fiber.Map{})
}

// ListChildren lists the caller's direct subordinates
// @Summary List subordinates
// @Tags User
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /user/children [get]
func (h *UserHandler) ListChildren(c *fiber.Ctx) error {
	page, err := h.userService.ListChildren(c.UserContext(), middleware.Username(c), pagination.GetParams(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return response.Success(c, data(page))
}

// ChildRoles lists the roles the caller may assign
// @Summary Assignable roles
// @Tags User
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /user/roles [get]
func (h *UserHandler) ChildRoles(c *fiber.Ctx) error {
	role, _ := c.Locals(middleware.LocalRole).(string)
	roles, err := h.userService.ChildRoles(c.UserContext(), role)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return response.Success(c, data(roles))
}

// MarkFinished flags the caller's declaration as complete
// @Summary Mark declaration finished
// @Tags User
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body FinishRequest true "Finish flag"
// @Success 200 {object} response.Response
// @Router /user/finish [put]
func (h *UserHandler) MarkFinished(c *fiber.Ctx) error {
	var req FinishRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.IsFinish == nil {
		return response.BadRequest(c, "is_finish is required")
	}

	if err := h.userService.MarkFinished(c.UserContext(), middleware.Username(c), *req.IsFinish); err != nil {
		return respondError(c, h.log, err)
	}
	return response.Success(c, fiber.Map{})
}

// ChangePassword handles changing the caller's password
// @Summary Change password
// @Tags User
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.ChangePasswordInput true "Passwords"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /user/password [put]
func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	var req services.ChangePasswordInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.userService.ChangePassword(c.UserContext(), middleware.Username(c), &req); err != nil {
		return respondError(c, h.log, err)
	}
	return response.Success(c, fiber.Map{})
}
