package handlers

import (
	"errors"

	"census-backend/internal/core/domain"
	"census-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// respondError maps a service error to its status. Domain errors carry a
// message safe to show; anything else is logged and hidden.
func respondError(c *fiber.Ctx, log *zap.Logger, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, domain.ErrConflict):
		return response.Conflict(c, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		return response.Forbidden(c, err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		return response.Unauthorized(c, "Invalid username or password")
	case errors.Is(err, domain.ErrTokenExpired),
		errors.Is(err, domain.ErrTokenInvalid):
		return response.Unauthorized(c, err.Error())
	default:
		log.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return response.InternalServerError(c, "Internal server error")
	}
}

func data(v interface{}) fiber.Map {
	return fiber.Map{"data": v}
}
