package middleware

import (
	"context"
	"errors"
	"strings"

	"census-backend/internal/core/domain"
	"census-backend/internal/pkg/jwt"
	"census-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by AuthMiddleware.
const (
	LocalUsername = "username"
	LocalRole     = "role"
	LocalClaims   = "claims"
)

// TokenValidator checks an access token, including the revocation list.
type TokenValidator interface {
	ValidateAccessToken(ctx context.Context, token string) (*jwt.Claims, error)
}

// AccessToken reads the token from the access_token cookie, then from the
// Authorization header.
func AccessToken(c *fiber.Ctx) string {
	if token := c.Cookies("access_token"); token != "" {
		return token
	}
	authHeader := c.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// AuthMiddleware creates authentication middleware
func AuthMiddleware(validator TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accessToken := AccessToken(c)
		if accessToken == "" {
			return response.Unauthorized(c, "Access token required")
		}

		claims, err := validator.ValidateAccessToken(c.UserContext(), accessToken)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrTokenExpired):
				return response.Unauthorized(c, "Access token expired")
			case errors.Is(err, domain.ErrTokenRevoked):
				return response.Unauthorized(c, "Access token revoked")
			case errors.Is(err, domain.ErrTokenInvalid):
				return response.Unauthorized(c, "Invalid access token")
			default:
				return response.InternalServerError(c, "Failed to validate access token")
			}
		}

		c.Locals(LocalUsername, claims.Username)
		c.Locals(LocalRole, claims.Role)
		c.Locals(LocalClaims, claims)
		return c.Next()
	}
}

// RoleMiddleware creates role-based authorization middleware
func RoleMiddleware(allowedRoles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(LocalRole).(string)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}

		for _, allowedRole := range allowedRoles {
			if role == allowedRole {
				return c.Next()
			}
		}

		return response.Forbidden(c, "You don't have permission to access this resource")
	}
}

// Managers allows every role that can create subordinates.
func Managers() fiber.Handler {
	return RoleMiddleware(domain.RoleCountry, domain.RoleCity, domain.RoleDistrict, domain.RoleWard)
}

// Username returns the authenticated username, or "".
func Username(c *fiber.Ctx) string {
	username, _ := c.Locals(LocalUsername).(string)
	return username
}

// Claims returns the validated access-token claims, or nil.
func Claims(c *fiber.Ctx) *jwt.Claims {
	claims, _ := c.Locals(LocalClaims).(*jwt.Claims)
	return claims
}
