package middleware

import (
	"strings"

	"societygate/internal/config"
	"societygate/internal/pkg/jwt"
	"societygate/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware creates authentication middleware
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accessToken := extractToken(c)
		if accessToken == "" {
			return response.Unauthorized(c, "Access token required")
		}

		claims, err := jwt.ValidateAccessToken(accessToken, cfg.JWT.Secret)
		if err != nil {
			if err == jwt.ErrTokenExpired {
				return response.Unauthorized(c, "Access token expired")
			}
			return response.Unauthorized(c, "Invalid access token")
		}

		c.Locals("userID", claims.UserID)
		c.Locals("username", claims.Username)
		c.Locals("name", claims.Name)
		c.Locals("role", claims.Role)
		c.Locals("flat", claims.Flat)

		return c.Next()
	}
}

// extractToken reads the access token from cookie or Authorization header
func extractToken(c *fiber.Ctx) string {
	if token := c.Cookies("access_token"); token != "" {
		return token
	}
	authHeader := c.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	// SSE via EventSource cannot set headers; allow token query param there
	return c.Query("token")
}

// RoleMiddleware creates role-based authorization middleware
func RoleMiddleware(allowedRoles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("role").(string)
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

// AdminOnly middleware allows only ADMIN role
func AdminOnly() fiber.Handler {
	return RoleMiddleware("ADMIN")
}

// SecurityOrAdmin middleware allows SECURITY or ADMIN roles
func SecurityOrAdmin() fiber.Handler {
	return RoleMiddleware("SECURITY", "ADMIN")
}

// ResidentOnly middleware allows only RESIDENT role
func ResidentOnly() fiber.Handler {
	return RoleMiddleware("RESIDENT")
}
