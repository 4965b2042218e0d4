package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/lay2al/movie-and--series-managment-system/internal/models"
	"github.com/lay2al/movie-and--series-managment-system/pkg/logger"
	"github.com/lay2al/movie-and--series-managment-system/pkg/utils"
)

const identityKey = "identity"

func CORS() fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins: "http://localhost:3001,http://127.0.0.1:3001",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	})
}

// RequireAuth resolves the bearer token into a request identity. The
// verified claims ARE the identity; no user row is loaded per request, so a
// role change only becomes visible once the old token expires and a new one
// is issued.
func RequireAuth(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		logger.Warn("auth_missing_header", map[string]interface{}{
			"ip":   c.IP(),
			"path": c.Path(),
		})
		return utils.Error(c, fiber.StatusUnauthorized, "missing authorization header")
	}

	tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
	if tokenString == authHeader || tokenString == "" {
		logger.Warn("auth_invalid_format", map[string]interface{}{
			"ip":   c.IP(),
			"path": c.Path(),
		})
		return utils.Error(c, fiber.StatusUnauthorized, "invalid authorization format")
	}

	claims, err := utils.ValidateToken(tokenString)
	if err != nil {
		event := "auth_token_invalid"
		if errors.Is(err, jwt.ErrTokenExpired) {
			event = "auth_token_expired"
		}
		logger.Warn(event, map[string]interface{}{
			"ip":    c.IP(),
			"path":  c.Path(),
			"error": err.Error(),
		})
		return utils.Error(c, fiber.StatusUnauthorized, "invalid or expired token")
	}

	c.Locals(identityKey, claims)
	return c.Next()
}

func AdminOnly(c *fiber.Ctx) error {
	identity := GetIdentity(c)
	if identity == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}
	if identity.Role != models.UserRoleAdmin {
		return utils.Error(c, fiber.StatusForbidden, "admin access required")
	}
	return c.Next()
}

func GetIdentity(c *fiber.Ctx) *utils.Claims {
	value := c.Locals(identityKey)
	if value == nil {
		return nil
	}
	claims, ok := value.(*utils.Claims)
	if !ok {
		return nil
	}
	return claims
}
