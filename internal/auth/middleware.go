package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"mockforge/internal/engine"
)

// Middleware returns a Fiber middleware that validates Bearer tokens and sets
// the User on the request.
func Middleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" {
			return respond(c, engine.UnauthorizedError("Missing auth token"))
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return respond(c, engine.UnauthorizedError("Invalid auth header format"))
		}

		claims, err := ParseAccessToken(parts[1], secret)
		if err != nil {
			return respond(c, engine.UnauthorizedError("Invalid or expired token"))
		}

		c.Locals("user", &User{
			Username: claims.Subject,
			Roles:    claims.Roles,
		})

		return c.Next()
	}
}

// RequireAdmin checks the authenticated user has the admin role.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := GetUser(c)
		if user == nil {
			return respond(c, engine.UnauthorizedError("Missing auth token"))
		}
		if !user.IsAdmin() {
			return respond(c, engine.ForbiddenError("Admin access required"))
		}
		return c.Next()
	}
}

// GetUser extracts the User from a Fiber context.
func GetUser(c *fiber.Ctx) *User {
	user, _ := c.Locals("user").(*User)
	return user
}

func respond(c *fiber.Ctx, appErr *engine.AppError) error {
	return c.Status(appErr.Status).JSON(engine.ErrorResponse{Error: appErr})
}
