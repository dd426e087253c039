package auth

import (
	"github.com/gofiber/fiber/v2"

	"mockforge/internal/config"
	"mockforge/internal/engine"
)

type Handler struct {
	cfg config.AuthConfig
}

func NewHandler(cfg config.AuthConfig) *Handler {
	return &Handler{cfg: cfg}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles POST /auth/login, issuing an access token for a configured user.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return respond(c, engine.NewAppError("INVALID_PAYLOAD", 400, "Invalid JSON body"))
	}

	user, err := Authenticate(h.cfg.Users, req.Username, req.Password)
	if err != nil {
		return respond(c, engine.UnauthorizedError("Invalid credentials"))
	}

	token, err := GenerateAccessToken(user.Username, user.Roles, h.cfg.JWTSecret)
	if err != nil {
		return respond(c, engine.NewAppError("TOKEN_ERROR", 500, "Could not issue token"))
	}

	return c.JSON(fiber.Map{"access_token": token})
}

// RegisterRoutes mounts the login route. No auth required.
func RegisterRoutes(app *fiber.App, h *Handler) {
	app.Post("/auth/login", h.Login)
}
