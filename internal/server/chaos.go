package server

import (
	"math/rand/v2"
	"time"

	"github.com/gofiber/fiber/v2"

	"mockforge/internal/config"
	"mockforge/internal/engine"
)

// Chaos returns a middleware that injects artificial latency and random
// failures into collection routes, for exercising client retry and timeout
// paths against the mock.
func Chaos(cfg config.ChaosConfig) fiber.Handler {
	latency := time.Duration(cfg.LatencyMs) * time.Millisecond

	return func(c *fiber.Ctx) error {
		if latency > 0 {
			time.Sleep(latency)
		}
		if cfg.ErrorRate > 0 && rand.Float64() < cfg.ErrorRate {
			appErr := engine.NewAppError("INJECTED_ERROR", 500, "Injected failure")
			return c.Status(appErr.Status).JSON(engine.ErrorResponse{Error: appErr})
		}
		return c.Next()
	}
}
