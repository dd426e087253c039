package server

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"mockforge/internal/admin"
	"mockforge/internal/auth"
	"mockforge/internal/config"
	"mockforge/internal/engine"
	"mockforge/internal/metadata"
	"mockforge/internal/openapi"
	"mockforge/internal/store"
)

// New assembles the Fiber application: middleware, auth, admin, OpenAPI, and
// the dynamic collection routes.
func New(cfg *config.Config, st *store.Store, reg *metadata.Registry) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
	})
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))
	if cfg.CORS.Enabled {
		app.Use(cors.New(cors.Config{
			AllowOrigins: cfg.CORS.AllowOrigins,
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Get("/openapi.json", func(c *fiber.Ctx) error {
		return c.JSON(openapi.Build(reg))
	})

	var collectionMW []fiber.Handler
	adminMW := []fiber.Handler{}
	if cfg.Auth.Enabled {
		authHandler := auth.NewHandler(cfg.Auth)
		auth.RegisterRoutes(app, authHandler)

		tokenMW := auth.Middleware(cfg.Auth.JWTSecret)
		collectionMW = append(collectionMW, tokenMW)
		adminMW = append(adminMW, tokenMW, auth.RequireAdmin())
	}
	if cfg.Chaos.LatencyMs > 0 || cfg.Chaos.ErrorRate > 0 {
		collectionMW = append(collectionMW, Chaos(cfg.Chaos))
	}

	adminHandler := admin.NewHandler(st, reg, cfg.Spec.Path)
	admin.RegisterRoutes(app, adminHandler, adminMW...)

	validator := engine.ValidatorConfig{SkipUniqueness: cfg.Query.SkipUniqueness}
	handler := engine.NewHandler(st, reg, validator, cfg.Query.ProjectPrimaryKey)
	engine.RegisterRoutes(app, handler, collectionMW...)

	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	}

	var appErr *engine.AppError
	if errors.As(err, &appErr) {
		return c.Status(appErr.Status).JSON(engine.ErrorResponse{Error: appErr})
	}

	log.Printf("ERROR: %v", err)
	return c.Status(code).JSON(engine.ErrorResponse{
		Error: &engine.AppError{
			Code:    "INTERNAL_ERROR",
			Message: "Internal server error",
		},
	})
}
