package engine

import "github.com/gofiber/fiber/v2"

// RegisterRoutes mounts the dynamic CRUD surface. Middlewares (auth, chaos)
// apply to every collection route.
func RegisterRoutes(app *fiber.App, h *Handler, middlewares ...fiber.Handler) {
	api := app.Group("/api")
	for _, mw := range middlewares {
		api.Use(mw)
	}

	api.Get("/:collection", h.List)
	api.Post("/:collection", h.Create)
	api.Get("/:collection/:id", h.GetByID)
	api.Put("/:collection/:id", h.Replace)
	api.Patch("/:collection/:id", h.Patch)
	api.Delete("/:collection/:id", h.Delete)
	api.Get("/:collection/:id/:relationship", h.Related)
}
