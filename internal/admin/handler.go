package admin

import (
	"sort"

	"github.com/gofiber/fiber/v2"

	"mockforge/internal/engine"
	"mockforge/internal/metadata"
	"mockforge/internal/store"
)

// Handler exposes operational endpoints: state reset, persistence flush,
// spec reload, and a resource overview.
type Handler struct {
	store    *store.Store
	registry *metadata.Registry
	specPath string
}

func NewHandler(s *store.Store, reg *metadata.Registry, specPath string) *Handler {
	return &Handler{store: s, registry: reg, specPath: specPath}
}

// ResourceInfo describes one registered resource and its collection.
type ResourceInfo struct {
	Name          string `json:"name"`
	PrimaryKey    string `json:"primaryKey"`
	Fields        int    `json:"fields"`
	Relationships int    `json:"relationships"`
	Records       int    `json:"records"`
}

// Reset handles POST /_admin/reset: re-reads the database file, discarding
// in-memory state.
func (h *Handler) Reset(c *fiber.Ctx) error {
	h.store.Replace(nil)
	if err := h.store.Load(); err != nil {
		return respond(c, engine.NewAppError("STORE_ERROR", 500, err.Error()))
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"reset": true}})
}

// Flush handles POST /_admin/flush: persists current state immediately.
func (h *Handler) Flush(c *fiber.Ctx) error {
	if err := h.store.Flush(); err != nil {
		return respond(c, engine.NewAppError("STORE_ERROR", 500, err.Error()))
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"flushed": true}})
}

// Reload handles POST /_admin/reload: re-reads the resource spec file.
func (h *Handler) Reload(c *fiber.Ctx) error {
	if err := metadata.LoadFile(h.specPath, h.registry); err != nil {
		return respond(c, engine.NewAppError("INVALID_SPEC", 400, err.Error()))
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"reloaded": true}})
}

// Resources handles GET /_admin/resources: an overview of every registered
// resource and its record count.
func (h *Handler) Resources(c *fiber.Ctx) error {
	resources := h.registry.AllResources()
	infos := make([]ResourceInfo, 0, len(resources))
	for _, res := range resources {
		infos = append(infos, ResourceInfo{
			Name:          res.Name,
			PrimaryKey:    res.PK(),
			Fields:        len(res.Fields),
			Relationships: len(res.Relationships),
			Records:       h.store.Count(res.Name),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })

	return c.JSON(fiber.Map{"data": infos})
}

// RegisterRoutes mounts the admin surface behind the given middlewares.
func RegisterRoutes(app *fiber.App, h *Handler, middlewares ...fiber.Handler) {
	grp := app.Group("/_admin")
	for _, mw := range middlewares {
		grp.Use(mw)
	}
	grp.Post("/reset", h.Reset)
	grp.Post("/flush", h.Flush)
	grp.Post("/reload", h.Reload)
	grp.Get("/resources", h.Resources)
}

func respond(c *fiber.Ctx, appErr *engine.AppError) error {
	return c.Status(appErr.Status).JSON(engine.ErrorResponse{Error: appErr})
}
