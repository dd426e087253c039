package engine

import (
	"github.com/gofiber/fiber/v2"

	"mockforge/internal/metadata"
	"mockforge/internal/store"
)

type Handler struct {
	store     *store.Store
	registry  *metadata.Registry
	mutator   *Mutator
	projectPK bool
}

// NewHandler wires the CRUD surface. projectPK controls whether field
// projections force-include the primary key.
func NewHandler(s *store.Store, reg *metadata.Registry, validator ValidatorConfig, projectPK bool) *Handler {
	return &Handler{
		store:     s,
		registry:  reg,
		mutator:   NewMutator(s, reg, validator),
		projectPK: projectPK,
	}
}

// List handles GET /api/:collection
func (h *Handler) List(c *fiber.Ctx) error {
	res, err := h.resolveResource(c)
	if err != nil {
		return err
	}

	opts, appErr := ParseQueryOptions(c, res)
	if appErr != nil {
		return respondError(c, appErr)
	}
	opts.IncludePrimaryKey = h.projectPK

	records := h.store.GetCollection(res.Name)
	records = ApplyFilters(records, opts.Filters)
	total := len(records)
	records = ApplySorting(records, opts.Sorts)

	page, perPage := DefaultPage, DefaultPerPage
	if opts.Page != nil {
		page = *opts.Page
	}
	if opts.PerPage != nil {
		perPage = *opts.PerPage
	}
	records = ApplyPagination(records, page, perPage)

	for _, relName := range opts.Expand {
		if appErr := ExpandRecords(h.store, h.registry, res, records, relName); appErr != nil {
			return respondError(c, appErr)
		}
	}

	if len(opts.Fields) > 0 {
		records = SelectFields(records, opts.Fields, res.PK(), opts.IncludePrimaryKey)
	}

	return c.JSON(fiber.Map{
		"data": records,
		"meta": fiber.Map{
			"page":     page,
			"per_page": perPage,
			"total":    total,
		},
	})
}

// GetByID handles GET /api/:collection/:id
func (h *Handler) GetByID(c *fiber.Ctx) error {
	res, err := h.resolveResource(c)
	if err != nil {
		return err
	}

	id := c.Params("id")
	record, found := h.store.GetRecord(res.Name, res.PK(), id)
	if !found {
		return respondError(c, RecordNotFoundError(res.Name, id))
	}

	opts, appErr := ParseQueryOptions(c, res)
	if appErr != nil {
		return respondError(c, appErr)
	}
	opts.IncludePrimaryKey = h.projectPK

	if len(opts.Expand) > 0 {
		records := []store.Record{record}
		for _, relName := range opts.Expand {
			if appErr := ExpandRecords(h.store, h.registry, res, records, relName); appErr != nil {
				return respondError(c, appErr)
			}
		}
		record = records[0]
	}

	if len(opts.Fields) > 0 {
		record = SelectFields([]store.Record{record}, opts.Fields, res.PK(), opts.IncludePrimaryKey)[0]
	}

	return c.JSON(fiber.Map{"data": record})
}

// Create handles POST /api/:collection
func (h *Handler) Create(c *fiber.Ctx) error {
	res, err := h.resolveResource(c)
	if err != nil {
		return err
	}

	var body map[string]any
	if err := c.BodyParser(&body); err != nil {
		return respondError(c, NewAppError("INVALID_PAYLOAD", 400, "Invalid JSON body"))
	}

	record, appErr := h.mutator.Create(res.Name, body)
	if appErr != nil {
		return respondError(c, appErr)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": record})
}

// Replace handles PUT /api/:collection/:id (full replace, PK preserved).
func (h *Handler) Replace(c *fiber.Ctx) error {
	return h.update(c, false)
}

// Patch handles PATCH /api/:collection/:id (shallow merge).
func (h *Handler) Patch(c *fiber.Ctx) error {
	return h.update(c, true)
}

func (h *Handler) update(c *fiber.Ctx, merge bool) error {
	res, err := h.resolveResource(c)
	if err != nil {
		return err
	}

	var body map[string]any
	if err := c.BodyParser(&body); err != nil {
		return respondError(c, NewAppError("INVALID_PAYLOAD", 400, "Invalid JSON body"))
	}

	id := c.Params("id")
	record, found, appErr := h.mutator.Update(res.Name, id, body, merge)
	if appErr != nil {
		return respondError(c, appErr)
	}
	if !found {
		return respondError(c, RecordNotFoundError(res.Name, id))
	}

	return c.JSON(fiber.Map{"data": record})
}

// Delete handles DELETE /api/:collection/:id. Deleting an absent record is a
// no-op, not an error.
func (h *Handler) Delete(c *fiber.Ctx) error {
	res, err := h.resolveResource(c)
	if err != nil {
		return err
	}

	id := c.Params("id")
	deleted, appErr := h.mutator.Delete(res.Name, id)
	if appErr != nil {
		return respondError(c, appErr)
	}

	return c.JSON(fiber.Map{"data": fiber.Map{"id": id, "deleted": deleted}})
}

// Related handles GET /api/:collection/:id/:relationship
func (h *Handler) Related(c *fiber.Ctx) error {
	res, err := h.resolveResource(c)
	if err != nil {
		return err
	}

	opts, appErr := ParseQueryOptions(c, res)
	if appErr != nil {
		return respondError(c, appErr)
	}
	opts.IncludePrimaryKey = h.projectPK

	id := c.Params("id")
	relName := c.Params("relationship")
	records, appErr := FindRelatedRecords(h.store, h.registry, res, id, relName, opts)
	if appErr != nil {
		return respondError(c, appErr)
	}

	return c.JSON(fiber.Map{"data": records})
}

func (h *Handler) resolveResource(c *fiber.Ctx) (*metadata.Resource, error) {
	name := c.Params("collection")
	res := h.registry.GetResource(name)
	if res == nil {
		return nil, respondError(c, ResourceNotFoundError(name))
	}
	return res, nil
}

func respondError(c *fiber.Ctx, appErr *AppError) error {
	return c.Status(appErr.Status).JSON(ErrorResponse{Error: appErr})
}
