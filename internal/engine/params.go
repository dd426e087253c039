package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"mockforge/internal/metadata"
)

// MaxPerPage caps the page size accepted from the wire.
const MaxPerPage = 100

var knownOperators = map[string]bool{
	"eq": true, "ne": true,
	"gt": true, "gte": true, "lt": true, "lte": true,
	"in": true, "startsWith": true, "endsWith": true, "contains": true,
}

// ParseQueryOptions builds a QueryOptions from request query parameters:
// filter[field]=v, filter[field.op]=v, sort=-field,other, page, per_page,
// fields=a,b, expand=rel1,rel2. The route layer owns this wire encoding; the
// engine only ever sees the resulting typed options.
func ParseQueryOptions(c *fiber.Ctx, res *metadata.Resource) (*QueryOptions, *AppError) {
	opts := &QueryOptions{}

	for key, val := range c.Queries() {
		if !strings.HasPrefix(key, "filter[") || !strings.HasSuffix(key, "]") {
			continue
		}
		field, op := parseFilterKey(key[7 : len(key)-1])
		if !knownOperators[op] {
			return nil, NewAppError("INVALID_PAYLOAD", 400,
				fmt.Sprintf("Unknown filter operator: %s", op))
		}
		opts.Filters = append(opts.Filters, Filter{
			Field:    field,
			Operator: op,
			Value:    coerceFilterValue(res.GetField(field), val, op),
		})
	}

	if sortParam := c.Query("sort"); sortParam != "" {
		for _, part := range splitAndTrim(sortParam) {
			dir := "asc"
			field := part
			if strings.HasPrefix(part, "-") {
				dir = "desc"
				field = part[1:]
			}
			opts.Sorts = append(opts.Sorts, SortClause{Field: field, Dir: dir})
		}
	}

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			opts.Page = &v
		}
	}
	if pp := c.Query("per_page"); pp != "" {
		if v, err := strconv.Atoi(pp); err == nil {
			if v > MaxPerPage {
				v = MaxPerPage
			}
			opts.PerPage = &v
		}
	}

	if f := c.Query("fields"); f != "" {
		opts.Fields = splitAndTrim(f)
	}

	if inc := c.Query("expand"); inc != "" {
		opts.Expand = splitAndTrim(inc)
	}

	return opts, nil
}

// parseFilterKey splits "price.gte" into ("price", "gte") and "status" into
// ("status", "eq").
func parseFilterKey(key string) (string, string) {
	parts := strings.SplitN(key, ".", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return key, "eq"
}

// coerceFilterValue converts a raw query value into the type the filter
// should compare with. Declared fields coerce by their declared type;
// undeclared fields fall back to a best-effort guess so filtering on
// pass-through fields still works.
func coerceFilterValue(field *metadata.Field, val string, op string) any {
	if op == "in" {
		parts := splitAndTrim(val)
		coerced := make([]any, len(parts))
		for i, p := range parts {
			coerced[i] = coerceSingleValue(field, p)
		}
		return coerced
	}
	return coerceSingleValue(field, val)
}

func coerceSingleValue(field *metadata.Field, val string) any {
	if field != nil {
		switch field.Type {
		case metadata.TypeNumber:
			if f, err := strconv.ParseFloat(val, 64); err == nil {
				return f
			}
			return val
		case metadata.TypeBoolean:
			if b, err := strconv.ParseBool(val); err == nil {
				return b
			}
			return val
		default:
			return val
		}
	}

	// Undeclared field: guess.
	if f, err := strconv.ParseFloat(val, 64); err == nil {
		return f
	}
	if val == "true" || val == "false" {
		return val == "true"
	}
	return val
}

func splitAndTrim(s string) []string {
	var parts []string
	for _, p := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
