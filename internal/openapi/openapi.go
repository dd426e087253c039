// Package openapi derives an OpenAPI 3 document from the registered resource
// specs, so clients of the mock can generate typed SDKs against it.
package openapi

import (
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"

	"mockforge/internal/metadata"
)

// Build assembles the OpenAPI document for all registered resources.
func Build(reg *metadata.Registry) *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   "mockforge",
			Version: "1.0.0",
		},
		Paths: openapi3.NewPaths(),
		Components: &openapi3.Components{
			Schemas: openapi3.Schemas{},
		},
	}

	for _, res := range reg.AllResources() {
		schema := resourceSchema(res)
		doc.Components.Schemas[res.Name] = openapi3.NewSchemaRef("", schema)
		ref := openapi3.NewSchemaRef(fmt.Sprintf("#/components/schemas/%s", res.Name), nil)

		collectionPath := fmt.Sprintf("/api/%s", res.Name)
		itemPath := fmt.Sprintf("/api/%s/{id}", res.Name)

		doc.Paths.Set(collectionPath, &openapi3.PathItem{
			Get:  listOperation(res, ref),
			Post: createOperation(res, ref),
		})
		doc.Paths.Set(itemPath, &openapi3.PathItem{
			Parameters: openapi3.Parameters{idParameter(res)},
			Get:        itemOperation(res, ref, "get", fmt.Sprintf("Fetch one %s record", res.Name)),
			Put:        itemOperation(res, ref, "replace", fmt.Sprintf("Replace one %s record", res.Name)),
			Patch:      itemOperation(res, ref, "update", fmt.Sprintf("Merge fields into one %s record", res.Name)),
			Delete:     deleteOperation(res),
		})
	}

	return doc
}

func resourceSchema(res *metadata.Resource) *openapi3.Schema {
	schema := openapi3.NewObjectSchema()
	var required []string
	for _, f := range res.Fields {
		schema.WithProperty(f.Name, fieldSchema(f))
		if f.Required {
			required = append(required, f.Name)
		}
	}
	schema.Required = required
	return schema
}

func fieldSchema(f metadata.Field) *openapi3.Schema {
	var schema *openapi3.Schema
	switch f.Type {
	case metadata.TypeNumber:
		schema = openapi3.NewFloat64Schema()
		schema.Min = f.Min
		schema.Max = f.Max
	case metadata.TypeBoolean:
		schema = openapi3.NewBoolSchema()
	case metadata.TypeArray:
		schema = openapi3.NewArraySchema()
	case metadata.TypeObject:
		schema = openapi3.NewObjectSchema()
	case metadata.TypeDate:
		schema = openapi3.NewStringSchema().WithFormat("date-time")
	case metadata.TypeUUID:
		schema = openapi3.NewStringSchema().WithFormat("uuid")
	default:
		schema = openapi3.NewStringSchema()
		if f.MinLength != nil {
			schema.MinLength = uint64(*f.MinLength)
		}
		if f.MaxLength != nil {
			ml := uint64(*f.MaxLength)
			schema.MaxLength = &ml
		}
		schema.Pattern = f.Pattern
	}
	if len(f.Enum) > 0 {
		schema.Enum = f.Enum
	}
	return schema
}

func listOperation(res *metadata.Resource, ref *openapi3.SchemaRef) *openapi3.Operation {
	listSchema := openapi3.NewArraySchema()
	listSchema.Items = ref

	responses := openapi3.NewResponses()
	responses.Set("200", &openapi3.ResponseRef{
		Value: openapi3.NewResponse().
			WithDescription("Collection page").
			WithJSONSchema(envelope(listSchema)),
	})

	return &openapi3.Operation{
		OperationID: fmt.Sprintf("list_%s", res.Name),
		Summary:     fmt.Sprintf("List %s records", res.Name),
		Parameters: openapi3.Parameters{
			queryParameter("sort", openapi3.NewStringSchema()),
			queryParameter("page", openapi3.NewIntegerSchema()),
			queryParameter("per_page", openapi3.NewIntegerSchema()),
			queryParameter("fields", openapi3.NewStringSchema()),
			queryParameter("expand", openapi3.NewStringSchema()),
		},
		Responses: responses,
	}
}

func createOperation(res *metadata.Resource, ref *openapi3.SchemaRef) *openapi3.Operation {
	responses := openapi3.NewResponses()
	responses.Set("201", &openapi3.ResponseRef{
		Value: openapi3.NewResponse().
			WithDescription("Created record").
			WithJSONSchemaRef(ref),
	})
	responses.Set("422", &openapi3.ResponseRef{
		Value: openapi3.NewResponse().WithDescription("Validation failed"),
	})

	return &openapi3.Operation{
		OperationID: fmt.Sprintf("create_%s", res.Name),
		Summary:     fmt.Sprintf("Create a %s record", res.Name),
		RequestBody: &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().WithJSONSchemaRef(ref),
		},
		Responses: responses,
	}
}

func itemOperation(res *metadata.Resource, ref *openapi3.SchemaRef, verb, summary string) *openapi3.Operation {
	responses := openapi3.NewResponses()
	responses.Set("200", &openapi3.ResponseRef{
		Value: openapi3.NewResponse().
			WithDescription("Record").
			WithJSONSchemaRef(ref),
	})
	responses.Set("404", &openapi3.ResponseRef{
		Value: openapi3.NewResponse().WithDescription("Record not found"),
	})

	op := &openapi3.Operation{
		OperationID: fmt.Sprintf("%s_%s", verb, res.Name),
		Summary:     summary,
		Responses:   responses,
	}
	if verb != "get" {
		op.RequestBody = &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().WithJSONSchemaRef(ref),
		}
	}
	return op
}

func deleteOperation(res *metadata.Resource) *openapi3.Operation {
	responses := openapi3.NewResponses()
	responses.Set("200", &openapi3.ResponseRef{
		Value: openapi3.NewResponse().WithDescription("Deletion outcome"),
	})

	return &openapi3.Operation{
		OperationID: fmt.Sprintf("delete_%s", res.Name),
		Summary:     fmt.Sprintf("Delete one %s record", res.Name),
		Responses:   responses,
	}
}

func idParameter(res *metadata.Resource) *openapi3.ParameterRef {
	return &openapi3.ParameterRef{
		Value: openapi3.NewPathParameter("id").WithSchema(openapi3.NewStringSchema()),
	}
}

func queryParameter(name string, schema *openapi3.Schema) *openapi3.ParameterRef {
	return &openapi3.ParameterRef{
		Value: openapi3.NewQueryParameter(name).WithSchema(schema),
	}
}

// envelope wraps a payload schema in the {data, meta} response shape.
func envelope(data *openapi3.Schema) *openapi3.Schema {
	meta := openapi3.NewObjectSchema().
		WithProperty("page", openapi3.NewIntegerSchema()).
		WithProperty("per_page", openapi3.NewIntegerSchema()).
		WithProperty("total", openapi3.NewIntegerSchema())

	return openapi3.NewObjectSchema().
		WithProperty("data", data).
		WithProperty("meta", meta)
}
