package engine

import "fmt"

type AppError struct {
	Code    string        `json:"code"`
	Status  int           `json:"-"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}

type ErrorDetail struct {
	Field   string `json:"field,omitempty"`
	Rule    string `json:"rule,omitempty"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

type ErrorResponse struct {
	Error *AppError `json:"error"`
}

func NewAppError(code string, status int, msg string) *AppError {
	return &AppError{Code: code, Status: status, Message: msg}
}

func ResourceNotFoundError(name string) *AppError {
	return &AppError{
		Code:    "RESOURCE_NOT_FOUND",
		Status:  404,
		Message: fmt.Sprintf("Unknown resource: %s", name),
	}
}

func RecordNotFoundError(collection string, id any) *AppError {
	return &AppError{
		Code:    "RECORD_NOT_FOUND",
		Status:  404,
		Message: fmt.Sprintf("%s with id %v not found", collection, id),
	}
}

func RelationshipNotFoundError(collection, name string) *AppError {
	return &AppError{
		Code:    "RELATIONSHIP_NOT_FOUND",
		Status:  404,
		Message: fmt.Sprintf("Relationship %s not defined for %s", name, collection),
	}
}

func MissingThroughError(name string) *AppError {
	return &AppError{
		Code:    "MISSING_THROUGH_COLLECTION",
		Status:  400,
		Message: fmt.Sprintf("manyToMany relationship %s has no through collection", name),
	}
}

func UnsupportedRelationshipTypeError(relType string) *AppError {
	return &AppError{
		Code:    "UNSUPPORTED_RELATIONSHIP_TYPE",
		Status:  400,
		Message: fmt.Sprintf("Unsupported relationship type: %s", relType),
	}
}

func ValidationError(details []ErrorDetail) *AppError {
	return &AppError{
		Code:    "VALIDATION_FAILED",
		Status:  422,
		Message: "Validation failed",
		Details: details,
	}
}

func UnauthorizedError(msg string) *AppError {
	return &AppError{Code: "UNAUTHORIZED", Status: 401, Message: msg}
}

func ForbiddenError(msg string) *AppError {
	return &AppError{Code: "FORBIDDEN", Status: 403, Message: msg}
}
