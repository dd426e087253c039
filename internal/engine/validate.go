package engine

import (
	"fmt"
	"regexp"

	"mockforge/internal/metadata"
	"mockforge/internal/store"
)

// ValidatorConfig controls validation behavior. SkipUniqueness disables
// cross-record uniqueness checks; it replaces the original's ambient
// environment-variable gating with an explicit flag.
type ValidatorConfig struct {
	SkipUniqueness bool
}

// ValidateRecord checks a candidate record against the declared fields and the
// existing records of the collection. All violations are collected; callers
// get the complete list, never just the first failure. On update, required
// checks are skipped and the record identified by primaryKey is exempt from
// uniqueness comparison against itself.
func ValidateRecord(cfg ValidatorConfig, record store.Record, fields []metadata.Field, existing []store.Record, primaryKey string, isUpdate bool) []ErrorDetail {
	var errs []ErrorDetail

	for _, field := range fields {
		val, present := record[field.Name]

		if !present || val == nil {
			if field.Required && !isUpdate {
				errs = append(errs, ErrorDetail{
					Field:   field.Name,
					Rule:    "required",
					Message: fmt.Sprintf("%s is required", field.Name),
				})
			}
			// Nothing else to check for an absent value.
			continue
		}

		if detail := checkEnum(field, val); detail != nil {
			errs = append(errs, *detail)
		}
		errs = append(errs, checkRange(field, val)...)
		errs = append(errs, checkText(field, val)...)

		if field.Unique && !cfg.SkipUniqueness {
			if detail := checkUnique(field, val, record, existing, primaryKey, isUpdate); detail != nil {
				errs = append(errs, *detail)
			}
		}
	}

	return errs
}

func checkEnum(field metadata.Field, val any) *ErrorDetail {
	if len(field.Enum) == 0 {
		return nil
	}
	for _, allowed := range field.Enum {
		if equalValues(val, allowed) {
			return nil
		}
	}
	return &ErrorDetail{
		Field:   field.Name,
		Rule:    "enum",
		Message: fmt.Sprintf("%s must be one of %v", field.Name, field.Enum),
	}
}

// checkRange applies min/max to numeric values of numeric-declared fields.
// Values of the wrong runtime type are deliberately not checked here; type
// enforcement is a separate concern upstream.
func checkRange(field metadata.Field, val any) []ErrorDetail {
	if !field.IsNumeric() {
		return nil
	}
	num, ok := toFloat64(val)
	if !ok {
		return nil
	}

	var errs []ErrorDetail
	if field.Min != nil && num < *field.Min {
		errs = append(errs, ErrorDetail{
			Field:   field.Name,
			Rule:    "min",
			Message: fmt.Sprintf("%s must be at least %v", field.Name, *field.Min),
		})
	}
	if field.Max != nil && num > *field.Max {
		errs = append(errs, ErrorDetail{
			Field:   field.Name,
			Rule:    "max",
			Message: fmt.Sprintf("%s must be at most %v", field.Name, *field.Max),
		})
	}
	return errs
}

// checkText applies minLength/maxLength/pattern to string values of
// string-declared fields.
func checkText(field metadata.Field, val any) []ErrorDetail {
	if !field.IsTextual() {
		return nil
	}
	s, ok := val.(string)
	if !ok {
		return nil
	}

	var errs []ErrorDetail
	if field.MinLength != nil && len(s) < *field.MinLength {
		errs = append(errs, ErrorDetail{
			Field:   field.Name,
			Rule:    "minLength",
			Message: fmt.Sprintf("%s must be at least %d characters", field.Name, *field.MinLength),
		})
	}
	if field.MaxLength != nil && len(s) > *field.MaxLength {
		errs = append(errs, ErrorDetail{
			Field:   field.Name,
			Rule:    "maxLength",
			Message: fmt.Sprintf("%s must be at most %d characters", field.Name, *field.MaxLength),
		})
	}
	if field.Pattern != "" {
		matched, err := regexp.MatchString(field.Pattern, s)
		if err != nil || !matched {
			errs = append(errs, ErrorDetail{
				Field:   field.Name,
				Rule:    "pattern",
				Message: fmt.Sprintf("%s does not match pattern %s", field.Name, field.Pattern),
			})
		}
	}
	return errs
}

// checkUnique compares the candidate value against every existing record,
// excluding the record being updated (matched by primary key). An empty
// existing set trivially passes.
func checkUnique(field metadata.Field, val any, record store.Record, existing []store.Record, primaryKey string, isUpdate bool) *ErrorDetail {
	for _, other := range existing {
		if isUpdate && store.KeysEqual(other[primaryKey], record[primaryKey]) {
			continue
		}
		otherVal, ok := other[field.Name]
		if !ok {
			continue
		}
		if equalValues(val, otherVal) {
			return &ErrorDetail{
				Field:   field.Name,
				Rule:    "unique",
				Message: fmt.Sprintf("%s must be unique", field.Name),
			}
		}
	}
	return nil
}
