// internal/core/validation.go
package core

import (
	"regexp"
	"strings"
)

// Regular expression for valid collection/field names (alphanumeric + underscore)
var nameValidationRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// queryKeys are the only top-level keys a list or get request may carry.
var queryKeys = map[string]bool{
	ParamFields: true,
	ParamFilter: true,
	ParamSort:   true,
	ParamPage:   true,
	ParamLimit:  true,
}

// IsValidIdentifier checks if a string is a valid identifier (e.g., collection or field name)
// Applies basic format and length checks.
func IsValidIdentifier(name string) bool {
	return nameValidationRegex.MatchString(name) && len(name) > 0 && len(name) <= 64
}

// IsValidFieldPath accepts dotted paths into nested documents, e.g. role.is_customer.
func IsValidFieldPath(path string) bool {
	if path == "" {
		return false
	}
	for _, part := range strings.Split(path, ".") {
		if !IsValidIdentifier(part) {
			return false
		}
	}
	return true
}

// AllowList is the per-resource whitelist for each query role.
type AllowList struct {
	Fields  []string
	Filters []string
	Sorts   []string
}

// ValidateKeys rejects any top-level key outside fields/filter/sort/page/limit.
func ValidateKeys(values QueryValues) error {
	for _, key := range values.Keys() {
		if !queryKeys[key] {
			return &QueryError{Key: key, Err: ErrInvalidQuery}
		}
	}
	return nil
}

// ValidateDirectives checks every projection field, filter key and sort field
// against its allow-list. A single violation rejects the whole directive set.
func ValidateDirectives(d QueryDirectives, allow AllowList) error {
	for _, field := range d.Fields {
		if !contains(allow.Fields, field) {
			return &QueryError{Key: ParamFields, Value: field, Err: ErrInvalidQuery}
		}
	}
	for _, term := range d.Filters {
		if !contains(allow.Filters, term.Field) {
			return &QueryError{Key: ParamFilter, Value: term.Field, Err: ErrInvalidQuery}
		}
	}
	for _, key := range d.Sort {
		if !contains(allow.Sorts, key.Field) {
			return &QueryError{Key: ParamSort, Value: key.Field, Err: ErrInvalidQuery}
		}
	}
	return nil
}

// PrepareQuery runs key validation, parsing and allow-list validation in order.
func PrepareQuery(values QueryValues, allow AllowList) (QueryDirectives, error) {
	if err := ValidateKeys(values); err != nil {
		return QueryDirectives{}, err
	}
	d, err := ParseQuery(values)
	if err != nil {
		return QueryDirectives{}, err
	}
	if err := ValidateDirectives(d, allow); err != nil {
		return QueryDirectives{}, err
	}
	return d, nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
