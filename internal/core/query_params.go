// internal/core/query_params.go
package core

import (
	"net/url"
	"strconv"
	"strings"
)

// Query-string keys understood by the list engine. Any other key is rejected.
const (
	ParamFields = "fields"
	ParamFilter = "filter"
	ParamSort   = "sort"
	ParamPage   = "page"
	ParamLimit  = "limit"
)

// Pagination bounds.
const (
	DefaultPageSize = 20
	MaxLimit        = 1000
)

// QueryValue is the raw value of one query-string key: a single scalar, or a
// list when the key was repeated (filter=a=1&filter=b=2).
type QueryValue struct {
	values []string
	list   bool
}

// Scalar builds a single-valued QueryValue.
func Scalar(v string) QueryValue {
	return QueryValue{values: []string{v}}
}

// List builds a multi-valued QueryValue.
func List(vs ...string) QueryValue {
	return QueryValue{values: append([]string(nil), vs...), list: true}
}

// Scalar returns the value when it is not a list.
func (v QueryValue) Scalar() (string, bool) {
	if v.list || len(v.values) != 1 {
		return "", false
	}
	return v.values[0], true
}

// Strings returns every raw value, in the order they appeared.
func (v QueryValue) Strings() []string {
	return append([]string(nil), v.values...)
}

func (v QueryValue) appendValue(s string) QueryValue {
	return QueryValue{values: append(v.Strings(), s), list: true}
}

// QueryParam is one key of the query string with its value.
type QueryParam struct {
	Key   string
	Value QueryValue
}

// QueryValues is the query string as an ordered list of keys. Order is the
// first appearance of each key, so links rebuilt from it are deterministic.
type QueryValues []QueryParam

// ParseRawQuery splits a raw (still escaped) query string into QueryValues.
func ParseRawQuery(raw string) (QueryValues, error) {
	var values QueryValues
	for _, segment := range strings.Split(raw, "&") {
		if segment == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(segment, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return nil, &QueryError{Key: rawKey, Err: ErrInvalidQuery}
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return nil, &QueryError{Key: key, Value: rawValue, Err: ErrInvalidQuery}
		}
		values = values.add(key, value)
	}
	return values, nil
}

func (q QueryValues) add(key, value string) QueryValues {
	for i := range q {
		if q[i].Key == key {
			q[i].Value = q[i].Value.appendValue(value)
			return q
		}
	}
	return append(q, QueryParam{Key: key, Value: Scalar(value)})
}

// Get returns the value stored under key.
func (q QueryValues) Get(key string) (QueryValue, bool) {
	for _, p := range q {
		if p.Key == key {
			return p.Value, true
		}
	}
	return QueryValue{}, false
}

// Keys returns the keys in query order.
func (q QueryValues) Keys() []string {
	keys := make([]string, 0, len(q))
	for _, p := range q {
		keys = append(keys, p.Key)
	}
	return keys
}

// SortDirection is +1 for ascending and -1 for descending, as document stores expect.
type SortDirection int

const (
	Ascending  SortDirection = 1
	Descending SortDirection = -1
)

// SortKey orders results by one field.
type SortKey struct {
	Field     string
	Direction SortDirection
}

// FilterTerm is an equality condition on one field.
type FilterTerm struct {
	Field string
	Value any
}

// Filter is an ordered set of equality terms; a field appears at most once.
type Filter []FilterTerm

// Set stores value under field, overwriting an existing term in place.
func (f Filter) Set(field string, value any) Filter {
	out := append(Filter(nil), f...)
	for i := range out {
		if out[i].Field == field {
			out[i].Value = value
			return out
		}
	}
	return append(out, FilterTerm{Field: field, Value: value})
}

// Merge layers other on top of f; terms of other win on conflicts.
func (f Filter) Merge(other Filter) Filter {
	out := append(Filter(nil), f...)
	for _, t := range other {
		out = out.Set(t.Field, t.Value)
	}
	return out
}

// Limit is the parsed `limit` key.
type Limit struct {
	Present bool
	Value   int
}

// Page is the parsed `page` key.
type Page struct {
	Present bool
	Number  int
}

// QueryDirectives is the structured intent of a query string.
type QueryDirectives struct {
	Fields  []string // projection, empty means all fields
	Filters Filter   // string values, never coerced
	Sort    []SortKey
	Limit   Limit
	Page    Page
}

// ParseQuery turns query values into directives. Unknown keys are ignored
// here; ValidateKeys rejects them.
func ParseQuery(values QueryValues) (QueryDirectives, error) {
	var d QueryDirectives

	for _, p := range values {
		switch p.Key {
		case ParamFields:
			for _, token := range tokens(p.Value) {
				d.Fields = appendUnique(d.Fields, token)
			}

		case ParamFilter:
			for _, token := range tokens(p.Value) {
				key, value, found := strings.Cut(token, "=")
				key = strings.TrimSpace(key)
				if !found || key == "" {
					return QueryDirectives{}, &QueryError{Key: ParamFilter, Value: token, Err: ErrInvalidQuery}
				}
				d.Filters = d.Filters.Set(key, value)
			}

		case ParamSort:
			for _, token := range tokens(p.Value) {
				key := SortKey{Field: token, Direction: Ascending}
				if strings.HasPrefix(token, "-") {
					key = SortKey{Field: strings.TrimSpace(token[1:]), Direction: Descending}
				}
				if key.Field == "" {
					return QueryDirectives{}, &QueryError{Key: ParamSort, Value: token, Err: ErrInvalidQuery}
				}
				d.Sort = setSortKey(d.Sort, key)
			}

		case ParamLimit:
			n, err := pagingInt(ParamLimit, p.Value)
			if err != nil {
				return QueryDirectives{}, err
			}
			if n < 1 || n > MaxLimit {
				return QueryDirectives{}, &QueryError{Key: ParamLimit, Value: strconv.Itoa(n), Err: ErrInvalidQuery}
			}
			d.Limit = Limit{Present: true, Value: n}

		case ParamPage:
			n, err := pagingInt(ParamPage, p.Value)
			if err != nil {
				return QueryDirectives{}, err
			}
			d.Page = Page{Present: true, Number: n}
		}
	}

	return d, nil
}

// tokens flattens a value into its comma-separated, non-empty parts.
func tokens(v QueryValue) []string {
	var out []string
	for _, raw := range v.Strings() {
		for _, token := range strings.Split(raw, ",") {
			if token = strings.TrimSpace(token); token != "" {
				out = append(out, token)
			}
		}
	}
	return out
}

func pagingInt(key string, v QueryValue) (int, error) {
	raw, ok := v.Scalar()
	if !ok {
		return 0, &QueryError{Key: key, Value: strings.Join(v.Strings(), ","), Err: ErrInvalidQuery}
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, &QueryError{Key: key, Value: raw, Err: ErrNonNumericPagingValue}
	}
	return n, nil
}

func appendUnique(list []string, s string) []string {
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}

func setSortKey(keys []SortKey, key SortKey) []SortKey {
	for i := range keys {
		if keys[i].Field == key.Field {
			keys[i].Direction = key.Direction
			return keys
		}
	}
	return append(keys, key)
}
