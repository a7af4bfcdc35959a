package core

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestPropertyPaginationArithmetic verifies skip and page count for any page and size.
func TestPropertyPaginationArithmetic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("skip is (page-1)*size and total pages cover every record", prop.ForAll(
		func(page, size int, total int64) bool {
			state := ComputePagination(Page{Present: true, Number: page}, Limit{Present: true, Value: size}, DefaultPageSize).
				WithTotal(total)

			number := page
			if number < 1 {
				number = 1
			}
			if state.PageNumber != number || state.Skip != int64(number-1)*int64(size) {
				return false
			}
			pages := int64(state.TotalPages)
			return pages*int64(size) >= total && (pages-1)*int64(size) < total || (total == 0 && pages == 0)
		},
		gen.IntRange(-5, 500),
		gen.IntRange(1, MaxLimit),
		gen.Int64Range(0, 100000),
	))

	properties.TestingRun(t)
}

// TestPropertyPageLinksStayInRange verifies prev/next exist only for pages in [1, totalPages].
func TestPropertyPageLinksStayInRange(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("neighbour links match the page range", prop.ForAll(
		func(page, size int, total int64) bool {
			values, err := ParseRawQuery(fmt.Sprintf("page=%d&limit=%d", page, size))
			if err != nil {
				return false
			}
			req := &RequestContext{BaseURL: "http://h", Path: "/v1/products", Query: values}
			state := ComputePagination(Page{Present: true, Number: page}, Limit{Present: true, Value: size}, DefaultPageSize).
				WithTotal(total)

			env := RenderMany(nil, nil, "id", req)
			AddPagination(env, req, state)

			if state.TotalPages <= 1 {
				return env.Links.First == nil && env.Links.Last == nil && env.Links.Prev == nil && env.Links.Next == nil
			}
			wantPrev := page-1 >= 1 && page-1 <= state.TotalPages
			wantNext := page+1 >= 1 && page+1 <= state.TotalPages
			return env.Links.First != nil && env.Links.Last != nil &&
				(env.Links.Prev != nil) == wantPrev && (env.Links.Next != nil) == wantNext
		},
		gen.IntRange(1, 60),
		gen.IntRange(1, 50),
		gen.Int64Range(0, 2000),
	))

	properties.TestingRun(t)
}

// TestPropertyLinkRoundTrip verifies a built link parses back to the same directives.
func TestPropertyLinkRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	field := gen.OneConstOf("first_name", "last_name", "email", "username", "status")
	value := gen.OneConstOf("ACTIVE", "a b", "x&y", "50%", "é", "1,5")

	properties.Property("fields, filter and sort survive BuildLink", prop.ForAll(
		func(fields []string, filterField, filterValue string, sortField string, desc bool, page int) bool {
			if strings.Contains(filterValue, ",") {
				// commas separate filter terms
				return true
			}
			sort := sortField
			if desc {
				sort = "-" + sortField
			}
			q := fmt.Sprintf("fields=%s&filter=%s&sort=%s&page=%d",
				url.QueryEscape(strings.Join(fields, ",")),
				url.QueryEscape(filterField+"="+filterValue),
				url.QueryEscape(sort),
				page)

			values, err := ParseRawQuery(q)
			if err != nil {
				return false
			}
			before, err := ParseQuery(values)
			if err != nil {
				return false
			}

			link := BuildLink("http://h/v1/customers", NewLinkValues(values).Set(ParamPage, "1"))
			_, rawQuery, _ := strings.Cut(link, "?")
			reparsed, err := ParseRawQuery(rawQuery)
			if err != nil {
				return false
			}
			after, err := ParseQuery(reparsed)
			if err != nil {
				return false
			}

			return reflect.DeepEqual(before.Fields, after.Fields) &&
				reflect.DeepEqual(before.Filters, after.Filters) &&
				reflect.DeepEqual(before.Sort, after.Sort) &&
				after.Page.Number == 1
		},
		gen.SliceOfN(3, field),
		field,
		value,
		field,
		gen.Bool(),
		gen.IntRange(1, 100),
	))

	properties.TestingRun(t)
}

// TestPropertyUnknownKeyRejected verifies any key outside the five directives fails validation.
func TestPropertyUnknownKeyRejected(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("unknown keys always yield ErrInvalidQuery", prop.ForAll(
		func(key string) bool {
			if queryKeys[key] {
				return true
			}
			values, err := ParseRawQuery("fields=email&" + url.QueryEscape(key) + "=1")
			if err != nil {
				return false
			}
			_, err = PrepareQuery(values, customerAllow)
			return errors.Is(err, ErrInvalidQuery)
		},
		gen.Identifier(),
	))

	properties.TestingRun(t)
}
