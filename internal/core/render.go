package core

import (
	"fmt"
	"net/url"
	"strings"
)

// Document is one record as returned by a store.
type Document map[string]any

// VolatileKeys are store bookkeeping fields that never reach a response.
var VolatileKeys = []string{"__v"}

// LinksKey is the key under which per-document links are attached.
const LinksKey = "links"

// Links holds the hyperlinks of a response. Absent links are nil.
type Links struct {
	Self  string  `json:"self"`
	First *string `json:"first,omitempty"`
	Last  *string `json:"last,omitempty"`
	Prev  *string `json:"prev,omitempty"`
	Next  *string `json:"next,omitempty"`
}

// Meta describes a collection response.
type Meta struct {
	TotalRecords int64 `json:"total_records"`
	TotalPages   *int  `json:"total_pages,omitempty"`
}

// Envelope is the response body for both single documents and collections.
type Envelope struct {
	Data  any    `json:"data"`
	Meta  *Meta  `json:"meta,omitempty"`
	Links *Links `json:"links,omitempty"`
}

// RequestContext carries what the renderer needs to build hyperlinks.
type RequestContext struct {
	BaseURL string // scheme://host prefix, without trailing slash
	Path    string
	Query   QueryValues
}

// BasePath is the absolute URL of the request without its query string.
func (r *RequestContext) BasePath() string {
	return r.BaseURL + r.Path
}

// SelfLink rebuilds the request URL from its ordered query values.
func (r *RequestContext) SelfLink() string {
	return BuildLink(r.BasePath(), NewLinkValues(r.Query))
}

// RenderOne strips volatile and undesired keys from doc and wraps a copy of
// it in an envelope. A nil doc yields {"data": {}}.
func RenderOne(doc Document, undesired []string, req *RequestContext) *Envelope {
	if doc == nil {
		return &Envelope{Data: Document{}}
	}

	data := strip(doc, undesired)
	if req != nil {
		data[LinksKey] = Links{Self: req.SelfLink()}
	}
	return &Envelope{Data: data}
}

// RenderMany renders each document like RenderOne and attaches an item link
// built from the collection path and the document's idField.
// meta.total_records is the number of documents rendered; AddPagination
// replaces it with the store count for paginated requests.
func RenderMany(docs []Document, undesired []string, idField string, req *RequestContext) *Envelope {
	items := make([]Document, 0, len(docs))
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		item := strip(doc, undesired)
		if req != nil {
			if id, ok := doc[idField]; ok && id != nil {
				item[LinksKey] = Links{Self: itemLink(req.BasePath(), id)}
			}
		}
		items = append(items, item)
	}

	env := &Envelope{
		Data: items,
		Meta: &Meta{TotalRecords: int64(len(items))},
	}
	if req != nil {
		env.Links = &Links{Self: req.SelfLink()}
	}
	return env
}

// AddPagination records the authoritative totals and, when there is more
// than one page, the first/last/prev/next links.
func AddPagination(env *Envelope, req *RequestContext, state PaginationState) {
	if env == nil || !state.HasPagination {
		return
	}
	totalPages := state.TotalPages
	env.Meta = &Meta{TotalRecords: state.TotalRecords, TotalPages: &totalPages}

	if req == nil {
		return
	}
	if env.Links == nil {
		env.Links = &Links{Self: req.SelfLink()}
	}
	if totalPages <= 1 {
		return
	}

	base := req.BasePath()
	values := NewLinkValues(req.Query)
	current := state.PageNumber
	prev, next := current-1, current+1

	env.Links.First = PageLink(base, values, 1, true)
	env.Links.Last = PageLink(base, values, totalPages, true)
	env.Links.Prev = PageLink(base, values, prev, prev >= 1 && prev <= totalPages)
	env.Links.Next = PageLink(base, values, next, next >= 1 && next <= totalPages)
}

func itemLink(base string, id any) string {
	return strings.TrimRight(base, "/") + "/" + url.PathEscape(fmt.Sprint(id))
}

// strip returns a deep copy of doc without volatile and undesired keys.
func strip(doc Document, undesired []string) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		if contains(VolatileKeys, k) || contains(undesired, k) {
			continue
		}
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Document:
		out := make(Document, len(t))
		for k, inner := range t {
			out[k] = cloneValue(inner)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, inner := range t {
			out[k] = cloneValue(inner)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, inner := range t {
			out[i] = cloneValue(inner)
		}
		return out
	case []string:
		out := make([]string, len(t))
		copy(out, t)
		return out
	default:
		return v
	}
}
