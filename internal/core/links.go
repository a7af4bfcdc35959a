package core

import (
	"net/url"
	"strconv"
	"strings"
)

type linkEntry struct {
	key     string
	values  []string
	present bool
}

// LinkValues is an ordered key→value map where a key may be present but unset.
// Unset keys keep their position and are left out of the serialized query.
type LinkValues struct {
	entries []linkEntry
}

// NewLinkValues copies the query values, preserving their order.
func NewLinkValues(q QueryValues) LinkValues {
	lv := LinkValues{entries: make([]linkEntry, 0, len(q))}
	for _, p := range q {
		lv.entries = append(lv.entries, linkEntry{key: p.Key, values: p.Value.Strings(), present: true})
	}
	return lv
}

// Set replaces the value of key, appending it when new.
func (lv LinkValues) Set(key, value string) LinkValues {
	out := lv.clone()
	for i := range out.entries {
		if out.entries[i].key == key {
			out.entries[i].values = []string{value}
			out.entries[i].present = true
			return out
		}
	}
	out.entries = append(out.entries, linkEntry{key: key, values: []string{value}, present: true})
	return out
}

// Unset marks key as absent.
func (lv LinkValues) Unset(key string) LinkValues {
	out := lv.clone()
	for i := range out.entries {
		if out.entries[i].key == key {
			out.entries[i].values = nil
			out.entries[i].present = false
		}
	}
	return out
}

// Encode serializes the present keys as key=value pairs joined with '&'.
func (lv LinkValues) Encode() string {
	var b strings.Builder
	for _, e := range lv.entries {
		if !e.present {
			continue
		}
		for _, v := range e.values {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(e.key))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
	}
	return b.String()
}

func (lv LinkValues) present(key string) bool {
	for _, e := range lv.entries {
		if e.key == key {
			return e.present
		}
	}
	return false
}

func (lv LinkValues) clone() LinkValues {
	out := LinkValues{entries: make([]linkEntry, len(lv.entries))}
	for i, e := range lv.entries {
		out.entries[i] = linkEntry{key: e.key, values: append([]string(nil), e.values...), present: e.present}
	}
	return out
}

// BuildLink appends the serialized values to basePath.
func BuildLink(basePath string, values LinkValues) string {
	query := values.Encode()
	if query == "" {
		return basePath
	}
	return basePath + "?" + query
}

// PageLink builds the link to page number n. A page that does not exist is
// unset, and a link whose page is unset is absent (nil).
func PageLink(basePath string, values LinkValues, n int, exists bool) *string {
	target := values.Unset(ParamPage)
	if exists {
		target = target.Set(ParamPage, strconv.Itoa(n))
	}
	if !target.present(ParamPage) {
		return nil
	}
	link := BuildLink(basePath, target)
	return &link
}
