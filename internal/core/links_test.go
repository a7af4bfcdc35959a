package core

import "testing"

func TestBuildLink(t *testing.T) {
	values, _ := ParseRawQuery("sort=-created_at&filter=status%3DACTIVE&page=2&limit=10")
	lv := NewLinkValues(values)

	const base = "http://127.0.0.1:8080/v1/customers"
	want := base + "?sort=-created_at&filter=status%3DACTIVE&page=2&limit=10"
	if got := BuildLink(base, lv); got != want {
		t.Errorf("BuildLink = %q; want %q", got, want)
	}

	if a, b := BuildLink(base, lv), BuildLink(base, NewLinkValues(values)); a != b {
		t.Errorf("links built from the same state differ: %q vs %q", a, b)
	}

	if got := BuildLink(base, LinkValues{}); got != base {
		t.Errorf("BuildLink with no values = %q; want %q", got, base)
	}
}

func TestLinkValuesSetAndUnset(t *testing.T) {
	values, _ := ParseRawQuery("page=2&limit=10&sort=name")
	lv := NewLinkValues(values)

	moved := lv.Set(ParamPage, "3")
	if got, want := moved.Encode(), "page=3&limit=10&sort=name"; got != want {
		t.Errorf("Set kept position: got %q; want %q", got, want)
	}
	if got, want := lv.Encode(), "page=2&limit=10&sort=name"; got != want {
		t.Errorf("Set must not mutate the receiver: got %q", got)
	}

	if got, want := lv.Unset(ParamLimit).Encode(), "page=2&sort=name"; got != want {
		t.Errorf("Unset: got %q; want %q", got, want)
	}
	if got, want := lv.Unset(ParamLimit).Set(ParamLimit, "5").Encode(), "page=2&limit=5&sort=name"; got != want {
		t.Errorf("Set after Unset keeps position: got %q; want %q", got, want)
	}
	if got, want := lv.Set("fields", "name").Encode(), "page=2&limit=10&sort=name&fields=name"; got != want {
		t.Errorf("Set of a new key appends: got %q; want %q", got, want)
	}
}

func TestPageLink(t *testing.T) {
	values, _ := ParseRawQuery("page=1")
	lv := NewLinkValues(values)

	if link := PageLink("/v1/products", lv, 0, false); link != nil {
		t.Errorf("PageLink for a missing page = %q; want nil", *link)
	}
	link := PageLink("/v1/products", lv, 4, true)
	if link == nil || *link != "/v1/products?page=4" {
		t.Errorf("PageLink = %v; want /v1/products?page=4", link)
	}

	values, _ = ParseRawQuery("sort=name&page=2&limit=5")
	lv = NewLinkValues(values)
	link = PageLink("/v1/products", lv, 3, true)
	if link == nil || *link != "/v1/products?sort=name&page=3&limit=5" {
		t.Errorf("PageLink keeps the page position, got %v", link)
	}
	if link := PageLink("/v1/products", lv, 9, false); link != nil {
		t.Errorf("PageLink with the page unset = %q; want nil", *link)
	}
	if got, want := lv.Encode(), "sort=name&page=2&limit=5"; got != want {
		t.Errorf("PageLink must not mutate its values: got %q", got)
	}
}
