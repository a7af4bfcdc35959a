// internal/domain/models.go
package domain

import "github.com/Annany2002/arteesan-backend/internal/core"

// Collection names in the document store.
const (
	CollectionUsers    = "users"
	CollectionProducts = "products"
	CollectionCarts    = "carts"
	CollectionKarts    = "karts"
)

// IDField is the identifier key every rendered document carries.
const IDField = "id"

// Status values stamped on new documents.
const (
	StatusActive  = "ACTIVE"
	StatusReady   = "READY"
	StatusNeutral = "NEUTRAL"
)

// Role flags on user documents.
const (
	RoleIsAdmin    = "role.is_admin"
	RoleIsCustomer = "role.is_customer"
	RoleIsDesigner = "role.is_designer"
)

// Resource describes one REST collection: where it lives, what a client may
// ask for and what never leaves the server.
type Resource struct {
	Name       string // URL segment, e.g. "customers"
	Collection string
	IDField    string

	// BaseFilter is applied to every read and write. Customers and designers
	// share the users collection and are told apart by role.
	BaseFilter core.Filter
	// DeleteFilter is added on delete only.
	DeleteFilter core.Filter

	Allow     core.AllowList
	Patchable []string
	// UniqueField, when set, must not repeat anywhere in Collection on create.
	// BaseFilter is not applied, so customers and designers share usernames.
	UniqueField string
	Undesired   []string
}

// Path is the collection route, e.g. /v1/customers.
func (r Resource) Path() string {
	return "/v1/" + r.Name
}

var userFields = []string{"created_at", "first_name", "last_name", "birthdate", "picture", "email", "username", "status", "favorites", "role"}

var userFilters = []string{"created_at", "first_name", "last_name", "birthdate", "picture", "email", "username", "status"}

var userSorts = []string{"created_at", "first_name", "last_name", "birthdate", "email", "username", "status"}

var userPatchable = []string{"first_name", "last_name", "birthdate", "picture", "email", "status", "favorites"}

// Customers are users with role.is_customer set.
var Customers = Resource{
	Name:       "customers",
	Collection: CollectionUsers,
	IDField:    IDField,
	BaseFilter: core.Filter{{Field: RoleIsCustomer, Value: true}},
	DeleteFilter: core.Filter{
		{Field: RoleIsAdmin, Value: false},
		{Field: RoleIsDesigner, Value: false},
	},
	Allow: core.AllowList{
		Fields:  userFields,
		Filters: userFilters,
		Sorts:   userSorts,
	},
	Patchable:   userPatchable,
	UniqueField: "username",
	Undesired:   []string{"password"},
}

// Designers are users with role.is_designer set. They also expose followers.
var Designers = Resource{
	Name:         "designers",
	Collection:   CollectionUsers,
	IDField:      IDField,
	BaseFilter:   core.Filter{{Field: RoleIsDesigner, Value: true}},
	DeleteFilter: core.Filter{{Field: RoleIsAdmin, Value: false}},
	Allow: core.AllowList{
		Fields:  append(append([]string(nil), userFields...), "followers"),
		Filters: userFilters,
		Sorts:   userSorts,
	},
	Patchable:   append(append([]string(nil), userPatchable...), "followers"),
	UniqueField: "username",
	Undesired:   []string{"password"},
}

var Products = Resource{
	Name:       "products",
	Collection: CollectionProducts,
	IDField:    IDField,
	Allow: core.AllowList{
		Fields:  []string{"created_at", "name", "price", "description", "status", "available", "tags", "favorites", "purchases", "shares", "designer", "galery"},
		Filters: []string{"name", "price", "status", "available", "designer", "tags"},
		Sorts:   []string{"created_at", "name", "price", "favorites", "purchases", "shares"},
	},
	Patchable: []string{"name", "price", "description", "status", "available", "tags", "favorites", "purchases", "shares", "galery"},
}

var Carts = Resource{
	Name:       "carts",
	Collection: CollectionCarts,
	IDField:    IDField,
	Allow:      orderAllow,
	Patchable:  []string{"products", "status"},
}

var Karts = Resource{
	Name:       "karts",
	Collection: CollectionKarts,
	IDField:    IDField,
	Allow:      orderAllow,
	Patchable:  []string{"products", "status"},
}

var orderAllow = core.AllowList{
	Fields:  []string{"created_at", "owner", "products", "status"},
	Filters: []string{"owner", "status"},
	Sorts:   []string{"created_at", "status"},
}

// Resources lists every exposed resource in route order.
func Resources() []Resource {
	return []Resource{Customers, Designers, Products, Carts, Karts}
}

// Collections returns the distinct collection names backing Resources.
func Collections() []string {
	var out []string
	seen := map[string]bool{}
	for _, r := range Resources() {
		if !seen[r.Collection] {
			seen[r.Collection] = true
			out = append(out, r.Collection)
		}
	}
	return out
}
