// api/models/resource_models.go
package models

import (
	"github.com/Annany2002/arteesan-backend/internal/auth"
	"github.com/Annany2002/arteesan-backend/internal/core"
	"github.com/Annany2002/arteesan-backend/internal/domain"
)

// CreateRequest is a bound POST body that knows how to become a stored document.
type CreateRequest interface {
	ToDocument() (core.Document, error)
}

// --- User Request Structs ---

// CreateCustomerRequest defines the structure for the customer creation request body
type CreateCustomerRequest struct {
	FirstName string   `json:"first_name" binding:"required"`
	LastName  string   `json:"last_name" binding:"required"`
	Birthdate string   `json:"birthdate" binding:"required,datetime=2006-01-02"`
	Email     string   `json:"email" binding:"required,email"`
	Username  string   `json:"username" binding:"required,min=3,max=64"`
	Password  string   `json:"password" binding:"required,min=8,max=72"`
	Picture   string   `json:"picture"`
	Favorites []string `json:"favorites"`
}

func (r *CreateCustomerRequest) ToDocument() (core.Document, error) {
	return r.userDocument(map[string]any{"is_admin": false, "is_customer": true, "is_designer": false})
}

func (r *CreateCustomerRequest) userDocument(role map[string]any) (core.Document, error) {
	hash, err := auth.HashPassword(r.Password)
	if err != nil {
		return nil, err
	}
	return core.Document{
		"first_name": r.FirstName,
		"last_name":  r.LastName,
		"birthdate":  r.Birthdate,
		"picture":    r.Picture,
		"email":      r.Email,
		"username":   r.Username,
		"password":   hash,
		"status":     domain.StatusActive,
		"favorites":  nonNil(r.Favorites),
		"role":       role,
	}, nil
}

// CreateDesignerRequest is a customer request that may also carry followers.
type CreateDesignerRequest struct {
	CreateCustomerRequest
	Followers []string `json:"followers"`
}

func (r *CreateDesignerRequest) ToDocument() (core.Document, error) {
	doc, err := r.userDocument(map[string]any{"is_admin": false, "is_customer": false, "is_designer": true})
	if err != nil {
		return nil, err
	}
	doc["followers"] = nonNil(r.Followers)
	return doc, nil
}

// --- Catalogue Request Structs ---

// CreateProductRequest defines the structure for the product creation request body
type CreateProductRequest struct {
	Name        string   `json:"name" binding:"required"`
	Price       *float64 `json:"price" binding:"required,gte=0"`
	Description string   `json:"description"`
	Thumbnail   string   `json:"thumbnail"`
	Designer    string   `json:"designer" binding:"required"`
	Tags        []string `json:"tags"`
	Galery      []string `json:"galery"`
}

func (r *CreateProductRequest) ToDocument() (core.Document, error) {
	description := r.Description
	if description == "" {
		description = "Not available"
	}
	return core.Document{
		"name":        r.Name,
		"price":       *r.Price,
		"description": description,
		"thumbnail":   r.Thumbnail,
		"designer":    r.Designer,
		"status":      domain.StatusActive,
		"available":   true,
		"tags":        nonNil(r.Tags),
		"galery":      nonNil(r.Galery),
		"favorites":   0,
		"purchases":   0,
		"shares":      0,
	}, nil
}

// --- Order Request Structs ---

// CreateCartRequest defines the structure for the cart creation request body
type CreateCartRequest struct {
	Owner    string   `json:"owner" binding:"required"`
	Products []string `json:"products"`
}

func (r *CreateCartRequest) ToDocument() (core.Document, error) {
	return core.Document{
		"owner":    r.Owner,
		"products": nonNil(r.Products),
		"status":   domain.StatusReady,
	}, nil
}

// CreateKartRequest has the cart shape but starts NEUTRAL.
type CreateKartRequest struct {
	CreateCartRequest
}

func (r *CreateKartRequest) ToDocument() (core.Document, error) {
	doc, err := r.CreateCartRequest.ToDocument()
	if err != nil {
		return nil, err
	}
	doc["status"] = domain.StatusNeutral
	return doc, nil
}

// NewCreateRequest returns an empty body for the named resource.
func NewCreateRequest(resource string) (CreateRequest, bool) {
	switch resource {
	case domain.Customers.Name:
		return &CreateCustomerRequest{}, true
	case domain.Designers.Name:
		return &CreateDesignerRequest{}, true
	case domain.Products.Name:
		return &CreateProductRequest{}, true
	case domain.Carts.Name:
		return &CreateCartRequest{}, true
	case domain.Karts.Name:
		return &CreateKartRequest{}, true
	}
	return nil, false
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// --- Patch Request Structs ---

// PatchRequest is a bound PATCH body. Pointer fields distinguish "absent"
// from zero values; Fields returns only the keys that were sent.
type PatchRequest interface {
	Fields() core.Document
}

// PatchUserRequest covers the modifiable keys of customers.
type PatchUserRequest struct {
	FirstName *string   `json:"first_name" binding:"omitempty,min=1"`
	LastName  *string   `json:"last_name" binding:"omitempty,min=1"`
	Birthdate *string   `json:"birthdate" binding:"omitempty,datetime=2006-01-02"`
	Picture   *string   `json:"picture"`
	Email     *string   `json:"email" binding:"omitempty,email"`
	Status    *string   `json:"status" binding:"omitempty,min=1"`
	Favorites *[]string `json:"favorites"`
}

func (r *PatchUserRequest) Fields() core.Document {
	set := core.Document{}
	setIf(set, "first_name", r.FirstName)
	setIf(set, "last_name", r.LastName)
	setIf(set, "birthdate", r.Birthdate)
	setIf(set, "picture", r.Picture)
	setIf(set, "email", r.Email)
	setIf(set, "status", r.Status)
	setIf(set, "favorites", r.Favorites)
	return set
}

// PatchDesignerRequest adds followers to the user keys.
type PatchDesignerRequest struct {
	PatchUserRequest
	Followers *[]string `json:"followers"`
}

func (r *PatchDesignerRequest) Fields() core.Document {
	set := r.PatchUserRequest.Fields()
	setIf(set, "followers", r.Followers)
	return set
}

type PatchProductRequest struct {
	Name        *string   `json:"name" binding:"omitempty,min=1"`
	Price       *float64  `json:"price" binding:"omitempty,gte=0"`
	Description *string   `json:"description"`
	Status      *string   `json:"status" binding:"omitempty,min=1"`
	Available   *bool     `json:"available"`
	Tags        *[]string `json:"tags"`
	Favorites   *int      `json:"favorites" binding:"omitempty,gte=0"`
	Purchases   *int      `json:"purchases" binding:"omitempty,gte=0"`
	Shares      *int      `json:"shares" binding:"omitempty,gte=0"`
	Galery      *[]string `json:"galery"`
}

func (r *PatchProductRequest) Fields() core.Document {
	set := core.Document{}
	setIf(set, "name", r.Name)
	setIf(set, "price", r.Price)
	setIf(set, "description", r.Description)
	setIf(set, "status", r.Status)
	setIf(set, "available", r.Available)
	setIf(set, "tags", r.Tags)
	setIf(set, "favorites", r.Favorites)
	setIf(set, "purchases", r.Purchases)
	setIf(set, "shares", r.Shares)
	setIf(set, "galery", r.Galery)
	return set
}

// PatchCartRequest accepts the cart lifecycle states.
type PatchCartRequest struct {
	Products *[]string `json:"products"`
	Status   *string   `json:"status" binding:"omitempty,oneof=READY PENDING PURCHASED CANCELED"`
}

func (r *PatchCartRequest) Fields() core.Document {
	set := core.Document{}
	setIf(set, "products", r.Products)
	setIf(set, "status", r.Status)
	return set
}

// PatchKartRequest accepts the kart lifecycle states.
type PatchKartRequest struct {
	Products *[]string `json:"products"`
	Status   *string   `json:"status" binding:"omitempty,oneof=NEUTRAL READY PURCHASED CANCELED"`
}

func (r *PatchKartRequest) Fields() core.Document {
	set := core.Document{}
	setIf(set, "products", r.Products)
	setIf(set, "status", r.Status)
	return set
}

// NewPatchRequest returns an empty patch body for the named resource.
func NewPatchRequest(resource string) (PatchRequest, bool) {
	switch resource {
	case domain.Customers.Name:
		return &PatchUserRequest{}, true
	case domain.Designers.Name:
		return &PatchDesignerRequest{}, true
	case domain.Products.Name:
		return &PatchProductRequest{}, true
	case domain.Carts.Name:
		return &PatchCartRequest{}, true
	case domain.Karts.Name:
		return &PatchKartRequest{}, true
	}
	return nil, false
}

func setIf[T any](set core.Document, key string, v *T) {
	if v != nil {
		set[key] = *v
	}
}
