package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Annany2002/arteesan-backend/internal/auth"
	"github.com/Annany2002/arteesan-backend/internal/domain"
)

func TestNewCreateRequestCoversEveryResource(t *testing.T) {
	for _, r := range domain.Resources() {
		body, ok := NewCreateRequest(r.Name)
		assert.True(t, ok, r.Name)
		assert.NotNil(t, body, r.Name)
	}
	_, ok := NewCreateRequest("bank_accounts")
	assert.False(t, ok)
}

func TestUserDocuments(t *testing.T) {
	customer := CreateCustomerRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Birthdate: "1990-12-10",
		Email:     "ada@arteesan.test",
		Username:  "ada",
		Password:  "StrongPassword123!",
	}

	doc, err := customer.ToDocument()
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, doc["status"])
	assert.Equal(t, []string{}, doc["favorites"])
	assert.Equal(t, map[string]any{"is_admin": false, "is_customer": true, "is_designer": false}, doc["role"])
	hash := doc["password"].(string)
	assert.NotEqual(t, customer.Password, hash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte(customer.Password)))

	designer := CreateDesignerRequest{CreateCustomerRequest: customer, Followers: []string{"bob"}}
	doc, err = designer.ToDocument()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"is_admin": false, "is_customer": false, "is_designer": true}, doc["role"])
	assert.Equal(t, []string{"bob"}, doc["followers"])

	customer.Password = ""
	_, err = customer.ToDocument()
	assert.ErrorIs(t, err, auth.ErrEmptyPassword)
}

func TestProductDefaults(t *testing.T) {
	price := 12.5
	doc, err := (&CreateProductRequest{Name: "poster", Price: &price, Designer: "dora"}).ToDocument()
	require.NoError(t, err)

	assert.Equal(t, 12.5, doc["price"])
	assert.Equal(t, "Not available", doc["description"])
	assert.Equal(t, domain.StatusActive, doc["status"])
	assert.Equal(t, true, doc["available"])
	assert.Equal(t, 0, doc["favorites"])
	assert.Equal(t, []string{}, doc["tags"])

	doc, err = (&CreateProductRequest{Name: "mug", Price: &price, Description: "Stoneware", Designer: "dora"}).ToDocument()
	require.NoError(t, err)
	assert.Equal(t, "Stoneware", doc["description"])
}

func TestOrderStatuses(t *testing.T) {
	cart, err := (&CreateCartRequest{Owner: "carol"}).ToDocument()
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReady, cart["status"])
	assert.Equal(t, []string{}, cart["products"])

	kart, err := (&CreateKartRequest{CreateCartRequest{Owner: "carol", Products: []string{"p1"}}}).ToDocument()
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNeutral, kart["status"])
	assert.Equal(t, []string{"p1"}, kart["products"])
}

func TestPatchRequestsMatchPatchableKeys(t *testing.T) {
	samples := map[string]string{
		"first_name":  `"Ada"`,
		"last_name":   `"Byron"`,
		"birthdate":   `"1990-12-10"`,
		"picture":     `"ada.png"`,
		"email":       `"ada@arteesan.test"`,
		"status":      `"READY"`,
		"favorites":   `["p1"]`,
		"followers":   `["bob"]`,
		"name":        `"mug"`,
		"price":       `0`,
		"description": `"Stoneware"`,
		"available":   `false`,
		"tags":        `[]`,
		"purchases":   `3`,
		"shares":      `0`,
		"galery":      `["a.png"]`,
		"products":    `["p1","p2"]`,
	}

	for _, r := range domain.Resources() {
		t.Run(r.Name, func(t *testing.T) {
			var parts []string
			for _, key := range r.Patchable {
				sample, ok := samples[key]
				if r.Name == domain.Products.Name && key == "favorites" {
					sample = `2`
				}
				require.True(t, ok, "no sample for %s", key)
				parts = append(parts, `"`+key+`":`+sample)
			}
			raw := "{" + strings.Join(parts, ",") + "}"

			body, ok := NewPatchRequest(r.Name)
			require.True(t, ok)
			require.NoError(t, json.Unmarshal([]byte(raw), body))
			require.NoError(t, binding.Validator.ValidateStruct(body))

			set := body.Fields()
			assert.Len(t, set, len(r.Patchable))
			for _, key := range r.Patchable {
				assert.Contains(t, set, key)
			}
		})
	}
	_, ok := NewPatchRequest("bank_accounts")
	assert.False(t, ok)
}

func TestPatchRequestValidation(t *testing.T) {
	tests := []struct {
		name  string
		body  PatchRequest
		raw   string
		valid bool
	}{
		{"zero price", &PatchProductRequest{}, `{"price":0}`, true},
		{"negative price", &PatchProductRequest{}, `{"price":-1}`, false},
		{"empty product name", &PatchProductRequest{}, `{"name":""}`, false},
		{"cart pending", &PatchCartRequest{}, `{"status":"PENDING"}`, true},
		{"kart pending", &PatchKartRequest{}, `{"status":"PENDING"}`, false},
		{"kart neutral", &PatchKartRequest{}, `{"status":"NEUTRAL"}`, true},
		{"designer email", &PatchDesignerRequest{}, `{"email":"nope"}`, false},
		{"user birthdate", &PatchUserRequest{}, `{"birthdate":"1990-02-30"}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, json.Unmarshal([]byte(tt.raw), tt.body))
			err := binding.Validator.ValidateStruct(tt.body)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}

	var typed PatchUserRequest
	assert.Error(t, json.Unmarshal([]byte(`{"status":5}`), &typed))
}
