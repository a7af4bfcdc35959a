// api/handlers/resource_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/sirupsen/logrus"

	"github.com/Annany2002/arteesan-backend/api/models"
	"github.com/Annany2002/arteesan-backend/config"
	"github.com/Annany2002/arteesan-backend/internal/auth"
	"github.com/Annany2002/arteesan-backend/internal/core"
	"github.com/Annany2002/arteesan-backend/internal/domain"
	"github.com/Annany2002/arteesan-backend/internal/storage"
)

// ResourceHandler serves the five CRUD routes of one resource.
// Errors are attached with c.Error and rendered by middleware.ErrorHandler.
type ResourceHandler struct {
	Resource domain.Resource
	Store    storage.DocumentStore
	Engine   *core.Engine
	Cfg      *config.Config
	Log      logrus.FieldLogger
}

// NewResourceHandler creates a new ResourceHandler.
func NewResourceHandler(resource domain.Resource, store storage.DocumentStore, engine *core.Engine, cfg *config.Config, log logrus.FieldLogger) *ResourceHandler {
	return &ResourceHandler{
		Resource: resource,
		Store:    store,
		Engine:   engine,
		Cfg:      cfg,
		Log:      log.WithField("resource", resource.Name),
	}
}

// Register mounts the resource routes on the given group.
func (h *ResourceHandler) Register(group *gin.RouterGroup) {
	routes := group.Group("/" + h.Resource.Name)
	routes.POST("", h.Create)
	routes.GET("", h.List)
	routes.GET("/:id", h.Get)
	routes.PATCH("/:id", h.Patch)
	routes.DELETE("/:id", h.Delete)
}

// List handles GET /v1/<resource>.
func (h *ResourceHandler) List(c *gin.Context) {
	values, err := core.ParseRawQuery(c.Request.URL.RawQuery)
	if err != nil {
		_ = c.Error(err)
		return
	}

	env, err := h.Engine.List(c.Request.Context(), core.ListRequest{
		Collection: h.Resource.Collection,
		BaseFilter: h.Resource.BaseFilter,
		Query:      values,
		Allow:      h.Resource.Allow,
		Undesired:  h.Resource.Undesired,
		IDField:    h.Resource.IDField,
		Request:    h.requestContext(c.Request.URL.Path, values),
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, env)
}

// Get handles GET /v1/<resource>/:id. Only the fields key changes the response.
func (h *ResourceHandler) Get(c *gin.Context) {
	values, err := core.ParseRawQuery(c.Request.URL.RawQuery)
	if err != nil {
		_ = c.Error(err)
		return
	}

	env, err := h.Engine.Get(c.Request.Context(), core.GetRequest{
		Collection: h.Resource.Collection,
		BaseFilter: h.Resource.BaseFilter,
		IDField:    h.Resource.IDField,
		ID:         c.Param("id"),
		Query:      values,
		Allow:      h.Resource.Allow,
		Undesired:  h.Resource.Undesired,
		Request:    h.requestContext(c.Request.URL.Path, values),
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, env)
}

// Create handles POST /v1/<resource>.
func (h *ResourceHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	body, ok := models.NewCreateRequest(h.Resource.Name)
	if !ok {
		_ = c.Error(fmt.Errorf("no request body registered for %s", h.Resource.Name))
		return
	}
	if err := c.ShouldBindJSON(body); err != nil {
		_ = c.Error(fmt.Errorf("%w: %w", ErrMissingParams, err))
		return
	}
	doc, err := body.ToDocument()
	if errors.Is(err, auth.ErrPasswordTooLong) {
		err = fmt.Errorf("%w: %w", ErrNotValidParams, err)
	}
	if err != nil {
		_ = c.Error(err)
		return
	}

	if field := h.Resource.UniqueField; field != "" {
		_, err := h.Store.FindOne(ctx, h.Resource.Collection, core.Filter{{Field: field, Value: doc[field]}}, []string{field})
		switch {
		case err == nil:
			h.Log.Warnf("Handler: %s %v already registered", field, doc[field])
			_ = c.Error(ErrAlreadyRegistered)
			return
		case !errors.Is(err, storage.ErrDocumentNotFound):
			_ = c.Error(err)
			return
		}
	}

	stored, err := h.Store.InsertOne(ctx, h.Resource.Collection, doc)
	if err != nil {
		_ = c.Error(err)
		return
	}
	id := fmt.Sprint(stored[h.Resource.IDField])
	h.Log.WithField("id", id).Info("Handler: document created")

	c.JSON(http.StatusCreated, core.RenderOne(stored, h.Resource.Undesired, h.itemContext(id)))
}

// Patch handles PATCH /v1/<resource>/:id. Only keys listed as patchable are
// accepted, and their values are bound and validated through the resource's
// patch body.
func (h *ResourceHandler) Patch(c *gin.Context) {
	id := c.Param("id")

	var keys map[string]json.RawMessage
	if err := c.ShouldBindBodyWith(&keys, binding.JSON); err != nil {
		_ = c.Error(fmt.Errorf("%w: %w", ErrNotValidParams, err))
		return
	}
	if len(keys) == 0 {
		_ = c.Error(fmt.Errorf("%w: empty body", ErrNotValidParams))
		return
	}
	for key := range keys {
		if !isPatchable(h.Resource, key) {
			_ = c.Error(fmt.Errorf("%w: %q cannot be modified", ErrNotValidParams, key))
			return
		}
	}

	body, ok := models.NewPatchRequest(h.Resource.Name)
	if !ok {
		_ = c.Error(fmt.Errorf("no patch body registered for %s", h.Resource.Name))
		return
	}
	if err := c.ShouldBindBodyWith(body, binding.JSON); err != nil {
		_ = c.Error(fmt.Errorf("%w: %w", ErrNotValidParams, err))
		return
	}
	set := body.Fields()
	if len(set) != len(keys) {
		// A key sent as null binds to nothing.
		_ = c.Error(fmt.Errorf("%w: null values are not accepted", ErrNotValidParams))
		return
	}

	filter := h.Resource.BaseFilter.Set(h.Resource.IDField, id)
	doc, err := h.Store.UpdateOne(c.Request.Context(), h.Resource.Collection, filter, set)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.Log.WithField("id", id).Infof("Handler: document updated (%d keys)", len(set))

	c.JSON(http.StatusOK, core.RenderOne(doc, h.Resource.Undesired, h.itemContext(id)))
}

// Delete handles DELETE /v1/<resource>/:id and responds with the removed document.
func (h *ResourceHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	filter := h.Resource.BaseFilter.Merge(h.Resource.DeleteFilter).Set(h.Resource.IDField, id)
	doc, err := h.Store.DeleteOne(c.Request.Context(), h.Resource.Collection, filter)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.Log.WithField("id", id).Info("Handler: document deleted")

	c.JSON(http.StatusOK, core.RenderOne(doc, h.Resource.Undesired, h.itemContext(id)))
}

func (h *ResourceHandler) requestContext(path string, values core.QueryValues) *core.RequestContext {
	return &core.RequestContext{BaseURL: h.Cfg.AppURL, Path: path, Query: values}
}

func (h *ResourceHandler) itemContext(id string) *core.RequestContext {
	return h.requestContext(h.Resource.Path()+"/"+id, nil)
}

func isPatchable(r domain.Resource, key string) bool {
	for _, k := range r.Patchable {
		if k == key {
			return true
		}
	}
	return false
}
