package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Annany2002/arteesan-backend/api/handlers"
	"github.com/Annany2002/arteesan-backend/internal/core"
	"github.com/Annany2002/arteesan-backend/internal/storage"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestClassify(t *testing.T) {
	type sample struct {
		Name string `validate:"required"`
	}
	validationErr := validator.New().Struct(sample{})
	require.Error(t, validationErr)

	tests := []struct {
		name   string
		err    error
		status int
		detail string
	}{
		{"invalid query", &core.QueryError{Key: "expand", Err: core.ErrInvalidQuery}, http.StatusBadRequest, handlers.MsgNotValidQueryParams},
		{"non numeric paging", fmt.Errorf("page: %w", core.ErrNonNumericPagingValue), http.StatusBadRequest, handlers.MsgNotValidQueryParams},
		{"validation errors", validationErr, http.StatusBadRequest, handlers.MsgMissedParams},
		{"missing params", fmt.Errorf("%w: EOF", handlers.ErrMissingParams), http.StatusBadRequest, handlers.MsgMissedParams},
		{"not valid params", handlers.ErrNotValidParams, http.StatusBadRequest, handlers.MsgNotValidParams},
		{"invalid patch value", fmt.Errorf("%w: %w", handlers.ErrNotValidParams, validationErr), http.StatusBadRequest, handlers.MsgNotValidParams},
		{"engine not found", core.ErrNotFound, http.StatusNotFound, handlers.MsgObjectNotFound},
		{"store not found", fmt.Errorf("update: %w", storage.ErrDocumentNotFound), http.StatusNotFound, handlers.MsgObjectNotFound},
		{"already registered", handlers.ErrAlreadyRegistered, http.StatusConflict, handlers.MsgUserAlreadyRegistered},
		{"duplicate document", storage.ErrDuplicateDocument, http.StatusConflict, handlers.MsgUserAlreadyRegistered},
		{"store failure", fmt.Errorf("%w: boom", core.ErrStoreExecution), http.StatusInternalServerError, handlers.MsgDatabaseError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, handlers.MsgDatabaseError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, detail := classify(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.detail, detail)
		})
	}
}

func TestErrorHandlerRendersLastError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ErrorHandler(quietLogger()))
	router.GET("/fail", func(c *gin.Context) {
		_ = c.Error(errors.New("first"))
		_ = c.Error(core.ErrNotFound)
	})
	router.GET("/written", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
		_ = c.Error(errors.New("late"))
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fail", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusNotFound, body.Error.Status)
	assert.Equal(t, handlers.MsgObjectNotFound, body.Error.Detail)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/written", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestRateLimiterAllow(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"), "third request inside the window")
	assert.True(t, rl.Allow("10.0.0.2"), "other clients are counted separately")

	now = now.Add(time.Minute + time.Second)
	assert.True(t, rl.Allow("10.0.0.1"), "window has moved on")

	now = now.Add(2 * time.Minute)
	rl.Allow("10.0.0.3")
	rl.mutex.Lock()
	_, tracked1 := rl.requests["10.0.0.1"]
	_, tracked2 := rl.requests["10.0.0.2"]
	size := len(rl.requests)
	rl.mutex.Unlock()
	assert.False(t, tracked1, "idle clients are swept")
	assert.False(t, tracked2, "idle clients are swept")
	assert.Equal(t, 1, size)
}

func TestRateLimiterSweepKeepsActiveClients(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(5, time.Minute)
	rl.now = func() time.Time { return now }

	rl.Allow("10.0.0.1")
	now = now.Add(50 * time.Second)
	rl.Allow("10.0.0.2")
	now = now.Add(20 * time.Second)
	rl.Allow("10.0.0.3")

	rl.mutex.Lock()
	defer rl.mutex.Unlock()
	assert.NotContains(t, rl.requests, "10.0.0.1")
	assert.Contains(t, rl.requests, "10.0.0.2")
	assert.Contains(t, rl.requests, "10.0.0.3")
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimitMiddleware(NewRateLimiter(1, time.Hour)))
	router.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, send().Code)
	rec := send()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, handlers.MsgTooManyRequests, body.Error.Detail)
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := rec.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
	assert.Equal(t, "abc-123", rec.Body.String())
}
