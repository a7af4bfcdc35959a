// api/middleware/error_handler.go
package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10" // Import validator for binding errors
	"github.com/sirupsen/logrus"

	"github.com/Annany2002/arteesan-backend/api/handlers"
	"github.com/Annany2002/arteesan-backend/internal/core"
	"github.com/Annany2002/arteesan-backend/internal/storage"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

// AbortWithError writes the error body and stops the chain.
func AbortWithError(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, ErrorBody{Error: ErrorDetail{Status: status, Detail: detail}})
}

// ErrorHandler creates a Gin middleware for centralized error handling.
func ErrorHandler(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Process request using subsequent handlers
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		// We only handle the last error for the response.
		err := c.Errors.Last().Err
		entry := log.WithFields(logrus.Fields{
			"request_id": c.GetString(RequestIDKey),
			"path":       c.Request.URL.Path,
		})

		status, detail := classify(err)
		if status >= http.StatusInternalServerError {
			entry.Errorf("[ErrorHandler] Unhandled error type: %T, Error: %v", err, err)
		} else {
			entry.Warnf("[ErrorHandler] Detected error: %v", err)
		}

		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			for _, fe := range validationErrs {
				entry.Debugf("Validation Error: Field %s failed on %s", fe.Field(), fe.Tag())
			}
		}

		if !c.Writer.Written() {
			AbortWithError(c, status, detail)
		} else {
			entry.Warn("[ErrorHandler] Warning: Response already written before handling error.")
		}
	}
}

// classify maps an error to its HTTP status and response detail.
func classify(err error) (int, string) {
	var validationErrs validator.ValidationErrors
	switch {
	case errors.Is(err, core.ErrInvalidQuery),
		errors.Is(err, core.ErrNonNumericPagingValue):
		return http.StatusBadRequest, handlers.MsgNotValidQueryParams
	case errors.Is(err, handlers.ErrNotValidParams):
		return http.StatusBadRequest, handlers.MsgNotValidParams
	case errors.As(err, &validationErrs),
		errors.Is(err, handlers.ErrMissingParams):
		return http.StatusBadRequest, handlers.MsgMissedParams
	case errors.Is(err, core.ErrNotFound),
		errors.Is(err, storage.ErrDocumentNotFound):
		return http.StatusNotFound, handlers.MsgObjectNotFound
	case errors.Is(err, handlers.ErrAlreadyRegistered),
		errors.Is(err, storage.ErrDuplicateDocument):
		return http.StatusConflict, handlers.MsgUserAlreadyRegistered
	default:
		return http.StatusInternalServerError, handlers.MsgDatabaseError
	}
}
