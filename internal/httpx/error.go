package httpx

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fekuna/omnipos-catalog-service/internal/apperr"
)

// WriteError writes the canonical JSON error envelope for err.
// Internal errors never leak their cause to the client.
func WriteError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		message = "internal error"
	}
	c.AbortWithStatusJSON(status, gin.H{
		"error":   apperr.Code(err),
		"message": sanitize(message, 512),
		"status":  status,
	})
}

// WriteBindError reports a request body or query that failed to decode.
func WriteBindError(c *gin.Context, err error) {
	if err == nil {
		err = errors.New("invalid request")
	}
	WriteError(c, apperr.Validation("%s", err.Error()))
}

func sanitize(value string, limit int) string {
	value = strings.ReplaceAll(value, "\n", " ")
	value = strings.ReplaceAll(value, "\r", " ")
	value = strings.TrimSpace(value)
	if len(value) > limit {
		value = value[:limit]
	}
	return value
}
