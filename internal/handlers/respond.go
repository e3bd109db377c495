package handlers

import (
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"taskplanner/internal/apperr"
)

// respondError maps an error onto its taxonomy status and the shared
// response envelope. Internal causes are logged, never returned.
func respondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal || kind == apperr.KindUnavailable {
		log.Printf("request failed: %v", err)
	}

	message := "internal server error"
	var appErr *apperr.Error
	if errors.As(err, &appErr) && kind != apperr.KindInternal {
		message = appErr.Message
	}

	c.JSON(apperr.HTTPStatus(err), gin.H{
		"error":   apperr.Code(kind),
		"message": message,
	})
}

func uintParam(c *gin.Context, name string) (uint, error) {
	value, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, apperr.Validation("invalid " + name)
	}
	return uint(value), nil
}

func intQuery(c *gin.Context, name string, defaultValue int) int {
	if raw := c.Query(name); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil {
			return value
		}
	}
	return defaultValue
}

// boolQuery returns nil when the parameter is absent; the tri-state
// matters for completion filters.
func boolQuery(c *gin.Context, name string) (*bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperr.Validation("invalid " + name)
	}
	return &value, nil
}

func dateQuery(c *gin.Context, name string) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, apperr.Validation(name + " is required")
	}
	value, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, apperr.Validation("invalid " + name + ", expected YYYY-MM-DD")
	}
	return value, nil
}
