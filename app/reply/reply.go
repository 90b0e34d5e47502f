// Package reply writes the JSON envelope every handler responds with
package reply

import (
	"net/http"

	"hirescape/job-api/internal/apperr"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Error writes err as a failed response. Internal causes are logged and
// replaced with a generic message.
func Error(c *gin.Context, err error) {
	requestID := c.GetString("requestID")
	e := apperr.From(err)

	status := e.Status
	if status == 0 {
		status = e.Kind.Status()
	}

	if e.Kind == apperr.KindInternal {
		zap.L().Error(e.Message,
			zap.Error(e.Err),
			zap.String("requestID", requestID),
			zap.String("path", c.FullPath()),
		)
	}

	c.AbortWithStatusJSON(status, gin.H{
		"success":   false,
		"message":   e.Message,
		"requestID": requestID,
	})
}

// BadBody responds to a request body that couldn't be decoded
func BadBody(c *gin.Context, err error) {
	zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", c.GetString("requestID")))
	Error(c, apperr.Validation("Invalid request body"))
}

// OK writes a successful response, payload keys are merged into the
// envelope
func OK(c *gin.Context, status int, msg string, payload gin.H) {
	body := gin.H{
		"success":   true,
		"message":   msg,
		"requestID": c.GetString("requestID"),
	}

	for k, v := range payload {
		body[k] = v
	}

	c.JSON(status, body)
}

// Created is OK with 201
func Created(c *gin.Context, msg string, payload gin.H) {
	OK(c, http.StatusCreated, msg, payload)
}
