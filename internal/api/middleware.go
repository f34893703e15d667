// Package api exposes the combat engine over HTTP: a synchronous endpoint
// that accepts a simulation request and returns the aggregated Driver
// result (spec §4.6, §6), an async submit/poll pair backed by
// internal/jobs, and a health check. Adapted from the teacher's gin-based
// handler/middleware layer.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pf2e-sim/combat-engine/pkg/errors"
	"github.com/pf2e-sim/combat-engine/pkg/logger"
)

// RequestIDMiddleware assigns a request ID to every incoming request,
// reusing an inbound X-Request-ID header if the caller supplied one.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// LoggingMiddleware logs each completed request via LogHTTPRequest.
func LoggingMiddleware(log *logger.LoggerV2) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if log != nil {
			log.LogHTTPRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
		}
	}
}

// ErrorHandler converts errors attached to the gin context (via c.Error)
// into a JSON error response shaped around pkg/errors.AppError.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		requestID, _ := c.Get("request_id")
		if requestID == nil {
			requestID = "unknown"
		}

		if appErr, ok := err.(*errors.AppError); ok {
			response := gin.H{
				"type":       appErr.Type,
				"message":    appErr.Message,
				"request_id": requestID,
			}
			if appErr.Details != nil {
				response["details"] = appErr.Details
			}
			c.JSON(appErr.StatusCode, response)
			return
		}

		if valErr, ok := err.(*errors.ValidationErrors); ok {
			c.JSON(http.StatusBadRequest, gin.H{
				"type":         errors.ErrorTypeValidation,
				"message":      "validation failed",
				"field_errors": valErr.Errors,
				"request_id":   requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"type":       errors.ErrorTypeInternal,
			"message":    "internal server error",
			"request_id": requestID,
		})
	}
}

// Recovery converts a panic inside a handler into a 500 JSON response with
// the internal-error type instead of crashing the server. internal/engine deliberately panics on
// invalid-state conditions (§7.2) that indicate caller misuse; the HTTP
// boundary is the last line of defense against those turning into a
// crashed process.
func Recovery(log *logger.LoggerV2) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				if log != nil {
					log.Error().Interface("panic", r).Str("path", c.FullPath()).Msg("Recovered from panic")
				}
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"type":    errors.ErrorTypeInternal,
					"message": "internal server error",
				})
			}
		}()
		c.Next()
	}
}
