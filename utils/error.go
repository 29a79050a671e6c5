package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse defines the structure of error responses
type ErrorResponse struct {
	Code      string      `json:"code,omitempty"`
	Message   string      `json:"message"`
	Details   string      `json:"details,omitempty"`
	Conflicts interface{} `json:"conflicts,omitempty"`
}

// ErrorHandler is a middleware to catch panics and return structured errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				GetLogger().Error("Unhandled panic",
					zap.Any("error", err),
					zap.String("path", c.Request.URL.Path))

				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Message: "Internal Server Error",
					Details: "An unexpected error occurred. Please try again later.",
				})
			}
		}()
		c.Next()
	}
}

// JSONError sends a standardized JSON error response
func JSONError(c *gin.Context, status int, message string, details string) {
	GetLogger().Warn(message, zap.Int("status", status), zap.String("details", details))
	c.AbortWithStatusJSON(status, ErrorResponse{Message: message, Details: details})
}

// JSONCodedError is JSONError with a machine-readable code and an optional payload of conflicts.
func JSONCodedError(c *gin.Context, status int, code, message string, conflicts interface{}) {
	GetLogger().Warn(message, zap.Int("status", status), zap.String("code", code))
	c.AbortWithStatusJSON(status, ErrorResponse{Code: code, Message: message, Conflicts: conflicts})
}
