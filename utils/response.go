package utils

import (
	"github.com/gin-gonic/gin"

	"auction-house/internal/auctionerrors"
)

// JSONResponse sends a structured JSON response
func JSONResponse(c *gin.Context, status int, data any, message string) {
	c.JSON(status, gin.H{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

// JSONError sends a structured error response
func JSONError(c *gin.Context, status int, err error, message string) {
	body := gin.H{
		"status":  status,
		"message": message,
		"error":   err.Error(),
	}
	// Surface per-field validation failures so form clients can highlight
	// the offending inputs.
	if fields, ok := auctionerrors.Fields(err); ok {
		body["fields"] = fields
	}
	c.JSON(status, body)
}
