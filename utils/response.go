package utils

import (
	"github.com/gin-gonic/gin"
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
	c.JSON(status, gin.H{
		"status":  status,
		"message": message,
		"error":   err.Error(),
	})
}

// JSONRejection sends a bid rejection with its stable code and the context
// a client needs to correct the request
func JSONRejection(c *gin.Context, status int, code, message string, context map[string]any) {
	body := gin.H{
		"status":  status,
		"message": message,
		"code":    code,
	}
	if len(context) > 0 {
		body["context"] = context
	}
	c.JSON(status, body)
}
