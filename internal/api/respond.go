package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"gocart-backend/internal/apperr"
)

// respondOK writes the standard success envelope
func respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

// respondError maps an error to the standard failure envelope. Application
// errors carry their own HTTP status and a message safe to show the user;
// anything else is logged and reported as a generic 500.
func respondError(c *gin.Context, err error) {
	if appErr, ok := apperr.As(err); ok {
		c.JSON(appErr.HTTPStatus(), gin.H{
			"success": false,
			"error":   appErr.Message,
			"kind":    appErr.Kind,
		})
		return
	}

	log.Printf("internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error":   "Internal server error",
	})
}

// respondBadRequest writes a validation failure envelope
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   message,
	})
}

// currentUserID returns the authenticated user's ID from the context, or
// empty for anonymous requests.
func currentUserID(c *gin.Context) string {
	return c.GetString("userID")
}
