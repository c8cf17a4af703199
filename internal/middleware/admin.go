package middleware

import (
	"net/http"

	"github.com/campusmarket/campusmarket-backend/internal/common"
	"github.com/gin-gonic/gin"
)

// RequireAdmin checks that the authenticated user is a moderator
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAdmin(c) {
			common.ErrorResponse(c, http.StatusForbidden, "Admin access required", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
