package auth

import "github.com/gin-gonic/gin"

// HeaderUserID is set by the upstream gateway after authentication.
const HeaderUserID = "X-User-Id"

// Middleware copies the authenticated user id from the request headers into
// the request context, where usecases resolve it.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID := c.GetHeader(HeaderUserID); userID != "" {
			c.Request = c.Request.WithContext(WithUserID(c.Request.Context(), userID))
		}
		c.Next()
	}
}
