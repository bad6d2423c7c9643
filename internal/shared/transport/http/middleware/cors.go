package middleware

import (
	"net/http"

	"PlayerHub/modules/kit/tracex"

	"github.com/gin-gonic/gin"
)

// Cors 放开跨域，预检请求直接返回 204。
func Cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+tracex.HeaderTraceID)
		h.Set("Access-Control-Expose-Headers", tracex.HeaderTraceID)
		h.Set("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
