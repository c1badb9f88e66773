package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// MaxBodyBytes caps request bodies; the limit surfaces as a bind error on
// oversized payloads. Account payloads are tiny, so the cap can be tight.
func MaxBodyBytes(limit int64) gin.HandlerFunc {
	if limit <= 0 {
		limit = 1 << 20
	}

	return func(ctx *gin.Context) {
		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, limit)

		ctx.Next()
	}
}
