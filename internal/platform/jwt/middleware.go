package jwtmw

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const ContextSubject = "subject"

// AuthRequired returns a Gin middleware that rejects requests the Authorizer does not accept.
// The authorized subject is stored under ContextSubject.
func AuthRequired(authz Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		tokenStr := strings.TrimPrefix(auth, "Bearer ")

		if authz == nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "server misconfigured"})
			return
		}

		subject, err := authz.Authorize(c.Request.Context(), tokenStr)
		if err != nil {
			slog.Debug("authorization rejected", "path", c.FullPath(), "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(ContextSubject, subject)
		c.Next()
	}
}
