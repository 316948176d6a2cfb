package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"maestroai/internal/config"
)

// ContextKeyAuthenticated is set to true once a request passed the bearer check.
const ContextKeyAuthenticated = "authenticated"

const bearerPrefix = "Bearer "

// BearerAuth returns Gin middleware that requires an "Authorization: Bearer
// <token>" header. When cfg.APIKeys is non-empty the token must be one of them;
// otherwise any non-empty token is accepted. A disabled config lets every
// request through.
func BearerAuth(cfg config.AuthConfig) gin.HandlerFunc {
	keys := make([][]byte, 0, len(cfg.APIKeys))
	for _, k := range cfg.APIKeys {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, []byte(k))
		}
	}

	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, bearerPrefix) {
			abortUnauthorized(c, "missing or invalid authorization header")
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
		if token == "" {
			abortUnauthorized(c, "missing bearer token")
			return
		}

		if len(keys) > 0 && !knownKey(keys, []byte(token)) {
			abortUnauthorized(c, "invalid api key")
			return
		}

		c.Set(ContextKeyAuthenticated, true)
		c.Next()
	}
}

func knownKey(keys [][]byte, token []byte) bool {
	found := 0
	for _, k := range keys {
		found |= subtle.ConstantTimeCompare(k, token)
	}
	return found == 1
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error":   gin.H{"code": "UNAUTHORIZED", "message": msg},
	})
}
