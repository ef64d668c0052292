package identity

import (
	"net/http"
	"strings"

	"github.com/beka-birhanu/vinom-mines/service/i"
	"github.com/gin-gonic/gin"
)

const (
	// ContextUserClaims is the key used to store token claims in the Gin context.
	ContextUserClaims = "userClaims"

	// tokenQueryParam carries the token for clients that cannot set headers,
	// such as browser WebSockets.
	tokenQueryParam = "token"
)

// Authoriz rejects requests without a valid token and stores its claims
// under ContextUserClaims.
func Authoriz(ts i.Tokenizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or malformed token"})
			return
		}

		claims, err := ts.Decode(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(ContextUserClaims, claims)
		c.Next()
	}
}

// bearerToken reads the token from the Authorization header, falling back to
// the token query parameter.
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		token := c.Query(tokenQueryParam)
		return token, token != ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// GameOwner lets a request through only when its token was issued for the
// game named by the route parameter param. It must run after Authoriz.
func GameOwner(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := Claims(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		gameID, _ := claims[i.ClaimGameID].(string)
		if gameID == "" || !strings.EqualFold(gameID, c.Param(param)) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "token is not valid for this game"})
			return
		}
		c.Next()
	}
}

// Claims returns the claims stored by Authoriz.
func Claims(c *gin.Context) (map[string]interface{}, bool) {
	v, ok := c.Get(ContextUserClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(map[string]interface{})
	return claims, ok
}
