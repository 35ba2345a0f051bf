package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"statement-service/internal/api/responses"
)

// OwnerIDKey is the context key under which the authenticated owner id is set.
const OwnerIDKey = "ownerID"

// RequireAuth validates the bearer token and puts the authenticated owner id
// on the request context. The token subject (or username claim) is the opaque
// identity every downstream collaborator keys on.
func RequireAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			responses.Error(c, http.StatusUnauthorized, "Missing or malformed Authorization header")
			c.Abort()
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return secret, nil
		})
		if err != nil || !token.Valid {
			responses.Error(c, http.StatusUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			responses.Error(c, http.StatusUnauthorized, "Invalid token claims")
			c.Abort()
			return
		}

		ownerID := ""
		if sub, err := claims.GetSubject(); err == nil && sub != "" {
			ownerID = sub
		} else if username, ok := claims["username"].(string); ok {
			ownerID = username
		}
		if ownerID == "" {
			responses.Error(c, http.StatusUnauthorized, "Token carries no identity")
			c.Abort()
			return
		}

		c.Set(OwnerIDKey, ownerID)
		c.Next()
	}
}

// OwnerID reads the authenticated owner id set by RequireAuth.
func OwnerID(c *gin.Context) string {
	return c.GetString(OwnerIDKey)
}
