package authz

import "github.com/gin-gonic/gin"

const (
	HeaderUserID   = "X-User-Id"
	HeaderUserRole = "X-User-Role"

	contextKey = "authz_user"
)

// IdentityMiddleware place l'identité fournie par le proxy d'authentification dans le contexte gin
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(contextKey, User{
			ID:   c.GetHeader(HeaderUserID),
			Role: c.GetHeader(HeaderUserRole),
		})
		c.Next()
	}
}

// UserFromContext récupère l'identité posée par IdentityMiddleware
func UserFromContext(c *gin.Context) User {
	if v, ok := c.Get(contextKey); ok {
		if u, ok := v.(User); ok {
			return u
		}
	}
	return User{}
}
