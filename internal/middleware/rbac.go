package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/counseling-api/internal/models"
	appErrors "github.com/noah-isme/counseling-api/pkg/errors"
	"github.com/noah-isme/counseling-api/pkg/response"
)

// Self allows the caller whose profile key matches the route parameter.
const Self = "SELF"

// RBAC enforces role-based access control for routes. Self compares the
// caller's profile key against the route parameter named param.
func RBAC(param string, allowed ...string) gin.HandlerFunc {
	allowSelf := false
	allowedRoles := make(map[models.UserRole]struct{}, len(allowed))
	for _, a := range allowed {
		if a == Self {
			allowSelf = true
			continue
		}
		allowedRoles[models.UserRole(a)] = struct{}{}
	}

	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims, ok := claimsValue.(*models.JWTClaims)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if _, ok := allowedRoles[claims.Role]; ok {
			c.Next()
			return
		}

		if allowSelf && param != "" {
			if target := c.Param(param); target != "" && target == claims.EntityID {
				c.Next()
				return
			}
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}

// RequireRoles is a helper that accepts a list of roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make([]string, len(roles))
	for i, r := range roles {
		allowed[i] = string(r)
	}
	return RBAC("", allowed...)
}

// RequireRolesOrSelf admits the listed roles and the owner of the profile
// addressed by param.
func RequireRolesOrSelf(param string, roles ...models.UserRole) gin.HandlerFunc {
	allowed := make([]string, 0, len(roles)+1)
	for _, r := range roles {
		allowed = append(allowed, string(r))
	}
	return RBAC(param, append(allowed, Self)...)
}
