package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"carwash_backend/internal/models"
	"carwash_backend/pkg/utils"
)

// Context keys set by AuthMiddleware.
const (
	ContextUserID   = "userID"
	ContextUsername = "username"
	ContextUserRole = "userRole"
)

// AuthMiddleware creates a Gin middleware for JWT authentication.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Authorization header required", ""))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid authorization header format. Use Bearer <token>", ""))
			return
		}

		claims, err := utils.ValidateToken(parts[1])
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid or expired token", err.Error()))
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUsername, claims.Username)
		c.Set(ContextUserRole, claims.Role)

		c.Next()
	}
}

// RoleAuthMiddleware allows the request through when the caller's role is one
// of allowedRoles. A superadmin passes every check an admin passes.
func RoleAuthMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := CurrentUserRole(c)
		if !ok {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "User role not found in token claims", ""))
			return
		}

		if !roleAllowed(role, allowedRoles) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden,
				"You do not have permission to access this resource", "Required roles: "+strings.Join(allowedRoles, ", ")))
			return
		}

		c.Next()
	}
}

func roleAllowed(role string, allowedRoles []string) bool {
	for _, r := range allowedRoles {
		if strings.EqualFold(role, r) {
			return true
		}
		if r == models.RoleAdmin && role == models.RoleSuperadmin {
			return true
		}
	}
	return false
}

// CurrentUserID returns the authenticated user's id.
func CurrentUserID(c *gin.Context) (int64, bool) {
	v, exists := c.Get(ContextUserID)
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// CurrentUserRole returns the authenticated user's role.
func CurrentUserRole(c *gin.Context) (string, bool) {
	v, exists := c.Get(ContextUserRole)
	if !exists {
		return "", false
	}
	role, ok := v.(string)
	return role, ok
}

// IsCustomer reports whether the caller is a customer, whose access is
// limited to their own records.
func IsCustomer(c *gin.Context) bool {
	role, _ := CurrentUserRole(c)
	return role == models.RoleCustomer
}
