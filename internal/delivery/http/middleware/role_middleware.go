package middleware

import (
	"net/http"

	"masters-marketplace/internal/domain/entity"
	"masters-marketplace/pkg/response"
)

// RequireRole creates a middleware that checks if the user has any of the required roles
// Role is read from context (set by AuthMiddleware from JWT claims)
func RequireRole(allowed ...entity.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := GetUserRoleFromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "Role information not found")
				return
			}

			for _, a := range allowed {
				if entity.Role(role) == a {
					next.ServeHTTP(w, r)
					return
				}
			}

			response.Forbidden(w, "You don't have permission to access this resource")
		})
	}
}

// RequireMaster is a convenience middleware for master-only endpoints
func RequireMaster(next http.Handler) http.Handler {
	return RequireRole(entity.RoleMaster)(next)
}

// RequireStaff allows staff accounts only
func RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUserIDFromContext(r.Context()); !ok {
			response.Unauthorized(w, "")
			return
		}
		if !IsStaffFromContext(r.Context()) {
			response.Forbidden(w, "Staff access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
