package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/queue-service/internal/domain"
	apperrors "github.com/spec-kit/queue-service/pkg/util"
)

// RequireRole gates a route to the given staff roles.
func RequireRole(roles ...domain.StaffRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.Staff == nil {
			return apperrors.NewUnauthorized("staff required")
		}
		for _, role := range roles {
			if principal.Staff.Role == role {
				return c.Next()
			}
		}
		return apperrors.NewForbidden("insufficient role")
	}
}

// RequireAnyStaff gates a route to any authenticated staff member.
func RequireAnyStaff() fiber.Handler {
	return RequireRole(domain.StaffRoleAgent, domain.StaffRoleAdmin)
}
