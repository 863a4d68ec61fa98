package middlewares

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/sentrasec/sentra/internal/rbac"
)

const permissionsLocalsKey = "permissions"

// PermissionChecker is the slice of the rbac service the gate needs.
type PermissionChecker interface {
	GetPermissions(ctx context.Context, userID string) (rbac.PermissionSet, error)
}

// fetchPermissions loads the caller's aggregated set. Any failure degrades
// to the empty set so the gate fails closed.
func fetchPermissions(c *fiber.Ctx, checker PermissionChecker) rbac.PermissionSet {
	if cached, ok := c.Locals(permissionsLocalsKey).(rbac.PermissionSet); ok {
		return cached
	}
	identity := IdentityFromCtx(c)
	if identity == nil {
		return rbac.PermissionSet{}
	}
	perms, err := checker.GetPermissions(c.Context(), identity.UserID)
	if err != nil {
		slog.Warn("Permission fetch failed, denying access", "userId", identity.UserID, "error", err)
		perms = rbac.PermissionSet{}
	}
	c.Locals(permissionsLocalsKey, perms)
	return perms
}

// RequireAny admits the request if the caller holds at least one of the
// given permissions.
func RequireAny(checker PermissionChecker, perms ...rbac.Permission) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !fetchPermissions(c, checker).HasAny(perms...) {
			return fiber.ErrForbidden
		}
		return c.Next()
	}
}

// RequireAll admits the request only if the caller holds every given
// permission.
func RequireAll(checker PermissionChecker, perms ...rbac.Permission) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !fetchPermissions(c, checker).HasAll(perms...) {
			return fiber.ErrForbidden
		}
		return c.Next()
	}
}

// RequireSuperAdmin admits only callers holding both manage_users and
// manage_roles.
func RequireSuperAdmin(checker PermissionChecker) fiber.Handler {
	return RequireAll(checker, rbac.PermManageUsers, rbac.PermManageRoles)
}

// PermissionsFromCtx returns the set fetched by a gate on this request, or
// the empty set when no gate ran.
func PermissionsFromCtx(c *fiber.Ctx) rbac.PermissionSet {
	if perms, ok := c.Locals(permissionsLocalsKey).(rbac.PermissionSet); ok {
		return perms
	}
	return rbac.PermissionSet{}
}
