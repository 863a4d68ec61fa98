package rbac

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sentrasec/sentra/model"
	"gorm.io/gorm"
)

// Built-in role names. These roles are created at startup and can never be
// deleted.
const (
	RoleSuperAdmin = "Super Admin"
	RoleSOCAdmin   = "SOC Admin"
	RoleClientUser = "Client User"
)

var seedRoles = []struct {
	name        string
	description string
	permissions []Permission
}{
	{
		name:        RoleSuperAdmin,
		description: "Full platform access including user and role management",
		permissions: allPermissions,
	},
	{
		name:        RoleSOCAdmin,
		description: "Operates the SOC across all tenants",
		permissions: []Permission{
			PermViewAllClients, PermManageClients,
			PermViewLogs, PermManageLogs,
			PermViewAssets, PermManageAssets,
			PermViewReports, PermManageReports,
		},
	},
	{
		name:        RoleClientUser,
		description: "Read-only access to the user's own tenant",
		permissions: []Permission{PermViewLogs, PermViewAssets, PermViewReports},
	},
}

// IsSeedRole reports whether name is one of the protected built-in roles.
func IsSeedRole(name string) bool {
	return name == RoleSuperAdmin || name == RoleSOCAdmin || name == RoleClientUser
}

// SeedRoles creates any missing built-in role. Existing roles are left
// untouched so operator edits to descriptions or permission sets survive
// restarts.
func SeedRoles(ctx context.Context, repo RoleRepository) error {
	for _, seed := range seedRoles {
		_, err := repo.FirstByName(ctx, seed.name)
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up role %q: %w", seed.name, err)
		}

		perms, err := json.Marshal(NewPermissionSet(seed.permissions...).List())
		if err != nil {
			return err
		}
		role := &model.Role{
			Name:        seed.name,
			Description: seed.description,
			Permissions: perms,
			System:      true,
		}
		if err := repo.Create(ctx, role); err != nil {
			return fmt.Errorf("failed to seed role %q: %w", seed.name, err)
		}
	}
	return nil
}
