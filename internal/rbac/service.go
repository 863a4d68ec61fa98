package rbac

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/sentrasec/sentra/internal/store"
	"github.com/sentrasec/sentra/model"
	"github.com/sentrasec/sentra/params"
	"gorm.io/gorm"
)

type CreateRoleOptions struct {
	Name        string
	Description string
	Permissions []string
}

type UpdateRoleOptions struct {
	Description *string
	Permissions []string
}

// Service aggregates permissions across role assignments and manages roles.
// Aggregated sets are cached per user with a short TTL; assignment mutations
// invalidate the affected user's entry, role mutations rely on the TTL.
type Service struct {
	roleRepo     RoleRepository
	userRoleRepo UserRoleRepository
	cache        store.Store[[]string]
}

func NewService(roleRepo RoleRepository, userRoleRepo UserRoleRepository, cacheStorage store.Storage) *Service {
	return &Service{
		roleRepo:     roleRepo,
		userRoleRepo: userRoleRepo,
		cache:        store.New[[]string](cacheStorage, params.PermissionCacheKeyPrefix),
	}
}

// RolePermissions decodes a role's stored permission array, discarding any
// tag outside the closed enumeration.
func RolePermissions(role *model.Role) PermissionSet {
	var tags []string
	if err := json.Unmarshal(role.Permissions, &tags); err != nil {
		slog.Warn("Malformed permission array on role", "role", role.Name, "error", err)
		return PermissionSet{}
	}
	return ParsePermissions(tags)
}

// GetPermissions returns the union of permissions granted by every role
// assigned to userID. A user with no assignments gets the empty set.
func (s *Service) GetPermissions(ctx context.Context, userID string) (PermissionSet, error) {
	if cached, err := s.cache.Get(ctx, userID); err == nil {
		return ParsePermissions(cached), nil
	} else if !errors.Is(err, store.ErrNotFound) {
		slog.Warn("Permission cache read failed", "userId", userID, "error", err)
	}

	assignments, err := s.userRoleRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	perms := PermissionSet{}
	for _, assignment := range assignments {
		perms = perms.Union(RolePermissions(&assignment.Role))
	}

	if err := s.cache.Set(ctx, userID, perms.List(), params.PermissionCacheTTL); err != nil {
		slog.Warn("Permission cache write failed", "userId", userID, "error", err)
	}
	return perms, nil
}

func (s *Service) HasPermission(ctx context.Context, userID string, perm Permission) (bool, error) {
	perms, err := s.GetPermissions(ctx, userID)
	if err != nil {
		return false, err
	}
	return perms.Has(perm), nil
}

func (s *Service) HasAnyPermission(ctx context.Context, userID string, required ...Permission) (bool, error) {
	perms, err := s.GetPermissions(ctx, userID)
	if err != nil {
		return false, err
	}
	return perms.HasAny(required...), nil
}

// IsSuperAdmin holds iff the user carries both manage_users and manage_roles.
// This is a derived condition, never a stored flag or a role-name check.
func (s *Service) IsSuperAdmin(ctx context.Context, userID string) (bool, error) {
	perms, err := s.GetPermissions(ctx, userID)
	if err != nil {
		return false, err
	}
	return perms.HasAll(PermManageUsers, PermManageRoles), nil
}

func (s *Service) ListRoles(ctx context.Context) ([]*model.Role, error) {
	return s.roleRepo.Find(ctx)
}

func (s *Service) GetRole(ctx context.Context, id uint) (*model.Role, error) {
	role, err := s.roleRepo.FirstByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRoleNotFound
	}
	return role, err
}

func (s *Service) CreateRole(ctx context.Context, opts CreateRoleOptions) (*model.Role, error) {
	if opts.Name == "" {
		return nil, ErrRoleNameEmpty
	}
	perms, err := validatePermissionTags(opts.Permissions)
	if err != nil {
		return nil, err
	}

	if _, err := s.roleRepo.FirstByName(ctx, opts.Name); err == nil {
		return nil, ErrRoleNameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	encoded, err := json.Marshal(perms.List())
	if err != nil {
		return nil, err
	}
	role := &model.Role{
		Name:        opts.Name,
		Description: opts.Description,
		Permissions: encoded,
	}
	if err := s.roleRepo.Create(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

func (s *Service) UpdateRole(ctx context.Context, id uint, opts UpdateRoleOptions) (*model.Role, error) {
	if _, err := s.GetRole(ctx, id); err != nil {
		return nil, err
	}

	columns := map[string]interface{}{}
	if opts.Description != nil {
		columns["description"] = *opts.Description
	}
	if opts.Permissions != nil {
		perms, err := validatePermissionTags(opts.Permissions)
		if err != nil {
			return nil, err
		}
		encoded, err := json.Marshal(perms.List())
		if err != nil {
			return nil, err
		}
		columns["permissions"] = encoded
	}
	if len(columns) > 0 {
		if err := s.roleRepo.Updates(ctx, id, columns); err != nil {
			return nil, err
		}
	}
	return s.GetRole(ctx, id)
}

// DeleteRole removes a role and all of its assignments. The three built-in
// roles are rejected here regardless of any storage-side protection.
func (s *Service) DeleteRole(ctx context.Context, id uint) error {
	role, err := s.GetRole(ctx, id)
	if err != nil {
		return err
	}
	if role.System || IsSeedRole(role.Name) {
		return ErrSeedRoleProtected
	}
	if err := s.userRoleRepo.DeleteByRoleID(ctx, id); err != nil {
		return err
	}
	return s.roleRepo.Delete(ctx, id)
}

func (s *Service) GetUserRoles(ctx context.Context, userID string) ([]*model.UserRole, error) {
	return s.userRoleRepo.FindByUserID(ctx, userID)
}

func (s *Service) AssignRole(ctx context.Context, userID string, roleID uint) error {
	if _, err := s.GetRole(ctx, roleID); err != nil {
		return err
	}

	assignments, err := s.userRoleRepo.FindByUserID(ctx, userID)
	if err != nil {
		return err
	}
	for _, assignment := range assignments {
		if assignment.RoleID == roleID {
			return ErrAlreadyAssigned
		}
	}

	if err := s.userRoleRepo.Create(ctx, &model.UserRole{UserID: userID, RoleID: roleID}); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *Service) RevokeRole(ctx context.Context, userID string, roleID uint) error {
	deleted, err := s.userRoleRepo.Delete(ctx, userID, roleID)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrAssignmentNotFound
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *Service) invalidate(ctx context.Context, userID string) {
	if err := s.cache.Delete(ctx, userID); err != nil && !errors.Is(err, store.ErrNotFound) {
		slog.Warn("Permission cache invalidation failed", "userId", userID, "error", err)
	}
}

func validatePermissionTags(tags []string) (PermissionSet, error) {
	set := make(PermissionSet, len(tags))
	for _, tag := range tags {
		p, ok := ParsePermission(tag)
		if !ok {
			return nil, ErrInvalidPermission
		}
		set[p] = struct{}{}
	}
	return set, nil
}
