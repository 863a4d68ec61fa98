package rbac

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sentrasec/sentra/internal/store"
	"github.com/sentrasec/sentra/model"
	"gorm.io/gorm"
)

type stubRoleRepo struct {
	roles  map[uint]*model.Role
	nextID uint
}

func newStubRoleRepo() *stubRoleRepo {
	return &stubRoleRepo{roles: make(map[uint]*model.Role), nextID: 1}
}

func (r *stubRoleRepo) Find(ctx context.Context) ([]*model.Role, error) {
	var out []*model.Role
	for _, role := range r.roles {
		out = append(out, role)
	}
	return out, nil
}

func (r *stubRoleRepo) FirstByID(ctx context.Context, id uint) (*model.Role, error) {
	role, ok := r.roles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return role, nil
}

func (r *stubRoleRepo) FirstByName(ctx context.Context, name string) (*model.Role, error) {
	for _, role := range r.roles {
		if role.Name == name {
			return role, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubRoleRepo) Create(ctx context.Context, role *model.Role) error {
	role.ID = r.nextID
	r.nextID++
	r.roles[role.ID] = role
	return nil
}

func (r *stubRoleRepo) Updates(ctx context.Context, id uint, columns map[string]interface{}) error {
	role, ok := r.roles[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if desc, ok := columns["description"].(string); ok {
		role.Description = desc
	}
	if perms, ok := columns["permissions"].([]byte); ok {
		role.Permissions = perms
	}
	return nil
}

func (r *stubRoleRepo) Delete(ctx context.Context, id uint) error {
	delete(r.roles, id)
	return nil
}

type stubUserRoleRepo struct {
	assignments []*model.UserRole
	roles       *stubRoleRepo
}

func (r *stubUserRoleRepo) FindByUserID(ctx context.Context, userID string) ([]*model.UserRole, error) {
	var out []*model.UserRole
	for _, a := range r.assignments {
		if a.UserID == userID {
			preloaded := *a
			if role, ok := r.roles.roles[a.RoleID]; ok {
				preloaded.Role = *role
			}
			out = append(out, &preloaded)
		}
	}
	return out, nil
}

func (r *stubUserRoleRepo) Create(ctx context.Context, userRole *model.UserRole) error {
	r.assignments = append(r.assignments, userRole)
	return nil
}

func (r *stubUserRoleRepo) Delete(ctx context.Context, userID string, roleID uint) (int64, error) {
	var kept []*model.UserRole
	var deleted int64
	for _, a := range r.assignments {
		if a.UserID == userID && a.RoleID == roleID {
			deleted++
			continue
		}
		kept = append(kept, a)
	}
	r.assignments = kept
	return deleted, nil
}

func (r *stubUserRoleRepo) DeleteByRoleID(ctx context.Context, roleID uint) error {
	var kept []*model.UserRole
	for _, a := range r.assignments {
		if a.RoleID != roleID {
			kept = append(kept, a)
		}
	}
	r.assignments = kept
	return nil
}

type nullStorage struct{}

func (nullStorage) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, store.ErrNotFound
}

func (nullStorage) Set(ctx context.Context, key string, val []byte, expiresIn time.Duration) error {
	return nil
}

func (nullStorage) Delete(ctx context.Context, key string) error {
	return nil
}

func newTestService(t *testing.T) (*Service, *stubRoleRepo, *stubUserRoleRepo) {
	t.Helper()
	roleRepo := newStubRoleRepo()
	userRoleRepo := &stubUserRoleRepo{roles: roleRepo}
	return NewService(roleRepo, userRoleRepo, nullStorage{}), roleRepo, userRoleRepo
}

func mustCreateRole(t *testing.T, svc *Service, name string, perms ...string) *model.Role {
	t.Helper()
	role, err := svc.CreateRole(context.Background(), CreateRoleOptions{Name: name, Permissions: perms})
	if err != nil {
		t.Fatalf("CreateRole(%q) failed: %v", name, err)
	}
	return role
}

func TestGetPermissionsUnion(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	analyst := mustCreateRole(t, svc, "Analyst", "view_logs", "view_assets")
	responder := mustCreateRole(t, svc, "Responder", "view_logs", "manage_logs")

	if err := svc.AssignRole(ctx, "u1", analyst.ID); err != nil {
		t.Fatal(err)
	}
	if err := svc.AssignRole(ctx, "u1", responder.ID); err != nil {
		t.Fatal(err)
	}

	perms, err := svc.GetPermissions(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	want := NewPermissionSet(PermViewLogs, PermViewAssets, PermManageLogs)
	if len(perms) != len(want) || !perms.HasAll(PermViewLogs, PermViewAssets, PermManageLogs) {
		t.Errorf("got %v, want %v", perms.List(), want.List())
	}

	// Revoking Responder must remove manage_logs but keep the shared view_logs.
	if err := svc.RevokeRole(ctx, "u1", responder.ID); err != nil {
		t.Fatal(err)
	}
	perms, err = svc.GetPermissions(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if perms.Has(PermManageLogs) {
		t.Error("manage_logs should be gone after revoking Responder")
	}
	if !perms.Has(PermViewLogs) {
		t.Error("view_logs is still granted by Analyst and must remain")
	}
}

func TestGetPermissionsNoAssignments(t *testing.T) {
	svc, _, _ := newTestService(t)
	perms, err := svc.GetPermissions(context.Background(), "ghost")
	if err != nil {
		t.Fatal(err)
	}
	if len(perms) != 0 {
		t.Errorf("expected empty set, got %v", perms.List())
	}
}

func TestIsSuperAdminConjunction(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	usersOnly := mustCreateRole(t, svc, "User Manager", "manage_users")
	rolesOnly := mustCreateRole(t, svc, "Role Manager", "manage_roles")

	if err := svc.AssignRole(ctx, "u1", usersOnly.ID); err != nil {
		t.Fatal(err)
	}
	super, err := svc.IsSuperAdmin(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if super {
		t.Error("manage_users alone must not make a super admin")
	}

	if err := svc.AssignRole(ctx, "u1", rolesOnly.ID); err != nil {
		t.Fatal(err)
	}
	super, err = svc.IsSuperAdmin(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if !super {
		t.Error("manage_users + manage_roles must make a super admin")
	}
}

func TestSeedRoleDeleteRejected(t *testing.T) {
	svc, roleRepo, _ := newTestService(t)
	ctx := context.Background()

	if err := SeedRoles(ctx, roleRepo); err != nil {
		t.Fatalf("SeedRoles failed: %v", err)
	}

	for _, name := range []string{RoleSuperAdmin, RoleSOCAdmin, RoleClientUser} {
		role, err := roleRepo.FirstByName(ctx, name)
		if err != nil {
			t.Fatalf("seed role %q missing: %v", name, err)
		}
		if err := svc.DeleteRole(ctx, role.ID); !errors.Is(err, ErrSeedRoleProtected) {
			t.Errorf("deleting %q: got %v, want ErrSeedRoleProtected", name, err)
		}
	}
}

func TestClientUserSeedPermissions(t *testing.T) {
	svc, roleRepo, _ := newTestService(t)
	ctx := context.Background()

	if err := SeedRoles(ctx, roleRepo); err != nil {
		t.Fatal(err)
	}
	clientUser, err := roleRepo.FirstByName(ctx, RoleClientUser)
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.AssignRole(ctx, "p1", clientUser.ID); err != nil {
		t.Fatal(err)
	}

	perms, err := svc.GetPermissions(ctx, "p1")
	if err != nil {
		t.Fatal(err)
	}
	want := NewPermissionSet(PermViewLogs, PermViewAssets, PermViewReports)
	if len(perms) != 3 || !perms.HasAll(PermViewLogs, PermViewAssets, PermViewReports) {
		t.Errorf("got %v, want %v", perms.List(), want.List())
	}
}

func TestCreateRoleValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateRole(ctx, CreateRoleOptions{Name: ""}); !errors.Is(err, ErrRoleNameEmpty) {
		t.Errorf("empty name: got %v", err)
	}
	if _, err := svc.CreateRole(ctx, CreateRoleOptions{Name: "X", Permissions: []string{"fly_spaceship"}}); !errors.Is(err, ErrInvalidPermission) {
		t.Errorf("unknown tag: got %v", err)
	}

	mustCreateRole(t, svc, "Dup", "view_logs")
	if _, err := svc.CreateRole(ctx, CreateRoleOptions{Name: "Dup"}); !errors.Is(err, ErrRoleNameTaken) {
		t.Errorf("duplicate name: got %v", err)
	}
}

func TestAssignRoleDuplicate(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	role := mustCreateRole(t, svc, "Analyst", "view_logs")
	if err := svc.AssignRole(ctx, "u1", role.ID); err != nil {
		t.Fatal(err)
	}
	if err := svc.AssignRole(ctx, "u1", role.ID); !errors.Is(err, ErrAlreadyAssigned) {
		t.Errorf("got %v, want ErrAlreadyAssigned", err)
	}
	if err := svc.RevokeRole(ctx, "u2", role.ID); !errors.Is(err, ErrAssignmentNotFound) {
		t.Errorf("got %v, want ErrAssignmentNotFound", err)
	}
}

func TestRolePermissionsDiscardsUnknownTags(t *testing.T) {
	encoded, _ := json.Marshal([]string{"view_logs", "fly_spaceship", "manage_logs"})
	role := &model.Role{Name: "Mixed", Permissions: encoded}
	perms := RolePermissions(role)
	if len(perms) != 2 || !perms.HasAll(PermViewLogs, PermManageLogs) {
		t.Errorf("got %v, want only the two known tags", perms.List())
	}
}
