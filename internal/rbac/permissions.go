package rbac

import (
	"encoding/json"
	"sort"
)

// Permission is one of the closed set of permission tags understood by the
// console. Permission arrays coming from storage are decoded through
// ParsePermission so unknown tags never enter a PermissionSet.
type Permission string

const (
	PermManageUsers    Permission = "manage_users"
	PermManageRoles    Permission = "manage_roles"
	PermViewAllClients Permission = "view_all_clients"
	PermManageClients  Permission = "manage_clients"
	PermViewLogs       Permission = "view_logs"
	PermManageLogs     Permission = "manage_logs"
	PermViewAssets     Permission = "view_assets"
	PermManageAssets   Permission = "manage_assets"
	PermViewReports    Permission = "view_reports"
	PermManageReports  Permission = "manage_reports"
)

var allPermissions = []Permission{
	PermManageUsers,
	PermManageRoles,
	PermViewAllClients,
	PermManageClients,
	PermViewLogs,
	PermManageLogs,
	PermViewAssets,
	PermManageAssets,
	PermViewReports,
	PermManageReports,
}

var validPermissions = func() map[Permission]struct{} {
	m := make(map[Permission]struct{}, len(allPermissions))
	for _, p := range allPermissions {
		m[p] = struct{}{}
	}
	return m
}()

// AllPermissions returns every known permission tag.
func AllPermissions() []Permission {
	out := make([]Permission, len(allPermissions))
	copy(out, allPermissions)
	return out
}

// ParsePermission validates a raw tag against the closed enumeration.
func ParsePermission(s string) (Permission, bool) {
	p := Permission(s)
	_, ok := validPermissions[p]
	return p, ok
}

// PermissionSet is a set of permission tags with union semantics.
type PermissionSet map[Permission]struct{}

func NewPermissionSet(perms ...Permission) PermissionSet {
	set := make(PermissionSet, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

// ParsePermissions builds a set from raw tags, discarding unknown ones.
func ParsePermissions(tags []string) PermissionSet {
	set := make(PermissionSet, len(tags))
	for _, tag := range tags {
		if p, ok := ParsePermission(tag); ok {
			set[p] = struct{}{}
		}
	}
	return set
}

func (s PermissionSet) Has(p Permission) bool {
	_, ok := s[p]
	return ok
}

func (s PermissionSet) HasAny(perms ...Permission) bool {
	for _, p := range perms {
		if s.Has(p) {
			return true
		}
	}
	return false
}

func (s PermissionSet) HasAll(perms ...Permission) bool {
	for _, p := range perms {
		if !s.Has(p) {
			return false
		}
	}
	return true
}

func (s PermissionSet) Union(other PermissionSet) PermissionSet {
	out := make(PermissionSet, len(s)+len(other))
	for p := range s {
		out[p] = struct{}{}
	}
	for p := range other {
		out[p] = struct{}{}
	}
	return out
}

// List returns the tags sorted for stable output.
func (s PermissionSet) List() []string {
	out := make([]string, 0, len(s))
	for p := range s {
		out = append(out, string(p))
	}
	sort.Strings(out)
	return out
}

func (s PermissionSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.List())
}

func (s *PermissionSet) UnmarshalJSON(data []byte) error {
	var tags []string
	if err := json.Unmarshal(data, &tags); err != nil {
		return err
	}
	*s = ParsePermissions(tags)
	return nil
}
