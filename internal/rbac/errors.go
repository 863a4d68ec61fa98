package rbac

import "errors"

var (
	ErrRoleNotFound       = errors.New("role not found")
	ErrRoleNameTaken      = errors.New("role name already in use")
	ErrRoleNameEmpty      = errors.New("role name cannot be empty")
	ErrSeedRoleProtected  = errors.New("built-in role cannot be deleted")
	ErrInvalidPermission  = errors.New("unknown permission tag")
	ErrAlreadyAssigned    = errors.New("role already assigned to user")
	ErrAssignmentNotFound = errors.New("role assignment not found")
)
