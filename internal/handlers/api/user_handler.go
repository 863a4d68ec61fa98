package api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sentrasec/sentra/internal/audit"
	"github.com/sentrasec/sentra/internal/middlewares"
	"github.com/sentrasec/sentra/internal/rbac"
	"github.com/sentrasec/sentra/internal/users"
	"github.com/sentrasec/sentra/model"
)

type UserHandler struct {
	profileService ProfileService
	roleService    RoleService
}

func NewUserHandler(profileService ProfileService, roleService RoleService) *UserHandler {
	return &UserHandler{
		profileService: profileService,
		roleService:    roleService,
	}
}

type meResponse struct {
	Profile     *model.Profile `json:"profile"`
	Permissions []string       `json:"permissions"`
	SuperAdmin  bool           `json:"superAdmin"`
}

// GetMe returns the caller's profile and aggregated permission set. Any
// authenticated identity may call it, including ones with no profile yet.
func (h *UserHandler) GetMe(ctx *fiber.Ctx) error {
	identity := middlewares.IdentityFromCtx(ctx)
	if identity == nil {
		return fiber.ErrUnauthorized
	}
	perms, err := h.roleService.GetPermissions(ctx.Context(), identity.UserID)
	if err != nil {
		return failError(ctx, err)
	}
	return ctx.JSON(NewDataResponse(meResponse{
		Profile:     identity.Profile,
		Permissions: perms.List(),
		SuperAdmin:  perms.HasAll(rbac.PermManageUsers, rbac.PermManageRoles),
	}))
}

func (h *UserHandler) GetUsers(ctx *fiber.Ctx) error {
	var filter users.ProfileFilter
	if clientID := queryClientID(ctx); clientID != nil {
		filter.ClientID = clientID
	}
	if raw := ctx.Query("companyId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return fiber.ErrBadRequest
		}
		companyID := uint(id)
		filter.CompanyID = &companyID
	}
	profiles, err := h.profileService.List(ctx.Context(), filter)
	if err != nil {
		return failError(ctx, err)
	}
	return ctx.JSON(NewDataResponse(profiles))
}

func (h *UserHandler) GetUser(ctx *fiber.Ctx) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return err
	}
	profile, err := h.profileService.GetByID(ctx.Context(), id)
	if err != nil {
		return failError(ctx, err)
	}
	return ctx.JSON(NewDataResponse(profile))
}

func (h *UserHandler) PutUser(ctx *fiber.Ctx) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return err
	}
	var req struct {
		DisplayName *string `json:"displayName"`
		CompanyID   *uint   `json:"companyId"`
		ClientID    *uint   `json:"clientId"`
		Role        *string `json:"role"`
	}
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	profile, err := h.profileService.Update(ctx.Context(), id, users.UpdateProfileOptions{
		DisplayName: req.DisplayName,
		CompanyID:   req.CompanyID,
		ClientID:    req.ClientID,
		Role:        req.Role,
	})
	if err != nil {
		return failError(ctx, err)
	}
	recordAudit(ctx, audit.EventTypeProfileUpdated, "profile", ctx.Params("id"), profile.ClientID, profile.UserID)
	return ctx.JSON(NewDataResponse(profile))
}

func (h *UserHandler) DeleteUser(ctx *fiber.Ctx) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return err
	}
	if err := h.profileService.Delete(ctx.Context(), id); err != nil {
		return failError(ctx, err)
	}
	recordAudit(ctx, audit.EventTypeProfileDeleted, "profile", ctx.Params("id"), nil, "")
	return ctx.SendStatus(fiber.StatusNoContent)
}

// Role assignments are keyed by the external identity subject, so the
// profile is resolved first.
func (h *UserHandler) GetUserRoles(ctx *fiber.Ctx) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return err
	}
	profile, err := h.profileService.GetByID(ctx.Context(), id)
	if err != nil {
		return failError(ctx, err)
	}
	assignments, err := h.roleService.GetUserRoles(ctx.Context(), profile.UserID)
	if err != nil {
		return failError(ctx, err)
	}
	return ctx.JSON(NewDataResponse(assignments))
}

func (h *UserHandler) PostUserRole(ctx *fiber.Ctx) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return err
	}
	var req struct {
		RoleID uint `json:"roleId"`
	}
	if err := ctx.BodyParser(&req); err != nil || req.RoleID == 0 {
		return fiber.ErrBadRequest
	}
	profile, err := h.profileService.GetByID(ctx.Context(), id)
	if err != nil {
		return failError(ctx, err)
	}
	if err := h.roleService.AssignRole(ctx.Context(), profile.UserID, req.RoleID); err != nil {
		return failError(ctx, err)
	}
	recordAudit(ctx, audit.EventTypeRoleAssigned, "profile", ctx.Params("id"), nil, strconv.FormatUint(uint64(req.RoleID), 10))
	return ctx.SendStatus(fiber.StatusCreated)
}

func (h *UserHandler) DeleteUserRole(ctx *fiber.Ctx) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return err
	}
	roleID, err := parseIDParam(ctx, "roleId")
	if err != nil {
		return err
	}
	profile, err := h.profileService.GetByID(ctx.Context(), id)
	if err != nil {
		return failError(ctx, err)
	}
	if err := h.roleService.RevokeRole(ctx.Context(), profile.UserID, roleID); err != nil {
		return failError(ctx, err)
	}
	recordAudit(ctx, audit.EventTypeRoleRevoked, "profile", ctx.Params("id"), nil, ctx.Params("roleId"))
	return ctx.SendStatus(fiber.StatusNoContent)
}
