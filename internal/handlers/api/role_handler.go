package api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sentrasec/sentra/internal/audit"
	"github.com/sentrasec/sentra/internal/rbac"
)

type RoleHandler struct {
	roleService RoleService
}

func NewRoleHandler(roleService RoleService) *RoleHandler {
	return &RoleHandler{roleService: roleService}
}

func (h *RoleHandler) GetRoles(ctx *fiber.Ctx) error {
	roles, err := h.roleService.ListRoles(ctx.Context())
	if err != nil {
		return failError(ctx, err)
	}
	return ctx.JSON(NewDataResponse(roles))
}

func (h *RoleHandler) GetRole(ctx *fiber.Ctx) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return err
	}
	role, err := h.roleService.GetRole(ctx.Context(), id)
	if err != nil {
		return failError(ctx, err)
	}
	return ctx.JSON(NewDataResponse(role))
}

func (h *RoleHandler) PostRole(ctx *fiber.Ctx) error {
	var req struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		Permissions []string `json:"permissions"`
	}
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	role, err := h.roleService.CreateRole(ctx.Context(), rbac.CreateRoleOptions{
		Name:        req.Name,
		Description: req.Description,
		Permissions: req.Permissions,
	})
	if err != nil {
		return failError(ctx, err)
	}
	recordAudit(ctx, audit.EventTypeRoleCreated, "role", strconv.FormatUint(uint64(role.ID), 10), nil, role.Name)
	return ctx.Status(fiber.StatusCreated).JSON(NewDataResponse(role))
}

func (h *RoleHandler) PutRole(ctx *fiber.Ctx) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return err
	}
	var req struct {
		Description *string  `json:"description"`
		Permissions []string `json:"permissions"`
	}
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	role, err := h.roleService.UpdateRole(ctx.Context(), id, rbac.UpdateRoleOptions{
		Description: req.Description,
		Permissions: req.Permissions,
	})
	if err != nil {
		return failError(ctx, err)
	}
	recordAudit(ctx, audit.EventTypeRoleUpdated, "role", ctx.Params("id"), nil, role.Name)
	return ctx.JSON(NewDataResponse(role))
}

func (h *RoleHandler) DeleteRole(ctx *fiber.Ctx) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return err
	}
	if err := h.roleService.DeleteRole(ctx.Context(), id); err != nil {
		return failError(ctx, err)
	}
	recordAudit(ctx, audit.EventTypeRoleDeleted, "role", ctx.Params("id"), nil, "")
	return ctx.SendStatus(fiber.StatusNoContent)
}
