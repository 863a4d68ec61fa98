package api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sentrasec/sentra/internal/audit"
	"github.com/sentrasec/sentra/internal/tenants"
)

type CompanyHandler struct {
	companyService CompanyService
}

func NewCompanyHandler(companyService CompanyService) *CompanyHandler {
	return &CompanyHandler{companyService: companyService}
}

type companyRequest struct {
	Name     string         `json:"name"`
	Email    string         `json:"email"`
	Settings map[string]any `json:"settings"`
}

func (h *CompanyHandler) GetCompanies(ctx *fiber.Ctx) error {
	companies, err := h.companyService.List(ctx.Context())
	if err != nil {
		return failError(ctx, err)
	}
	return ctx.JSON(NewDataResponse(companies))
}

func (h *CompanyHandler) GetCompany(ctx *fiber.Ctx) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return err
	}
	company, err := h.companyService.Get(ctx.Context(), id)
	if err != nil {
		return failError(ctx, err)
	}
	return ctx.JSON(NewDataResponse(company))
}

func (h *CompanyHandler) PostCompany(ctx *fiber.Ctx) error {
	var req companyRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	company, err := h.companyService.Create(ctx.Context(), tenants.CreateCompanyOptions{
		Name:     req.Name,
		Email:    req.Email,
		Settings: req.Settings,
	})
	if err != nil {
		return failError(ctx, err)
	}
	recordAudit(ctx, audit.EventTypeCompanyCreated, "company", strconv.FormatUint(uint64(company.ID), 10), nil, company.Name)
	return ctx.Status(fiber.StatusCreated).JSON(NewDataResponse(company))
}

func (h *CompanyHandler) PutCompany(ctx *fiber.Ctx) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return err
	}
	var req struct {
		Name     *string        `json:"name"`
		Email    *string        `json:"email"`
		Settings map[string]any `json:"settings"`
	}
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	company, err := h.companyService.Update(ctx.Context(), id, tenants.UpdateCompanyOptions{
		Name:     req.Name,
		Email:    req.Email,
		Settings: req.Settings,
	})
	if err != nil {
		return failError(ctx, err)
	}
	recordAudit(ctx, audit.EventTypeCompanyUpdated, "company", ctx.Params("id"), nil, company.Name)
	return ctx.JSON(NewDataResponse(company))
}

func (h *CompanyHandler) DeleteCompany(ctx *fiber.Ctx) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return err
	}
	if err := h.companyService.Delete(ctx.Context(), id); err != nil {
		return failError(ctx, err)
	}
	recordAudit(ctx, audit.EventTypeCompanyDeleted, "company", ctx.Params("id"), nil, "")
	return ctx.SendStatus(fiber.StatusNoContent)
}
