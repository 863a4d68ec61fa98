package api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sentrasec/sentra/internal/audit"
	"github.com/sentrasec/sentra/internal/tenants"
	"github.com/sentrasec/sentra/model"
)

type ClientHandler struct {
	clientService ClientService
}

func NewClientHandler(clientService ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// clientCreatedResponse carries the clear-text API key exactly once, at
// creation or rotation. Only the bcrypt hash is stored.
type clientCreatedResponse struct {
	Client *model.Client `json:"client"`
	APIKey string        `json:"apiKey"`
}

func (h *ClientHandler) GetClients(ctx *fiber.Ctx) error {
	var companyID *uint
	if raw := ctx.Query("companyId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return fiber.ErrBadRequest
		}
		parsed := uint(id)
		companyID = &parsed
	}
	clients, err := h.clientService.List(ctx.Context(), tenants.ClientFilter{CompanyID: companyID})
	if err != nil {
		return failError(ctx, err)
	}
	if own := scopedClientID(ctx, nil); own != nil {
		scoped := clients[:0]
		for _, client := range clients {
			if client.ID == *own {
				scoped = append(scoped, client)
			}
		}
		clients = scoped
	}
	return ctx.JSON(NewDataResponse(clients))
}

func (h *ClientHandler) GetClient(ctx *fiber.Ctx) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return err
	}
	if own := scopedClientID(ctx, &id); own != nil && *own != id {
		return fiber.ErrForbidden
	}
	client, err := h.clientService.Get(ctx.Context(), id)
	if err != nil {
		return failError(ctx, err)
	}
	return ctx.JSON(NewDataResponse(client))
}

func (h *ClientHandler) PostClient(ctx *fiber.Ctx) error {
	var req struct {
		Name        string `json:"name"`
		Email       string `json:"email"`
		CompanyID   uint   `json:"companyId"`
		EDREndpoint string `json:"edrEndpoint"`
	}
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	client, apiKey, err := h.clientService.Create(ctx.Context(), tenants.CreateClientOptions{
		Name:        req.Name,
		Email:       req.Email,
		CompanyID:   req.CompanyID,
		EDREndpoint: req.EDREndpoint,
	})
	if err != nil {
		return failError(ctx, err)
	}
	recordAudit(ctx, audit.EventTypeClientCreated, "client", strconv.FormatUint(uint64(client.ID), 10), &client.ID, client.Name)
	return ctx.Status(fiber.StatusCreated).JSON(NewDataResponse(clientCreatedResponse{
		Client: client,
		APIKey: apiKey,
	}))
}

func (h *ClientHandler) PutClient(ctx *fiber.Ctx) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return err
	}
	var req struct {
		Name        *string `json:"name"`
		Email       *string `json:"email"`
		Status      *string `json:"status"`
		EDREndpoint *string `json:"edrEndpoint"`
	}
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	client, err := h.clientService.Update(ctx.Context(), id, tenants.UpdateClientOptions{
		Name:        req.Name,
		Email:       req.Email,
		Status:      req.Status,
		EDREndpoint: req.EDREndpoint,
	})
	if err != nil {
		return failError(ctx, err)
	}
	recordAudit(ctx, audit.EventTypeClientUpdated, "client", ctx.Params("id"), &client.ID, client.Name)
	return ctx.JSON(NewDataResponse(client))
}

func (h *ClientHandler) PostRotateAPIKey(ctx *fiber.Ctx) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return err
	}
	apiKey, err := h.clientService.RotateAPIKey(ctx.Context(), id)
	if err != nil {
		return failError(ctx, err)
	}
	recordAudit(ctx, audit.EventTypeClientKeyRotated, "client", ctx.Params("id"), &id, "")
	return ctx.JSON(NewDataResponse(fiber.Map{"apiKey": apiKey}))
}

func (h *ClientHandler) DeleteClient(ctx *fiber.Ctx) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return err
	}
	if err := h.clientService.Delete(ctx.Context(), id); err != nil {
		return failError(ctx, err)
	}
	recordAudit(ctx, audit.EventTypeClientDeleted, "client", ctx.Params("id"), &id, "")
	return ctx.SendStatus(fiber.StatusNoContent)
}
