package api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sentrasec/sentra/internal/assets"
	"github.com/sentrasec/sentra/internal/audit"
	"github.com/sentrasec/sentra/model"
)

type AssetHandler struct {
	assetService AssetService
	vulnSync     VulnSyncService
}

func NewAssetHandler(assetService AssetService, vulnSync VulnSyncService) *AssetHandler {
	return &AssetHandler{
		assetService: assetService,
		vulnSync:     vulnSync,
	}
}

func (h *AssetHandler) GetAssets(ctx *fiber.Ctx) error {
	clientID := scopedClientID(ctx, queryClientID(ctx))
	list, err := h.assetService.List(ctx.Context(), assets.AssetFilter{ClientID: clientID})
	if err != nil {
		return failError(ctx, err)
	}
	return ctx.JSON(NewDataResponse(list))
}

func (h *AssetHandler) GetAsset(ctx *fiber.Ctx) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return err
	}
	asset, err := h.assetService.Get(ctx.Context(), id)
	if err != nil {
		return failError(ctx, err)
	}
	if own := scopedClientID(ctx, nil); own != nil && asset.ClientID != *own {
		return fiber.ErrForbidden
	}
	return ctx.JSON(NewDataResponse(asset))
}

func (h *AssetHandler) PostAsset(ctx *fiber.Ctx) error {
	var req struct {
		ClientID        uint                  `json:"clientId"`
		Name            string                `json:"name"`
		IPAddress       string                `json:"ipAddress"`
		Status          string                `json:"status"`
		Vulnerabilities []model.Vulnerability `json:"vulnerabilities"`
	}
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if own := scopedClientID(ctx, nil); own != nil {
		req.ClientID = *own
	}
	asset, err := h.assetService.Create(ctx.Context(), assets.CreateAssetOptions{
		ClientID:        req.ClientID,
		Name:            req.Name,
		IPAddress:       req.IPAddress,
		Status:          req.Status,
		Vulnerabilities: req.Vulnerabilities,
	})
	if err != nil {
		return failError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(NewDataResponse(asset))
}

func (h *AssetHandler) PutAsset(ctx *fiber.Ctx) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return err
	}
	var req struct {
		Name            *string               `json:"name"`
		IPAddress       *string               `json:"ipAddress"`
		Status          *string               `json:"status"`
		Vulnerabilities []model.Vulnerability `json:"vulnerabilities"`
	}
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	asset, err := h.assetService.Update(ctx.Context(), id, assets.UpdateAssetOptions{
		Name:            req.Name,
		IPAddress:       req.IPAddress,
		Status:          req.Status,
		Vulnerabilities: req.Vulnerabilities,
	})
	if err != nil {
		return failError(ctx, err)
	}
	return ctx.JSON(NewDataResponse(asset))
}

func (h *AssetHandler) DeleteAsset(ctx *fiber.Ctx) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return err
	}
	if err := h.assetService.Delete(ctx.Context(), id); err != nil {
		return failError(ctx, err)
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

// PostSyncVulnerabilities pushes the tenant's current vulnerability findings
// into the knowledge base so the assistant can reason about them.
func (h *AssetHandler) PostSyncVulnerabilities(ctx *fiber.Ctx) error {
	clientID, err := parseIDParam(ctx, "id")
	if err != nil {
		return err
	}
	result, err := h.vulnSync.SyncClient(ctx.Context(), clientID)
	if err != nil {
		return failError(ctx, err)
	}
	recordAudit(ctx, audit.EventTypeVulnSynced, "client", ctx.Params("id"), &clientID,
		strconv.Itoa(result.ChunksProcessed)+" chunks")
	return ctx.JSON(NewDataResponse(result))
}
