package api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sentrasec/sentra/internal/audit"
	"github.com/sentrasec/sentra/internal/knowledge"
)

type KnowledgeHandler struct {
	ingestor KnowledgeIngestor
	store    KnowledgeStore
}

func NewKnowledgeHandler(ingestor KnowledgeIngestor, store KnowledgeStore) *KnowledgeHandler {
	return &KnowledgeHandler{
		ingestor: ingestor,
		store:    store,
	}
}

func (h *KnowledgeHandler) PostIngest(ctx *fiber.Ctx) error {
	var req struct {
		ClientID  *uint                     `json:"clientId"`
		Documents []knowledge.DocumentInput `json:"documents"`
	}
	if err := ctx.BodyParser(&req); err != nil || len(req.Documents) == 0 {
		return fiber.ErrBadRequest
	}
	result, err := h.ingestor.IngestDocuments(ctx.Context(), req.Documents, req.ClientID)
	if err != nil {
		return failError(ctx, err)
	}
	recordAudit(ctx, audit.EventTypeKnowledgeIngest, "knowledge", "", req.ClientID,
		strconv.Itoa(result.ChunksProcessed)+" chunks from "+strconv.Itoa(result.DocumentsProcessed)+" documents")
	return ctx.Status(fiber.StatusCreated).JSON(NewDataResponse(result))
}

func (h *KnowledgeHandler) DeleteClientKnowledge(ctx *fiber.Ctx) error {
	clientID, err := parseIDParam(ctx, "clientId")
	if err != nil {
		return err
	}
	removed, err := h.store.Clear(ctx.Context(), clientID)
	if err != nil {
		return failError(ctx, err)
	}
	recordAudit(ctx, audit.EventTypeKnowledgeCleared, "knowledge", ctx.Params("clientId"), &clientID,
		strconv.FormatInt(removed, 10)+" entries")
	return ctx.JSON(NewDataResponse(fiber.Map{"removed": removed}))
}

func (h *KnowledgeHandler) GetCount(ctx *fiber.Ctx) error {
	count, err := h.store.Count(ctx.Context(), queryClientID(ctx))
	if err != nil {
		return failError(ctx, err)
	}
	return ctx.JSON(NewDataResponse(fiber.Map{"count": count}))
}
