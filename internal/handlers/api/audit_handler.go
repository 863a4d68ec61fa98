package api

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/sentrasec/sentra/model"
)

type AuditLog interface {
	Find(ctx context.Context, userID string, limit int) ([]*model.AuditEvent, error)
}

type AuditHandler struct {
	auditLog AuditLog
}

func NewAuditHandler(auditLog AuditLog) *AuditHandler {
	return &AuditHandler{auditLog: auditLog}
}

// GetAuditEvents lists the most recent admin actions, optionally filtered by
// the acting identity.
func (h *AuditHandler) GetAuditEvents(ctx *fiber.Ctx) error {
	records, err := h.auditLog.Find(ctx.Context(), ctx.Query("userId"), ctx.QueryInt("limit"))
	if err != nil {
		return failError(ctx, err)
	}
	return ctx.JSON(NewDataResponse(records))
}
