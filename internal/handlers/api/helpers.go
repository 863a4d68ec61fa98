package api

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sentrasec/sentra/internal/assets"
	"github.com/sentrasec/sentra/internal/audit"
	"github.com/sentrasec/sentra/internal/events"
	"github.com/sentrasec/sentra/internal/knowledge"
	"github.com/sentrasec/sentra/internal/middlewares"
	"github.com/sentrasec/sentra/internal/rbac"
	"github.com/sentrasec/sentra/internal/tenants"
	"github.com/sentrasec/sentra/internal/users"
)

func parseIDParam(ctx *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(ctx.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.ErrBadRequest
	}
	return uint(id), nil
}

// queryClientID extracts the optional ?clientId= filter.
func queryClientID(ctx *fiber.Ctx) *uint {
	raw := ctx.Query("clientId")
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil
	}
	clientID := uint(id)
	return &clientID
}

// scopedClientID returns the tenant filter the caller may use. Identities
// bound to a client and lacking view_all_clients are pinned to their own
// tenant regardless of what they requested.
func scopedClientID(ctx *fiber.Ctx, requested *uint) *uint {
	identity := middlewares.IdentityFromCtx(ctx)
	if identity == nil || identity.Profile == nil || identity.Profile.ClientID == nil {
		return requested
	}
	if middlewares.PermissionsFromCtx(ctx).Has(rbac.PermViewAllClients) {
		return requested
	}
	return identity.Profile.ClientID
}

var badRequestErrors = []error{
	tenants.ErrCompanyNameEmpty,
	tenants.ErrClientNameEmpty,
	tenants.ErrInvalidEmail,
	users.ErrInvalidEmail,
	rbac.ErrRoleNameEmpty,
	rbac.ErrInvalidPermission,
	assets.ErrAssetNameEmpty,
	assets.ErrInvalidIP,
	events.ErrEventMissingStamp,
	events.ErrNoEventsIngested,
	knowledge.ErrNoChunksProcessed,
}

var notFoundErrors = []error{
	tenants.ErrCompanyNotFound,
	tenants.ErrClientNotFound,
	users.ErrProfileNotFound,
	rbac.ErrRoleNotFound,
	rbac.ErrAssignmentNotFound,
	assets.ErrAssetNotFound,
	events.ErrEventNotFound,
}

var conflictErrors = []error{
	tenants.ErrCompanyHasClients,
	rbac.ErrRoleNameTaken,
	rbac.ErrAlreadyAssigned,
	rbac.ErrSeedRoleProtected,
	events.ErrDuplicateEventID,
}

func matchesAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// failError maps known service errors onto JSON API error responses.
// Unrecognized errors are logged and reported as internal.
func failError(ctx *fiber.Ctx, err error) error {
	switch {
	case matchesAny(err, badRequestErrors):
		return ctx.Status(fiber.StatusBadRequest).JSON(NewErrorResponse(fiber.StatusBadRequest, err.Error()))
	case matchesAny(err, notFoundErrors):
		return ctx.Status(fiber.StatusNotFound).JSON(NewErrorResponse(fiber.StatusNotFound, err.Error()))
	case matchesAny(err, conflictErrors):
		return ctx.Status(fiber.StatusConflict).JSON(NewErrorResponse(fiber.StatusConflict, err.Error()))
	default:
		slog.Error("Request failed", "path", ctx.Path(), "error", err)
		return ctx.Status(fiber.StatusInternalServerError).JSON(
			NewErrorResponse(fiber.StatusInternalServerError, "Internal server error"),
		)
	}
}

// recordAudit logs the admin action trail. Failures are non-fatal: the
// mutation has already been committed.
func recordAudit(ctx *fiber.Ctx, eventType string, targetType string, targetID string, clientID *uint, detail string) {
	var userID string
	if identity := middlewares.IdentityFromCtx(ctx); identity != nil {
		userID = identity.UserID
	}
	record := audit.ActionRecord{
		UserID:     userID,
		EventType:  eventType,
		TargetType: targetType,
		TargetID:   targetID,
		ClientID:   clientID,
		Detail:     detail,
		IP:         ctx.IP(),
		UserAgent:  ctx.Get(fiber.HeaderUserAgent),
	}
	if err := audit.RecordAction(ctx.Context(), record); err != nil {
		slog.Warn("Failed to record audit event", "eventType", eventType, "error", err)
	}
}
