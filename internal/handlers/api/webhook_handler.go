package api

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
	"github.com/sentrasec/sentra/internal/common"
	"github.com/sentrasec/sentra/internal/users"
)

// WebhookHandler receives provisioning callbacks from the external identity
// service. Calls carry an HMAC-SHA256 signature of the body instead of a
// user token.
type WebhookHandler struct {
	profileService ProfileService
	webhookSecret  string
}

func NewWebhookHandler(profileService ProfileService, webhookSecret string) *WebhookHandler {
	return &WebhookHandler{
		profileService: profileService,
		webhookSecret:  webhookSecret,
	}
}

// PostIdentityHook upserts the profile for a newly registered identity. The
// operation is idempotent so the identity service may retry deliveries.
func (h *WebhookHandler) PostIdentityHook(ctx *fiber.Ctx) error {
	signature := ctx.Get("X-Webhook-Signature")
	expected := common.CalculateHash(h.webhookSecret, ctx.Body())
	if h.webhookSecret == "" || subtle.ConstantTimeCompare([]byte(signature), []byte(expected)) != 1 {
		return fiber.ErrUnauthorized
	}

	var req struct {
		UserID      string `json:"userId"`
		DisplayName string `json:"displayName"`
		Email       string `json:"email"`
	}
	if err := ctx.BodyParser(&req); err != nil || req.UserID == "" {
		return fiber.ErrBadRequest
	}

	profile, err := h.profileService.Register(ctx.Context(), users.RegisterProfileOptions{
		UserID:      req.UserID,
		DisplayName: req.DisplayName,
		Email:       req.Email,
	})
	if err != nil {
		return failError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(NewDataResponse(profile))
}
