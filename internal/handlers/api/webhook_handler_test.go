package api

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sentrasec/sentra/internal/common"
	"github.com/sentrasec/sentra/internal/users"
	"github.com/sentrasec/sentra/model"
)

type stubProfileService struct {
	registered *users.RegisterProfileOptions
}

func (s *stubProfileService) List(ctx context.Context, filter users.ProfileFilter) ([]*model.Profile, error) {
	return nil, nil
}

func (s *stubProfileService) GetByID(ctx context.Context, id uint) (*model.Profile, error) {
	return nil, users.ErrProfileNotFound
}

func (s *stubProfileService) GetByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	return nil, users.ErrProfileNotFound
}

func (s *stubProfileService) Register(ctx context.Context, opts users.RegisterProfileOptions) (*model.Profile, error) {
	s.registered = &opts
	return &model.Profile{ID: 1, UserID: opts.UserID, Email: opts.Email}, nil
}

func (s *stubProfileService) Update(ctx context.Context, id uint, opts users.UpdateProfileOptions) (*model.Profile, error) {
	return nil, users.ErrProfileNotFound
}

func (s *stubProfileService) Delete(ctx context.Context, id uint) error {
	return users.ErrProfileNotFound
}

func TestIdentityHook(t *testing.T) {
	svc := &stubProfileService{}
	handler := NewWebhookHandler(svc, "hook-secret")
	app := fiber.New()
	app.Post("/api/hooks/identity", handler.PostIdentityHook)

	body := []byte(`{"userId":"ext-123","displayName":"Analyst","email":"analyst@example.test"}`)
	req := httptest.NewRequest("POST", "/api/hooks/identity", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Signature", common.CalculateHash("hook-secret", body))
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("status code: %d, want %d", resp.StatusCode, fiber.StatusCreated)
	}
	if svc.registered == nil || svc.registered.UserID != "ext-123" {
		t.Errorf("register options not forwarded: %+v", svc.registered)
	}
}

func TestIdentityHookBadSignature(t *testing.T) {
	svc := &stubProfileService{}
	handler := NewWebhookHandler(svc, "hook-secret")
	app := fiber.New()
	app.Post("/api/hooks/identity", handler.PostIdentityHook)

	body := []byte(`{"userId":"ext-123"}`)
	req := httptest.NewRequest("POST", "/api/hooks/identity", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Signature", common.CalculateHash("wrong-secret", body))
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("status code: %d, want %d", resp.StatusCode, fiber.StatusUnauthorized)
	}
	if svc.registered != nil {
		t.Error("profile must not be registered on bad signature")
	}
}

func TestIdentityHookMissingSecret(t *testing.T) {
	handler := NewWebhookHandler(&stubProfileService{}, "")
	app := fiber.New()
	app.Post("/api/hooks/identity", handler.PostIdentityHook)

	body := []byte(`{"userId":"ext-123"}`)
	req := httptest.NewRequest("POST", "/api/hooks/identity", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Signature", common.CalculateHash("", body))
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("status code: %d, want %d", resp.StatusCode, fiber.StatusUnauthorized)
	}
}
