package middlewares

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/sentrasec/sentra/model"
	"github.com/spf13/cast"
)

const clientLocalsKey = "client"

// ClientAuthenticator verifies a tenant API key against the stored hash.
type ClientAuthenticator interface {
	AuthenticateAPIKey(ctx context.Context, id uint, key string) (*model.Client, error)
}

// AuthenticateClient authenticates machine integrations (EDR forwarders and
// log shippers) by tenant id and API key. Suspended tenants are rejected.
func AuthenticateClient(auth ClientAuthenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		clientID := cast.ToUint(c.Get("X-Client-ID"))
		key := c.Get("X-Client-Key")
		if clientID == 0 || key == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Missing client credentials")
		}

		client, err := auth.AuthenticateAPIKey(c.Context(), clientID, key)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid client credentials")
		}
		if client.Status() == model.ClientStatusSuspended {
			return fiber.NewError(fiber.StatusForbidden, "Client is suspended")
		}

		c.Locals(clientLocalsKey, client)
		return c.Next()
	}
}

// ClientFromCtx returns the client attached by AuthenticateClient, or nil.
func ClientFromCtx(c *fiber.Ctx) *model.Client {
	client, _ := c.Locals(clientLocalsKey).(*model.Client)
	return client
}
