package middlewares

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sentrasec/sentra/internal/users"
	"github.com/sentrasec/sentra/model"
)

const identityLocalsKey = "identity"

// Identity is the resolved caller: the subject of the verified bearer token
// plus the persisted profile, when one exists.
type Identity struct {
	UserID  string
	Profile *model.Profile
}

// Authenticate verifies the HS256 bearer token issued by the external auth
// service and resolves the subject to a profile. Requests without a valid
// token are rejected.
func Authenticate(tokenSecret string, profileService *users.ProfileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Missing bearer token")
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			return []byte(tokenSecret), nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil || !token.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid bearer token")
		}

		subject, err := token.Claims.GetSubject()
		if err != nil || subject == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Token has no subject")
		}

		identity := &Identity{UserID: subject}
		profile, err := profileService.GetByUserID(c.Context(), subject)
		if err == nil {
			identity.Profile = profile
		} else if !errors.Is(err, users.ErrProfileNotFound) {
			return fiber.NewError(fiber.StatusUnauthorized, "Failed to resolve profile")
		}

		c.Locals(identityLocalsKey, identity)
		return c.Next()
	}
}

// SetIdentity stores the identity on the request. Exposed for handlers and
// tests that authenticate by other means.
func SetIdentity(c *fiber.Ctx, identity *Identity) {
	c.Locals(identityLocalsKey, identity)
}

// IdentityFromCtx returns the identity attached by Authenticate, or nil.
func IdentityFromCtx(c *fiber.Ctx) *Identity {
	identity, _ := c.Locals(identityLocalsKey).(*Identity)
	return identity
}
