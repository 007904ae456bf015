package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ntimofeev/auth-service/internal/domain/token"
	"github.com/ntimofeev/auth-service/internal/utils"
)

const (
	// IdentityKey is the key used to store the identity in Fiber context
	IdentityKey = "identity"
)

// Identity represents the authenticated caller
type Identity struct {
	UserID  string
	TokenID string
}

// Middleware verifies the bearer access token on every request. Expired
// tokens get their own error code so clients know to refresh; a revoked
// token is answered exactly like an invalid one so callers cannot probe
// revocation state, and a store outage fails closed.
func Middleware(validator *token.Validator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return utils.ErrorResponse(c, "missing_authorization_header", fiber.StatusUnauthorized)
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return utils.ErrorResponse(c, "invalid_authorization_header", fiber.StatusUnauthorized)
		}

		claims, err := validator.Validate(c.UserContext(), parts[1], token.ExpectClass(token.ClassAccess))
		switch {
		case err == nil:
		case errors.Is(err, token.ErrTokenExpired):
			return utils.ErrorResponse(c, "token_expired", fiber.StatusUnauthorized)
		case errors.Is(err, token.ErrTokenInvalid), errors.Is(err, token.ErrTokenRevoked):
			return utils.ErrorResponse(c, "invalid_token", fiber.StatusUnauthorized)
		default:
			return utils.ErrorResponse(c, "token_validation_error", fiber.StatusServiceUnavailable)
		}

		c.Locals(IdentityKey, &Identity{
			UserID:  claims.Subject,
			TokenID: claims.TokenID,
		})

		return c.Next()
	}
}

// GetIdentity extracts the identity from Fiber context
func GetIdentity(c *fiber.Ctx) *Identity {
	identity, ok := c.Locals(IdentityKey).(*Identity)
	if !ok {
		return nil
	}
	return identity
}
