package auth

import (
	"strings"

	"backend-fieldops/internal/apierror"
	"backend-fieldops/internal/logger"

	"github.com/gofiber/fiber/v2"
)

const principalKey = "principal"

// JWTMiddleware validates bearer tokens and stores the principal in locals.
// The access_token query parameter is accepted when no header is sent.
func JWTMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerFromHeader(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			// browsers cannot set headers on websocket upgrades
			token = c.Query("access_token")
		}
		if token == "" {
			return apierror.Unauthorized("missing bearer token")
		}

		principal, err := ParseToken(secret, token)
		if err != nil {
			return apierror.Unauthorized(err.Error())
		}

		c.Locals(principalKey, principal)
		c.Locals("user_id", principal.UserID)
		c.SetUserContext(logger.WithUserID(c.UserContext(), principal.UserID))
		return c.Next()
	}
}

// CurrentPrincipal returns the principal stored by JWTMiddleware.
func CurrentPrincipal(c *fiber.Ctx) (Principal, bool) {
	p, ok := c.Locals(principalKey).(Principal)
	return p, ok && p.UserID != ""
}

func bearerFromHeader(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
