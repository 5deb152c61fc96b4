package middleware

import (
	"github.com/gofiber/fiber/v3"
)

// IdentityHeader is set by the fronting proxy after it authenticates the
// caller. The API itself performs no authentication; it only scopes
// user-owned resources by this value.
const IdentityHeader = "X-User-ID"

// TrustedIdentity copies the proxy-set identity header into the request
// locals so handlers can read user_id the same way regardless of deployment.
func TrustedIdentity() fiber.Handler {
	return func(c fiber.Ctx) error {
		if id := c.Get(IdentityHeader); id != "" {
			c.Locals("user_id", id)
		}
		return c.Next()
	}
}
