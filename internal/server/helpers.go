package server

import (
	"log/slog"
	"strings"

	"memberbase/internal/auth"
	"memberbase/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// logWarn logs a request-scoped warning through the context-aware logger.
func logWarn(c *fiber.Ctx, msg string, err error) {
	middleware.Logger.WarnContext(c.UserContext(), msg, slog.String("error", err.Error()))
}

// claimsFromLocals returns the verified claims the access gate stored for an
// API request. Handlers behind a protected prefix can rely on it being set.
func claimsFromLocals(c *fiber.Ctx) *auth.Claims {
	claims, _ := c.Locals("claims").(*auth.Claims)
	return claims
}

// optionalClaims verifies a token if one is present, without enforcing it.
// Used by public endpoints that behave differently for identified callers.
func (s *Server) optionalClaims(c *fiber.Ctx) (*auth.Claims, bool) {
	token := s.extractToken(c, "")
	if token == "" {
		return nil, false
	}
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, false
	}
	return claims, true
}

// maskContact hides most of a contact address in OTP responses, e.g.
// "jo***@example.com" or "+4479*****21".
func maskContact(contact string) string {
	if at := strings.Index(contact, "@"); at > 0 {
		visible := 2
		if at < 2 {
			visible = 1
		}
		return contact[:visible] + "***" + contact[at:]
	}
	if len(contact) > 7 {
		return contact[:5] + "*****" + contact[len(contact)-2:]
	}
	return "***"
}

// paginationParams reads limit/offset query parameters with sane bounds.
func paginationParams(c *fiber.Ctx) (limit, offset int) {
	limit = c.QueryInt("limit", 50)
	if limit < 1 {
		limit = 1
	}
	if limit > 200 {
		limit = 200
	}
	offset = c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
