package server

import (
	"context"
	"strings"
	"time"

	"memberbase/internal/auth"
	"memberbase/internal/cache"
	"memberbase/internal/middleware"
	"memberbase/internal/models"

	"github.com/gofiber/fiber/v2"
)

// AccessGate intercepts every request and resolves it to exactly one of
// Allow, Redirect, 401, or 403. It is a pure function of the path, the
// request's cookies/headers, and the current time, plus an optional Redis
// deny-list probe for revoked tokens.
//
// Public rules are checked first so an authentication endpoint can never be
// gated by itself. Paths matching no rule are denied: an endpoint added
// without classification is unreachable rather than silently open.
func (s *Server) AccessGate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		class := auth.Classify(c.Path())

		switch class.Outcome {
		case auth.OutcomePublic:
			return c.Next()
		case auth.OutcomeDenied:
			middleware.AuthDecisions.WithLabelValues("none", "unclassified").Inc()
			if class.API {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Authorization required"))
			}
			return c.Redirect(auth.LoginPath(models.RoleMember), fiber.StatusFound)
		}

		required := class.RequiredRole
		requiredLabel := string(required)

		tokenString := s.extractToken(c, required)
		if tokenString == "" {
			middleware.AuthDecisions.WithLabelValues(requiredLabel, "missing_token").Inc()
			if class.API {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Authorization required"))
			}
			return c.Redirect(auth.LoginPath(required), fiber.StatusFound)
		}

		claims, err := s.tokens.Verify(tokenString)
		if err != nil {
			// A dead token would fail on every retry; clear it so the client
			// does not keep presenting it.
			s.clearAuthCookies(c)
			middleware.AuthDecisions.WithLabelValues(requiredLabel, "invalid_token").Inc()
			if class.API {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Invalid or expired token"))
			}
			return c.Redirect(auth.LoginPath(required), fiber.StatusFound)
		}

		if cache.IsTokenDenied(c.Context(), s.redis, claims.TokenID) {
			s.clearAuthCookies(c)
			middleware.AuthDecisions.WithLabelValues(requiredLabel, "revoked").Inc()
			if class.API {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Token has been revoked"))
			}
			return c.Redirect(auth.LoginPath(required), fiber.StatusFound)
		}

		if !auth.HasRequiredRole(claims.Role, required) {
			middleware.AuthDecisions.WithLabelValues(requiredLabel, "insufficient_role").Inc()
			if class.API {
				return models.RespondWithError(c, fiber.StatusForbidden,
					models.NewForbiddenError("Insufficient role"))
			}
			return c.Redirect("/unauthorized", fiber.StatusFound)
		}

		// Status re-check at request time. This is the one place a
		// post-issuance status change (rejection, disabling) takes effect
		// before the token naturally expires.
		if !claims.Status.CanHoldSession() {
			middleware.AuthDecisions.WithLabelValues(requiredLabel, "status_denied").Inc()
			if class.API {
				return models.RespondWithError(c, fiber.StatusForbidden,
					models.NewNotApprovedError("Account is not approved for access"))
			}
			if claims.Status == models.StatusPending {
				return c.Redirect("/pending-approval", fiber.StatusFound)
			}
			return c.Redirect("/inactive-account", fiber.StatusFound)
		}

		middleware.AuthDecisions.WithLabelValues(requiredLabel, "allow").Inc()

		// Principal context is forwarded to API handlers only.
		if class.API {
			c.Locals("principalID", claims.PrincipalID)
			c.Locals("claims", claims)

			ctx := context.WithValue(c.UserContext(), middleware.PrincipalIDKey, claims.PrincipalID)
			ctx = context.WithValue(ctx, middleware.RoleKey, string(claims.Role))
			c.SetUserContext(ctx)
		}

		return c.Next()
	}
}

// extractToken reads the session token from the ordered cookie list for the
// route's required role, falling back to an Authorization bearer header.
func (s *Server) extractToken(c *fiber.Ctx, required models.Role) string {
	for _, name := range auth.CookieLookupOrder(required) {
		if v := c.Cookies(name); v != "" {
			return v
		}
	}

	authHeader := c.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
	}
	return ""
}

// setSessionCookie stores a freshly issued token in the role's HttpOnly cookie.
func (s *Server) setSessionCookie(c *fiber.Ctx, role models.Role, token string, ttl time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     auth.CookieForRole(role),
		Value:    token,
		Path:     "/",
		Domain:   s.config.CookieDomain,
		MaxAge:   int(ttl.Seconds()),
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// clearAuthCookies expires every known auth cookie so the client stops
// presenting a dead token.
func (s *Server) clearAuthCookies(c *fiber.Ctx) {
	for _, name := range auth.AllCookieNames {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Domain:   s.config.CookieDomain,
			Expires:  time.Now().Add(-time.Hour),
			MaxAge:   -1,
			HTTPOnly: true,
			Secure:   s.config.IsProduction(),
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}
}
