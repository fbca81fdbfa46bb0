package server

import (
	"memberbase/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Page handlers back the browser-facing routes the access gate redirects to.
// The real UI is a separate frontend; these endpoints exist so every redirect
// target resolves, and they answer with enough JSON for the frontend router
// to pick the right view.

func (s *Server) LoginPage(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"page": "login",
		"role": string(models.RoleMember),
	})
}

func (s *Server) AdminLoginPage(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"page": "login",
		"role": string(models.RoleAdmin),
	})
}

func (s *Server) SuperadminLoginPage(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"page": "login",
		"role": string(models.RoleSuperadmin),
	})
}

func (s *Server) RegisterPage(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"page": "register"})
}

func (s *Server) PasswordResetPage(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"page": "password-reset"})
}

func (s *Server) PendingApprovalPage(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"page":    "pending-approval",
		"message": "Your application is awaiting review",
	})
}

func (s *Server) InactiveAccountPage(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"page":    "inactive-account",
		"message": "This account is not currently active",
	})
}

func (s *Server) UnauthorizedPage(c *fiber.Ctx) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
		"page":    "unauthorized",
		"message": "You do not have access to that area",
	})
}

// DashboardPage serves the dashboard shell for the role owning the route.
// The gate has already verified the session by the time this runs, so the
// handler only reports where the frontend should land.
func (s *Server) DashboardPage(role models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"page": "dashboard",
			"role": string(role),
			"api":  "/api/" + string(role) + "/dashboard",
		})
	}
}
