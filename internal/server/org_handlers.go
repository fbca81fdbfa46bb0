package server

import (
	"memberbase/internal/models"

	"github.com/gofiber/fiber/v2"
)

// OrganizationDTO is the API response model for organization endpoints.
type OrganizationDTO struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Description  string `json:"description"`
	ContactEmail string `json:"contact_email"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at"`
}

func toOrganizationDTO(o models.Organization) OrganizationDTO {
	return OrganizationDTO{
		ID:           o.ID,
		Name:         o.Name,
		Slug:         o.Slug,
		Description:  o.Description,
		ContactEmail: o.ContactEmail,
		Status:       string(o.Status),
		CreatedAt:    o.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// ListOrganizations handles GET /api/organizations
// @Summary List organizations
// @Description Public listing of organizations accepting applications.
// @Tags organizations
// @Produce json
// @Success 200 {array} OrganizationDTO
// @Router /organizations [get]
func (s *Server) ListOrganizations(c *fiber.Ctx) error {
	orgs, err := s.orgs.ListActive(c.Context())
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	resp := make([]OrganizationDTO, 0, len(orgs))
	for _, org := range orgs {
		resp = append(resp, toOrganizationDTO(org))
	}
	return c.JSON(resp)
}

// GetOrganizationBySlug handles GET /api/organizations/:slug
// @Summary Get organization by slug
// @Tags organizations
// @Produce json
// @Param slug path string true "Organization slug"
// @Success 200 {object} OrganizationDTO
// @Failure 404 {object} models.ErrorResponse
// @Router /organizations/{slug} [get]
func (s *Server) GetOrganizationBySlug(c *fiber.Ctx) error {
	slug := c.Params("slug")

	org, err := s.orgs.GetBySlug(c.Context(), slug)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if org == nil || org.Status != models.OrganizationStatusActive {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Organization", slug))
	}
	return c.JSON(toOrganizationDTO(*org))
}
