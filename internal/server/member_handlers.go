package server

import (
	"memberbase/internal/models"
	"memberbase/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// PrincipalDTO is the API response model for account endpoints.
type PrincipalDTO struct {
	ID             uint   `json:"id"`
	FullName       string `json:"full_name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Role           string `json:"role"`
	Status         string `json:"status"`
	OrganizationID *uint  `json:"organization_id"`
	CreatedAt      string `json:"created_at"`
}

func toPrincipalDTO(p models.Principal) PrincipalDTO {
	return PrincipalDTO{
		ID:             p.ID,
		FullName:       p.FullName,
		Email:          p.Email,
		Phone:          p.Phone,
		Role:           string(p.Role),
		Status:         string(p.Status),
		OrganizationID: p.OrganizationID,
		CreatedAt:      p.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// GetMyProfile handles GET /api/member/me
// @Summary Get own profile
// @Tags member
// @Produce json
// @Success 200 {object} PrincipalDTO
// @Router /member/me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	claims := claimsFromLocals(c)

	member, err := s.principals.GetByID(c.Context(), claims.PrincipalID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(toPrincipalDTO(*member))
}

// UpdateMyProfile handles PUT /api/member/me
// @Summary Update own profile
// @Description Name and phone only. Email, role, and status are not self-service.
// @Tags member
// @Accept json
// @Produce json
// @Param request body object{full_name=string,phone=string} true "Profile fields"
// @Success 200 {object} PrincipalDTO
// @Failure 400 {object} models.ErrorResponse
// @Router /member/me [put]
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	claims := claimsFromLocals(c)

	var req struct {
		FullName string `json:"full_name"`
		Phone    string `json:"phone"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	member, err := s.principals.GetByID(c.Context(), claims.PrincipalID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	if req.FullName != "" {
		if err := validation.ValidateFullName(req.FullName); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError(err.Error()))
		}
		member.FullName = req.FullName
	}
	if req.Phone != "" {
		if err := validation.ValidatePhone(req.Phone); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError(err.Error()))
		}
		member.Phone = req.Phone
	}

	if err := s.principals.Update(c.Context(), member); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(toPrincipalDTO(*member))
}

// MemberDashboard handles GET /api/member/dashboard
// @Summary Member dashboard data
// @Tags member
// @Produce json
// @Success 200 {object} object{member=PrincipalDTO,organization=OrganizationDTO}
// @Router /member/dashboard [get]
func (s *Server) MemberDashboard(c *fiber.Ctx) error {
	claims := claimsFromLocals(c)

	member, err := s.principals.GetByID(c.Context(), claims.PrincipalID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	resp := fiber.Map{"member": toPrincipalDTO(*member)}
	if member.OrganizationID != nil {
		if org, orgErr := s.orgs.GetByID(c.Context(), *member.OrganizationID); orgErr == nil {
			resp["organization"] = toOrganizationDTO(*org)
		}
	}
	return c.JSON(resp)
}
