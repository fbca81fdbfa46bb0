package server

import (
	"memberbase/internal/models"
	"memberbase/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// adminOrgID resolves the organization the calling admin manages.
// Superadmins may pass ?organization_id= to act across tenants.
func (s *Server) adminOrgID(c *fiber.Ctx) (uint, error) {
	claims := claimsFromLocals(c)
	if claims.Role == models.RoleSuperadmin {
		if id := c.QueryInt("organization_id", 0); id > 0 {
			return uint(id), nil
		}
	}
	if claims.OrganizationID == nil {
		return 0, models.NewValidationError("No organization bound to this account")
	}
	return *claims.OrganizationID, nil
}

// memberInOrg loads a member and checks it belongs to the admin's organization.
func (s *Server) memberInOrg(c *fiber.Ctx, orgID uint) (*models.Principal, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return nil, models.NewValidationError("Invalid member ID")
	}

	member, err := s.principals.GetByID(c.Context(), uint(id))
	if err != nil {
		return nil, err
	}
	if member.Role != models.RoleMember || member.OrganizationID == nil || *member.OrganizationID != orgID {
		return nil, models.NewNotFoundError("Member", id)
	}
	return member, nil
}

// ListMembers handles GET /api/admin/members
// @Summary List members of the admin's organization
// @Tags admin
// @Produce json
// @Param status query string false "Filter by lifecycle status"
// @Success 200 {array} PrincipalDTO
// @Router /admin/members [get]
func (s *Server) ListMembers(c *fiber.Ctx) error {
	orgID, err := s.adminOrgID(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	limit, offset := paginationParams(c)
	members, err := s.principals.ListByOrganization(c.Context(), orgID, models.RoleMember, limit, offset)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	statusFilter := c.Query("status")
	resp := make([]PrincipalDTO, 0, len(members))
	for _, m := range members {
		if statusFilter != "" && string(m.Status) != statusFilter {
			continue
		}
		resp = append(resp, toPrincipalDTO(m))
	}
	return c.JSON(resp)
}

// reviewMember transitions a member between lifecycle states, guarding the
// legal transitions for each action.
func (s *Server) reviewMember(c *fiber.Ctx, from []models.Status, to models.Status) error {
	orgID, err := s.adminOrgID(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	member, err := s.memberInOrg(c, orgID)
	if err != nil {
		if appErr, ok := err.(*models.AppError); ok && appErr.Code == "NOT_FOUND" {
			return models.RespondWithError(c, fiber.StatusNotFound, appErr)
		}
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	allowed := false
	for _, status := range from {
		if member.Status == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return models.RespondWithError(c, fiber.StatusConflict,
			models.NewConflictError("Member is not in a reviewable state"))
	}

	if err := s.principals.UpdateStatus(c.Context(), member.ID, to); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	member.Status = to
	return c.JSON(toPrincipalDTO(*member))
}

// ApproveMember handles POST /api/admin/members/:id/approve
// @Summary Approve a pending member
// @Tags admin
// @Produce json
// @Param id path int true "Member ID"
// @Success 200 {object} PrincipalDTO
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /admin/members/{id}/approve [post]
func (s *Server) ApproveMember(c *fiber.Ctx) error {
	return s.reviewMember(c, []models.Status{models.StatusPending}, models.StatusApproved)
}

// RejectMember handles POST /api/admin/members/:id/reject
// @Summary Reject a pending member
// @Tags admin
// @Produce json
// @Param id path int true "Member ID"
// @Success 200 {object} PrincipalDTO
// @Router /admin/members/{id}/reject [post]
func (s *Server) RejectMember(c *fiber.Ctx) error {
	return s.reviewMember(c, []models.Status{models.StatusPending}, models.StatusRejected)
}

// DisableMember handles POST /api/admin/members/:id/disable
// @Summary Disable an approved or active member
// @Tags admin
// @Produce json
// @Param id path int true "Member ID"
// @Success 200 {object} PrincipalDTO
// @Router /admin/members/{id}/disable [post]
func (s *Server) DisableMember(c *fiber.Ctx) error {
	return s.reviewMember(c, []models.Status{models.StatusApproved, models.StatusActive}, models.StatusDisabled)
}

// EnableMember handles POST /api/admin/members/:id/enable
// @Summary Re-enable a disabled member
// @Tags admin
// @Produce json
// @Param id path int true "Member ID"
// @Success 200 {object} PrincipalDTO
// @Router /admin/members/{id}/enable [post]
func (s *Server) EnableMember(c *fiber.Ctx) error {
	return s.reviewMember(c, []models.Status{models.StatusDisabled}, models.StatusApproved)
}

// GetMyOrganization handles GET /api/admin/organization
// @Summary Get the admin's organization profile
// @Tags admin
// @Produce json
// @Success 200 {object} OrganizationDTO
// @Router /admin/organization [get]
func (s *Server) GetMyOrganization(c *fiber.Ctx) error {
	orgID, err := s.adminOrgID(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	org, err := s.orgs.GetByID(c.Context(), orgID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(toOrganizationDTO(*org))
}

// UpdateMyOrganization handles PUT /api/admin/organization
// @Summary Update the admin's organization profile
// @Tags admin
// @Accept json
// @Produce json
// @Param request body object{description=string,contact_email=string} true "Organization fields"
// @Success 200 {object} OrganizationDTO
// @Router /admin/organization [put]
func (s *Server) UpdateMyOrganization(c *fiber.Ctx) error {
	orgID, err := s.adminOrgID(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	var req struct {
		Description  string `json:"description"`
		ContactEmail string `json:"contact_email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.ContactEmail != "" {
		if err := validation.ValidateEmail(req.ContactEmail); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError(err.Error()))
		}
	}

	org, err := s.orgs.GetByID(c.Context(), orgID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if req.Description != "" {
		org.Description = req.Description
	}
	if req.ContactEmail != "" {
		org.ContactEmail = req.ContactEmail
	}
	if err := s.orgs.Update(c.Context(), org); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(toOrganizationDTO(*org))
}

// AdminDashboard handles GET /api/admin/dashboard
// @Summary Admin dashboard data
// @Tags admin
// @Produce json
// @Success 200 {object} object{organization=OrganizationDTO,member_counts=object}
// @Router /admin/dashboard [get]
func (s *Server) AdminDashboard(c *fiber.Ctx) error {
	orgID, err := s.adminOrgID(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	org, err := s.orgs.GetByID(c.Context(), orgID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	members, err := s.principals.ListByOrganization(c.Context(), orgID, models.RoleMember, 1000, 0)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	counts := map[string]int{}
	for _, m := range members {
		counts[string(m.Status)]++
	}

	return c.JSON(fiber.Map{
		"organization":  toOrganizationDTO(*org),
		"member_counts": counts,
	})
}
