package server

import (
	"strings"

	"memberbase/internal/models"
	"memberbase/internal/validation"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

// AdminRequestDTO is the API response model for admin application endpoints.
type AdminRequestDTO struct {
	ID             uint          `json:"id"`
	Principal      *PrincipalDTO `json:"principal,omitempty"`
	OrganizationID uint          `json:"organization_id"`
	Reason         string        `json:"reason"`
	Status         string        `json:"status"`
	ReviewedByID   *uint         `json:"reviewed_by_id"`
	ReviewNotes    string        `json:"review_notes"`
	CreatedAt      string        `json:"created_at"`
}

func toAdminRequestDTO(r models.AdminRequest) AdminRequestDTO {
	dto := AdminRequestDTO{
		ID:             r.ID,
		OrganizationID: r.OrganizationID,
		Reason:         r.Reason,
		Status:         string(r.Status),
		ReviewedByID:   r.ReviewedByID,
		ReviewNotes:    r.ReviewNotes,
		CreatedAt:      r.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	if r.Principal != nil {
		p := toPrincipalDTO(*r.Principal)
		dto.Principal = &p
	}
	return dto
}

// slugify collapses an organization name into a URL slug.
func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	lastDash := true
	for _, r := range slug {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// ListAllOrganizations handles GET /api/superadmin/organizations
// @Summary List all organizations, disabled included
// @Tags superadmin
// @Produce json
// @Success 200 {array} OrganizationDTO
// @Router /superadmin/organizations [get]
func (s *Server) ListAllOrganizations(c *fiber.Ctx) error {
	limit, offset := paginationParams(c)
	orgs, err := s.orgs.List(c.Context(), limit, offset)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	resp := make([]OrganizationDTO, 0, len(orgs))
	for _, org := range orgs {
		resp = append(resp, toOrganizationDTO(org))
	}
	return c.JSON(resp)
}

// CreateOrganization handles POST /api/superadmin/organizations
// @Summary Create an organization
// @Tags superadmin
// @Accept json
// @Produce json
// @Param request body object{name=string,description=string,contact_email=string} true "Organization"
// @Success 201 {object} OrganizationDTO
// @Failure 409 {object} models.ErrorResponse
// @Router /superadmin/organizations [post]
func (s *Server) CreateOrganization(c *fiber.Ctx) error {
	var req struct {
		Name         string `json:"name"`
		Description  string `json:"description"`
		ContactEmail string `json:"contact_email"`
	}
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Organization name is required"))
	}
	if req.ContactEmail != "" {
		if err := validation.ValidateEmail(req.ContactEmail); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError(err.Error()))
		}
	}

	org := &models.Organization{
		Name:         strings.TrimSpace(req.Name),
		Slug:         slugify(req.Name),
		Description:  req.Description,
		ContactEmail: req.ContactEmail,
		Status:       models.OrganizationStatusActive,
	}
	if err := s.orgs.Create(c.Context(), org); err != nil {
		return models.RespondWithError(c, fiber.StatusConflict, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toOrganizationDTO(*org))
}

// UpdateOrganization handles PUT /api/superadmin/organizations/:id
// @Summary Update an organization
// @Tags superadmin
// @Accept json
// @Produce json
// @Param id path int true "Organization ID"
// @Success 200 {object} OrganizationDTO
// @Router /superadmin/organizations/{id} [put]
func (s *Server) UpdateOrganization(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid organization ID"))
	}

	var req struct {
		Name         string `json:"name"`
		Description  string `json:"description"`
		ContactEmail string `json:"contact_email"`
		Status       string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	org, err := s.orgs.GetByID(c.Context(), uint(id))
	if err != nil {
		if appErr, ok := err.(*models.AppError); ok && appErr.Code == "NOT_FOUND" {
			return models.RespondWithError(c, fiber.StatusNotFound, appErr)
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	if req.Name != "" {
		org.Name = strings.TrimSpace(req.Name)
		org.Slug = slugify(req.Name)
	}
	if req.Description != "" {
		org.Description = req.Description
	}
	if req.ContactEmail != "" {
		org.ContactEmail = req.ContactEmail
	}
	switch models.OrganizationStatus(req.Status) {
	case models.OrganizationStatusActive, models.OrganizationStatusDisabled:
		org.Status = models.OrganizationStatus(req.Status)
	}

	if err := s.orgs.Update(c.Context(), org); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(toOrganizationDTO(*org))
}

// DeleteOrganization handles DELETE /api/superadmin/organizations/:id
// @Summary Delete an organization
// @Tags superadmin
// @Produce json
// @Param id path int true "Organization ID"
// @Success 200 {object} object{message=string}
// @Router /superadmin/organizations/{id} [delete]
func (s *Server) DeleteOrganization(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid organization ID"))
	}
	if err := s.orgs.Delete(c.Context(), uint(id)); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(fiber.Map{"message": "Organization deleted"})
}

// ListAdminRequests handles GET /api/superadmin/admin-requests
// @Summary List admin account applications
// @Tags superadmin
// @Produce json
// @Param status query string false "Filter by status (default pending)"
// @Success 200 {array} AdminRequestDTO
// @Router /superadmin/admin-requests [get]
func (s *Server) ListAdminRequests(c *fiber.Ctx) error {
	status := models.AdminRequestStatus(c.Query("status", string(models.AdminRequestStatusPending)))
	if c.Query("status") == "all" {
		status = ""
	}

	limit, offset := paginationParams(c)
	reqs, err := s.adminRequests.ListByStatus(c.Context(), status, limit, offset)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	resp := make([]AdminRequestDTO, 0, len(reqs))
	for _, r := range reqs {
		resp = append(resp, toAdminRequestDTO(r))
	}
	return c.JSON(resp)
}

// reviewAdminRequest approves or rejects an application and updates the
// linked principal's status in the same transaction.
func (s *Server) reviewAdminRequest(c *fiber.Ctx, approve bool) error {
	claims := claimsFromLocals(c)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request ID"))
	}

	var req struct {
		ReviewNotes string `json:"review_notes"`
	}
	_ = c.BodyParser(&req)

	reviewed, reviewErr := s.adminRequests.Review(c.Context(), uint(id), claims.PrincipalID, approve, req.ReviewNotes)
	if reviewErr != nil {
		if appErr, ok := reviewErr.(*models.AppError); ok {
			switch appErr.Code {
			case "NOT_FOUND":
				return models.RespondWithError(c, fiber.StatusNotFound, appErr)
			case "CONFLICT":
				return models.RespondWithError(c, fiber.StatusConflict, appErr)
			}
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, reviewErr)
	}

	return c.JSON(toAdminRequestDTO(*reviewed))
}

// ApproveAdminRequest handles POST /api/superadmin/admin-requests/:id/approve
// @Summary Approve an admin application
// @Tags superadmin
// @Produce json
// @Param id path int true "Request ID"
// @Success 200 {object} AdminRequestDTO
// @Router /superadmin/admin-requests/{id}/approve [post]
func (s *Server) ApproveAdminRequest(c *fiber.Ctx) error {
	return s.reviewAdminRequest(c, true)
}

// RejectAdminRequest handles POST /api/superadmin/admin-requests/:id/reject
// @Summary Reject an admin application
// @Tags superadmin
// @Produce json
// @Param id path int true "Request ID"
// @Success 200 {object} AdminRequestDTO
// @Router /superadmin/admin-requests/{id}/reject [post]
func (s *Server) RejectAdminRequest(c *fiber.Ctx) error {
	return s.reviewAdminRequest(c, false)
}

// ListAdmins handles GET /api/superadmin/admins
// @Summary List admin accounts
// @Tags superadmin
// @Produce json
// @Success 200 {array} PrincipalDTO
// @Router /superadmin/admins [get]
func (s *Server) ListAdmins(c *fiber.Ctx) error {
	limit, offset := paginationParams(c)

	admins, err := s.principals.ListByRole(c.Context(), models.RoleAdmin, limit, offset)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	// Legacy senior_admin accounts belong in the same listing.
	seniors, err := s.principals.ListByRole(c.Context(), models.RoleSeniorAdmin, limit, offset)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	resp := make([]PrincipalDTO, 0, len(admins)+len(seniors))
	for _, a := range admins {
		resp = append(resp, toPrincipalDTO(a))
	}
	for _, a := range seniors {
		resp = append(resp, toPrincipalDTO(a))
	}
	return c.JSON(resp)
}

// CreateAdmin handles POST /api/superadmin/admins
// @Summary Create an admin account directly
// @Description Bypasses the application queue; the account starts approved.
// @Tags superadmin
// @Accept json
// @Produce json
// @Param request body object{full_name=string,email=string,password=string,organization_id=int} true "Admin account"
// @Success 201 {object} PrincipalDTO
// @Failure 409 {object} models.ErrorResponse
// @Router /superadmin/admins [post]
func (s *Server) CreateAdmin(c *fiber.Ctx) error {
	var req struct {
		FullName       string `json:"full_name"`
		Email          string `json:"email"`
		Password       string `json:"password"`
		OrganizationID uint   `json:"organization_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.FullName == "" || req.Email == "" || req.Password == "" || req.OrganizationID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Name, email, password, and organization are required"))
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}
	if _, err := s.orgs.GetByID(c.Context(), req.OrganizationID); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unknown organization"))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	admin := &models.Principal{
		FullName:       req.FullName,
		Email:          req.Email,
		Password:       string(hashedPassword),
		Role:           models.RoleAdmin,
		Status:         models.StatusApproved,
		OrganizationID: &req.OrganizationID,
	}
	if createErr := s.principals.Create(c.Context(), admin); createErr != nil {
		return models.RespondWithError(c, fiber.StatusConflict, createErr)
	}
	return c.Status(fiber.StatusCreated).JSON(toPrincipalDTO(*admin))
}

// DisableAdmin handles POST /api/superadmin/admins/:id/disable
// @Summary Disable an admin account
// @Tags superadmin
// @Produce json
// @Param id path int true "Admin ID"
// @Success 200 {object} PrincipalDTO
// @Router /superadmin/admins/{id}/disable [post]
func (s *Server) DisableAdmin(c *fiber.Ctx) error {
	return s.setAdminStatus(c, models.StatusDisabled)
}

// EnableAdmin handles POST /api/superadmin/admins/:id/enable
// @Summary Re-enable a disabled admin account
// @Tags superadmin
// @Produce json
// @Param id path int true "Admin ID"
// @Success 200 {object} PrincipalDTO
// @Router /superadmin/admins/{id}/enable [post]
func (s *Server) EnableAdmin(c *fiber.Ctx) error {
	return s.setAdminStatus(c, models.StatusApproved)
}

func (s *Server) setAdminStatus(c *fiber.Ctx, to models.Status) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid admin ID"))
	}

	admin, err := s.principals.GetByID(c.Context(), uint(id))
	if err != nil {
		if appErr, ok := err.(*models.AppError); ok && appErr.Code == "NOT_FOUND" {
			return models.RespondWithError(c, fiber.StatusNotFound, appErr)
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if admin.Role != models.RoleAdmin && admin.Role != models.RoleSeniorAdmin {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Admin", id))
	}

	if err := s.principals.UpdateStatus(c.Context(), admin.ID, to); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	admin.Status = to
	return c.JSON(toPrincipalDTO(*admin))
}

// SuperadminDashboard handles GET /api/superadmin/dashboard
// @Summary Superadmin dashboard data
// @Tags superadmin
// @Produce json
// @Success 200 {object} object{organizations=int,pending_admin_requests=int}
// @Router /superadmin/dashboard [get]
func (s *Server) SuperadminDashboard(c *fiber.Ctx) error {
	orgs, err := s.orgs.List(c.Context(), 1000, 0)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	pending, err := s.adminRequests.ListByStatus(c.Context(), models.AdminRequestStatusPending, 1000, 0)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(fiber.Map{
		"organizations":          len(orgs),
		"pending_admin_requests": len(pending),
	})
}
