package server

import (
	"time"

	"memberbase/internal/auth"
	"memberbase/internal/cache"
	"memberbase/internal/models"
	"memberbase/internal/validation"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

// RegisterMember handles POST /api/auth/member/register
// @Summary Member self-registration
// @Description Register a member account. The account stays pending until an organization admin approves it.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{full_name=string,email=string,phone=string,password=string,organization_id=int} true "Registration request"
// @Success 201 {object} object{status=string,message=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /auth/member/register [post]
func (s *Server) RegisterMember(c *fiber.Ctx) error {
	var req struct {
		FullName       string `json:"full_name"`
		Email          string `json:"email"`
		Phone          string `json:"phone"`
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
	if err := validation.ValidateFullName(req.FullName); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}
	if req.Phone != "" {
		if err := validation.ValidatePhone(req.Phone); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError(err.Error()))
		}
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	org, err := s.orgs.GetByID(c.Context(), req.OrganizationID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unknown organization"))
	}
	if org.Status != models.OrganizationStatusActive {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Organization is not accepting applications"))
	}

	existing, err := s.principals.GetByEmail(c.Context(), req.Email)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if existing != nil {
		return models.RespondWithError(c, fiber.StatusConflict,
			models.NewConflictError("Account already exists"))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	member := &models.Principal{
		FullName:       req.FullName,
		Email:          req.Email,
		Phone:          req.Phone,
		Password:       string(hashedPassword),
		Role:           models.RoleMember,
		Status:         models.StatusPending,
		OrganizationID: &org.ID,
	}
	if createErr := s.principals.Create(c.Context(), member); createErr != nil {
		return models.RespondWithError(c, fiber.StatusConflict, createErr)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status":  string(models.StatusPending),
		"message": "Registration received. An administrator will review your application.",
	})
}

// RequestAdminAccount handles POST /api/auth/admin/register
// @Summary Admin account application
// @Description Apply for an admin account. A superadmin reviews the request.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{full_name=string,email=string,phone=string,password=string,organization_id=int,reason=string} true "Admin application"
// @Success 201 {object} object{status=string,request_id=int}
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /auth/admin/register [post]
func (s *Server) RequestAdminAccount(c *fiber.Ctx) error {
	var req struct {
		FullName       string `json:"full_name"`
		Email          string `json:"email"`
		Phone          string `json:"phone"`
		Password       string `json:"password"`
		OrganizationID uint   `json:"organization_id"`
		Reason         string `json:"reason"`
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

	existing, err := s.principals.GetByEmail(c.Context(), req.Email)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if existing != nil {
		return models.RespondWithError(c, fiber.StatusConflict,
			models.NewConflictError("Account already exists"))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	admin := &models.Principal{
		FullName:       req.FullName,
		Email:          req.Email,
		Phone:          req.Phone,
		Password:       string(hashedPassword),
		Role:           models.RoleAdmin,
		Status:         models.StatusPending,
		OrganizationID: &req.OrganizationID,
	}
	if createErr := s.principals.Create(c.Context(), admin); createErr != nil {
		return models.RespondWithError(c, fiber.StatusConflict, createErr)
	}

	request := &models.AdminRequest{
		PrincipalID:    admin.ID,
		OrganizationID: req.OrganizationID,
		Reason:         req.Reason,
		Status:         models.AdminRequestStatusPending,
	}
	if createErr := s.adminRequests.Create(c.Context(), request); createErr != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, createErr)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status":     string(models.AdminRequestStatusPending),
		"request_id": request.ID,
	})
}

// credentials is the shared login request body.
type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// checkCredentials resolves and authenticates a principal for a login
// attempt. The same "Invalid credentials" answer covers unknown accounts,
// wrong passwords, and role mismatches so login endpoints do not leak which
// accounts exist.
func (s *Server) checkCredentials(c *fiber.Ctx, creds credentials, wanted ...models.Role) (*models.Principal, error) {
	if creds.Email == "" || creds.Password == "" {
		return nil, models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Email and password are required"))
	}

	p, err := s.principals.GetByEmail(c.Context(), creds.Email)
	if err != nil {
		return nil, models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	roleOK := false
	if p != nil {
		for _, role := range wanted {
			if p.Role == role {
				roleOK = true
				break
			}
		}
	}
	if p == nil || !roleOK {
		return nil, models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid credentials"))
	}
	if cmpErr := bcrypt.CompareHashAndPassword([]byte(p.Password), []byte(creds.Password)); cmpErr != nil {
		return nil, models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid credentials"))
	}
	return p, nil
}

// rejectByStatus answers 403 for accounts whose lifecycle status forbids a
// session. Returns false when the status is fine.
func rejectByStatus(c *fiber.Ctx, status models.Status) (bool, error) {
	switch status {
	case models.StatusRejected:
		return true, models.RespondWithError(c, fiber.StatusForbidden,
			models.NewNotApprovedError("Account Rejected"))
	case models.StatusDisabled:
		return true, models.RespondWithError(c, fiber.StatusForbidden,
			models.NewNotApprovedError("Account Disabled"))
	}
	return false, nil
}

// MemberLogin handles POST /api/auth/member/login
// @Summary Member login
// @Description Authenticate a member. Approved members receive an OTP challenge; pending members get a limited-access response.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body credentials true "Login credentials"
// @Success 200 {object} object{otp_required=bool,channel=string,contact=string}
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /auth/member/login [post]
func (s *Server) MemberLogin(c *fiber.Ctx) error {
	var creds credentials
	if err := c.BodyParser(&creds); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	member, err := s.checkCredentials(c, creds, models.RoleMember)
	if member == nil {
		return err
	}

	if rejected, respErr := rejectByStatus(c, member.Status); rejected {
		return respErr
	}

	if member.Status == models.StatusPending {
		// Limited access: no session cookie, no dashboard. The client may
		// poll application status with the short guest token.
		token, _, issueErr := s.tokens.IssueGuest(member)
		if issueErr != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(issueErr))
		}
		return c.JSON(fiber.Map{
			"status":      string(models.StatusPending),
			"message":     "Your application is awaiting approval.",
			"guest_token": token,
		})
	}

	// Approved or active: second factor before a full session is minted.
	channel := models.OTPChannelEmail
	contact := member.Email
	if _, issueErr := s.otp.Issue(c.Context(), contact, channel); issueErr != nil {
		if appErr, ok := issueErr.(*models.AppError); ok && appErr.Code == "DELIVERY_FAILED" {
			return models.RespondWithError(c, fiber.StatusBadGateway, appErr)
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, issueErr)
	}

	return c.JSON(fiber.Map{
		"otp_required": true,
		"channel":      string(channel),
		"contact":      maskContact(contact),
	})
}

// adminLogin is shared by the admin and superadmin login endpoints.
func (s *Server) adminLogin(c *fiber.Ctx, wanted ...models.Role) error {
	var creds credentials
	if err := c.BodyParser(&creds); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	account, err := s.checkCredentials(c, creds, wanted...)
	if account == nil {
		return err
	}

	if rejected, respErr := rejectByStatus(c, account.Status); rejected {
		return respErr
	}
	if account.Status == models.StatusPending {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewNotApprovedError("Account Pending Approval"))
	}

	token, claims, issueErr := s.tokens.Issue(account)
	if issueErr != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(issueErr))
	}
	s.setSessionCookie(c, account.Role, token, s.tokens.SessionTTL())

	return c.JSON(fiber.Map{
		"token":      token,
		"expires_at": claims.ExpiresAt.Unix(),
		"redirect":   auth.DashboardPath(account.Role),
	})
}

// AdminLogin handles POST /api/auth/admin/login
// @Summary Admin login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body credentials true "Login credentials"
// @Success 200 {object} object{token=string,redirect=string}
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /auth/admin/login [post]
func (s *Server) AdminLogin(c *fiber.Ctx) error {
	return s.adminLogin(c, models.RoleAdmin, models.RoleSeniorAdmin)
}

// SuperadminLogin handles POST /api/auth/superadmin/login
// @Summary Superadmin login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body credentials true "Login credentials"
// @Success 200 {object} object{token=string,redirect=string}
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/superadmin/login [post]
func (s *Server) SuperadminLogin(c *fiber.Ctx) error {
	return s.adminLogin(c, models.RoleSuperadmin)
}

// Logout handles POST /api/auth/logout
// @Summary Logout
// @Description Clears auth cookies and deny-lists the presented token until its natural expiry.
// @Tags auth
// @Produce json
// @Success 200 {object} object{message=string}
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	// Best effort: deny-list whatever token the client presented so it stops
	// working before its embedded expiry.
	if claims, ok := s.optionalClaims(c); ok && claims.TokenID != "" {
		ttl := time.Until(claims.ExpiresAt)
		if err := cache.DenyToken(c.Context(), s.redis, claims.TokenID, ttl); err != nil {
			// Logout still succeeds; the token dies at its natural expiry.
			logWarn(c, "failed to deny-list token", err)
		}
	}

	s.clearAuthCookies(c)
	return c.JSON(fiber.Map{"message": "Logged out"})
}
