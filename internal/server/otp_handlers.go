package server

import (
	"memberbase/internal/auth"
	"memberbase/internal/models"
	"memberbase/internal/validation"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

// otpRequest is the shared body shape for OTP send/verify endpoints.
type otpRequest struct {
	Contact string `json:"contact"`
	Channel string `json:"channel"`
	Code    string `json:"code"`
}

func parseChannel(raw string) (models.OTPChannel, bool) {
	switch models.OTPChannel(raw) {
	case models.OTPChannelEmail:
		return models.OTPChannelEmail, true
	case models.OTPChannelPhone:
		return models.OTPChannelPhone, true
	}
	return "", false
}

// SendOTP handles POST /api/auth/otp/send
// @Summary Send a one-time code
// @Description Issues a fresh challenge for the contact, superseding any prior active one.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body otpRequest true "Contact and channel"
// @Success 200 {object} object{message=string,contact=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /auth/otp/send [post]
func (s *Server) SendOTP(c *fiber.Ctx) error {
	var req otpRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	channel, ok := parseChannel(req.Channel)
	if !ok || req.Contact == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Contact and a valid channel (email or phone) are required"))
	}
	if channel == models.OTPChannelEmail {
		if err := validation.ValidateEmail(req.Contact); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError(err.Error()))
		}
	} else if err := validation.ValidatePhone(req.Contact); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	if _, err := s.otp.Issue(c.Context(), req.Contact, channel); err != nil {
		if appErr, ok := err.(*models.AppError); ok && appErr.Code == "DELIVERY_FAILED" {
			return models.RespondWithError(c, fiber.StatusBadGateway, appErr)
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(fiber.Map{
		"message": "Verification code sent",
		"contact": maskContact(req.Contact),
	})
}

// VerifyOTP handles POST /api/auth/otp/verify
// @Summary Verify a one-time code
// @Description Consumes the active challenge. For an approved member this completes login and mints the full session.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body otpRequest true "Contact, channel, and code"
// @Success 200 {object} object{token=string,redirect=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/otp/verify [post]
func (s *Server) VerifyOTP(c *fiber.Ctx) error {
	var req otpRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	channel, ok := parseChannel(req.Channel)
	if !ok || req.Contact == "" || req.Code == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Contact, channel, and code are required"))
	}

	if err := s.otp.Verify(c.Context(), req.Contact, req.Code, channel); err != nil {
		if appErr, appOk := err.(*models.AppError); appOk && appErr.Code == "OTP_EXPIRED_OR_INVALID" {
			return models.RespondWithError(c, fiber.StatusUnauthorized, appErr)
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	principal, err := s.principals.GetByContact(c.Context(), req.Contact)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if principal == nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("No account for verified contact"))
	}

	if rejected, respErr := rejectByStatus(c, principal.Status); rejected {
		return respErr
	}

	if principal.Status == models.StatusPending {
		token, _, issueErr := s.tokens.IssueGuest(principal)
		if issueErr != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(issueErr))
		}
		return c.JSON(fiber.Map{
			"status":      string(models.StatusPending),
			"guest_token": token,
		})
	}

	// First completed login moves an approved account to active.
	if principal.Status == models.StatusApproved {
		if updErr := s.principals.UpdateStatus(c.Context(), principal.ID, models.StatusActive); updErr != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, updErr)
		}
		principal.Status = models.StatusActive
	}

	token, claims, issueErr := s.tokens.Issue(principal)
	if issueErr != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(issueErr))
	}
	s.setSessionCookie(c, principal.Role, token, s.tokens.SessionTTL())

	return c.JSON(fiber.Map{
		"token":      token,
		"expires_at": claims.ExpiresAt.Unix(),
		"redirect":   auth.DashboardPath(principal.Role),
	})
}

// RequestPasswordReset handles POST /api/auth/password-reset/request
// @Summary Request a password reset code
// @Description Always answers 200 so the endpoint cannot be used to probe which accounts exist.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string} true "Account email"
// @Success 200 {object} object{message=string}
// @Router /auth/password-reset/request [post]
func (s *Server) RequestPasswordReset(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil || req.Email == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Email is required"))
	}

	principal, err := s.principals.GetByEmail(c.Context(), req.Email)
	if err == nil && principal != nil {
		if _, issueErr := s.otp.Issue(c.Context(), principal.Email, models.OTPChannelEmail); issueErr != nil {
			logWarn(c, "password reset code delivery failed", issueErr)
		}
	}

	return c.JSON(fiber.Map{
		"message": "If the account exists, a reset code has been sent",
	})
}

// ConfirmPasswordReset handles POST /api/auth/password-reset/confirm
// @Summary Confirm a password reset
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string,code=string,new_password=string} true "Reset confirmation"
// @Success 200 {object} object{message=string}
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/password-reset/confirm [post]
func (s *Server) ConfirmPasswordReset(c *fiber.Ctx) error {
	var req struct {
		Email       string `json:"email"`
		Code        string `json:"code"`
		NewPassword string `json:"new_password"`
	}
	if err := c.BodyParser(&req); err != nil || req.Email == "" || req.Code == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Email, code, and new password are required"))
	}
	if err := validation.ValidatePassword(req.NewPassword); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	if err := s.otp.Verify(c.Context(), req.Email, req.Code, models.OTPChannelEmail); err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewOTPInvalidError())
	}

	principal, err := s.principals.GetByEmail(c.Context(), req.Email)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if principal == nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("No account for verified contact"))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	principal.Password = string(hashedPassword)
	if updErr := s.principals.Update(c.Context(), principal); updErr != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, updErr)
	}

	return c.JSON(fiber.Map{"message": "Password updated"})
}

// ApplicationStatus handles GET /api/auth/application-status
// @Summary Check application status
// @Description Answers for callers holding a guest or full token. Pending accounts use this with the guest token from login.
// @Tags auth
// @Produce json
// @Success 200 {object} object{status=string,role=string}
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/application-status [get]
func (s *Server) ApplicationStatus(c *fiber.Ctx) error {
	claims, ok := s.optionalClaims(c)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authorization required"))
	}

	// Report the live status, not the snapshot baked into the token.
	principal, err := s.principals.GetByID(c.Context(), claims.PrincipalID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(fiber.Map{
		"status": string(principal.Status),
		"role":   string(principal.Role),
	})
}
