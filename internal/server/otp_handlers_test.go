package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"memberbase/internal/auth"
	"memberbase/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSendOTP_Validation(t *testing.T) {
	tests := []struct {
		name           string
		body           map[string]string
		expectedStatus int
	}{
		{"missing contact", map[string]string{"channel": "email"}, http.StatusBadRequest},
		{"unknown channel", map[string]string{"contact": "a@b.com", "channel": "pigeon"}, http.StatusBadRequest},
		{"malformed email", map[string]string{"contact": "not-an-email", "channel": "email"}, http.StatusBadRequest},
		{"malformed phone", map[string]string{"contact": "abc", "channel": "phone"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newHandlerFixture(t)
			app := fiber.New()
			app.Post("/send", f.server.SendOTP)

			resp := postJSON(t, app, "/send", tt.body)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestSendOTP_MasksContact(t *testing.T) {
	f := newHandlerFixture(t)
	f.otpStore.On("Issue", mock.Anything, mock.Anything).Return(nil)

	app := fiber.New()
	app.Post("/send", f.server.SendOTP)

	resp := postJSON(t, app, "/send", map[string]string{"contact": "member@example.com", "channel": "email"})
	body := decodeBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEqual(t, "member@example.com", body["contact"])
	assert.Contains(t, body["contact"], "@example.com")
}

func TestVerifyOTP(t *testing.T) {
	memberWith := func(status models.Status) *models.Principal {
		p := &models.Principal{
			FullName: "Member One",
			Email:    "member@example.com",
			Role:     models.RoleMember,
			Status:   status,
		}
		p.ID = 10
		return p
	}

	t.Run("Wrong code", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.otpStore.On("Consume", mock.Anything, "member@example.com", "000000", models.OTPChannelEmail, mock.Anything).
			Return(false, nil)

		app := fiber.New()
		app.Post("/verify", f.server.VerifyOTP)

		resp := postJSON(t, app, "/verify", map[string]string{
			"contact": "member@example.com", "channel": "email", "code": "000000",
		})
		body := decodeBody(t, resp)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.NotEmpty(t, body["error"])
	})

	t.Run("Valid code but no matching account", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.otpStore.On("Consume", mock.Anything, "stray@example.com", "123456", models.OTPChannelEmail, mock.Anything).
			Return(true, nil)
		f.principals.On("GetByContact", mock.Anything, "stray@example.com").Return(nil, nil)

		app := fiber.New()
		app.Post("/verify", f.server.VerifyOTP)

		resp := postJSON(t, app, "/verify", map[string]string{
			"contact": "stray@example.com", "channel": "email", "code": "123456",
		})
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("First login promotes approved to active", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.otpStore.On("Consume", mock.Anything, "member@example.com", "123456", models.OTPChannelEmail, mock.Anything).
			Return(true, nil)
		f.principals.On("GetByContact", mock.Anything, "member@example.com").
			Return(memberWith(models.StatusApproved), nil)
		f.principals.On("UpdateStatus", mock.Anything, uint(10), models.StatusActive).Return(nil)

		app := fiber.New()
		app.Post("/verify", f.server.VerifyOTP)

		resp := postJSON(t, app, "/verify", map[string]string{
			"contact": "member@example.com", "channel": "email", "code": "123456",
		})
		body := decodeBody(t, resp)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, body["token"])
		assert.Equal(t, "/member/dashboard", body["redirect"])
		f.principals.AssertCalled(t, "UpdateStatus", mock.Anything, uint(10), models.StatusActive)

		// Minted session reflects the promoted status.
		claims, err := f.server.tokens.Verify(body["token"].(string))
		require.NoError(t, err)
		assert.Equal(t, models.StatusActive, claims.Status)

		var sessionCookie *http.Cookie
		for _, c := range resp.Cookies() {
			if c.Name == auth.CookieMember {
				sessionCookie = c
			}
		}
		require.NotNil(t, sessionCookie)
		assert.True(t, sessionCookie.HttpOnly)
	})

	t.Run("Already active member is not re-promoted", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.otpStore.On("Consume", mock.Anything, "member@example.com", "123456", models.OTPChannelEmail, mock.Anything).
			Return(true, nil)
		f.principals.On("GetByContact", mock.Anything, "member@example.com").
			Return(memberWith(models.StatusActive), nil)

		app := fiber.New()
		app.Post("/verify", f.server.VerifyOTP)

		resp := postJSON(t, app, "/verify", map[string]string{
			"contact": "member@example.com", "channel": "email", "code": "123456",
		})
		body := decodeBody(t, resp)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, body["token"])
		f.principals.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Pending account gets guest token only", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.otpStore.On("Consume", mock.Anything, "member@example.com", "123456", models.OTPChannelEmail, mock.Anything).
			Return(true, nil)
		f.principals.On("GetByContact", mock.Anything, "member@example.com").
			Return(memberWith(models.StatusPending), nil)

		app := fiber.New()
		app.Post("/verify", f.server.VerifyOTP)

		resp := postJSON(t, app, "/verify", map[string]string{
			"contact": "member@example.com", "channel": "email", "code": "123456",
		})
		body := decodeBody(t, resp)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, body["guest_token"])
		assert.Empty(t, body["token"])
		assert.Empty(t, resp.Cookies())
	})

	t.Run("Rejected account is refused even with a valid code", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.otpStore.On("Consume", mock.Anything, "member@example.com", "123456", models.OTPChannelEmail, mock.Anything).
			Return(true, nil)
		f.principals.On("GetByContact", mock.Anything, "member@example.com").
			Return(memberWith(models.StatusRejected), nil)

		app := fiber.New()
		app.Post("/verify", f.server.VerifyOTP)

		resp := postJSON(t, app, "/verify", map[string]string{
			"contact": "member@example.com", "channel": "email", "code": "123456",
		})
		body := decodeBody(t, resp)

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "Account Rejected", body["error"])
	})
}

func TestRequestPasswordReset_NoAccountProbing(t *testing.T) {
	f := newHandlerFixture(t)
	f.principals.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, nil)

	app := fiber.New()
	app.Post("/reset", f.server.RequestPasswordReset)

	// Unknown accounts get the exact same answer as known ones.
	resp := postJSON(t, app, "/reset", map[string]string{"email": "ghost@example.com"})
	body := decodeBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body["message"], "If the account exists")
	f.otpStore.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything)
}

func TestApplicationStatus(t *testing.T) {
	t.Run("No token", func(t *testing.T) {
		f := newHandlerFixture(t)
		app := fiber.New()
		app.Get("/status", f.server.ApplicationStatus)

		req := httptest.NewRequest(http.MethodGet, "/status", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("Guest token reports live status", func(t *testing.T) {
		f := newHandlerFixture(t)

		pending := &models.Principal{
			Email:  "member@example.com",
			Role:   models.RoleMember,
			Status: models.StatusPending,
		}
		pending.ID = 10

		guestToken, _, err := f.server.tokens.IssueGuest(pending)
		require.NoError(t, err)

		// The account was approved after the guest token was minted; the
		// endpoint reports the database status, not the token snapshot.
		approved := *pending
		approved.Status = models.StatusApproved
		f.principals.On("GetByID", mock.Anything, uint(10)).Return(&approved, nil)

		app := fiber.New()
		app.Get("/status", f.server.ApplicationStatus)

		req := httptest.NewRequest(http.MethodGet, "/status", nil)
		req.Header.Set("Authorization", "Bearer "+guestToken)
		resp, err := app.Test(req)
		require.NoError(t, err)
		body := decodeBody(t, resp)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "approved", body["status"])
		assert.Equal(t, "member", body["role"])
	})
}
