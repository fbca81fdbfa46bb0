package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"memberbase/internal/auth"
	"memberbase/internal/cache"
	"memberbase/internal/config"
	"memberbase/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	return &Server{
		config: &config.Config{JWTSecret: "test_secret", Env: "test"},
		tokens: auth.NewTokenIssuer("test_secret", 24*time.Hour, 2*time.Hour),
	}
}

// gatedApp builds a fiber app with the access gate and a catch-all handler
// that reports whether the request got through.
func gatedApp(s *Server) *fiber.App {
	app := fiber.New()
	app.Use(s.AccessGate())
	app.All("/*", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"reached": true, "path": c.Path()})
	})
	return app
}

func issueFor(t *testing.T, s *Server, role models.Role, status models.Status) string {
	t.Helper()
	token, _, err := s.tokens.Issue(&models.Principal{
		ID:       1,
		FullName: "Gate Tester",
		Email:    "gate@example.com",
		Role:     role,
		Status:   status,
	})
	require.NoError(t, err)
	return token
}

func TestAccessGate_PublicAlwaysAllowed(t *testing.T) {
	s := testServer(t)
	app := gatedApp(s)

	for _, path := range []string{
		"/",
		"/login/member",
		"/register",
		"/health",
		"/api/auth/member/login",
		"/api/organizations",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		_ = resp.Body.Close()
	}
}

func TestAccessGate_UnclassifiedAPIDenied(t *testing.T) {
	s := testServer(t)
	app := gatedApp(s)

	// Even a valid superadmin token does not open an unclassified path.
	token := issueFor(t, s, models.RoleSuperadmin, models.StatusActive)
	req := httptest.NewRequest(http.MethodGet, "/api/internal/debug", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAccessGate_UnclassifiedPageRedirects(t *testing.T) {
	s := testServer(t)
	app := gatedApp(s)

	req := httptest.NewRequest(http.MethodGet, "/some-new-page", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login/member", resp.Header.Get("Location"))
}

func TestAccessGate_MissingToken(t *testing.T) {
	s := testServer(t)
	app := gatedApp(s)

	// API route answers 401 JSON.
	req := httptest.NewRequest(http.MethodGet, "/api/member/me", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	_ = resp.Body.Close()

	// Page route redirects to the role's login page.
	req = httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login/admin", resp.Header.Get("Location"))
	_ = resp.Body.Close()
}

func TestAccessGate_InvalidTokenClearsCookies(t *testing.T) {
	s := testServer(t)
	app := gatedApp(s)

	req := httptest.NewRequest(http.MethodGet, "/api/member/me", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieMember, Value: "garbage"})

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	cleared := map[string]bool{}
	for _, c := range resp.Cookies() {
		if c.Value == "" && c.MaxAge < 0 {
			cleared[c.Name] = true
		}
	}
	for _, name := range auth.AllCookieNames {
		assert.True(t, cleared[name], "expected %s to be cleared", name)
	}
}

func TestAccessGate_RoleHierarchy(t *testing.T) {
	s := testServer(t)
	app := gatedApp(s)

	tests := []struct {
		name   string
		role   models.Role
		path   string
		status int
	}{
		{"member reaches member API", models.RoleMember, "/api/member/me", http.StatusOK},
		{"member blocked from admin API", models.RoleMember, "/api/admin/members", http.StatusForbidden},
		{"member blocked from superadmin API", models.RoleMember, "/api/superadmin/dashboard", http.StatusForbidden},
		{"admin reaches member API", models.RoleAdmin, "/api/member/me", http.StatusOK},
		{"admin reaches admin API", models.RoleAdmin, "/api/admin/members", http.StatusOK},
		{"admin blocked from superadmin API", models.RoleAdmin, "/api/superadmin/dashboard", http.StatusForbidden},
		{"senior_admin reaches admin API", models.RoleSeniorAdmin, "/api/admin/members", http.StatusOK},
		{"superadmin reaches everything", models.RoleSuperadmin, "/api/admin/members", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := issueFor(t, s, tt.role, models.StatusActive)
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.Header.Set("Authorization", "Bearer "+token)

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestAccessGate_InsufficientRolePageRedirects(t *testing.T) {
	s := testServer(t)
	app := gatedApp(s)

	token := issueFor(t, s, models.RoleMember, models.StatusActive)
	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieAdmin, Value: token})

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/unauthorized", resp.Header.Get("Location"))
}

func TestAccessGate_StatusRecheck(t *testing.T) {
	s := testServer(t)
	app := gatedApp(s)

	tests := []struct {
		name     string
		status   models.Status
		path     string
		httpCode int
		location string
	}{
		{"pending member API", models.StatusPending, "/api/member/me", http.StatusForbidden, ""},
		{"pending member page", models.StatusPending, "/member/dashboard", http.StatusFound, "/pending-approval"},
		{"rejected member API", models.StatusRejected, "/api/member/me", http.StatusForbidden, ""},
		{"disabled member page", models.StatusDisabled, "/member/dashboard", http.StatusFound, "/inactive-account"},
		{"approved member API", models.StatusApproved, "/api/member/me", http.StatusOK, ""},
		{"active member API", models.StatusActive, "/api/member/me", http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := issueFor(t, s, models.RoleMember, tt.status)
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.Header.Set("Authorization", "Bearer "+token)

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tt.httpCode, resp.StatusCode)
			if tt.location != "" {
				assert.Equal(t, tt.location, resp.Header.Get("Location"))
			}
		})
	}
}

func TestAccessGate_RevokedToken(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	s := testServer(t)
	s.redis = rdb
	app := gatedApp(s)

	token, claims, err := s.tokens.Issue(&models.Principal{
		ID:     1,
		Email:  "gate@example.com",
		Role:   models.RoleMember,
		Status: models.StatusActive,
	})
	require.NoError(t, err)

	// Works before revocation.
	req := httptest.NewRequest(http.MethodGet, "/api/member/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	require.NoError(t, cache.DenyToken(context.Background(), rdb, claims.TokenID, time.Hour))

	// Dead afterwards.
	req = httptest.NewRequest(http.MethodGet, "/api/member/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Token has been revoked", body["error"])
}

func TestAccessGate_InjectsPrincipalContext(t *testing.T) {
	s := testServer(t)

	app := fiber.New()
	app.Use(s.AccessGate())
	app.Get("/api/member/me", func(c *fiber.Ctx) error {
		claims := claimsFromLocals(c)
		require.NotNil(t, claims)
		return c.JSON(fiber.Map{"principal_id": claims.PrincipalID, "role": string(claims.Role)})
	})

	token := issueFor(t, s, models.RoleMember, models.StatusActive)
	req := httptest.NewRequest(http.MethodGet, "/api/member/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, float64(1), body["principal_id"])
	assert.Equal(t, "member", body["role"])
}

func TestAccessGate_CookieLookupPrefersRoleCookie(t *testing.T) {
	s := testServer(t)
	app := gatedApp(s)

	adminToken := issueFor(t, s, models.RoleAdmin, models.StatusActive)
	memberToken := issueFor(t, s, models.RoleMember, models.StatusActive)

	// Both cookies present: the admin route must pick the admin cookie even
	// though a member cookie is also sent.
	req := httptest.NewRequest(http.MethodGet, "/api/admin/members", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieMember, Value: memberToken})
	req.AddCookie(&http.Cookie{Name: auth.CookieAdmin, Value: adminToken})

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
