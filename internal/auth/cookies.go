package auth

import "memberbase/internal/models"

// Role-specific session cookie names. The gate reads the cookie matching the
// route's required role first, then the generic fallback, then the
// Authorization header.
const (
	CookieMember     = "mb_member_token"
	CookieAdmin      = "mb_admin_token"
	CookieSuperadmin = "mb_superadmin_token"
	CookieGeneric    = "mb_token"
)

// AllCookieNames lists every auth cookie, used when clearing a dead session.
var AllCookieNames = []string{CookieMember, CookieAdmin, CookieSuperadmin, CookieGeneric}

// CookieForRole returns the session cookie name for a role.
func CookieForRole(r models.Role) string {
	switch r {
	case models.RoleAdmin, models.RoleSeniorAdmin:
		return CookieAdmin
	case models.RoleSuperadmin:
		return CookieSuperadmin
	default:
		return CookieMember
	}
}

// CookieLookupOrder returns the ordered list of cookie names the gate checks
// for a route requiring the given role.
func CookieLookupOrder(required models.Role) []string {
	first := CookieForRole(required)
	names := []string{first}
	for _, n := range AllCookieNames {
		if n != first {
			names = append(names, n)
		}
	}
	return names
}
