package auth

import (
	"sort"
	"strings"

	"memberbase/internal/models"
)

// Outcome classifies a request path for the access gate.
type Outcome int

const (
	// OutcomePublic is reachable without a token. Public rules have the
	// highest precedence so authentication endpoints can never be gated by
	// themselves.
	OutcomePublic Outcome = iota
	// OutcomeProtected requires a verified token with a sufficient role.
	OutcomeProtected
	// OutcomeDenied matches no rule. Unlisted paths are denied rather than
	// allowed: a newly added endpoint is secure until it is classified.
	OutcomeDenied
)

// Classification is the access gate's verdict for a path.
type Classification struct {
	Outcome      Outcome
	RequiredRole models.Role
	// API routes answer JSON errors; page routes redirect.
	API bool
}

// publicPrefixes are always reachable unauthenticated. Exact path "/" is
// treated separately in Classify.
var publicPrefixes = []string{
	"/login",
	"/register",
	"/password-reset",
	"/pending-approval",
	"/inactive-account",
	"/unauthorized",
	"/static",
	"/health",
	"/metrics",
	"/api/auth/",
	"/api/organizations",
	"/api/membership/apply",
	"/api/swagger",
}

// protectedPrefixes map path prefixes to the minimum role required.
var protectedPrefixes = map[string]models.Role{
	"/member/dashboard":     models.RoleMember,
	"/admin/dashboard":      models.RoleAdmin,
	"/superadmin/dashboard": models.RoleSuperadmin,
	"/api/member":           models.RoleMember,
	"/api/admin":            models.RoleAdmin,
	"/api/superadmin":       models.RoleSuperadmin,
}

// sortedProtected holds protected prefixes longest-first so the most specific
// rule wins and classification stays unambiguous.
var sortedProtected = func() []string {
	prefixes := make([]string, 0, len(protectedPrefixes))
	for p := range protectedPrefixes {
		prefixes = append(prefixes, p)
	}
	sort.Slice(prefixes, func(i, j int) bool { return len(prefixes[i]) > len(prefixes[j]) })
	return prefixes
}()

// IsAPIPath reports whether a path belongs to the JSON API surface.
func IsAPIPath(path string) bool {
	return strings.HasPrefix(path, "/api/") || path == "/api"
}

// Classify matches a request path against the rule table. Public rules are
// checked first, then protected prefixes (longest first), then the
// fail-closed default.
func Classify(path string) Classification {
	api := IsAPIPath(path)

	if path == "/" {
		return Classification{Outcome: OutcomePublic, API: false}
	}
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return Classification{Outcome: OutcomePublic, API: api}
		}
	}

	for _, prefix := range sortedProtected {
		if strings.HasPrefix(path, prefix) {
			return Classification{
				Outcome:      OutcomeProtected,
				RequiredRole: protectedPrefixes[prefix],
				API:          api,
			}
		}
	}

	return Classification{Outcome: OutcomeDenied, API: api}
}

// LoginPath returns the login page a browser should be redirected to when a
// route requiring the given role has no valid session.
func LoginPath(required models.Role) string {
	switch required {
	case models.RoleAdmin, models.RoleSeniorAdmin:
		return "/login/admin"
	case models.RoleSuperadmin:
		return "/login/superadmin"
	default:
		return "/login/member"
	}
}

// DashboardPath returns the landing page for a freshly authenticated role.
func DashboardPath(r models.Role) string {
	switch r {
	case models.RoleAdmin, models.RoleSeniorAdmin:
		return "/admin/dashboard"
	case models.RoleSuperadmin:
		return "/superadmin/dashboard"
	default:
		return "/member/dashboard"
	}
}
