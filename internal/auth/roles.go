package auth

import "memberbase/internal/models"

// roleLevels is the single canonical hierarchy table. senior_admin is a legacy
// alias that sits at the same level as admin; unknown roles map to 0 and never
// pass a protected check.
var roleLevels = map[models.Role]int{
	models.RoleMember:      1,
	models.RoleAdmin:       2,
	models.RoleSeniorAdmin: 2,
	models.RoleSuperadmin:  3,
}

// Level returns the numeric hierarchy level of a role, 0 for unknown roles.
func Level(r models.Role) int {
	return roleLevels[r]
}

// HasRequiredRole reports whether a principal holding `have` may access a
// route that requires `want`.
func HasRequiredRole(have, want models.Role) bool {
	haveLevel := roleLevels[have]
	wantLevel := roleLevels[want]
	if haveLevel == 0 || wantLevel == 0 {
		return false
	}
	return haveLevel >= wantLevel
}
