// Package auth implements the session token issuer/verifier, the role
// hierarchy, and the static route classification table used by the access
// gate.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"memberbase/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// Issuer is the `iss` claim stamped on every session token.
	Issuer = "memberbase-api"
	// Audience is the `aud` claim stamped on every session token.
	Audience = "memberbase-client"
)

var (
	// ErrInvalidPrincipal is returned by Issue when required identity fields
	// are missing.
	ErrInvalidPrincipal = errors.New("principal is missing required identity fields")
	// ErrInvalidToken collapses every decode, signature, shape, and expiry
	// failure into a single definite rejection.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Claims are the fields embedded in a session token. Verification returns
// exactly the claims given at issuance; no field is dropped or mutated.
type Claims struct {
	PrincipalID    uint
	Role           models.Role
	Status         models.Status
	Email          string
	Name           string
	OrganizationID *uint
	TokenID        string
	IssuedAt       time.Time
	ExpiresAt      time.Time
}

// Issuer builds and validates signed session tokens with a fixed validity
// window per session kind.
type TokenIssuer struct {
	secret     []byte
	sessionTTL time.Duration
	guestTTL   time.Duration
}

// NewTokenIssuer returns a TokenIssuer signing with the given HMAC secret.
func NewTokenIssuer(secret string, sessionTTL, guestTTL time.Duration) *TokenIssuer {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	if guestTTL <= 0 {
		guestTTL = 2 * time.Hour
	}
	return &TokenIssuer{secret: []byte(secret), sessionTTL: sessionTTL, guestTTL: guestTTL}
}

// SessionTTL returns the validity window of a standard session.
func (t *TokenIssuer) SessionTTL() time.Duration { return t.sessionTTL }

// GuestTTL returns the validity window of a guest (OTP-only) session.
func (t *TokenIssuer) GuestTTL() time.Duration { return t.guestTTL }

// Issue mints a standard session token for the principal.
func (t *TokenIssuer) Issue(p *models.Principal) (string, *Claims, error) {
	return t.issue(p, t.sessionTTL)
}

// IssueGuest mints a short-lived guest session token, used for OTP-only
// verification flows that never reach a full dashboard session.
func (t *TokenIssuer) IssueGuest(p *models.Principal) (string, *Claims, error) {
	return t.issue(p, t.guestTTL)
}

func (t *TokenIssuer) issue(p *models.Principal, window time.Duration) (string, *Claims, error) {
	if len(t.secret) == 0 {
		return "", nil, fmt.Errorf("JWT secret not configured")
	}
	if p == nil || p.ID == 0 || p.Role == "" {
		return "", nil, ErrInvalidPrincipal
	}

	now := time.Now()
	claims := &Claims{
		PrincipalID:    p.ID,
		Role:           p.Role,
		Status:         p.Status,
		Email:          p.Email,
		Name:           p.FullName,
		OrganizationID: p.OrganizationID,
		TokenID:        newTokenID(now),
		IssuedAt:       now,
		ExpiresAt:      now.Add(window),
	}

	mapped := jwt.MapClaims{
		"sub":    strconv.FormatUint(uint64(claims.PrincipalID), 10),
		"role":   string(claims.Role),
		"status": string(claims.Status),
		"email":  claims.Email,
		"name":   claims.Name,
		"iss":    Issuer,
		"aud":    Audience,
		"exp":    claims.ExpiresAt.Unix(),
		"iat":    claims.IssuedAt.Unix(),
		"jti":    claims.TokenID,
	}
	if claims.OrganizationID != nil {
		mapped["org"] = strconv.FormatUint(uint64(*claims.OrganizationID), 10)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, mapped)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// Verify decodes and validates a session token. Verification is stateless:
// the embedded claims are trusted as of issuance time and the credential
// store is never consulted. Every failure mode resolves to ErrInvalidToken.
func (t *TokenIssuer) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	mapped, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	if issuer, issuerOk := mapped["iss"].(string); !issuerOk || issuer != Issuer {
		return nil, ErrInvalidToken
	}
	if audience, audienceOk := mapped["aud"].(string); !audienceOk || audience != Audience {
		return nil, ErrInvalidToken
	}

	sub, ok := mapped["sub"].(string)
	if !ok {
		return nil, ErrInvalidToken
	}
	principalID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || principalID == 0 {
		return nil, ErrInvalidToken
	}

	role, ok := mapped["role"].(string)
	if !ok || Level(models.Role(role)) == 0 {
		return nil, ErrInvalidToken
	}

	status, ok := mapped["status"].(string)
	if !ok {
		return nil, ErrInvalidToken
	}

	claims := &Claims{
		PrincipalID: uint(principalID),
		Role:        models.Role(role),
		Status:      models.Status(status),
	}
	if email, emailOk := mapped["email"].(string); emailOk {
		claims.Email = email
	}
	if name, nameOk := mapped["name"].(string); nameOk {
		claims.Name = name
	}
	if org, orgOk := mapped["org"].(string); orgOk {
		if orgID, parseErr := strconv.ParseUint(org, 10, 32); parseErr == nil {
			id := uint(orgID)
			claims.OrganizationID = &id
		}
	}
	if jti, jtiOk := mapped["jti"].(string); jtiOk {
		claims.TokenID = jti
	}
	if exp, expErr := mapped.GetExpirationTime(); expErr == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	if iat, iatErr := mapped.GetIssuedAt(); iatErr == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}

	return claims, nil
}

// newTokenID creates a unique token ID used for deny-listing on logout.
func newTokenID(now time.Time) string {
	return fmt.Sprintf("%d-%s", now.Unix(), uuid.New().String()[:8])
}
