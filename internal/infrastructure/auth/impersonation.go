// Package auth issues and verifies impersonation grants: short lived
// signed tokens that let a platform operator act inside a tenant for
// support work.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// GrantTTL is the lifetime of every impersonation grant. It is fixed
// on purpose; callers cannot request a longer session.
const GrantTTL = 5 * time.Minute

// RoleImpersonator is the only role an impersonation grant ever
// carries, regardless of the privileges the issuing operator holds.
const RoleImpersonator = "impersonator"

// Common errors
var (
	ErrInvalidGrant    = errors.New("invalid impersonation grant")
	ErrExpiredGrant    = errors.New("impersonation grant has expired")
	ErrInvalidClaims   = errors.New("invalid grant claims")
	ErrMissingTenantID = errors.New("missing tenant_id in grant")
	ErrNotImpersonated = errors.New("grant is not an impersonation grant")
	ErrGrantRevoked    = errors.New("impersonation grant has been revoked")
)

// GrantClaims are the claims carried by an impersonation grant.
// Impersonated is always true so downstream consumers can never
// mistake the grant for an ordinary session token.
type GrantClaims struct {
	jwt.RegisteredClaims
	TenantID       string `json:"tenant_id"`
	ImpersonatorID string `json:"impersonator_id"`
	Role           string `json:"role"`
	Impersonated   bool   `json:"impersonated"`
}

// Grant is an issued impersonation grant
type Grant struct {
	Token     string    `json:"token"`
	TenantID  uuid.UUID `json:"tenant_id"`
	ExpiresAt time.Time `json:"expires_at"`
	GrantID   string    `json:"grant_id"`
}

// GrantService signs and verifies impersonation grants
type GrantService struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// GrantServiceOption configures a GrantService
type GrantServiceOption func(*GrantService)

// WithClock overrides the service's time source. Used by tests to
// drive expiry without sleeping.
func WithClock(now func() time.Time) GrantServiceOption {
	return func(s *GrantService) {
		s.now = now
	}
}

// NewGrantService creates a grant service signing with the given secret
func NewGrantService(secret, issuer string, opts ...GrantServiceOption) *GrantService {
	s := &GrantService{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue creates a grant for the impersonator to act inside the tenant.
// Authorization of the impersonator happens before this call; the
// service only mints what it is asked for.
func (s *GrantService) Issue(tenantID, impersonatorID uuid.UUID) (*Grant, error) {
	now := s.now()
	jti := uuid.New().String()

	claims := &GrantClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    s.issuer,
			Subject:   impersonatorID.String(),
			Audience:  jwt.ClaimStrings{s.issuer},
			ExpiresAt: jwt.NewNumericDate(now.Add(GrantTTL)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		TenantID:       tenantID.String(),
		ImpersonatorID: impersonatorID.String(),
		Role:           RoleImpersonator,
		Impersonated:   true,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, err
	}

	return &Grant{
		Token:     signed,
		TenantID:  tenantID,
		ExpiresAt: now.Add(GrantTTL),
		GrantID:   jti,
	}, nil
}

// Verify validates a grant and returns its claims
func (s *GrantService) Verify(tokenString string) (*GrantClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &GrantClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidGrant
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredGrant
		}
		return nil, ErrInvalidGrant
	}

	claims, ok := token.Claims.(*GrantClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}

	if !claims.Impersonated || claims.Role != RoleImpersonator {
		return nil, ErrNotImpersonated
	}
	if claims.TenantID == "" {
		return nil, ErrMissingTenantID
	}
	if claims.ImpersonatorID == "" {
		return nil, ErrInvalidClaims
	}

	return claims, nil
}

// GetTenantUUID extracts and parses the tenant ID from claims
func (c *GrantClaims) GetTenantUUID() (uuid.UUID, error) {
	return uuid.Parse(c.TenantID)
}

// GetImpersonatorUUID extracts and parses the impersonator ID from claims
func (c *GrantClaims) GetImpersonatorUUID() (uuid.UUID, error) {
	return uuid.Parse(c.ImpersonatorID)
}

// RemainingTTL returns the time until the grant expires, measured
// against the given instant
func (c *GrantClaims) RemainingTTL(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	remaining := c.ExpiresAt.Time.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}
