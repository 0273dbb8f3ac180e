package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Operator token errors
var (
	ErrInvalidOperatorToken = errors.New("invalid operator token")
	ErrExpiredOperatorToken = errors.New("operator token has expired")
	ErrMissingActorID       = errors.New("missing actor_id in operator token")
)

// OperatorClaims are the claims carried by an operator console token.
// The role claim is what the handlers gate administrative capabilities
// on; it is signed, never taken from request headers.
type OperatorClaims struct {
	jwt.RegisteredClaims
	ActorID string `json:"actor_id"`
	Role    string `json:"role"`
}

// OperatorToken is an issued operator console token
type OperatorToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// OperatorTokenService signs and verifies operator console tokens. The
// mothership console mints them at operator sign-in; this service is the
// only authority the admin surface trusts.
type OperatorTokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewOperatorTokenService creates an operator token service signing with
// the given secret
func NewOperatorTokenService(secret, issuer string, ttl time.Duration) *OperatorTokenService {
	return &OperatorTokenService{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock overrides the service's time source, mainly for tests
func (s *OperatorTokenService) WithClock(now func() time.Time) *OperatorTokenService {
	s.now = now
	return s
}

// Issue mints a token identifying the operator and their role
func (s *OperatorTokenService) Issue(actorID uuid.UUID, role string) (*OperatorToken, error) {
	now := s.now()

	claims := &OperatorClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.issuer,
			Subject:   actorID.String(),
			Audience:  jwt.ClaimStrings{s.issuer},
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		ActorID: actorID.String(),
		Role:    role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, err
	}

	return &OperatorToken{
		Token:     signed,
		ExpiresAt: now.Add(s.ttl),
	}, nil
}

// Verify validates an operator token and returns its claims
func (s *OperatorTokenService) Verify(tokenString string) (*OperatorClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &OperatorClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidOperatorToken
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredOperatorToken
		}
		return nil, ErrInvalidOperatorToken
	}

	claims, ok := token.Claims.(*OperatorClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}

	if claims.ActorID == "" {
		return nil, ErrMissingActorID
	}
	if claims.Role == "" {
		return nil, ErrInvalidClaims
	}

	return claims, nil
}

// GetActorUUID extracts and parses the actor ID from claims
func (c *OperatorClaims) GetActorUUID() (uuid.UUID, error) {
	return uuid.Parse(c.ActorID)
}
