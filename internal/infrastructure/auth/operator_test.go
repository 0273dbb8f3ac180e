package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const operatorTestSecret = "test-operator-secret-32-bytes!!!!!"

func TestOperatorIssueAndVerify(t *testing.T) {
	svc := NewOperatorTokenService(operatorTestSecret, "tienda-mothership", 12*time.Hour)
	actorID := uuid.New()

	token, err := svc.Issue(actorID, "mothership")
	require.NoError(t, err)
	require.NotNil(t, token)
	assert.NotEmpty(t, token.Token)
	assert.WithinDuration(t, time.Now().Add(12*time.Hour), token.ExpiresAt, 2*time.Second)

	claims, err := svc.Verify(token.Token)
	require.NoError(t, err)
	assert.Equal(t, actorID.String(), claims.ActorID)
	assert.Equal(t, "mothership", claims.Role)
	assert.Equal(t, actorID.String(), claims.Subject)

	parsed, err := claims.GetActorUUID()
	require.NoError(t, err)
	assert.Equal(t, actorID, parsed)
}

func TestOperatorVerify_Expiry(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	issuer := NewOperatorTokenService(operatorTestSecret, "tienda-mothership", time.Hour).
		WithClock(fixedClock(issuedAt))
	token, err := issuer.Issue(uuid.New(), "staff")
	require.NoError(t, err)

	t.Run("valid within the TTL", func(t *testing.T) {
		verifier := NewOperatorTokenService(operatorTestSecret, "tienda-mothership", time.Hour).
			WithClock(fixedClock(issuedAt.Add(30 * time.Minute)))
		_, err := verifier.Verify(token.Token)
		assert.NoError(t, err)
	})

	t.Run("rejected after the TTL", func(t *testing.T) {
		verifier := NewOperatorTokenService(operatorTestSecret, "tienda-mothership", time.Hour).
			WithClock(fixedClock(issuedAt.Add(2 * time.Hour)))
		_, err := verifier.Verify(token.Token)
		assert.ErrorIs(t, err, ErrExpiredOperatorToken)
	})
}

func TestOperatorVerify_Rejections(t *testing.T) {
	svc := NewOperatorTokenService(operatorTestSecret, "tienda-mothership", time.Hour)

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.Verify("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidOperatorToken)
	})

	t.Run("wrong signing secret", func(t *testing.T) {
		forger := NewOperatorTokenService("another-secret-of-32-bytes-long!!", "tienda-mothership", time.Hour)
		token, err := forger.Issue(uuid.New(), "mothership")
		require.NoError(t, err)

		_, err = svc.Verify(token.Token)
		assert.ErrorIs(t, err, ErrInvalidOperatorToken)
	})

	t.Run("impersonation grants are not operator tokens", func(t *testing.T) {
		grants := NewGrantService(operatorTestSecret, "tienda-mothership")
		grant, err := grants.Issue(uuid.New(), uuid.New())
		require.NoError(t, err)

		// Same secret, same algorithm, but no actor_id claim
		_, err = svc.Verify(grant.Token)
		assert.ErrorIs(t, err, ErrMissingActorID)
	})
}
