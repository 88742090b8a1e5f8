package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/binay-das/draw-it/internal/pkg/auth"
)

const testSecret = "unit-test-secret"

func TestVerifyRoundTrip(t *testing.T) {
	token, err := GenerateToken("user-42", testSecret, time.Hour)
	require.NoError(t, err)

	verifier := NewVerifier(testSecret)

	userID, err := verifier.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-42", userID)
}

func TestVerifyExpiredToken(t *testing.T) {
	token, err := GenerateToken("user-42", testSecret, -time.Minute)
	require.NoError(t, err)

	verifier := NewVerifier(testSecret)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, auth.ErrTokenExpired)
}

func TestVerifyWrongSecret(t *testing.T) {
	token, err := GenerateToken("user-42", "some-other-secret", time.Hour)
	require.NoError(t, err)

	verifier := NewVerifier(testSecret)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, auth.ErrTokenInvalid)
}

func TestVerifyGarbageToken(t *testing.T) {
	verifier := NewVerifier(testSecret)

	_, err := verifier.Verify("not.a.jwt")
	require.ErrorIs(t, err, auth.ErrTokenInvalid)
}
