/*
Package jwt implements the auth.Verifier oracle on top of HS256 JSON Web Tokens.

Token issuance belongs to the external auth service; GenerateToken exists for
operational tooling and tests that need a signed credential against a known secret.
*/
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"

	"github.com/binay-das/draw-it/internal/pkg/auth"
)

const (
	// TokenExpiration matches the lifetime the auth collaborator signs tokens with.
	TokenExpiration = 7 * 24 * time.Hour

	// TokenIssuer identifies the issuer of the token.
	TokenIssuer = "draw-it"
)

// Verifier validates HS256-signed tokens against a shared secret.
// It implements auth.Verifier.
type Verifier struct {
	secretKey string
}

// NewVerifier constructs a Verifier bound to the given shared secret.
func NewVerifier(secretKey string) *Verifier {
	return &Verifier{secretKey: secretKey}
}

// Verify parses and validates the token string and returns the embedded user id.
// Expired tokens map to auth.ErrTokenExpired; every other failure maps to
// auth.ErrTokenInvalid, so the two rejection classes stay distinguishable.
func (v *Verifier) Verify(tokenString string) (string, error) {
	claims := &Payload{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(v.secretKey), nil
	})

	if err != nil {
		var validationErr *jwt.ValidationError
		if errors.As(err, &validationErr) && validationErr.Errors&jwt.ValidationErrorExpired != 0 {
			return "", fmt.Errorf("%w: %v", auth.ErrTokenExpired, err)
		}
		return "", fmt.Errorf("%w: %v", auth.ErrTokenInvalid, err)
	}

	if !token.Valid || claims.ID == "" {
		return "", auth.ErrTokenInvalid
	}

	return claims.ID, nil
}

// GenerateToken creates and signs a new JWT Token string for the given user id.
func GenerateToken(userID string, secretKey string, duration time.Duration) (string, error) {
	now := time.Now()

	payload := &Payload{
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: now.Add(duration).Unix(),
			IssuedAt:  now.Unix(),
			Issuer:    TokenIssuer,
		},
		ID: userID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, payload)

	return token.SignedString([]byte(secretKey))
}
