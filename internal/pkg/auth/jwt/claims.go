package jwt

import "github.com/golang-jwt/jwt"

// Payload defines the structure of the JSON Web Token (JWT) claims for draw-it.
// It mirrors the claims minted by the external auth collaborator: the standard
// fields plus the user's unique identifier.
type Payload struct {
	// StandardClaims embeds the necessary JWT standard fields such as Exp (Expiration),
	// Iat (Issued At), and Iss (Issuer). These are crucial for token validity checks.
	jwt.StandardClaims `json:"standard_claims"`

	// ID is the unique identifier of the authenticated user. It becomes the
	// Session Registry key for the lifetime of the connection.
	ID string `json:"id"`
}
