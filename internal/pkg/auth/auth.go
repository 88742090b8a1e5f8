/*
Package auth defines the credential-verification boundary of the realtime server.

The server never mints or refreshes credentials itself; it consumes an opaque
Verifier supplied at startup. The concrete JWT implementation lives in the jwt
subpackage.
*/
package auth

import "errors"

var (
	// ErrTokenExpired indicates the credential was well-formed and correctly signed
	// but is past its expiration time.
	ErrTokenExpired = errors.New("auth: token expired")

	// ErrTokenInvalid indicates the credential is structurally broken, unsigned,
	// or signed with the wrong key.
	ErrTokenInvalid = errors.New("auth: token invalid")
)

// Verifier resolves an opaque credential to a user id.
// Implementations must return ErrTokenExpired or ErrTokenInvalid (possibly wrapped)
// so callers can distinguish the two rejection classes for observability.
type Verifier interface {
	Verify(token string) (userID string, err error)
}
