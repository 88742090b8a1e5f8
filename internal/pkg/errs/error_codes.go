/*
Package errs provides custom error types and application-level error code constants.

These error codes are used to clearly identify specific business or system errors
both internally within the server and in communication with clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1002
)

// 2xxx: Room and Content Business Logic Errors
const (
	// ErrRoomNotFound indicates that the requested room slug does not exist in storage.
	ErrRoomNotFound = 2101

	// ErrRoomSlugInvalid indicates that the room slug failed the configured length bounds.
	ErrRoomSlugInvalid = 2102
)

// 3xxx: User, Session, and Security Errors
const (
	// ErrUnauthorized indicates that no valid credential accompanied the request.
	ErrUnauthorized = 3001

	// ErrSessionActive indicates that the user already has a live connection registered.
	ErrSessionActive = 3002
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000
)
