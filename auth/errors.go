package auth

import "fmt"

// AuthError is an authentication or authorization failure that maps directly
// to an HTTP response at the route boundary.
type AuthError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// NewAuthError creates a new auth error.
func NewAuthError(errorType, message string, code int) *AuthError {
	return &AuthError{Type: errorType, Message: message, Code: code}
}

// Failure taxonomy. The message strings are part of the API contract: the
// ordinary guard surfaces them verbatim so clients can tell the cases apart.
var (
	ErrNoToken            = NewAuthError("NO_TOKEN", "Not authorized, no token", 401)
	ErrTokenInvalid       = NewAuthError("TOKEN_INVALID", "Not authorized, token failed", 401)
	ErrSessionIdleExpired = NewAuthError("SESSION_IDLE_EXPIRED", "Session expired due to inactivity", 401)
	ErrAccountMissing     = NewAuthError("ACCOUNT_MISSING", "User not found", 401)

	// ErrInvalidCredentials deliberately covers both unknown email and wrong
	// password so a caller cannot probe which accounts exist.
	ErrInvalidCredentials = NewAuthError("INVALID_CREDENTIALS", "Invalid email or password", 401)

	ErrDuplicateEmail = NewAuthError("DUPLICATE_EMAIL", "User already exists with this email. Please login.", 400)
	ErrReservedEmail  = NewAuthError("RESERVED_EMAIL", "This email is reserved for administrative access. Please login instead.", 400)
	ErrWeakPassword   = NewAuthError("WEAK_PASSWORD", "Password must be at least 6 characters", 400)

	// ErrRoleDenied reads as a missing route on purpose.
	ErrRoleDenied = NewAuthError("ROLE_DENIED", "Not found", 404)
)
