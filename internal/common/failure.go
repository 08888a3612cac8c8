package common

import "errors"

// FailureKind classifies a Failure. Kinds are internal: transports and
// metrics use them, callers only ever see the message.
type FailureKind string

const (
	KindValidation   FailureKind = "validation"
	KindNotFound     FailureKind = "not_found"
	KindInvalidToken FailureKind = "invalid_token"
	KindUnexpected   FailureKind = "unexpected"
)

// Failure is a user-facing auth failure. Message is meant for direct display.
type Failure struct {
	Kind    FailureKind
	Message string
}

func (f *Failure) Error() string { return f.Message }

func newFailure(kind FailureKind, msg string) *Failure {
	return &Failure{Kind: kind, Message: msg}
}

// Registration failures, in pipeline order.
var (
	ErrMissingFields    = newFailure(KindValidation, "All fields are required")
	ErrPasswordMismatch = newFailure(KindValidation, "Passwords do not match")
	ErrPasswordTooShort = newFailure(KindValidation, "Password must be at least 8 characters long")
	ErrInvalidEmail     = newFailure(KindValidation, "Please enter a valid email address")
	ErrNameTooShort     = newFailure(KindValidation, "First and last name must be at least 2 characters long")
	ErrEmailTaken       = newFailure(KindValidation, "A user with this email already exists")
)

// Login failures. ErrInvalidCredentials covers both unknown email and
// wrong password.
var (
	ErrMissingCredentials = newFailure(KindValidation, "Email and password are required")
	ErrInvalidCredentials = newFailure(KindNotFound, "Invalid email or password")
)

// Token verification failures.
var (
	ErrInvalidToken    = newFailure(KindInvalidToken, "Invalid or expired token")
	ErrSessionNotFound = newFailure(KindNotFound, "Session not found")
	ErrUserNotFound    = newFailure(KindNotFound, "User not found")
)

// Generic failures returned when storage or codecs break.
var (
	ErrRegistrationFailed = newFailure(KindUnexpected, "Registration failed, please try again")
	ErrLoginFailed        = newFailure(KindUnexpected, "Login failed, please try again")
	ErrVerificationFailed = newFailure(KindUnexpected, "Token verification failed, please try again")
	ErrLogoutFailed       = newFailure(KindUnexpected, "Logout failed, please try again")
)

// AsFailure extracts a *Failure from err. Any other error maps to fallback.
func AsFailure(err error, fallback *Failure) *Failure {
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return fallback
}
