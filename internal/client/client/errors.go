package client

import "errors"

var (
	ErrUnavailable = errors.New("server unavailable")
	ErrNotLoggedIn = errors.New("not logged in")
)

// RejectedError is a failure reported by the server in a response body.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string { return e.Message }
