package api

import "google.golang.org/protobuf/types/known/timestamppb"

// User is the public part of an account.
type User struct {
	PublicID  string                 `json:"public_id"`
	Email     string                 `json:"email"`
	FirstName string                 `json:"first_name"`
	LastName  string                 `json:"last_name"`
	CreatedAt *timestamppb.Timestamp `json:"created_at,omitempty"`
}

// Result is embedded in every response. Message is set on failure only and
// is meant for direct display.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type RegisterRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
}

type RegisterResponse struct {
	Result
	User *User `json:"user,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Result
	User  *User  `json:"user,omitempty"`
	Token string `json:"token,omitempty"`
}

// VerifyTokenRequest may leave Token empty and send it in the
// access_token metadata header instead.
type VerifyTokenRequest struct {
	Token string `json:"token,omitempty"`
}

type VerifyTokenResponse struct {
	Result
	User *User `json:"user,omitempty"`
}

type LogoutRequest struct {
	Token string `json:"token,omitempty"`
}

type LogoutResponse struct {
	Result
}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}
