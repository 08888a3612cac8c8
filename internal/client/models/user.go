// Package models holds client-side records.
package models

import "time"

// User is the account as the server reports it. It is persisted as JSON
// under common.ClientUserKey.
type User struct {
	PublicID  string    `json:"public_id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is the restored login state.
type Session struct {
	Token string
	Email string
	User  *User
}
