// Package models holds the records kept by the credential and session stores.
package models

import "time"

// User is one registered account as persisted in the credential store.
// PasswordHash is a one-way credential and never leaves the server.
type User struct {
	ID           string    `json:"id"`
	PublicID     string    `json:"public_id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	CreatedAt    time.Time `json:"created_at"`
	PasswordHash string    `json:"password_hash"`
}

// PublicUser is a User without its credential.
type PublicUser struct {
	ID        string    `json:"id"`
	PublicID  string    `json:"public_id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
}

// Public strips the credential.
func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:        u.ID,
		PublicID:  u.PublicID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt,
	}
}
