// Package auth mints and validates the bearer tokens handed out by login.
package auth

import (
	"time"

	"github.com/dmitrijs2005/tripauth/internal/server/models"
)

// DefaultValidity is the fixed lifetime of a session token.
const DefaultValidity = 7 * 24 * time.Hour

// Token formats accepted in configuration.
const (
	FormatJWT    = "jwt"
	FormatLegacy = "legacy"
)

// Claims is the payload carried by a token.
type Claims struct {
	Subject   string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// ParseResult is the outcome of Parse. Claims is set only when Valid.
type ParseResult struct {
	Valid  bool
	Claims *Claims
}

var invalid = ParseResult{}

// Codec mints tokens and validates them. Parse never panics and never
// reports malformed input as anything but an invalid result.
type Codec interface {
	Mint(u *models.User) (string, error)
	Parse(token string) ParseResult
}

// Clock returns the current time. Tests swap it to move past expiry.
type Clock func() time.Time
