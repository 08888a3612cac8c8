package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/tripauth/internal/server/models"
)

type jwtClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// JWTCodec issues HS256 JSON Web Tokens.
type JWTCodec struct {
	secret   []byte
	validity time.Duration
	now      Clock
}

func NewJWTCodec(secret []byte, validity time.Duration, now Clock) *JWTCodec {
	if now == nil {
		now = time.Now
	}
	return &JWTCodec{secret: secret, validity: validity, now: now}
}

func (c *JWTCodec) Mint(u *models.User) (string, error) {
	issued := c.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   u.PublicID,
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(c.validity)),
		},
		Email: u.Email,
	})

	return token.SignedString(c.secret)
}

func (c *JWTCodec) Parse(tokenString string) ParseResult {
	claims := &jwtClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return invalid
	}

	out := &Claims{Subject: claims.Subject, Email: claims.Email}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	out.ExpiresAt = claims.ExpiresAt.Time

	return ParseResult{Valid: true, Claims: out}
}
