package auth

import (
	"encoding/base64"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/tripauth/internal/cryptox"
	"github.com/dmitrijs2005/tripauth/internal/server/models"
)

// legacyHeader is always the same; the "alg" it names is not what signs it.
const legacyHeader = `{"alg":"HS256","typ":"JWT"}`

type legacyPayload struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Iat   int64  `json:"iat"`
	Exp   int64  `json:"exp"`
}

// LegacyCodec produces the token format of the first, browser-only
// version: header.payload.signature where the signature is the rolling
// hash of header.payload. Anyone can forge these. Times are Unix
// milliseconds.
type LegacyCodec struct {
	validity time.Duration
	now      Clock
}

func NewLegacyCodec(validity time.Duration, now Clock) *LegacyCodec {
	if now == nil {
		now = time.Now
	}
	return &LegacyCodec{validity: validity, now: now}
}

var b64 = base64.RawURLEncoding

func legacySignature(header, payload string) string {
	h := cryptox.RollingHash(header + "." + payload)
	return b64.EncodeToString([]byte(strconv.FormatInt(int64(h), 10)))
}

func (c *LegacyCodec) Mint(u *models.User) (string, error) {
	issued := c.now()
	body, err := json.Marshal(legacyPayload{
		Sub:   u.PublicID,
		Email: u.Email,
		Iat:   issued.UnixMilli(),
		Exp:   issued.Add(c.validity).UnixMilli(),
	})
	if err != nil {
		return "", err
	}

	header := b64.EncodeToString([]byte(legacyHeader))
	payload := b64.EncodeToString(body)
	return header + "." + payload + "." + legacySignature(header, payload), nil
}

func (c *LegacyCodec) Parse(token string) ParseResult {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return invalid
	}
	if parts[2] != legacySignature(parts[0], parts[1]) {
		return invalid
	}

	raw, err := b64.DecodeString(parts[1])
	if err != nil {
		return invalid
	}
	var p legacyPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return invalid
	}

	exp := time.UnixMilli(p.Exp)
	if c.now().After(exp) {
		return invalid
	}

	return ParseResult{Valid: true, Claims: &Claims{
		Subject:   p.Sub,
		Email:     p.Email,
		IssuedAt:  time.UnixMilli(p.Iat),
		ExpiresAt: exp,
	}}
}
