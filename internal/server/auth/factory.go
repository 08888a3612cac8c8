package auth

import (
	"fmt"
	"time"
)

// NewCodec builds the codec named by format.
func NewCodec(format string, secret []byte, validity time.Duration, now Clock) (Codec, error) {
	switch format {
	case FormatJWT, "":
		return NewJWTCodec(secret, validity, now), nil
	case FormatLegacy:
		return NewLegacyCodec(validity, now), nil
	default:
		return nil, fmt.Errorf("unknown token format %q", format)
	}
}
