package protocol

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoSubject is returned when a token payload carries no "sub" claim.
var ErrNoSubject = errors.New("token has no sub claim")

// IsJWT returns true if the string has the 3-part JWT structure.
func IsJWT(s string) bool {
	return strings.Count(s, ".") == 2
}

// UnverifiedClaims decodes the payload segment of a JWT without checking its
// signature. It is a display and routing helper only: nothing it returns may
// be used to grant or deny access.
func UnverifiedClaims(token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	return claims, nil
}

// UnverifiedSubject returns the "sub" claim of a JWT without verifying it.
// The value only selects which user resource to request; the resource server
// authenticates the bearer token itself.
func UnverifiedSubject(token string) (string, error) {
	claims, err := UnverifiedClaims(token)
	if err != nil {
		return "", err
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return "", fmt.Errorf("decode token: %w", err)
	}
	if sub == "" {
		return "", ErrNoSubject
	}
	return sub, nil
}

// DecodeJWT decodes a JWT's header, payload, and signature.
// Header and payload are pretty-printed JSON; signature is the raw base64url string.
func DecodeJWT(token string) (header, payload, signature string) {
	parts := strings.SplitN(token, ".", 3)
	if len(parts) < 2 {
		return token, "", ""
	}
	header = decodeBase64URL(parts[0])
	payload = decodeBase64URL(parts[1])
	if len(parts) == 3 {
		signature = parts[2]
	}
	return
}

func decodeBase64URL(s string) string {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return s
	}
	return PrettyJSON(json.RawMessage(b))
}
