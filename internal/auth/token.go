package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"shopfloor-console/internal/shared_kernel/domain"
)

var (
	ErrMalformedToken = errors.New("malformed token")
	ErrNoRoleClaim    = errors.New("token carries no role claim")
)

// Claims is the subset of the backend's JWT payload the console acts on.
// The console never verifies the signature, the backend does that on
// every request. Decoding here only routes the UI by role.
type Claims struct {
	Subject string `json:"sub"`
	Role    string `json:"role"`
	Exp     int64  `json:"exp"`
}

func (c Claims) Expired(now time.Time) bool {
	return c.Exp > 0 && now.Unix() >= c.Exp
}

// DecodeClaims extracts the payload segment of a JWT without verifying it.
func DecodeClaims(token string) (Claims, error) {
	var claims Claims

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return claims, ErrMalformedToken
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return claims, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	if err := json.Unmarshal(payload, &claims); err != nil {
		return claims, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	if !domain.Role(claims.Role).Valid() {
		return claims, ErrNoRoleClaim
	}

	return claims, nil
}
