// Package token decodes and issues the signed prefill tokens that carry
// patient field values into the report form, so returning patients do not
// re-type them.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for every decode failure: bad signature,
// malformed structure, or expiry. Callers must not distinguish between
// them — the form degrades to empty fields either way. The underlying
// cause is preserved via wrapping for server-side logs only.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the recognized field set a prefill token may carry. Absent
// claims decode to the empty string.
type Claims struct {
	Name      string
	Email     string
	Contact   string // maps to the form's phone field
	Allergies string
	Symptoms  string
}

// Resolver verifies and mints prefill tokens against the shared secret.
type Resolver struct {
	secret []byte
}

// NewResolver returns a Resolver keyed with the process-wide signing secret.
func NewResolver(secret string) *Resolver {
	return &Resolver{secret: []byte(secret)}
}

// Decode verifies the token and extracts the recognized claims. It never
// panics and never returns a partial result: on any failure the zero Claims
// value is returned alongside an error wrapping ErrInvalidToken.
func (r *Resolver) Decode(tokenString string) (Claims, error) {
	parsed, err := jwt.Parse(tokenString,
		func(t *jwt.Token) (any, error) { return r.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	payload, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, fmt.Errorf("%w: unexpected claims type", ErrInvalidToken)
	}

	return Claims{
		Name:      stringClaim(payload, "name"),
		Email:     stringClaim(payload, "email"),
		Contact:   stringClaim(payload, "contact"),
		Allergies: stringClaim(payload, "allergies"),
		Symptoms:  stringClaim(payload, "symptoms"),
	}, nil
}

// Issue signs a token carrying the given claims, valid for ttl from now.
func (r *Resolver) Issue(c Claims, ttl time.Duration) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"name":      c.Name,
		"email":     c.Email,
		"contact":   c.Contact,
		"allergies": c.Allergies,
		"symptoms":  c.Symptoms,
		"exp":       jwt.NewNumericDate(time.Now().Add(ttl)),
	})
	signed, err := t.SignedString(r.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func stringClaim(m jwt.MapClaims, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
