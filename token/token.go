package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNotAToken is returned when the stored credential does not parse as a JWT.
	ErrNotAToken = errors.New("stored credential is not a parseable token")
	// ErrNoExpiry is returned when the token carries no exp claim.
	ErrNoExpiry = errors.New("token carries no expiry claim")
)

// ExpiresAt returns the unverified exp claim of tokenStr. The signature is
// never checked; the result must only ever be used to short-circuit a
// rejection, never to treat a token as valid.
func ExpiresAt(tokenStr string) (time.Time, error) {
	parser := jwt.NewParser()

	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(tokenStr, claims); err != nil {
		return time.Time{}, errors.Join(ErrNotAToken, err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, errors.Join(ErrNotAToken, err)
	}
	if exp == nil {
		return time.Time{}, ErrNoExpiry
	}

	return exp.Time, nil
}

// Expired reports whether tokenStr's unverified expiry lies more than leeway
// before now. A token inside the leeway window is not reported expired; the
// backend gives the authoritative answer for it. Opaque non-JWT tokens and
// tokens without an exp claim return an error; callers fall through to the
// backend for those too.
func Expired(tokenStr string, leeway time.Duration, now time.Time) (bool, error) {
	if leeway < 0 {
		leeway = 0
	}

	exp, err := ExpiresAt(tokenStr)
	if err != nil {
		return false, err
	}

	return exp.Add(leeway).Before(now), nil
}
