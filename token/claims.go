package token

import (
	"errors"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-auth-client/internal/utils"
	"github.com/jrsteele09/go-auth-client/users"
)

// ErrMalformedToken is returned when the claims segment cannot be read.
var ErrMalformedToken = errors.New("malformed access token")

// Claims are the routing hints read from an access token's payload segment.
//
// Nothing here is verified. The signature is never checked on the client, so
// these values must only steer navigation; every protected endpoint on the
// server re-validates the token itself.
type Claims struct {
	Subject        string     // "sub" claim
	Username       string     // "username" claim
	Role           users.Role // "role" claim, else first known entry of "roles"
	RoleRecognised bool       // false when Role is the least-privileged fallback
	ExpiresAt      time.Time  // "exp" claim, zero when absent
}

// LeastPrivileged returns the claims assumed for an unreadable token.
func LeastPrivileged() Claims {
	return Claims{Role: users.LeastPrivileged}
}

// DecodeClaims reads the payload of a compact JWS without verifying it.
//
// It fails closed: on any parse problem the returned Claims carry the
// least-privileged role together with ErrMalformedToken. An unknown or
// missing signing algorithm is not a parse problem here because nothing is
// being verified.
func DecodeClaims(raw string) (Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return LeastPrivileged(), ErrMalformedToken
	}

	parsed, _, err := jwtlib.NewParser().ParseUnverified(raw, jwtlib.MapClaims{})
	if err != nil && (parsed == nil || !errors.Is(err, jwtlib.ErrTokenUnverifiable)) {
		return LeastPrivileged(), errors.Join(ErrMalformedToken, err)
	}

	mapClaims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return LeastPrivileged(), ErrMalformedToken
	}

	claims := Claims{Role: users.LeastPrivileged}
	claims.Subject, _ = mapClaims["sub"].(string)
	claims.Username, _ = mapClaims["username"].(string)

	if roleClaim, found := utils.FirstString(mapClaims["role"]); found {
		claims.Role, claims.RoleRecognised = users.ParseRole(roleClaim)
	} else {
		for _, candidate := range utils.ToStringSlice(mapClaims["roles"]) {
			if role, ok := users.ParseRole(candidate); ok {
				claims.Role, claims.RoleRecognised = role, true
				break
			}
		}
	}

	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}

	return claims, nil
}

// Identity builds the session identity. The subject prefers the username
// claim, then "sub", then fallback (the username typed at login).
func (c Claims) Identity(fallback string) users.Identity {
	subject := strings.TrimSpace(c.Username)
	if subject == "" {
		subject = strings.TrimSpace(c.Subject)
	}
	if subject == "" {
		subject = fallback
	}
	return users.Identity{Subject: subject, Role: c.Role}
}

// Expired reports whether the exp claim lies before now. Advisory only: the
// server decides whether a token is still accepted.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}
