// Package auth issues and verifies bearer tokens that carry the caller identity.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrUnauthenticated is returned for a missing, malformed, expired or foreign token.
var ErrUnauthenticated = errors.New("unauthenticated")

// Verifier signs and validates HS256 tokens for a single issuer.
type Verifier struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewVerifier returns a Verifier. An empty secret yields a Verifier that rejects every token.
func NewVerifier(secret []byte, issuer string) *Verifier {
	return &Verifier{secret: secret, issuer: issuer, now: time.Now}
}

// WithClock replaces time.Now for expiry checks and issuing.
func (v *Verifier) WithClock(now func() time.Time) *Verifier {
	v.now = now
	return v
}

// Issue mints a token for subject valid for ttl.
func (v *Verifier) Issue(subject string, ttl time.Duration) (string, error) {
	if strings.TrimSpace(subject) == "" {
		return "", errors.New("subject is required")
	}
	if len(v.secret) == 0 {
		return "", errors.New("auth secret is not configured")
	}
	if ttl <= 0 {
		return "", errors.New("ttl must be positive")
	}

	now := v.now().UTC()
	claims := jwt.RegisteredClaims{
		Issuer:    v.issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// Identity validates token and returns its subject.
func (v *Verifier) Identity(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" || len(v.secret) == 0 {
		return "", ErrUnauthenticated
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return "", ErrUnauthenticated
	}

	if claims.Issuer != v.issuer {
		return "", ErrUnauthenticated
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.Time.After(v.now()) {
		return "", ErrUnauthenticated
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", ErrUnauthenticated
	}
	return claims.Subject, nil
}

type identityKey struct{}

// WithIdentity stores the caller identity in ctx.
func WithIdentity(ctx context.Context, identity string) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFrom returns the caller identity stored by WithIdentity.
func IdentityFrom(ctx context.Context) (string, bool) {
	identity, ok := ctx.Value(identityKey{}).(string)
	return identity, ok && identity != ""
}
