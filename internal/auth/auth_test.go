package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func newTestVerifier() *Verifier {
	return NewVerifier([]byte("test-secret"), "sola-table").WithClock(func() time.Time { return testNow })
}

func TestVerifier_RoundTrip(t *testing.T) {
	v := newTestVerifier()

	token, err := v.Issue("alice", time.Hour)
	require.NoError(t, err)

	identity, err := v.Identity(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", identity)
}

func TestVerifier_KeepsSubjectExact(t *testing.T) {
	v := newTestVerifier()

	token, err := v.Issue(" alice", time.Hour)
	require.NoError(t, err)

	identity, err := v.Identity(token)
	require.NoError(t, err)
	assert.Equal(t, " alice", identity)
}

func TestVerifier_RejectsExpired(t *testing.T) {
	v := newTestVerifier()
	token, err := v.Issue("alice", time.Minute)
	require.NoError(t, err)

	later := NewVerifier([]byte("test-secret"), "sola-table").
		WithClock(func() time.Time { return testNow.Add(2 * time.Minute) })
	_, err = later.Identity(token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestVerifier_RejectsForeignTokens(t *testing.T) {
	v := newTestVerifier()

	otherSecret, err := NewVerifier([]byte("other"), "sola-table").
		WithClock(func() time.Time { return testNow }).Issue("alice", time.Hour)
	require.NoError(t, err)

	otherIssuer, err := NewVerifier([]byte("test-secret"), "someone-else").
		WithClock(func() time.Time { return testNow }).Issue("alice", time.Hour)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:  "sola-table",
		Subject: "alice",
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	wrongAlg, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Issuer:    "sola-table",
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(testNow.Add(time.Hour)),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"empty":        "",
		"garbage":      "not-a-token",
		"other secret": otherSecret,
		"other issuer": otherIssuer,
		"no expiry":    noExpiry,
		"wrong alg":    wrongAlg,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := v.Identity(token)
			assert.ErrorIs(t, err, ErrUnauthenticated)
		})
	}
}

func TestVerifier_IssueValidation(t *testing.T) {
	_, err := newTestVerifier().Issue(" ", time.Hour)
	assert.Error(t, err)

	_, err = newTestVerifier().Issue("alice", 0)
	assert.Error(t, err)

	_, err = NewVerifier(nil, "sola-table").Issue("alice", time.Hour)
	assert.Error(t, err)
}

func TestIdentityContext(t *testing.T) {
	_, ok := IdentityFrom(context.Background())
	assert.False(t, ok)

	ctx := WithIdentity(context.Background(), "alice")
	identity, ok := IdentityFrom(ctx)
	assert.True(t, ok)
	assert.Equal(t, "alice", identity)
}
