package service

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-for-hs256"

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestNewTokenServiceRequiresSecret(t *testing.T) {
	_, err := NewTokenService("")
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestIssueAndVerify(t *testing.T) {
	issued := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	tokens, err := NewTokenService(testSecret)
	require.NoError(t, err)
	tokens.WithClock(fixedClock(issued))

	signed, exp, err := tokens.Issue(42)
	require.NoError(t, err)
	assert.Equal(t, issued.Add(TokenLifetime), exp)

	session, err := tokens.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, int64(42), session.UserID)
	assert.Equal(t, issued.Unix(), session.IssuedAt.Unix())
	assert.Equal(t, int64(604800), session.ExpiresAt.Unix()-session.IssuedAt.Unix())
}

func TestTokenPayloadShape(t *testing.T) {
	tokens, err := NewTokenService(testSecret)
	require.NoError(t, err)

	signed, _, err := tokens.Issue(7)
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(signed, claims)
	require.NoError(t, err)

	assert.Len(t, claims, 3)
	assert.EqualValues(t, 7, claims["userId"])
	assert.Contains(t, claims, "iat")
	assert.Contains(t, claims, "exp")
}

func TestVerifyExpiryBoundary(t *testing.T) {
	issued := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	issuer, err := NewTokenService(testSecret)
	require.NoError(t, err)
	signed, _, err := issuer.WithClock(fixedClock(issued)).Issue(1)
	require.NoError(t, err)

	tests := []struct {
		name string
		at   time.Time
		err  error
	}{
		{"just issued", issued, nil},
		{"six days twenty-three hours", issued.Add(6*24*time.Hour + 23*time.Hour), nil},
		{"seven days one second", issued.Add(TokenLifetime + time.Second), ErrExpiredToken},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			verifier, err := NewTokenService(testSecret)
			require.NoError(t, err)
			verifier.WithClock(fixedClock(tc.at))

			_, err = verifier.Verify(signed)
			if tc.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestVerifyRejectsForgeries(t *testing.T) {
	tokens, err := NewTokenService(testSecret)
	require.NoError(t, err)

	claims := Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	otherSecret, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("another-secret"))
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{RegisteredClaims: claims.RegisteredClaims}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: 1}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	valid, _, err := tokens.Issue(1)
	require.NoError(t, err)
	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	forgeries := map[string]string{
		"wrong secret": otherSecret,
		"alg none":     unsigned,
		"alg HS512":    hs512,
		"missing user": noUser,
		"no expiry":    noExpiry,
		"tampered":     tampered,
		"garbage":      "not-a-token",
		"empty":        "",
	}
	for name, token := range forgeries {
		t.Run(name, func(t *testing.T) {
			_, err := tokens.Verify(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
