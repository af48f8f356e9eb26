package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestAccountJSONOmitsPasswordHash(t *testing.T) {
	a := Account{
		ID:           1,
		FullName:     "Ana Silva",
		Email:        "ana@x.com",
		Username:     "anasilva",
		PasswordHash: strPtr("$2a$10$abcdefghijklmnopqrstuv"),
		CreatedAt:    time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	b, err := json.Marshal(a)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(b, &fields))
	assert.NotContains(t, fields, "passwordHash")
	assert.NotContains(t, fields, "PasswordHash")
	assert.Equal(t, "Ana Silva", fields["fullName"])
	assert.Contains(t, fields, "googleId")
	assert.Nil(t, fields["googleId"])
}

func TestAccountAuthMethods(t *testing.T) {
	tests := []struct {
		name        string
		account     Account
		hasPassword bool
		hasMethod   bool
	}{
		{"local", Account{PasswordHash: strPtr("$2a$10$hash")}, true, true},
		{"google only", Account{PasswordHash: strPtr(PasswordSentinel), GoogleID: strPtr("g1")}, false, true},
		{"github without hash", Account{GitHubID: strPtr("42")}, false, true},
		{"nothing", Account{}, false, false},
		{"empty strings", Account{PasswordHash: strPtr(""), GoogleID: strPtr("")}, false, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.hasPassword, tc.account.HasPassword())
			assert.Equal(t, tc.hasMethod, tc.account.HasAuthMethod())
		})
	}
}

func TestProviderID(t *testing.T) {
	a := Account{GoogleID: strPtr("g1"), GitHubID: strPtr("gh1")}

	assert.Equal(t, "g1", *a.ProviderID(ProviderGoogle))
	assert.Equal(t, "gh1", *a.ProviderID(ProviderGitHub))
	assert.Nil(t, a.ProviderID(Provider("gitlab")))
	assert.False(t, Provider("gitlab").Valid())
}

func TestSessionExpiryBoundary(t *testing.T) {
	exp := time.Date(2026, 1, 8, 0, 0, 0, 0, time.UTC)
	s := Session{UserID: 1, ExpiresAt: exp}

	assert.False(t, s.IsExpired(exp.Add(-time.Second)))
	assert.True(t, s.IsExpired(exp))
}
