package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		ok       bool
	}{
		{"", false},
		{"1234567", false},
		{"senha123", true},
		{strings.Repeat("a", 72), true},
		{strings.Repeat("a", 73), false},
	}
	for _, tc := range tests {
		err := ValidatePassword(tc.password)
		if tc.ok {
			assert.NoError(t, err, "password %q", tc.password)
		} else {
			assert.Error(t, err, "password %q", tc.password)
		}
	}
}

func TestShortPasswordAlwaysRejected(t *testing.T) {
	for n := 0; n < MinPasswordLength; n++ {
		require.Error(t, ValidatePassword(strings.Repeat("x", n)), "length %d", n)
	}
}

func TestValidateEmail(t *testing.T) {
	for _, e := range []string{"ana@x.com", "first.last+tag@example.co"} {
		assert.NoError(t, ValidateEmail(e), e)
	}

	invalidEmails := []string{"", "not-an-email", "Ana <ana@x.com>", strings.Repeat("a", 250) + "@x.com"}
	for _, e := range invalidEmails {
		assert.Error(t, ValidateEmail(e), e)
	}
}

func TestValidateUsernameAndName(t *testing.T) {
	assert.NoError(t, ValidateUsername("anasilva"))
	for _, u := range []string{"", "ab", "has space", strings.Repeat("a", 31)} {
		assert.Error(t, ValidateUsername(u), u)
	}

	assert.Error(t, ValidateName("   "))
	assert.NoError(t, ValidateName("Ana Silva"))
}

func TestErrorCarriesField(t *testing.T) {
	err := ValidatePassword("short")

	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "password", verr.Field)
}
