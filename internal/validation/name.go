package validation

import (
	"strings"
)

// ValidateName validates an account's full name
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)

	if trimmed == "" {
		return invalid("fullName", "full name is required")
	}

	if len(trimmed) > 100 {
		return invalid("fullName", "full name is too long (max 100 characters)")
	}

	return nil
}
