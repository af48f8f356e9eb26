package validation

import (
	"regexp"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

func ValidateUsername(username string) error {
	if username == "" {
		return invalid("username", "username is required")
	}

	if len(username) < 3 || len(username) > 30 {
		return invalid("username", "username must be between 3 and 30 characters")
	}

	if !usernamePattern.MatchString(username) {
		return invalid("username", "username may only contain letters, numbers, dots, dashes and underscores")
	}

	return nil
}
