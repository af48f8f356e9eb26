package validation

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 8

// ValidatePassword enforces the length window for local passwords.
func ValidatePassword(password string) error {
	if password == "" {
		return invalid("password", "password is required")
	}

	if len(password) < MinPasswordLength {
		return invalid("password", "password must be at least 8 characters")
	}

	// bcrypt silently truncates passwords longer than 72 bytes
	if len(password) > 72 {
		return invalid("password", "password must not exceed 72 characters")
	}

	return nil
}
