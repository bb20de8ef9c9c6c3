package validation

import (
	"errors"
	"strings"
)

const (
	minPasswordLength = 8
	// bcrypt silently truncates anything past 72 bytes
	maxPasswordLength = 72
)

var commonPatterns = []string{
	"password", "123456", "qwerty", "letmein",
	"welcome", "monkey", "dragon", "sunshine",
}

// ValidatePassword validates password strength
func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return errors.New("password must be at least 8 characters")
	}

	if len(password) > maxPasswordLength {
		return errors.New("password must not exceed 72 characters")
	}

	lower := strings.ToLower(password)
	for _, pattern := range commonPatterns {
		if strings.Contains(lower, pattern) {
			return errors.New("password is too common, please choose a stronger one")
		}
	}

	return nil
}
