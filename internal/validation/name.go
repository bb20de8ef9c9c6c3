package validation

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

var loginIDPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// ValidateName validates the display name of an account
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)

	if trimmed == "" {
		return errors.New("name is required")
	}

	if utf8.RuneCountInString(trimmed) > 100 {
		return errors.New("name is too long (max 100 characters)")
	}

	return nil
}

// ValidateLoginID validates the login id chosen at signup or on update
func ValidateLoginID(loginID string) error {
	trimmed := strings.TrimSpace(loginID)

	if trimmed == "" {
		return errors.New("ID is required")
	}

	if len(trimmed) < 3 || len(trimmed) > 30 {
		return errors.New("ID must be between 3 and 30 characters")
	}

	if !loginIDPattern.MatchString(trimmed) {
		return errors.New("ID may only contain letters, digits, '.', '_' and '-'")
	}

	return nil
}

// ValidateTitle validates a post title
func ValidateTitle(title string) error {
	trimmed := strings.TrimSpace(title)

	if trimmed == "" {
		return errors.New("title is required")
	}

	if utf8.RuneCountInString(trimmed) > 200 {
		return errors.New("title is too long (max 200 characters)")
	}

	return nil
}
