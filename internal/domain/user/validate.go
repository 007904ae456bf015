package user

import (
	"errors"
	"regexp"
)

var (
	// ErrInvalidUsername is returned when a username fails validation
	ErrInvalidUsername = errors.New("username must be 3-30 characters of letters, numbers, _ or -")
	// ErrWeakPassword is returned when a password fails the strength policy
	ErrWeakPassword = errors.New("password must be at least 8 characters with upper, lower, digit and special characters")
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,30}$`)

	lowerPattern   = regexp.MustCompile(`[a-z]`)
	upperPattern   = regexp.MustCompile(`[A-Z]`)
	digitPattern   = regexp.MustCompile(`\d`)
	specialPattern = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

const minPasswordLength = 8

// ValidateUsername checks the username policy and returns a typed error on
// violation rather than panicking in a constructor
func ValidateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return ErrInvalidUsername
	}
	return nil
}

// ValidatePassword checks the password strength policy
func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return ErrWeakPassword
	}
	if !lowerPattern.MatchString(password) ||
		!upperPattern.MatchString(password) ||
		!digitPattern.MatchString(password) ||
		!specialPattern.MatchString(password) {
		return ErrWeakPassword
	}
	return nil
}
