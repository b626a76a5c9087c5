package service

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MsgAllFieldsRequired = "All fields are required"
	MsgUsernameLength    = "Username must be between 3 and 20 characters"
	MsgUsernameCharset   = "Username may contain lowercase letters and numbers only"
	MsgInvalidEmail      = "Invalid email format"
	MsgPasswordLength    = "Password must be at least 6 characters"
	MsgEmailInUse        = "Email already in use"
	MsgUsernameInUse     = "Username already in use"
	MsgUserNotFound      = "User not found"
	MsgInvalidCredential = "Invalid credentials"
	MsgAccountDisabled   = "Account is disabled"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 20
	minPasswordLength = 6
)

var (
	usernamePattern = regexp.MustCompile(`^[a-z0-9]+$`)
	emailPattern    = regexp.MustCompile(`^\S+@\S+\.\S+$`)
)

// ValidateSignup checks the rules in a fixed order and reports the first one
// violated.
func ValidateSignup(username, email, password string) error {
	if username == "" || email == "" || password == "" {
		return Validation(MsgAllFieldsRequired)
	}
	if err := validateUsername(username); err != nil {
		return err
	}
	if err := validateEmail(email); err != nil {
		return err
	}
	return validatePassword(password)
}

func validateUsername(username string) error {
	if n := utf8.RuneCountInString(username); n < minUsernameLength || n > maxUsernameLength {
		return Validation(MsgUsernameLength)
	}
	if !usernamePattern.MatchString(username) {
		return Validation(MsgUsernameCharset)
	}
	return nil
}

func validateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return Validation(MsgInvalidEmail)
	}
	return nil
}

func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return Validation(MsgPasswordLength)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
