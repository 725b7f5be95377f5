package services

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	minPasswordLen    = 8
	strongPasswordLen = 12
	minUsernameLen    = 3
	passwordSymbols   = `!@#$%^&*(),.?":{}|<>`
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsValidEmail reports whether email looks like local@domain.tld.
func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

// IsPasswordStrong reports whether password has at least 8 characters and
// contains an ASCII uppercase letter, an ASCII lowercase letter, a digit and
// one of !@#$%^&*(),.?":{}|<>.
func IsPasswordStrong(password string) bool {
	if utf8.RuneCountInString(password) < minPasswordLen {
		return false
	}

	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		}
	}
	return upper && lower && digit && symbol
}

// Strength is the meter level shown while a password is typed.
type Strength string

const (
	StrengthNone   Strength = ""
	StrengthWeak   Strength = "weak"
	StrengthMedium Strength = "medium"
	StrengthStrong Strength = "strong"
)

// PasswordStrength grades password for display. A password that fails
// IsPasswordStrong is weak; one that passes is strong from 12 characters on
// and medium below that.
func PasswordStrength(password string) Strength {
	switch {
	case password == "":
		return StrengthNone
	case !IsPasswordStrong(password):
		return StrengthWeak
	case utf8.RuneCountInString(password) >= strongPasswordLen:
		return StrengthStrong
	default:
		return StrengthMedium
	}
}

// Message returns the hint shown next to the meter.
func (s Strength) Message() string {
	switch s {
	case StrengthWeak:
		return "Password must have 8+ characters, uppercase, lowercase, number, and special character"
	case StrengthMedium:
		return "Good, but could be stronger"
	case StrengthStrong:
		return "Strong password!"
	default:
		return ""
	}
}
