package validation

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// EmailRegex validates email format
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

	// Letters (including Latin-1 accents), spaces, hyphens and apostrophes
	nameRegex = regexp.MustCompile(`^[a-zA-ZÀ-ÿ '-]+$`)

	// E.164: a plus sign and 7 to 15 digits
	phoneRegex = regexp.MustCompile(`^\+[0-9]{7,15}$`)

	sirenRegex = regexp.MustCompile(`^[0-9]{9}$`)

	// Two-letter country prefix and 8 to 13 alphanumerics
	tvaRegex = regexp.MustCompile(`^[A-Z]{2}[0-9A-Z]{8,13}$`)

	// Letters, digits, spaces and common business punctuation
	companyNameRegex = regexp.MustCompile(`^[a-zA-ZÀ-ÿ0-9 &'\-.(),]+$`)
)

// passwordSpecials are the characters that satisfy the special-character
// rule.
const passwordSpecials = "!@#$%^&*"

// bcrypt ignores everything past 72 bytes and x/crypto refuses it.
const maxPasswordBytes = 72

// IsValidEmail checks if the string is a valid email format
func IsValidEmail(email string) bool {
	if len(email) > 254 {
		return false
	}
	return emailRegex.MatchString(email)
}

// IsValidPassword checks password strength: at least 8 characters with an
// uppercase letter, a digit and one of !@#$%^&*.
func IsValidPassword(password string) (bool, string) {
	if utf8.RuneCountInString(password) < 8 {
		return false, "Password must be at least 8 characters"
	}
	if len(password) > maxPasswordBytes {
		return false, "Password must be at most 72 bytes"
	}

	var (
		hasUpper   bool
		hasNumber  bool
		hasSpecial bool
	)

	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case char >= '0' && char <= '9':
			hasNumber = true
		case strings.ContainsRune(passwordSpecials, char):
			hasSpecial = true
		}
	}

	if !hasUpper {
		return false, "Password must contain at least one uppercase letter"
	}
	if !hasNumber {
		return false, "Password must contain at least one number"
	}
	if !hasSpecial {
		return false, "Password must contain at least one special character (!@#$%^&*)"
	}

	return true, ""
}

// IsValidName checks a first or last name: at least two characters of
// letters, spaces, hyphens and apostrophes.
func IsValidName(name string) bool {
	return utf8.RuneCountInString(name) >= 2 && nameRegex.MatchString(name)
}

// IsValidPhone checks the E.164 format (+[country code][number]).
func IsValidPhone(phone string) bool {
	return phoneRegex.MatchString(phone)
}

func IsValidSiren(siren string) bool {
	return sirenRegex.MatchString(siren)
}

func IsValidTva(tva string) bool {
	return tvaRegex.MatchString(tva)
}

func IsValidCompanyName(name string) bool {
	return companyNameRegex.MatchString(name)
}

// SanitizeString removes potentially dangerous characters for display
func SanitizeString(s string) string {
	// Remove null bytes
	s = strings.ReplaceAll(s, "\x00", "")

	// Remove control characters except newlines and tabs
	var result strings.Builder
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' || !unicode.IsControl(r) {
			result.WriteRune(r)
		}
	}

	return result.String()
}
