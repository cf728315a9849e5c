// utils/validator.go - Input validation
package utils

import (
	"regexp"
	"strings"
)

// ValidateEmail checks if email is valid
func ValidateEmail(email string) bool {
	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	return emailRegex.MatchString(email)
}

// ValidatePassword checks password strength
func ValidatePassword(password string) (bool, string) {
	if len(password) < 8 {
		return false, "La contraseña debe tener al menos 8 caracteres"
	}

	return true, ""
}

// ValidateRFC checks the shape of an RFC or CURP derived identifier.
func ValidateRFC(rfc string) bool {
	rfcRegex := regexp.MustCompile(`^[A-ZÑ&]{3,4}\d{6}[A-Z0-9]{2,8}$`)
	return rfcRegex.MatchString(strings.ToUpper(rfc))
}

// SanitizeInput removes potentially harmful characters
func SanitizeInput(input string) string {
	// Remove leading/trailing spaces
	input = strings.TrimSpace(input)

	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	return input
}
