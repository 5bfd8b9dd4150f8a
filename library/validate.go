package library

import (
	"regexp"
	"strings"
)

// Field-level validation used by the UI layer before anything reaches the
// stores. The core itself only requires non-empty keys.

var (
	emailPattern = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	phonePattern = regexp.MustCompile(`^[0-9]{10}$`)
	isbnPattern  = regexp.MustCompile(`^(?:ISBN(?:-1[03])?:? )?[0-9X-]{10,17}$`)
)

// IsValidEmail reports whether email looks like an address.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// IsValidPhone reports whether phone is a 10-digit number.
func IsValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// IsValidISBN accepts ISBN-10 and ISBN-13 forms, with or without hyphens.
func IsValidISBN(isbn string) bool {
	return isbnPattern.MatchString(isbn)
}

// IsBlank reports whether s is empty after trimming whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
