package domain

import (
	"regexp"
	"strings"
)

// DefaultAccessCodes are the campus admission codes printed on the posters.
var DefaultAccessCodes = []string{"CIT25", "COMSATS25", "TEST1234", "AMC25"}

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

var emailPattern = regexp.MustCompile(`^\w+([.+-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,})+$`)

// NormalizeAccessCode trims and upper-cases an access code.
func NormalizeAccessCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsAllowedAccessCode reports whether code, once normalized, is in allowlist.
// Allowlist entries are normalized the same way.
func IsAllowedAccessCode(code string, allowlist []string) bool {
	c := NormalizeAccessCode(code)
	if c == "" {
		return false
	}
	for _, allowed := range allowlist {
		if NormalizeAccessCode(allowed) == c {
			return true
		}
	}
	return false
}

// NormalizeEmail is the canonical form used for storage and lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail checks the address against a basic grammar.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}
