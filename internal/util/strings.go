// Package util provides common utility functions used across the force-oauth library.
// These utilities handle string manipulation for logging and error reporting
// that don't fit into domain-specific packages.
package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// SafeTruncate safely truncates a string to maxLen bytes without panicking.
// Returns the original string if it's shorter than maxLen, otherwise returns
// the first maxLen bytes. Used to bound response bodies carried in errors.
//
// If maxLen is negative, it's treated as 0 and returns an empty string.
//
// Example:
//
//	SafeTruncate("Bad_OAuth_Token", 3) // Returns: "Bad"
//	SafeTruncate("short", 10)          // Returns: "short"
//	SafeTruncate("test", -1)           // Returns: ""
func SafeTruncate(s string, maxLen int) string {
	if maxLen < 0 {
		return ""
	}
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}

// Fingerprint returns the first length hex characters of the SHA-256 of a
// sensitive value, so that tokens can be correlated in logs without being
// disclosed. Empty input yields "<empty>".
func Fingerprint(sensitive string, length int) string {
	if sensitive == "" {
		return "<empty>"
	}
	hash := sha256.Sum256([]byte(sensitive))
	return SafeTruncate(hex.EncodeToString(hash[:]), length)
}
