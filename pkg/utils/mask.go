package utils

import "strings"

const visiblePrefix = 4

// MaskSecret keeps the first few characters of a secret for correlation and hides the rest.
// Short values are hidden entirely.
func MaskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= visiblePrefix*2 {
		return "***"
	}
	return secret[:visiblePrefix] + strings.Repeat("*", 3)
}
