// internal/app/system/normalize/normalize.go

// Package normalize centralizes input normalization so stores and handlers
// agree on the canonical form of identity fields.
package normalize

import "strings"

// Email lowercases and trims an email address. Empty or blank input
// normalizes to "".
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// EmployeeID lowercases and trims a human-assigned employee identifier so
// lookups are case-insensitive.
func EmployeeID(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace but preserves case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Role lowercases and trims a role value. Validation against the closed
// enumeration happens in models.IsValidRole.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Status lowercases and trims a status value. Each record kind validates
// against its own enumeration.
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
