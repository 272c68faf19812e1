// Package domain holds small value objects shared across bounded contexts.
package domain

import (
	"fmt"
	"strings"
)

// Role is the closed set of actor roles recognized by the issuance service.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleReviewer Role = "REVIEWER"
	RoleStudent  Role = "STUDENT"
)

// IsValid reports whether the role is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleReviewer, RoleStudent:
		return true
	}
	return false
}

// String returns the canonical upper-case representation.
func (r Role) String() string {
	return string(r)
}

// ParseRole converts a string to a Role, case-insensitively.
func ParseRole(s string) (Role, error) {
	role := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !role.IsValid() {
		return "", fmt.Errorf("unknown role: %q", s)
	}
	return role, nil
}
