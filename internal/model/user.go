package model

import "strings"

// Authority is a named permission carried by a user role.
type Authority struct {
	Name string `json:"name"`
}

// UserRole is an account-level role descriptor.
type UserRole struct {
	Name        string      `json:"name"`
	Authorities []Authority `json:"authorities,omitempty"`
}

// User is an account that can take part in events.
type User struct {
	ID        string     `json:"id"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Email     string     `json:"email"`
	Roles     []UserRole `json:"roles,omitempty"`
}

// IsAdmin reports whether any of the user's roles is named ADMIN.
func (u User) IsAdmin() bool {
	for _, r := range u.Roles {
		if r.Name == string(RoleAdmin) {
			return true
		}
	}
	return false
}

// DisplayName is "First Last".
func (u User) DisplayName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// RoleNames flattens the user's role descriptors.
func (u User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// RolesFromNames builds role descriptors from plain names.
func RolesFromNames(names []string) []UserRole {
	roles := make([]UserRole, 0, len(names))
	for _, n := range names {
		roles = append(roles, UserRole{Name: n})
	}
	return roles
}
