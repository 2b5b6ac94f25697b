package models

import (
	"strings"
	"time"
)

// Role is the permission level of an account.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// Account represents a registered user identity.
type Account struct {
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"password"` // bcrypt hash, or plaintext for legacy records
	Role      Role      `json:"role,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// Session projects the account into the identity held by a logged-in client.
func (a Account) Session() Session {
	role := a.Role
	if !role.Valid() {
		role = RoleUser
	}
	return Session{Name: a.Name, Email: a.Email, Role: role}
}

// Sanitized returns a copy without the credential, for API responses.
func (a Account) Sanitized() Account {
	a.Password = ""
	return a
}

// NormalizeEmail is the registry key form of an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
