package models

// Session is the currently authenticated identity. It is a copy taken at login,
// not a reference into the account registry.
type Session struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// IsAdmin reports whether the session carries the admin role.
func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}
