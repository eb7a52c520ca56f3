package domain

import "time"

// Role distinguishes portal users from administrators.
type Role string

const (
	RoleUser  Role = "User"
	RoleAdmin Role = "Admin"
)

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// LandingRoute returns the dashboard a role lands on after login.
func (r Role) LandingRoute() string {
	if r == RoleAdmin {
		return "/admin/dashboard"
	}
	return "/user/dashboard"
}

// Session holds the authenticated interaction with the ticketing API.
type Session struct {
	ID        string
	Token     string
	Role      Role
	UserID    int64
	Username  string
	Team      string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Viewer is the identity used to classify a viewer's relationship to a ticket.
type Viewer struct {
	UserID int64
	Role   Role
	Team   string
}

// Viewer derives the viewer identity carried by the session.
func (s Session) Viewer() Viewer {
	return Viewer{UserID: s.UserID, Role: s.Role, Team: s.Team}
}

// IsAdmin reports whether the session belongs to an administrator.
func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}
