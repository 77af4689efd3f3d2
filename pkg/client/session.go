package client

import (
	"time"

	"library-circulation/internal/domain/actor"
)

// Session is everything the client knows about a login. It is created by
// Login, passed explicitly and dropped by Logout.
type Session struct {
	BaseURL   string    `yaml:"base_url"   json:"base_url"`
	Token     string    `yaml:"token"      json:"token"`
	UserID    string    `yaml:"user_id"    json:"user_id"`
	Username  string    `yaml:"username"   json:"username"`
	Role      string    `yaml:"role"       json:"role"`
	ExpiresAt time.Time `yaml:"expires_at" json:"expires_at"`
}

func (s *Session) Valid(now time.Time) bool {
	return s != nil && s.Token != "" && now.Before(s.ExpiresAt)
}

// IsStaff reports whether the session belongs to a librarian or admin;
// staff extensions apply without approval.
func (s *Session) IsStaff() bool {
	role, _ := actor.ParseRole(s.Role)
	return role.IsStaff()
}
