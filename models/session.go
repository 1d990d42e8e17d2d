package models

import "time"

const (
	RoleParent   = "parent"
	RoleChild    = "child"
	RoleVerifier = "verifier"
)

// Session личность вызывающего, собранная слоем аутентификации.
// Передается явно в каждую операцию, глобального состояния нет.
type Session struct {
	UID       string    `json:"uid"`
	Role      string    `json:"role"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Session) Authenticated(now time.Time) bool {
	if s == nil || s.UID == "" {
		return false
	}
	return s.ExpiresAt.IsZero() || now.Before(s.ExpiresAt)
}

func (s *Session) IsParent() bool {
	return s != nil && s.Role == RoleParent
}
