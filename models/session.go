package models

import "time"

// Session is the server-side half of a session. The client only ever holds ID, inside
// a signed and encrypted cookie.
type Session struct {
	ID        string            `bson:"_id"`
	UserID    string            `bson:"user_id,omitempty"`
	Values    map[string]string `bson:"values,omitempty"`
	CreatedAt time.Time         `bson:"created_at"`
	UpdatedAt time.Time         `bson:"updated_at"`
	ExpiresAt time.Time         `bson:"expires_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
