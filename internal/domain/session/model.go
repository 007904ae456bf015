package session

import (
	"time"
)

// Session records that a token was issued, to whom, and until when.
// It is serialized to JSON under session:<token_id> in Redis; the key's
// physical TTL mirrors ExpiresAt but both are checked independently so a
// record that outlives its TTL resolution is still treated as dead.
type Session struct {
	TokenID    string     `json:"token_id"`
	UserID     string     `json:"user_id"`
	Class      string     `json:"class"` // access or refresh
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  time.Time  `json:"expires_at"`
	DeviceInfo string     `json:"device_info,omitempty"`
	IPAddress  string     `json:"ip_address,omitempty"`
	UserAgent  string     `json:"user_agent,omitempty"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
}

// Active reports whether the session is live at the given instant.
// Revocation is usually represented by the record being deleted from the
// store; RevokedAt covers records that were marked without being removed.
func (s *Session) Active(now time.Time) bool {
	if s == nil {
		return false
	}
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}

// Remaining returns the time left until expiry, floored at zero
func (s *Session) Remaining(now time.Time) time.Duration {
	ttl := s.ExpiresAt.Sub(now)
	if ttl < 0 {
		return 0
	}
	return ttl
}
