package election

import (
	"time"

	"github.com/google/uuid"
)

// DefaultSessionTTL is the absolute lifetime of a voter session.
const DefaultSessionTTL = 30 * time.Minute

// Session is short-lived proof of a passed authentication, scoped to one
// voter. At most one session exists per voter at any time.
type Session struct {
	Token        string    `json:"token" db:"token"`
	VoterID      uuid.UUID `json:"voter_id" db:"voter_id"`
	ElectionCode string    `json:"election_code" db:"election_code"`
	ExpiresAt    time.Time `json:"expires_at" db:"expires_at"`
	LastActivity time.Time `json:"last_activity" db:"last_activity"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Expired reports whether the session's absolute deadline has passed.
func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
