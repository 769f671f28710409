package election

import "time"

// Election lifecycle states.
const (
	StatusNotStarted = "not_started"
	StatusActive     = "active"
	StatusEnded      = "ended"
)

// DefaultVotingPeriodDays applies when settings carry no explicit period.
const DefaultVotingPeriodDays = 5

// ElectionSettings is the singleton election configuration. It is mutated
// only by administrative start/end/extend/regenerate operations.
type ElectionSettings struct {
	Status           string     `json:"status" db:"status"`
	VotingPeriodDays int        `json:"voting_period_days" db:"voting_period_days"`
	StartDate        *time.Time `json:"start_date" db:"start_date"`
	EndDate          *time.Time `json:"end_date" db:"end_date"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

// PeriodDays returns the configured voting period, falling back to the
// default when unset.
func (s ElectionSettings) PeriodDays() int {
	if s.VotingPeriodDays <= 0 {
		return DefaultVotingPeriodDays
	}
	return s.VotingPeriodDays
}
