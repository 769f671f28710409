package election

import (
	"fmt"
	"time"
)

// IsVotingOpen decides whether the given voter may vote at the given instant.
// It is pure and must be evaluated both at authentication time and again at
// cast time; a session can outlive its legitimacy window.
func IsVotingOpen(v Voter, settings ElectionSettings, now time.Time) (bool, string) {
	if settings.Status == StatusEnded {
		return false, "the election has ended"
	}

	days := settings.PeriodDays()
	window := time.Duration(days) * 24 * time.Hour
	if now.Sub(v.WindowStart()) > window {
		return false, fmt.Sprintf("the voting period of %d days has expired", days)
	}

	return true, ""
}
