package election

import "errors"

// Rejection kinds surfaced by the authentication and casting flows. Every
// kind maps to a distinct user-facing reason; support staff rely on the
// distinction when diagnosing failed login attempts.
var (
	ErrMissingCredentials = errors.New("election code and name are required")
	ErrInvalidCode        = errors.New("invalid election code")
	ErrNameMismatch       = errors.New("name does not match")
	ErrAlreadyVoted       = errors.New("vote already cast")
	ErrWindowClosed       = errors.New("voting window closed")
	ErrSessionExpired     = errors.New("session expired")
	ErrInvalidCandidate   = errors.New("unknown candidate")
	ErrDuplicateVote      = errors.New("duplicate ballot")
	ErrVoterNotFound      = errors.New("voter not found")
	ErrCandidateInUse     = errors.New("candidate has recorded ballots")
	ErrPeriodNotExtended  = errors.New("voting period can only be extended")
)
