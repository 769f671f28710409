package election

import (
	"time"

	"github.com/google/uuid"
)

// Ballot links a voter to their chosen candidate. A ballot is immutable once
// written and never deleted outside the full election reset, with one
// exception: the compensating rollback in the casting path removes a ballot
// whose voter-status flip lost the race.
type Ballot struct {
	ID          uuid.UUID `json:"id" db:"id"`
	VoterID     uuid.UUID `json:"voter_id" db:"voter_id"`
	CandidateID uuid.UUID `json:"candidate_id" db:"candidate_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
