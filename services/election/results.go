package election

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"ballotd/pkg/db"
)

// CandidateResult is one row of the tally.
type CandidateResult struct {
	CandidateID uuid.UUID `json:"candidate_id" db:"candidate_id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Votes       int       `json:"votes" db:"votes"`
}

// Results is the read-only aggregate over recorded ballots. It carries no
// write invariants of its own; it only has to reflect the casting path's
// atomicity (no double counting, no lost votes).
type Results struct {
	Rankings    []CandidateResult `json:"rankings"`
	TotalVoters int               `json:"total_voters"`
	VotedCount  int               `json:"voted_count"`
	Turnout     float64           `json:"turnout_percent"`
	LastVoteAt  *time.Time        `json:"last_vote_at"`
}

// TallyResults groups ballots by candidate, highest count first. Candidates
// with equal counts keep the order the store returned them in; no secondary
// sort key is defined.
func (s *Store) TallyResults(ctx context.Context) (Results, error) {
	query := `
        SELECT c.id AS candidate_id, c.name, c.description, COUNT(b.id) AS votes
        FROM candidates c
        LEFT JOIN ballots b ON b.candidate_id = c.id
        GROUP BY c.id, c.name, c.description
        ORDER BY votes DESC
    `

	var rankings []CandidateResult
	if err := db.Select(ctx, s.DB, &rankings, query); err != nil {
		return Results{}, fmt.Errorf("tally ballots: %w", err)
	}

	var counts struct {
		Total      int        `db:"total"`
		Voted      int        `db:"voted"`
		LastVoteAt *time.Time `db:"last_vote_at"`
	}
	if err := db.Get(ctx, s.DB, &counts, `
        SELECT COUNT(*) AS total,
               COUNT(*) FILTER (WHERE has_voted) AS voted,
               MAX(voted_at) AS last_vote_at
        FROM voters
    `); err != nil {
		return Results{}, fmt.Errorf("count voters: %w", err)
	}

	return Results{
		Rankings:    rankings,
		TotalVoters: counts.Total,
		VotedCount:  counts.Voted,
		Turnout:     Turnout(counts.Voted, counts.Total),
		LastVoteAt:  counts.LastVoteAt,
	}, nil
}

// Turnout returns voted/total as a percentage rounded to two decimals,
// and 0.00 when there are no voters.
func Turnout(voted, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(voted)/float64(total)*10000) / 100
}
